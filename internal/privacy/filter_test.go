package privacy

import (
	"encoding/json"
	"testing"

	"pacetrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() models.User {
	return models.User{
		Username: "runner42",
		Profile: models.UserProfile{
			DisplayName: "Jamie",
			Gender:      "female",
			Age:         31,
			WeightKg:    62.5,
			HeightCm:    168,
		},
		Privacy: models.PrivacySettings{ShowAge: true, ShowWeight: true, ShowHeight: true},
	}
}

func TestApplyAllVisible(t *testing.T) {
	p := Apply(testUser())

	assert.Equal(t, "runner42", p.Username)
	assert.Equal(t, "Jamie", p.DisplayName)
	require.NotNil(t, p.Age)
	assert.Equal(t, 31, *p.Age)
	require.NotNil(t, p.WeightKg)
	assert.Equal(t, 62.5, *p.WeightKg)
	require.NotNil(t, p.HeightCm)
}

func TestApplyHidesFlaggedFields(t *testing.T) {
	u := testUser()
	u.Privacy = models.PrivacySettings{ShowAge: true, ShowWeight: false, ShowHeight: false}

	p := Apply(u)
	assert.NotNil(t, p.Age)
	assert.Nil(t, p.WeightKg)
	assert.Nil(t, p.HeightCm)
}

// Hidden fields must be absent from the JSON, not zero.
func TestHiddenFieldsOmittedFromJSON(t *testing.T) {
	u := testUser()
	u.Privacy = models.PrivacySettings{}

	data, err := json.Marshal(Apply(u))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Contains(t, decoded, "username")
	assert.NotContains(t, decoded, "age")
	assert.NotContains(t, decoded, "weight_kg")
	assert.NotContains(t, decoded, "height_cm")
}

// A visible zero value still shows up: "age: 0" after hiding then unhiding
// must not be confused with "hidden".
func TestVisibleZeroValueIsSerialized(t *testing.T) {
	u := testUser()
	u.Profile.Age = 0

	data, err := json.Marshal(Apply(u))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "age")
}
