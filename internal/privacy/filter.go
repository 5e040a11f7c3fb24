package privacy

import "pacetrack/internal/models"

// PublicProfile is what a non-owner sees. Hidden fields are nil pointers so
// they are omitted from the JSON rather than rendered as zeroes.
type PublicProfile struct {
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Gender      string   `json:"gender,omitempty"`
	Age         *int     `json:"age,omitempty"`
	WeightKg    *float64 `json:"weight_kg,omitempty"`
	HeightCm    *float64 `json:"height_cm,omitempty"`
}

// Apply projects a user's profile through their privacy settings.
func Apply(user models.User) PublicProfile {
	p := PublicProfile{
		Username:    user.Username,
		DisplayName: user.Profile.DisplayName,
		Gender:      user.Profile.Gender,
	}
	if user.Privacy.ShowAge {
		age := user.Profile.Age
		p.Age = &age
	}
	if user.Privacy.ShowWeight {
		w := user.Profile.WeightKg
		p.WeightKg = &w
	}
	if user.Privacy.ShowHeight {
		h := user.Profile.HeightCm
		p.HeightCm = &h
	}
	return p
}
