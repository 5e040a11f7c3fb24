package export

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"pacetrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPX(t *testing.T) {
	started := time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)
	a := models.Activity{
		ID:        "a1",
		Type:      "running",
		StartedAt: started,
		Route: []models.TrackPoint{
			{Lat: 52.52, Lon: 13.405, Elevation: 34.5, Time: started},
			{Lat: 52.521, Lon: 13.406, Elevation: 35, Time: started.Add(30 * time.Second)},
		},
	}

	gpx := GPX(a)
	require.NotEmpty(t, gpx)

	assert.True(t, strings.HasPrefix(gpx, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, gpx, `creator="pacetrack"`)
	assert.Contains(t, gpx, `lat="52.520000"`)
	assert.Contains(t, gpx, "<ele>34.500000</ele>")
	assert.Contains(t, gpx, "<time>2026-08-20T07:00:00Z</time>")
	assert.Equal(t, 2, strings.Count(gpx, "<trkpt"))

	// Well-formed XML, not just string soup.
	var doc struct {
		XMLName xml.Name `xml:"gpx"`
	}
	require.NoError(t, xml.Unmarshal([]byte(gpx), &doc))
}

func TestGPXWithoutRoute(t *testing.T) {
	assert.Empty(t, GPX(models.Activity{ID: "manual", Type: "running"}))
}
