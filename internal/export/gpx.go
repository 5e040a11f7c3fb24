package export

import (
	"fmt"
	"strings"
	"time"

	"pacetrack/internal/models"
)

// GPX renders an activity's route as a GPX 1.1 track. Returns "" for
// route-less activities (manual entries have nothing to export).
func GPX(a models.Activity) string {
	if len(a.Route) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sb.WriteString("\n")
	sb.WriteString(`<gpx version="1.1" creator="pacetrack" xmlns="http://www.topografix.com/GPX/1/1">`)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("<trk><name>%s %s</name><trkseg>\n",
		a.Type, a.StartedAt.UTC().Format("2006-01-02")))

	for _, pt := range a.Route {
		sb.WriteString(fmt.Sprintf(
			`<trkpt lat="%f" lon="%f"><ele>%f</ele><time>%s</time></trkpt>`,
			pt.Lat, pt.Lon, pt.Elevation, pt.Time.UTC().Format(time.RFC3339),
		))
		sb.WriteString("\n")
	}

	sb.WriteString("</trkseg></trk>\n</gpx>\n")
	return sb.String()
}
