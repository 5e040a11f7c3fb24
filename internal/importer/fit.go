package importer

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"pacetrack/internal/models"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/filedef"
	"github.com/muktihari/fit/profile/typedef"
)

var ErrNoRecords = errors.New("fit file contains no track records")

var sportToType = map[typedef.Sport]string{
	typedef.SportRunning: "running",
	typedef.SportWalking: "walking",
	typedef.SportCycling: "cycling",
	typedef.SportHiking:  "hiking",
}

// ParseFIT decodes a Garmin FIT activity file into track points. Records
// without a GPS fix are skipped (indoor stretches still advance the clock
// through the surrounding points).
func ParseFIT(data []byte) (typeKey string, points []models.TrackPoint, startedAt time.Time, err error) {
	dec := decoder.New(bytes.NewReader(data))
	fit, err := dec.Decode()
	if err != nil {
		return "", nil, time.Time{}, fmt.Errorf("ParseFIT(): decode failed: %w", err)
	}

	activity := filedef.NewActivity(fit.Messages...)

	typeKey = "running"
	for _, session := range activity.Sessions {
		if key, ok := sportToType[session.Sport]; ok {
			typeKey = key
			break
		}
	}

	for _, rec := range activity.Records {
		lat := rec.PositionLatDegrees()
		lon := rec.PositionLongDegrees()
		if math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}
		ele := rec.AltitudeScaled()
		if math.IsNaN(ele) {
			ele = 0
		}
		points = append(points, models.TrackPoint{
			Lat:       lat,
			Lon:       lon,
			Elevation: ele,
			Time:      rec.Timestamp,
		})
	}
	if len(points) == 0 {
		return "", nil, time.Time{}, ErrNoRecords
	}
	return typeKey, points, points[0].Time, nil
}
