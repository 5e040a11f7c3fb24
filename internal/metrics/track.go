package metrics

import (
	"math"

	"pacetrack/internal/models"
)

const (
	earthRadiusM = 6371e3

	// Segments implying a speed above this are GPS glitches, not running.
	maxSegmentSpeedMS = 12.5

	// Smoothing factor for the current-pace EMA.
	paceAlpha = 0.3

	// Used when the profile carries no weight.
	defaultWeightKg = 70.0

	// Running MET is scaled by speed relative to this baseline (~5:33 min/km).
	runningBaselineMS = 3.0

	splitDistanceM = 1000.0
)

type Split struct {
	DistanceM   float64 `json:"distance_m"`
	DurationSec float64 `json:"duration_sec"`
	ElevationM  float64 `json:"elevation_m"`
}

type Summary struct {
	DistanceM           float64 `json:"distance_m"`
	DurationSec         float64 `json:"duration_sec"`
	AvgPaceSecPerKm     float64 `json:"avg_pace_sec_per_km"`
	CurrentPaceSecPerKm float64 `json:"current_pace_sec_per_km"`
	Calories            float64 `json:"calories"`
	ElevationGainM      float64 `json:"elevation_gain_m"`
	Splits              []Split `json:"splits,omitempty"`
}

// Haversine returns the great-circle distance in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Tracker accumulates route points into distance/pace/calorie metrics.
// It backs both the one-shot Compute and the live websocket session, where
// points arrive one at a time and a summary is reported after each.
type Tracker struct {
	typeKey  string
	weightKg float64

	points   []models.TrackPoint
	last     *models.TrackPoint
	paused   bool
	emaSpeed float64

	distanceM   float64
	durationSec float64
	gainM       float64

	splits   []Split
	curSplit Split
}

func NewTracker(typeKey string, weightKg float64) *Tracker {
	if weightKg <= 0 {
		weightKg = defaultWeightKg
	}
	return &Tracker{typeKey: typeKey, weightKg: weightKg}
}

// Add feeds one point and returns the summary so far. Out-of-order
// timestamps and implausibly fast segments are dropped; the previous good
// point stays the anchor so a single glitch does not poison the next segment.
func (t *Tracker) Add(p models.TrackPoint) Summary {
	if t.paused {
		return t.Summary()
	}
	t.points = append(t.points, p)

	if t.last == nil {
		t.last = &p
		return t.Summary()
	}

	dt := p.Time.Sub(t.last.Time).Seconds()
	if dt <= 0 {
		return t.Summary()
	}
	dist := Haversine(t.last.Lat, t.last.Lon, p.Lat, p.Lon)
	speed := dist / dt
	if speed > maxSegmentSpeedMS {
		return t.Summary()
	}

	elevDelta := p.Elevation - t.last.Elevation
	if elevDelta > 0 {
		t.gainM += elevDelta
	}

	t.distanceM += dist
	t.durationSec += dt
	if t.emaSpeed == 0 {
		t.emaSpeed = speed
	} else {
		t.emaSpeed = paceAlpha*speed + (1-paceAlpha)*t.emaSpeed
	}
	t.advanceSplit(dist, dt, elevDelta)

	t.last = &p
	return t.Summary()
}

// Pause stops accumulation; Resume re-anchors so the paused gap is not
// counted as a segment.
func (t *Tracker) Pause()  { t.paused = true }
func (t *Tracker) Resume() { t.paused = false; t.last = nil }

func (t *Tracker) Points() []models.TrackPoint { return t.points }

func (t *Tracker) Summary() Summary {
	s := Summary{
		DistanceM:      t.distanceM,
		DurationSec:    t.durationSec,
		ElevationGainM: t.gainM,
	}
	if t.distanceM > 0 && t.durationSec > 0 {
		s.AvgPaceSecPerKm = t.durationSec / (t.distanceM / 1000)
	}
	if t.emaSpeed > 0 {
		s.CurrentPaceSecPerKm = splitDistanceM / t.emaSpeed
	}

	avgSpeed := 0.0
	if t.durationSec > 0 {
		avgSpeed = t.distanceM / t.durationSec
	}
	s.Calories = Calories(t.typeKey, t.weightKg, t.durationSec, avgSpeed)

	s.Splits = append(s.Splits, t.splits...)
	if t.curSplit.DistanceM > 0 {
		s.Splits = append(s.Splits, t.curSplit)
	}
	return s
}

// Distributes one segment across km splits, carrying the remainder into the
// next split proportionally when a segment crosses the boundary. Standing
// still advances the clock without distance; that time still belongs to the
// current split so split durations keep summing to the moving duration.
func (t *Tracker) advanceSplit(dist, dur, elevDelta float64) {
	if dist <= 0 {
		t.curSplit.DurationSec += dur
		t.curSplit.ElevationM += elevDelta
		return
	}
	for dist > 0 {
		room := splitDistanceM - t.curSplit.DistanceM
		if dist < room {
			t.curSplit.DistanceM += dist
			t.curSplit.DurationSec += dur
			t.curSplit.ElevationM += elevDelta
			return
		}
		frac := room / dist
		t.curSplit.DistanceM += room
		t.curSplit.DurationSec += dur * frac
		t.curSplit.ElevationM += elevDelta * frac
		t.splits = append(t.splits, t.curSplit)
		t.curSplit = Split{}
		dist -= room
		dur -= dur * frac
		elevDelta -= elevDelta * frac
	}
}

// Compute runs the whole pipeline over a recorded route.
func Compute(points []models.TrackPoint, typeKey string, weightKg float64) Summary {
	t := NewTracker(typeKey, weightKg)
	var s Summary
	for _, p := range points {
		s = t.Add(p)
	}
	return s
}

// Calories estimates energy burn as MET * weight * hours. Running MET is
// scaled by speed against the baseline, clamped to [0.5x, 2x]; the other
// types use their table value as-is.
func Calories(typeKey string, weightKg, durationSec, avgSpeedMS float64) float64 {
	if durationSec <= 0 {
		return 0
	}
	if weightKg <= 0 {
		weightKg = defaultWeightKg
	}
	at, exists := models.GetActivityType(typeKey)
	if !exists {
		return 0
	}
	met := at.MET
	if typeKey == "running" && avgSpeedMS > 0 {
		factor := avgSpeedMS / runningBaselineMS
		if factor < 0.5 {
			factor = 0.5
		}
		if factor > 2 {
			factor = 2
		}
		met *= factor
	}
	return met * weightKg * (durationSec / 3600)
}
