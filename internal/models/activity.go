package models

import "time"

// Single GPS sample of a recorded route.
type TrackPoint struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Elevation float64   `json:"elevation"`
	Time      time.Time `json:"time"`
}

// Recorded walking/running session. Metric fields are always computed
// server-side from the route; client-sent values are ignored except for
// DurationSec on route-less activities (manual treadmill entries).
type Activity struct {
	ID             string       `json:"id"`
	UserID         int          `json:"-"`
	Type           string       `json:"type"`
	StartedAt      time.Time    `json:"started_at"`
	DurationSec    float64      `json:"duration_sec"`
	DistanceM      float64      `json:"distance_m"`
	AvgPaceSecKm   float64      `json:"avg_pace_sec_per_km"`
	Calories       float64      `json:"calories"`
	ElevationGainM float64      `json:"elevation_gain_m"`
	Route          []TrackPoint `json:"route,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}
