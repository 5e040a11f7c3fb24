package stats

import (
	"time"

	"pacetrack/internal/models"
)

type TypeTotals struct {
	Activities  int     `json:"activities"`
	DistanceM   float64 `json:"distance_m"`
	DurationSec float64 `json:"duration_sec"`
	Calories    float64 `json:"calories"`
}

// PeriodSummary aggregates one weekly/monthly window.
type PeriodSummary struct {
	Period            string                `json:"period"`
	Offset            int                   `json:"offset"`
	WindowStart       time.Time             `json:"window_start"`
	WindowEnd         time.Time             `json:"window_end"`
	Activities        int                   `json:"activities"`
	DistanceM         float64               `json:"distance_m"`
	DurationSec       float64               `json:"duration_sec"`
	Calories          float64               `json:"calories"`
	ElevationGainM    float64               `json:"elevation_gain_m"`
	ByType            map[string]TypeTotals `json:"by_type"`
	LongestActivityID string                `json:"longest_activity_id,omitempty"`
	FastestActivityID string                `json:"fastest_activity_id,omitempty"`
}

func Summarize(period string, offset int, start, end time.Time, activities []models.Activity) PeriodSummary {
	s := PeriodSummary{
		Period:      period,
		Offset:      offset,
		WindowStart: start,
		WindowEnd:   end,
		ByType:      make(map[string]TypeTotals),
	}

	var bestDist, bestPace float64
	for _, a := range activities {
		s.Activities++
		s.DistanceM += a.DistanceM
		s.DurationSec += a.DurationSec
		s.Calories += a.Calories
		s.ElevationGainM += a.ElevationGainM

		tt := s.ByType[a.Type]
		tt.Activities++
		tt.DistanceM += a.DistanceM
		tt.DurationSec += a.DurationSec
		tt.Calories += a.Calories
		s.ByType[a.Type] = tt

		if s.LongestActivityID == "" || a.DistanceM > bestDist {
			s.LongestActivityID = a.ID
			bestDist = a.DistanceM
		}
		// Fastest = lowest average pace over a real distance.
		if a.DistanceM > 0 && a.AvgPaceSecKm > 0 {
			if s.FastestActivityID == "" || a.AvgPaceSecKm < bestPace {
				s.FastestActivityID = a.ID
				bestPace = a.AvgPaceSecKm
			}
		}
	}
	return s
}
