package goals

import (
	"time"

	"pacetrack/internal/models"
)

// Progress is a goal evaluated against the activities of one period window.
type Progress struct {
	Goal        models.Goal `json:"goal"`
	Current     float64     `json:"current"`
	Target      float64     `json:"target"`
	Ratio       float64     `json:"ratio"`
	Achieved    bool        `json:"achieved"`
	WindowStart time.Time   `json:"window_start"`
	WindowEnd   time.Time   `json:"window_end"`
}

// PeriodWindow returns [start, end) of the weekly/monthly window containing
// now, shifted back by offset windows. Weeks start Monday 00:00 UTC; months
// are calendar months.
func PeriodWindow(period string, now time.Time, offset int) (time.Time, time.Time) {
	now = now.UTC()
	switch period {
	case models.GoalPeriodMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = start.AddDate(0, -offset, 0)
		return start, start.AddDate(0, 1, 0)
	default: // weekly
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		sinceMonday := (int(now.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -sinceMonday-7*offset)
		return start, start.AddDate(0, 0, 7)
	}
}

// Evaluate accumulates the window's activities against the goal target.
func Evaluate(g models.Goal, activities []models.Activity, start, end time.Time) Progress {
	var current float64
	for _, a := range activities {
		switch g.Kind {
		case models.GoalKindDistance:
			current += a.DistanceM
		case models.GoalKindFrequency:
			current++
		case models.GoalKindDuration:
			current += a.DurationSec
		}
	}

	p := Progress{
		Goal:        g,
		Current:     current,
		Target:      g.Target,
		WindowStart: start,
		WindowEnd:   end,
	}
	if g.Target > 0 {
		p.Ratio = current / g.Target
		p.Achieved = current >= g.Target
	}
	return p
}
