package models

import "time"

// Goal kinds and periods accepted by the API.
const (
	GoalKindDistance  = "distance"  // target in meters
	GoalKindFrequency = "frequency" // target in activity count
	GoalKindDuration  = "duration"  // target in seconds

	GoalPeriodWeekly  = "weekly"
	GoalPeriodMonthly = "monthly"
)

type Goal struct {
	ID        int       `json:"id"`
	UserID    int       `json:"-"`
	Kind      string    `json:"kind"`
	Period    string    `json:"period"`
	Target    float64   `json:"target"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidGoalKind(kind string) bool {
	return kind == GoalKindDistance || kind == GoalKindFrequency || kind == GoalKindDuration
}

func ValidGoalPeriod(period string) bool {
	return period == GoalPeriodWeekly || period == GoalPeriodMonthly
}
