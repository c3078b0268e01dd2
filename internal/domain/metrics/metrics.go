// internal/domain/metrics/metrics.go
package metrics

import (
	"context"
	"time"
)

// DailyTotals is the sum of everything a user logged on one KST calendar day.
type DailyTotals struct {
	CaloriesKcal int
	WaterML      int
	MissionsDone int
}

// Reader aggregates a user's logged meals, water and missions.
type Reader interface {
	DailyTotals(ctx context.Context, userID, day string) (*DailyTotals, error)
	// LastLoggedAt returns the time of the user's most recent log of any
	// kind, or the zero time if the user has never logged anything.
	LastLoggedAt(ctx context.Context, userID string) (time.Time, error)
}

// Recorder appends individual log entries.
type Recorder interface {
	AddMeal(ctx context.Context, userID string, kcal int, at time.Time) error
	AddWater(ctx context.Context, userID string, ml int, at time.Time) error
	AddMission(ctx context.Context, userID string, at time.Time) error
}
