// internal/infra/database/memory_metrics_repository.go
package database

import (
	"context"
	"sync"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
	"nutrition_goal_bot/internal/domain/metrics"
)

type logEntry struct {
	day      string
	kcal     int
	ml       int
	missions int
	loggedAt time.Time
}

// MemoryMetricsRepository is an in-memory metrics.Reader/Recorder for tests.
type MemoryMetricsRepository struct {
	mu   sync.Mutex
	logs map[string][]logEntry // key: userID
}

func NewMemoryMetricsRepository() *MemoryMetricsRepository {
	return &MemoryMetricsRepository{logs: make(map[string][]logEntry)}
}

func (r *MemoryMetricsRepository) AddMeal(ctx context.Context, userID string, kcal int, at time.Time) error {
	r.add(userID, logEntry{day: achievement.DayOf(at), kcal: kcal, loggedAt: at})
	return nil
}

func (r *MemoryMetricsRepository) AddWater(ctx context.Context, userID string, ml int, at time.Time) error {
	r.add(userID, logEntry{day: achievement.DayOf(at), ml: ml, loggedAt: at})
	return nil
}

func (r *MemoryMetricsRepository) AddMission(ctx context.Context, userID string, at time.Time) error {
	r.add(userID, logEntry{day: achievement.DayOf(at), missions: 1, loggedAt: at})
	return nil
}

func (r *MemoryMetricsRepository) add(userID string, e logEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[userID] = append(r.logs[userID], e)
}

func (r *MemoryMetricsRepository) DailyTotals(ctx context.Context, userID, day string) (*metrics.DailyTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	totals := &metrics.DailyTotals{}
	for _, e := range r.logs[userID] {
		if e.day != day {
			continue
		}
		totals.CaloriesKcal += e.kcal
		totals.WaterML += e.ml
		totals.MissionsDone += e.missions
	}
	return totals, nil
}

func (r *MemoryMetricsRepository) LastLoggedAt(ctx context.Context, userID string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var last time.Time
	for _, e := range r.logs[userID] {
		if e.loggedAt.After(last) {
			last = e.loggedAt
		}
	}
	return last, nil
}
