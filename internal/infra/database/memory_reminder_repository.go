// internal/infra/database/memory_reminder_repository.go
package database

import (
	"context"
	"sync"
	"time"

	"nutrition_goal_bot/internal/domain/reminder"
)

// MemoryReminderRepository is an in-memory reminder.Repository for tests.
type MemoryReminderRepository struct {
	mu         sync.Mutex
	nextID     int64
	dispatches map[string]*reminder.Dispatch // key: userID + "|" + kind + "|" + day
}

func NewMemoryReminderRepository() *MemoryReminderRepository {
	return &MemoryReminderRepository{
		nextID:     1,
		dispatches: make(map[string]*reminder.Dispatch),
	}
}

func dispatchKey(userID string, kind reminder.Kind, day string) string {
	return userID + "|" + string(kind) + "|" + day
}

func (r *MemoryReminderRepository) Claim(ctx context.Context, userID string, kind reminder.Kind, day string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dispatchKey(userID, kind, day)
	if _, ok := r.dispatches[key]; ok {
		return false, nil
	}
	r.dispatches[key] = &reminder.Dispatch{
		ID:     r.nextID,
		UserID: userID,
		Kind:   kind,
		Day:    day,
		SentAt: at,
	}
	r.nextID++
	return true, nil
}

func (r *MemoryReminderRepository) ListByUserAndDay(ctx context.Context, userID, day string) ([]*reminder.Dispatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dispatches := make([]*reminder.Dispatch, 0)
	for _, d := range r.dispatches {
		if d.UserID == userID && d.Day == day {
			cp := *d
			dispatches = append(dispatches, &cp)
		}
	}
	return dispatches, nil
}
