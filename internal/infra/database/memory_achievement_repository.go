// internal/infra/database/memory_achievement_repository.go
package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
)

// MemoryAchievementRepository is an in-memory achievement.Repository for
// tests and local runs without a database. Semantics mirror the Postgres
// implementation, including the conditional notification claim.
type MemoryAchievementRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[string]*achievement.DailyAchievement // key: userID + "|" + day
}

func NewMemoryAchievementRepository() *MemoryAchievementRepository {
	return &MemoryAchievementRepository{
		nextID:  1,
		records: make(map[string]*achievement.DailyAchievement),
	}
}

func achievementKey(userID, day string) string {
	return userID + "|" + day
}

func (r *MemoryAchievementRepository) Get(ctx context.Context, userID, day string) (*achievement.DailyAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[achievementKey(userID, day)]
	if !ok {
		return nil, ErrAchievementNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryAchievementRepository) Create(ctx context.Context, userID, day string) (*achievement.DailyAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := achievementKey(userID, day)
	if _, ok := r.records[key]; ok {
		return nil, ErrDuplicateAchievement
	}
	now := time.Now()
	rec := &achievement.DailyAchievement{
		ID:        r.nextID,
		UserID:    userID,
		Day:       day,
		Achieved:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.records[key] = rec
	cp := *rec
	return &cp, nil
}

func (r *MemoryAchievementRepository) SetAchieved(ctx context.Context, userID, day string, achieved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[achievementKey(userID, day)]
	if !ok {
		return ErrAchievementNotFound
	}
	rec.Achieved = achieved
	rec.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryAchievementRepository) ClaimNotification(ctx context.Context, userID, day string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[achievementKey(userID, day)]
	if !ok {
		return false, nil
	}
	if rec.NotifiedAt.Valid {
		return false, nil
	}
	rec.Achieved = true
	rec.NotifiedAt = sql.NullTime{Time: at, Valid: true}
	rec.UpdatedAt = time.Now()
	return true, nil
}
