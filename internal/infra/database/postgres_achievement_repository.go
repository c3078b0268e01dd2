// internal/infra/database/postgres_achievement_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
)

// Custom errors specific to the achievement repository.
var ErrAchievementNotFound = fmt.Errorf("daily achievement not found")
var ErrDuplicateAchievement = fmt.Errorf("duplicate daily achievement (user_id, day)")

type PostgresAchievementRepository struct {
	db *sql.DB
}

func NewPostgresAchievementRepository(db *sql.DB) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{db: db}
}

func (r *PostgresAchievementRepository) Get(ctx context.Context, userID, day string) (*achievement.DailyAchievement, error) {
	query := `SELECT id, user_id, day, achieved, notified_at, created_at, updated_at
               FROM daily_achievements
               WHERE user_id = $1 AND day = $2`
	rec := achievement.DailyAchievement{}
	err := r.db.QueryRowContext(ctx, query, userID, day).Scan(
		&rec.ID, &rec.UserID, &rec.Day, &rec.Achieved,
		&rec.NotifiedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAchievementNotFound
		}
		return nil, fmt.Errorf("error getting daily achievement: %w", err)
	}
	return &rec, nil
}

func (r *PostgresAchievementRepository) Create(ctx context.Context, userID, day string) (*achievement.DailyAchievement, error) {
	query := `INSERT INTO daily_achievements (user_id, day, achieved)
               VALUES ($1, $2, FALSE)
               RETURNING id, achieved, notified_at, created_at, updated_at`
	rec := achievement.DailyAchievement{UserID: userID, Day: day}
	err := r.db.QueryRowContext(ctx, query, userID, day).Scan(
		&rec.ID, &rec.Achieved, &rec.NotifiedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "daily_achievements_user_day_key") { // Unique constraint violation
			return nil, ErrDuplicateAchievement
		}
		return nil, fmt.Errorf("error creating daily achievement: %w", err)
	}
	return &rec, nil
}

func (r *PostgresAchievementRepository) SetAchieved(ctx context.Context, userID, day string, achieved bool) error {
	// notified_at is deliberately absent from the SET list: once written it
	// must never change for the rest of the day.
	query := `UPDATE daily_achievements
               SET achieved = $3, updated_at = NOW()
               WHERE user_id = $1 AND day = $2
               RETURNING updated_at`
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, userID, day, achieved).Scan(&updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrAchievementNotFound
		}
		return fmt.Errorf("error updating daily achievement: %w", err)
	}
	return nil
}

func (r *PostgresAchievementRepository) ClaimNotification(ctx context.Context, userID, day string, at time.Time) (bool, error) {
	// Conditional write: of any number of racing callers only one finds
	// notified_at still NULL and wins the claim.
	query := `UPDATE daily_achievements
               SET achieved = TRUE, notified_at = $3, updated_at = NOW()
               WHERE user_id = $1 AND day = $2 AND notified_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, userID, day, at)
	if err != nil {
		return false, fmt.Errorf("error claiming achievement notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading claim result: %w", err)
	}
	return affected == 1, nil
}
