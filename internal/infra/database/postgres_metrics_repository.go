// internal/infra/database/postgres_metrics_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
	"nutrition_goal_bot/internal/domain/metrics"
)

// PostgresMetricsRepository implements both metrics.Reader and
// metrics.Recorder over the meal_logs, water_logs and mission_logs tables.
type PostgresMetricsRepository struct {
	db *sql.DB
}

func NewPostgresMetricsRepository(db *sql.DB) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

func (r *PostgresMetricsRepository) AddMeal(ctx context.Context, userID string, kcal int, at time.Time) error {
	query := `INSERT INTO meal_logs (user_id, day, kcal, logged_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, userID, achievement.DayOf(at), kcal, at); err != nil {
		return fmt.Errorf("error inserting meal log: %w", err)
	}
	return nil
}

func (r *PostgresMetricsRepository) AddWater(ctx context.Context, userID string, ml int, at time.Time) error {
	query := `INSERT INTO water_logs (user_id, day, ml, logged_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, userID, achievement.DayOf(at), ml, at); err != nil {
		return fmt.Errorf("error inserting water log: %w", err)
	}
	return nil
}

func (r *PostgresMetricsRepository) AddMission(ctx context.Context, userID string, at time.Time) error {
	query := `INSERT INTO mission_logs (user_id, day, logged_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, achievement.DayOf(at), at); err != nil {
		return fmt.Errorf("error inserting mission log: %w", err)
	}
	return nil
}

func (r *PostgresMetricsRepository) DailyTotals(ctx context.Context, userID, day string) (*metrics.DailyTotals, error) {
	totals := &metrics.DailyTotals{}

	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(kcal), 0) FROM meal_logs WHERE user_id = $1 AND day = $2`,
		userID, day,
	).Scan(&totals.CaloriesKcal)
	if err != nil {
		return nil, fmt.Errorf("error summing meal logs: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(ml), 0) FROM water_logs WHERE user_id = $1 AND day = $2`,
		userID, day,
	).Scan(&totals.WaterML)
	if err != nil {
		return nil, fmt.Errorf("error summing water logs: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mission_logs WHERE user_id = $1 AND day = $2`,
		userID, day,
	).Scan(&totals.MissionsDone)
	if err != nil {
		return nil, fmt.Errorf("error counting mission logs: %w", err)
	}

	return totals, nil
}

func (r *PostgresMetricsRepository) LastLoggedAt(ctx context.Context, userID string) (time.Time, error) {
	query := `SELECT MAX(ts) FROM (
                 SELECT MAX(logged_at) AS ts FROM meal_logs WHERE user_id = $1
                 UNION ALL
                 SELECT MAX(logged_at) FROM water_logs WHERE user_id = $1
                 UNION ALL
                 SELECT MAX(logged_at) FROM mission_logs WHERE user_id = $1
               ) AS latest`
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("error getting last log time: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}
