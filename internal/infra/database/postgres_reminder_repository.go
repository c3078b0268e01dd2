// internal/infra/database/postgres_reminder_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nutrition_goal_bot/internal/domain/reminder"
)

type PostgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

func (r *PostgresReminderRepository) Claim(ctx context.Context, userID string, kind reminder.Kind, day string, at time.Time) (bool, error) {
	// ON CONFLICT DO NOTHING against the (user_id, kind, day) unique key:
	// only the caller that actually inserts the row gets to send.
	query := `INSERT INTO reminder_dispatches (user_id, kind, day, sent_at)
               VALUES ($1, $2, $3, $4)
               ON CONFLICT (user_id, kind, day) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, userID, kind, day, at)
	if err != nil {
		return false, fmt.Errorf("error claiming reminder dispatch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading reminder claim result: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresReminderRepository) ListByUserAndDay(ctx context.Context, userID, day string) ([]*reminder.Dispatch, error) {
	query := `SELECT id, user_id, kind, day, sent_at
               FROM reminder_dispatches
               WHERE user_id = $1 AND day = $2 ORDER BY sent_at`
	rows, err := r.db.QueryContext(ctx, query, userID, day)
	if err != nil {
		return nil, fmt.Errorf("error querying reminder dispatches: %w", err)
	}
	defer rows.Close()

	dispatches := make([]*reminder.Dispatch, 0)
	for rows.Next() {
		d := &reminder.Dispatch{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.Kind, &d.Day, &d.SentAt); err != nil {
			return nil, fmt.Errorf("error scanning reminder dispatch: %w", err)
		}
		dispatches = append(dispatches, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder dispatches: %w", err)
	}
	return dispatches, nil
}
