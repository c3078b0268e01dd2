package database

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDuplicateKey = fmt.Errorf(`pq: duplicate key value violates unique constraint "daily_achievements_user_day_key"`)

func TestPostgresAchievementRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresAchievementRepository(db)

	t.Run("Found", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "user_id", "day", "achieved", "notified_at", "created_at", "updated_at"}).
			AddRow(int64(1), "user-1", "2026-08-31", false, nil, now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, day, achieved, notified_at, created_at, updated_at`)).
			WithArgs("user-1", "2026-08-31").
			WillReturnRows(rows)

		rec, err := repo.Get(context.Background(), "user-1", "2026-08-31")
		require.NoError(t, err)
		assert.Equal(t, "user-1", rec.UserID)
		assert.Equal(t, "2026-08-31", rec.Day)
		assert.False(t, rec.Achieved)
		assert.False(t, rec.NotifiedAt.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, day, achieved, notified_at, created_at, updated_at`)).
			WithArgs("user-1", "2026-08-31").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "day", "achieved", "notified_at", "created_at", "updated_at"}))

		_, err := repo.Get(context.Background(), "user-1", "2026-08-31")
		assert.Equal(t, ErrAchievementNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAchievementRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresAchievementRepository(db)

	t.Run("Inserts", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "achieved", "notified_at", "created_at", "updated_at"}).
			AddRow(int64(7), false, nil, now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO daily_achievements`)).
			WithArgs("user-1", "2026-08-31").
			WillReturnRows(rows)

		rec, err := repo.Create(context.Background(), "user-1", "2026-08-31")
		require.NoError(t, err)
		assert.Equal(t, int64(7), rec.ID)
		assert.False(t, rec.Achieved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO daily_achievements`)).
			WithArgs("user-1", "2026-08-31").
			WillReturnError(errDuplicateKey)

		_, err := repo.Create(context.Background(), "user-1", "2026-08-31")
		assert.Equal(t, ErrDuplicateAchievement, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAchievementRepository_SetAchieved(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresAchievementRepository(db)

	// The statement must not touch notified_at.
	query := `UPDATE daily_achievements
               SET achieved = $3, updated_at = NOW()
               WHERE user_id = $1 AND day = $2
               RETURNING updated_at`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("user-1", "2026-08-31", true).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	require.NoError(t, repo.SetAchieved(context.Background(), "user-1", "2026-08-31", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAchievementRepository_ClaimNotification(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresAchievementRepository(db)
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("Won", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE daily_achievements`)).
			WithArgs("user-1", "2026-08-31", at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		won, err := repo.ClaimNotification(context.Background(), "user-1", "2026-08-31", at)
		require.NoError(t, err)
		assert.True(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lost", func(t *testing.T) {
		// notified_at already set: the conditional update matches no row.
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE daily_achievements`)).
			WithArgs("user-1", "2026-08-31", at).
			WillReturnResult(sqlmock.NewResult(0, 0))

		won, err := repo.ClaimNotification(context.Background(), "user-1", "2026-08-31", at)
		require.NoError(t, err)
		assert.False(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
