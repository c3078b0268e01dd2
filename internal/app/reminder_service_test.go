package app

import (
	"context"
	"testing"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
	"nutrition_goal_bot/internal/domain/reminder"
	idb "nutrition_goal_bot/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderService_DispatchDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 8, 0, 0, 0, achievement.KST)
	recencyWindow := 90 * time.Minute

	newFixture := func(t *testing.T) (*ReminderService, *idb.MemoryUserRepository, *idb.MemoryMetricsRepository, *recordingNotifier) {
		userRepo := idb.NewMemoryUserRepository()
		reminderRepo := idb.NewMemoryReminderRepository()
		metricsRepo := idb.NewMemoryMetricsRepository()
		notifier := &recordingNotifier{}
		svc := NewReminderService(userRepo, reminderRepo, metricsRepo, notifier, testLogger(), recencyWindow).
			WithClock(fixedClock(now))
		return svc, userRepo, metricsRepo, notifier
	}

	t.Run("SendsToActiveUsersOnce", func(t *testing.T) {
		svc, userRepo, _, notifier := newFixture(t)
		newTestUser(t, userRepo, 100)
		newTestUser(t, userRepo, 101)

		require.NoError(t, svc.DispatchDue(ctx, reminder.KindMealMorning))
		assert.Equal(t, 2, notifier.count())

		// The same window firing again (restart mid-window, cadence drift)
		// finds the dispatch rows claimed and sends nothing.
		require.NoError(t, svc.DispatchDue(ctx, reminder.KindMealMorning))
		assert.Equal(t, 2, notifier.count())
	})

	t.Run("DifferentKindsAreIndependent", func(t *testing.T) {
		svc, userRepo, _, notifier := newFixture(t)
		newTestUser(t, userRepo, 100)

		require.NoError(t, svc.DispatchDue(ctx, reminder.KindMealMorning))
		require.NoError(t, svc.DispatchDue(ctx, reminder.KindWaterMidday))
		assert.Equal(t, 2, notifier.count())
	})

	t.Run("RecentActivitySuppresses", func(t *testing.T) {
		svc, userRepo, metricsRepo, notifier := newFixture(t)
		u := newTestUser(t, userRepo, 100)
		require.NoError(t, metricsRepo.AddWater(ctx, u.ID, 250, now.Add(-30*time.Minute)))

		require.NoError(t, svc.DispatchDue(ctx, reminder.KindMealMorning))
		assert.Equal(t, 0, notifier.count())
	})

	t.Run("StaleActivityDoesNotSuppress", func(t *testing.T) {
		svc, userRepo, metricsRepo, notifier := newFixture(t)
		u := newTestUser(t, userRepo, 100)
		require.NoError(t, metricsRepo.AddWater(ctx, u.ID, 250, now.Add(-3*time.Hour)))

		require.NoError(t, svc.DispatchDue(ctx, reminder.KindMealMorning))
		assert.Equal(t, 1, notifier.count())
	})

	t.Run("InactiveUsersAreSkipped", func(t *testing.T) {
		svc, userRepo, _, notifier := newFixture(t)
		u := newTestUser(t, userRepo, 100)
		u.IsActive = false
		require.NoError(t, userRepo.Update(ctx, u))

		require.NoError(t, svc.DispatchDue(ctx, reminder.KindMealMorning))
		assert.Equal(t, 0, notifier.count())
	})

	t.Run("NextDayGetsFreshReminders", func(t *testing.T) {
		svc, userRepo, _, notifier := newFixture(t)
		newTestUser(t, userRepo, 100)

		require.NoError(t, svc.DispatchDue(ctx, reminder.KindMealMorning))
		require.Equal(t, 1, notifier.count())

		svc.WithClock(fixedClock(now.AddDate(0, 0, 1)))
		require.NoError(t, svc.DispatchDue(ctx, reminder.KindMealMorning))
		assert.Equal(t, 2, notifier.count())
	})
}
