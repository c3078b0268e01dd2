package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
	idb "nutrition_goal_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier counts deliveries and optionally fails them.
type recordingNotifier struct {
	mu      sync.Mutex
	calls   []string // user IDs in delivery order
	failErr error
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failErr != nil {
		return n.failErr
	}
	n.calls = append(n.calls, userID)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// failingAchievementRepo simulates a transiently unavailable store.
type failingAchievementRepo struct{}

func (r *failingAchievementRepo) Get(ctx context.Context, userID, day string) (*achievement.DailyAchievement, error) {
	return nil, fmt.Errorf("connection refused")
}
func (r *failingAchievementRepo) Create(ctx context.Context, userID, day string) (*achievement.DailyAchievement, error) {
	return nil, fmt.Errorf("connection refused")
}
func (r *failingAchievementRepo) SetAchieved(ctx context.Context, userID, day string, achieved bool) error {
	return fmt.Errorf("connection refused")
}
func (r *failingAchievementRepo) ClaimNotification(ctx context.Context, userID, day string, at time.Time) (bool, error) {
	return false, fmt.Errorf("connection refused")
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAchievementService_Evaluate(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2026, 8, 31, 10, 0, 0, 0, achievement.KST)

	t.Run("FirstAchievementNotifiesOnce", func(t *testing.T) {
		repo := idb.NewMemoryAchievementRepository()
		notifier := &recordingNotifier{}
		svc := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))

		// Nothing met yet: record is lazily created, no notification.
		notified, err := svc.Evaluate(ctx, "user-1", false, false, false)
		require.NoError(t, err)
		assert.False(t, notified)

		rec, err := repo.Get(ctx, "user-1", "2026-08-31")
		require.NoError(t, err)
		assert.False(t, rec.Achieved)
		assert.False(t, rec.NotifiedAt.Valid)

		// All goals met: single notification on the rising edge.
		notified, err = svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		assert.True(t, notified)
		assert.Equal(t, 1, notifier.count())

		rec, err = repo.Get(ctx, "user-1", "2026-08-31")
		require.NoError(t, err)
		assert.True(t, rec.Achieved)
		assert.True(t, rec.NotifiedAt.Valid)
	})

	t.Run("FlappingNeverRenotifies", func(t *testing.T) {
		repo := idb.NewMemoryAchievementRepository()
		notifier := &recordingNotifier{}
		svc := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))

		notified, err := svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		require.True(t, notified)

		rec, err := repo.Get(ctx, "user-1", "2026-08-31")
		require.NoError(t, err)
		firstNotifiedAt := rec.NotifiedAt.Time

		// Goals un-met later the same day: achieved flips, notified_at stays.
		notified, err = svc.Evaluate(ctx, "user-1", false, true, true)
		require.NoError(t, err)
		assert.False(t, notified)

		rec, err = repo.Get(ctx, "user-1", "2026-08-31")
		require.NoError(t, err)
		assert.False(t, rec.Achieved)
		require.True(t, rec.NotifiedAt.Valid)
		assert.Equal(t, firstNotifiedAt, rec.NotifiedAt.Time)

		// Met again: achieved flips back, still no second notification.
		notified, err = svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		assert.False(t, notified)
		assert.Equal(t, 1, notifier.count())

		rec, err = repo.Get(ctx, "user-1", "2026-08-31")
		require.NoError(t, err)
		assert.True(t, rec.Achieved)
		assert.Equal(t, firstNotifiedAt, rec.NotifiedAt.Time)
	})

	t.Run("RestartDoesNotRenotify", func(t *testing.T) {
		repo := idb.NewMemoryAchievementRepository()
		notifier := &recordingNotifier{}
		svc := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))

		_, err := svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		require.Equal(t, 1, notifier.count())

		// Fresh service instance over the same store: the in-process cache
		// is gone, the persisted notified_at must still gate the send.
		restarted := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))
		notified, err := restarted.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		assert.False(t, notified)
		assert.Equal(t, 1, notifier.count())
	})

	t.Run("ConcurrentEvaluationsNotifyOnce", func(t *testing.T) {
		repo := idb.NewMemoryAchievementRepository()
		notifier := &recordingNotifier{}

		// Two service instances over one store simulate two processes; the
		// repository claim must let exactly one send through.
		svcA := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))
		svcB := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))

		var wg sync.WaitGroup
		var mu sync.Mutex
		notifiedCount := 0
		for i := 0; i < 8; i++ {
			svc := svcA
			if i%2 == 1 {
				svc = svcB
			}
			wg.Add(1)
			go func(s *AchievementService) {
				defer wg.Done()
				notified, err := s.Evaluate(ctx, "user-1", true, true, true)
				assert.NoError(t, err)
				if notified {
					mu.Lock()
					notifiedCount++
					mu.Unlock()
				}
			}(svc)
		}
		wg.Wait()

		assert.Equal(t, 1, notifiedCount)
		assert.Equal(t, 1, notifier.count())
	})

	t.Run("DaysAreIndependent", func(t *testing.T) {
		repo := idb.NewMemoryAchievementRepository()
		notifier := &recordingNotifier{}
		svc := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))

		notified, err := svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		require.True(t, notified)

		// The KST date rolls over; same goals met again fire a fresh send.
		day2 := day1.AddDate(0, 0, 1)
		svc.WithClock(fixedClock(day2))
		notified, err = svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		assert.True(t, notified)
		assert.Equal(t, 2, notifier.count())

		// Day 1's record is untouched by day 2's notification.
		rec1, err := repo.Get(ctx, "user-1", "2026-08-31")
		require.NoError(t, err)
		rec2, err := repo.Get(ctx, "user-1", "2026-09-01")
		require.NoError(t, err)
		assert.True(t, rec1.NotifiedAt.Valid)
		assert.True(t, rec2.NotifiedAt.Valid)
		assert.NotEqual(t, rec1.ID, rec2.ID)
	})

	t.Run("UsersAreIndependent", func(t *testing.T) {
		repo := idb.NewMemoryAchievementRepository()
		notifier := &recordingNotifier{}
		svc := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))

		notified, err := svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		assert.True(t, notified)

		notified, err = svc.Evaluate(ctx, "user-2", true, true, true)
		require.NoError(t, err)
		assert.True(t, notified)
		assert.Equal(t, []string{"user-1", "user-2"}, notifier.calls)
	})

	t.Run("StoreFailureSurfaces", func(t *testing.T) {
		notifier := &recordingNotifier{}
		svc := NewAchievementService(&failingAchievementRepo{}, notifier, testLogger()).WithClock(fixedClock(day1))

		notified, err := svc.Evaluate(ctx, "user-1", true, true, true)
		assert.Error(t, err)
		assert.False(t, notified)
		assert.Equal(t, 0, notifier.count())
	})

	t.Run("NotifyFailureKeepsClaim", func(t *testing.T) {
		repo := idb.NewMemoryAchievementRepository()
		notifier := &recordingNotifier{failErr: fmt.Errorf("telegram unreachable")}
		svc := NewAchievementService(repo, notifier, testLogger()).WithClock(fixedClock(day1))

		// Delivery fails after the claim: the day still counts as notified.
		notified, err := svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		assert.True(t, notified)

		rec, err := repo.Get(ctx, "user-1", "2026-08-31")
		require.NoError(t, err)
		assert.True(t, rec.NotifiedAt.Valid)

		// No retry even once delivery recovers; at-most-once wins.
		notifier.failErr = nil
		notified, err = svc.Evaluate(ctx, "user-1", true, true, true)
		require.NoError(t, err)
		assert.False(t, notified)
		assert.Equal(t, 0, notifier.count())
	})
}
