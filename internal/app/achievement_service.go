// internal/app/achievement_service.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
	"nutrition_goal_bot/internal/domain/notify"
	idb "nutrition_goal_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

const (
	congratsTitle = "오늘의 목표 달성!"
	congratsBody  = "축하해요! 오늘의 식사, 수분, 운동 목표를 모두 달성했어요 🎉 내일도 함께해요!"
)

// AchievementService decides, on every goal re-evaluation, whether the
// daily congratulation should be sent, and guarantees it goes out at most
// once per user per KST day.
//
// The persisted notified_at is the source of truth. The in-process
// notifiedOn cache only saves repeat store round-trips within one running
// session and is re-derived from the record after a restart.
type AchievementService struct {
	achievementRepo achievement.Repository
	notifier        notify.Notifier
	logger          *logrus.Entry
	now             func() time.Time

	mu         sync.Mutex
	userLocks  map[string]*sync.Mutex
	notifiedOn map[string]string // userID -> KST day already congratulated this session
}

func NewAchievementService(
	achievementRepo achievement.Repository,
	notifier notify.Notifier,
	logger *logrus.Entry,
) *AchievementService {
	return &AchievementService{
		achievementRepo: achievementRepo,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
		userLocks:       make(map[string]*sync.Mutex),
		notifiedOn:      make(map[string]string),
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *AchievementService) WithClock(now func() time.Time) *AchievementService {
	s.now = now
	return s
}

// Evaluate re-checks the three goal-met flags for a user and sends the
// congratulation on the first moment all of them hold, at most once per
// KST day. Returns whether a notification was sent by this call.
//
// Safe to call arbitrarily often and concurrently: calls for the same user
// are serialized in-process, and the repository's conditional claim keeps
// the at-most-once guarantee across processes.
func (s *AchievementService) Evaluate(ctx context.Context, userID string, caloriesMet, waterMet, missionsMet bool) (bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	today := achievement.DayOf(now)

	rec, err := s.achievementRepo.Get(ctx, userID, today)
	if err == idb.ErrAchievementNotFound {
		rec, err = s.achievementRepo.Create(ctx, userID, today)
		if err == idb.ErrDuplicateAchievement {
			// Lost a create race; the row exists now.
			rec, err = s.achievementRepo.Get(ctx, userID, today)
		}
	}
	if err != nil {
		return false, fmt.Errorf("failed to load daily achievement for user %s on %s: %w", userID, today, err)
	}

	allMet := caloriesMet && waterMet && missionsMet

	if rec.NotifiedAt.Valid || s.alreadyNotified(userID, today) {
		if rec.NotifiedAt.Valid {
			s.markNotified(userID, today)
		}
		// Achieved keeps tracking reality after the congratulation;
		// notified_at stays untouched by SetAchieved.
		if rec.Achieved != allMet {
			if err := s.achievementRepo.SetAchieved(ctx, userID, today, allMet); err != nil {
				return false, fmt.Errorf("failed to update achieved flag for user %s on %s: %w", userID, today, err)
			}
		}
		return false, nil
	}

	if !allMet {
		if rec.Achieved {
			if err := s.achievementRepo.SetAchieved(ctx, userID, today, false); err != nil {
				return false, fmt.Errorf("failed to update achieved flag for user %s on %s: %w", userID, today, err)
			}
		}
		return false, nil
	}

	won, err := s.achievementRepo.ClaimNotification(ctx, userID, today, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim achievement notification for user %s on %s: %w", userID, today, err)
	}
	s.markNotified(userID, today)
	if !won {
		s.logger.WithFields(logrus.Fields{"user_id": userID, "day": today}).
			Info("Achievement notification already claimed elsewhere")
		return false, nil
	}

	if err := s.notifier.Notify(ctx, userID, congratsTitle, congratsBody); err != nil {
		// The claim stands: a lost congratulation beats a duplicate one.
		s.logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "day": today}).
			Error("Failed to deliver achievement notification")
		return true, nil
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "day": today}).
		Info("Achievement notification sent")
	return true, nil
}

func (s *AchievementService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	return l
}

func (s *AchievementService) alreadyNotified(userID, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifiedOn[userID] == day
}

func (s *AchievementService) markNotified(userID, day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiedOn[userID] = day
}
