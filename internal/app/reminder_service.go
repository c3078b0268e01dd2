// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
	"nutrition_goal_bot/internal/domain/metrics"
	"nutrition_goal_bot/internal/domain/notify"
	"nutrition_goal_bot/internal/domain/reminder"
	"nutrition_goal_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
)

// ReminderService sends the scheduled meal/water/mission reminders.
//
// Each send is gated by a per-(user, kind, day) claim in the reminder
// repository, so a window firing twice (restart mid-window, drifting cron
// cadence) can never deliver the same reminder twice.
type ReminderService struct {
	userRepo      user.Repository
	reminderRepo  reminder.Repository
	metricsReader metrics.Reader
	notifier      notify.Notifier
	logger        *logrus.Entry
	recencyWindow time.Duration
	now           func() time.Time
}

func NewReminderService(
	userRepo user.Repository,
	reminderRepo reminder.Repository,
	metricsReader metrics.Reader,
	notifier notify.Notifier,
	logger *logrus.Entry,
	recencyWindow time.Duration,
) *ReminderService {
	return &ReminderService{
		userRepo:      userRepo,
		reminderRepo:  reminderRepo,
		metricsReader: metricsReader,
		notifier:      notifier,
		logger:        logger,
		recencyWindow: recencyWindow,
		now:           time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *ReminderService) WithClock(now func() time.Time) *ReminderService {
	s.now = now
	return s
}

// DispatchDue sends the reminder of the given kind to every active user
// who hasn't received it today and hasn't logged anything recently.
// Per-user failures are logged and skipped; one broken user must not block
// the rest of the batch.
func (s *ReminderService) DispatchDue(ctx context.Context, kind reminder.Kind) error {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active users for %s reminders: %w", kind, err)
	}

	now := s.now()
	today := achievement.DayOf(now)
	logger := s.logger.WithFields(logrus.Fields{"kind": kind, "day": today})
	logger.WithField("user_count", len(users)).Info("Dispatching reminders")

	for _, u := range users {
		userLogger := logger.WithField("user_id", u.ID)

		lastLogged, err := s.metricsReader.LastLoggedAt(ctx, u.ID)
		if err != nil {
			userLogger.WithError(err).Error("Failed to check activity recency")
			continue
		}
		if !lastLogged.IsZero() && now.Sub(lastLogged) < s.recencyWindow {
			userLogger.Debug("User active recently, reminder suppressed")
			continue
		}

		claimed, err := s.reminderRepo.Claim(ctx, u.ID, kind, today, now)
		if err != nil {
			userLogger.WithError(err).Error("Failed to claim reminder dispatch")
			continue
		}
		if !claimed {
			userLogger.Debug("Reminder already dispatched today")
			continue
		}

		title, body := reminderMessage(kind, u.Nickname)
		if err := s.notifier.Notify(ctx, u.ID, title, body); err != nil {
			// The claim is kept: better a missed nudge than a double one.
			userLogger.WithError(err).Error("Failed to deliver reminder")
			continue
		}
		userLogger.Info("Reminder sent")
	}
	return nil
}

func reminderMessage(kind reminder.Kind, nickname string) (title, body string) {
	switch kind {
	case reminder.KindMealMorning:
		return "아침 식사 시간이에요", fmt.Sprintf("%s님, 좋은 아침이에요! 아침 식사를 하셨다면 기록해 주세요.", nickname)
	case reminder.KindMealLunch:
		return "점심 식사 시간이에요", fmt.Sprintf("%s님, 점심은 드셨나요? 식사를 기록해 주세요.", nickname)
	case reminder.KindMealEvening:
		return "저녁 식사 시간이에요", fmt.Sprintf("%s님, 저녁 식사를 기록해 주세요.", nickname)
	case reminder.KindWaterMidday:
		return "물 한 잔 어떠세요?", fmt.Sprintf("%s님, 오늘 수분 섭취가 부족하지 않도록 물 한 잔 드세요!", nickname)
	case reminder.KindMissionEvening:
		return "오늘의 운동 미션", fmt.Sprintf("%s님, 오늘의 운동 미션을 아직 완료하지 않으셨다면 가볍게 움직여 볼까요?", nickname)
	default:
		return "영양갱 알림", fmt.Sprintf("%s님, 오늘의 기록을 확인해 주세요.", nickname)
	}
}
