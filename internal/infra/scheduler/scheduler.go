package scheduler

import (
	"context"
	"time"

	"nutrition_goal_bot/internal/app"
	"nutrition_goal_bot/internal/domain/achievement"
	"nutrition_goal_bot/internal/domain/reminder"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler runs the reminder windows on cron specs pinned to KST.
// The cron cadence only decides when a dispatch is attempted; the per-day
// claim in ReminderService decides whether it actually sends.
type ReminderScheduler struct {
	cronEngine      *cron.Cron
	reminderService *app.ReminderService
	logger          *logrus.Entry
	jobs            []reminderJob
}

type reminderJob struct {
	spec string
	kind reminder.Kind
}

func NewReminderScheduler(
	reminderService *app.ReminderService,
	logger *logrus.Entry,
	specMealMorning string,
	specMealLunch string,
	specMealEvening string,
	specWaterMidday string,
	specMissionEvening string,
) *ReminderScheduler {
	return &ReminderScheduler{
		// Windows are defined in KST, never in the host's local zone.
		cronEngine:      cron.New(cron.WithLocation(achievement.KST)),
		reminderService: reminderService,
		logger:          logger,
		jobs: []reminderJob{
			{spec: specMealMorning, kind: reminder.KindMealMorning},
			{spec: specMealLunch, kind: reminder.KindMealLunch},
			{spec: specMealEvening, kind: reminder.KindMealEvening},
			{spec: specWaterMidday, kind: reminder.KindWaterMidday},
			{spec: specMissionEvening, kind: reminder.KindMissionEvening},
		},
	}
}

func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler")

	for _, job := range s.jobs {
		kind := job.kind // capture per iteration for the closure
		_, err := s.cronEngine.AddFunc(job.spec, func() {
			jobLogger := s.logger.WithField("kind", kind)
			jobLogger.Info("Reminder window triggered")

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := s.reminderService.DispatchDue(ctx, kind); err != nil {
				jobLogger.WithError(err).Error("Reminder dispatch failed")
			}
		})
		if err != nil {
			return err
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("job_count", len(s.jobs)).Info("Reminder scheduler started")
	return nil
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler")
	ctx := s.cronEngine.Stop() // Waits for running jobs to finish.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}
