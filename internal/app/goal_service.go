// internal/app/goal_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"nutrition_goal_bot/internal/domain/achievement"
	"nutrition_goal_bot/internal/domain/metrics"
	"nutrition_goal_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for goal logging.
var ErrInvalidAmount = fmt.Errorf("logged amount must be positive")

// DailyProgress is a snapshot of a user's standing against their goals on
// one KST day.
type DailyProgress struct {
	Day          string
	CaloriesKcal int
	CalorieGoal  int
	WaterML      int
	WaterGoal    int
	MissionsDone int
	MissionGoal  int
	Notified     bool // Whether this evaluation sent the daily congratulation
}

// CaloriesMet reports whether the calorie goal is reached.
func (p *DailyProgress) CaloriesMet() bool { return p.CaloriesKcal >= p.CalorieGoal }

// WaterMet reports whether the water goal is reached.
func (p *DailyProgress) WaterMet() bool { return p.WaterML >= p.WaterGoal }

// MissionsMet reports whether the mission goal is reached.
func (p *DailyProgress) MissionsMet() bool { return p.MissionsDone >= p.MissionGoal }

// AllMet reports whether every goal is reached simultaneously.
func (p *DailyProgress) AllMet() bool { return p.CaloriesMet() && p.WaterMet() && p.MissionsMet() }

// GoalService records meal/water/mission logs and drives the achievement
// evaluation after every change. The evaluation is reactive, not queued.
type GoalService struct {
	userRepo           user.Repository
	metricsReader      metrics.Reader
	metricsRecorder    metrics.Recorder
	achievementService *AchievementService
	logger             *logrus.Entry
	now                func() time.Time
}

func NewGoalService(
	userRepo user.Repository,
	metricsReader metrics.Reader,
	metricsRecorder metrics.Recorder,
	achievementService *AchievementService,
	logger *logrus.Entry,
) *GoalService {
	return &GoalService{
		userRepo:           userRepo,
		metricsReader:      metricsReader,
		metricsRecorder:    metricsRecorder,
		achievementService: achievementService,
		logger:             logger,
		now:                time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *GoalService) WithClock(now func() time.Time) *GoalService {
	s.now = now
	return s
}

// LogMeal records a meal and re-evaluates the day's goals.
func (s *GoalService) LogMeal(ctx context.Context, userID string, kcal int) (*DailyProgress, error) {
	if kcal <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.metricsRecorder.AddMeal(ctx, userID, kcal, s.now()); err != nil {
		return nil, fmt.Errorf("failed to record meal for user %s: %w", userID, err)
	}
	return s.CheckUser(ctx, userID)
}

// LogWater records a water intake and re-evaluates the day's goals.
func (s *GoalService) LogWater(ctx context.Context, userID string, ml int) (*DailyProgress, error) {
	if ml <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.metricsRecorder.AddWater(ctx, userID, ml, s.now()); err != nil {
		return nil, fmt.Errorf("failed to record water for user %s: %w", userID, err)
	}
	return s.CheckUser(ctx, userID)
}

// LogMission records a completed exercise mission and re-evaluates the
// day's goals.
func (s *GoalService) LogMission(ctx context.Context, userID string) (*DailyProgress, error) {
	if err := s.metricsRecorder.AddMission(ctx, userID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to record mission for user %s: %w", userID, err)
	}
	return s.CheckUser(ctx, userID)
}

// CheckUser recomputes the goal-met flags from today's totals and runs the
// achievement evaluation. A failed evaluation is logged, not surfaced:
// the log itself succeeded, and the next change retries from current truth.
func (s *GoalService) CheckUser(ctx context.Context, userID string) (*DailyProgress, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	today := achievement.DayOf(s.now())
	totals, err := s.metricsReader.DailyTotals(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily totals for user %s on %s: %w", userID, today, err)
	}

	progress := &DailyProgress{
		Day:          today,
		CaloriesKcal: totals.CaloriesKcal,
		CalorieGoal:  u.CalorieGoalKcal,
		WaterML:      totals.WaterML,
		WaterGoal:    u.WaterGoalML,
		MissionsDone: totals.MissionsDone,
		MissionGoal:  u.MissionGoal,
	}

	notified, err := s.achievementService.Evaluate(ctx, userID,
		progress.CaloriesMet(), progress.WaterMet(), progress.MissionsMet())
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).
			Error("Achievement evaluation failed; will retry on next change")
		return progress, nil
	}
	progress.Notified = notified
	return progress, nil
}
