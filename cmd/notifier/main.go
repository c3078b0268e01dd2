package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutrition_goal_bot/internal/app"
	"nutrition_goal_bot/internal/infra/config"
	idb "nutrition_goal_bot/internal/infra/database"
	"nutrition_goal_bot/internal/infra/logger"
	"nutrition_goal_bot/internal/infra/scheduler"
	"nutrition_goal_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("영양갱 goal notifier starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Configuration loaded")

	// Database and repositories
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established")

	userRepo := idb.NewPostgresUserRepository(db)
	achievementRepo := idb.NewPostgresAchievementRepository(db)
	metricsRepo := idb.NewPostgresMetricsRepository(db)
	reminderRepo := idb.NewPostgresReminderRepository(db)

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}

	// Services
	botClient := telegram.NewTelebotAdapter(bot)
	notifier := telegram.NewNotifier(botClient, userRepo, log.WithField("component", "notifier"))

	achievementService := app.NewAchievementService(achievementRepo, notifier, log.WithField("component", "achievement_service"))
	goalService := app.NewGoalService(userRepo, metricsRepo, metricsRepo, achievementService, log.WithField("component", "goal_service"))
	reminderService := app.NewReminderService(userRepo, reminderRepo, metricsRepo, notifier,
		log.WithField("component", "reminder_service"), cfg.ReminderRecencyWindow)
	adminService := app.NewAdminService(userRepo, cfg.AdminTelegramID, app.DefaultGoals{
		CalorieKcal: cfg.DefaultCalorieGoalKcal,
		WaterML:     cfg.DefaultWaterGoalML,
		Missions:    cfg.DefaultMissionGoal,
	})

	// Scheduler
	reminderScheduler := scheduler.NewReminderScheduler(
		reminderService,
		log.WithField("component", "scheduler"),
		cfg.CronSpecMealMorning,
		cfg.CronSpecMealLunch,
		cfg.CronSpecMealEvening,
		cfg.CronSpecWaterMidday,
		cfg.CronSpecMissionEvening,
	)
	if err := reminderScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Could not start reminder scheduler")
	}

	// Handlers
	ctx := context.Background()
	telegram.RegisterBotCommands(ctx, bot, cfg, userRepo, goalService, log.WithField("component", "bot"))
	telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, log.WithField("component", "bot"))
	telegram.RegisterQuickLogHandlers(ctx, bot, goalService, userRepo)
	log.Info("Telegram handlers registered")

	log.Info("Application setup complete. Bot and scheduler are starting...")
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	reminderScheduler.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully.")
}
