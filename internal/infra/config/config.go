package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	LogLevel        string
	Environment     string

	// Cron specs for the reminder windows, evaluated in KST.
	CronSpecMealMorning    string
	CronSpecMealLunch      string
	CronSpecMealEvening    string
	CronSpecWaterMidday    string
	CronSpecMissionEvening string

	// Default daily goals assigned to newly registered users.
	DefaultCalorieGoalKcal int
	DefaultWaterGoalML     int
	DefaultMissionGoal     int

	// A reminder is suppressed when the user logged anything within this window.
	ReminderRecencyWindow time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables, and a missing
	// .env file is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecMealMorning = envOrDefault("CRON_SPEC_MEAL_MORNING", "0 8 * * *")
	cfg.CronSpecMealLunch = envOrDefault("CRON_SPEC_MEAL_LUNCH", "0 12 * * *")
	cfg.CronSpecMealEvening = envOrDefault("CRON_SPEC_MEAL_EVENING", "0 18 * * *")
	cfg.CronSpecWaterMidday = envOrDefault("CRON_SPEC_WATER_MIDDAY", "0 15 * * *")
	cfg.CronSpecMissionEvening = envOrDefault("CRON_SPEC_MISSION_EVENING", "0 20 * * *")

	cfg.DefaultCalorieGoalKcal, err = intEnvOrDefault("DEFAULT_CALORIE_GOAL_KCAL", 1800)
	if err != nil {
		return nil, err
	}
	cfg.DefaultWaterGoalML, err = intEnvOrDefault("DEFAULT_WATER_GOAL_ML", 1500)
	if err != nil {
		return nil, err
	}
	cfg.DefaultMissionGoal, err = intEnvOrDefault("DEFAULT_MISSION_GOAL", 1)
	if err != nil {
		return nil, err
	}

	recencyStr := envOrDefault("REMINDER_RECENCY_WINDOW", "90m")
	cfg.ReminderRecencyWindow, err = time.ParseDuration(recencyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_RECENCY_WINDOW: %w", err)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnvOrDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
