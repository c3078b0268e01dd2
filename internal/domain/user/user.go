package user

import (
	"time"
)

// User represents a senior registered with the 영양갱 companion bot,
// together with their personal daily goals.
type User struct {
	ID              string // UUID
	TelegramID      int64
	Nickname        string
	CalorieGoalKcal int
	WaterGoalML     int
	MissionGoal     int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
