// internal/domain/achievement/achievement.go
package achievement

import (
	"database/sql"
	"time"
)

// DailyAchievement tracks, for one user and one KST calendar day, whether
// all daily goals (calories, water, missions) are currently met and whether
// the congratulation for that day has already been sent.
// Corresponds to the 'daily_achievements' table.
type DailyAchievement struct {
	ID         int64
	UserID     string       // Foreign key to users.id (UUID)
	Day        string       // KST calendar date, YYYY-MM-DD
	Achieved   bool         // As of the last evaluation, all goals met simultaneously
	NotifiedAt sql.NullTime // Set exactly once, when the congratulation was sent
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
