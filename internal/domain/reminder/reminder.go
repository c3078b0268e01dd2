// internal/domain/reminder/reminder.go
package reminder

import "time"

// Kind identifies one scheduled reminder slot in the day.
type Kind string

const (
	KindMealMorning    Kind = "MEAL_MORNING"
	KindMealLunch      Kind = "MEAL_LUNCH"
	KindMealEvening    Kind = "MEAL_EVENING"
	KindWaterMidday    Kind = "WATER_MIDDAY"
	KindMissionEvening Kind = "MISSION_EVENING"
)

// Dispatch records that a reminder of a given kind went out to a user on a
// given KST day. The unique key on (user, kind, day) makes redelivery
// impossible even if the scheduler fires a window twice.
// Corresponds to the 'reminder_dispatches' table.
type Dispatch struct {
	ID     int64
	UserID string
	Kind   Kind
	Day    string // KST calendar date, YYYY-MM-DD
	SentAt time.Time
}
