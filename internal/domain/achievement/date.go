// internal/domain/achievement/date.go
package achievement

import "time"

// KST is the fixed UTC+9 zone used for every day boundary in the system.
// A fixed offset on purpose: the host's locale zone must never influence
// which calendar day a log or a notification belongs to.
var KST = time.FixedZone("KST", 9*60*60)

// DayLayout is the canonical format of DailyAchievement.Day.
const DayLayout = "2006-01-02"

// DayOf returns the KST calendar date of t as YYYY-MM-DD.
func DayOf(t time.Time) string {
	return t.In(KST).Format(DayLayout)
}
