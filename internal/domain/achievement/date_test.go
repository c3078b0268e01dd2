package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayOf(t *testing.T) {
	t.Run("KSTBoundary", func(t *testing.T) {
		// 14:59 UTC is 23:59 in KST, still the same calendar day.
		beforeMidnight := time.Date(2026, 3, 1, 14, 59, 59, 0, time.UTC)
		assert.Equal(t, "2026-03-01", DayOf(beforeMidnight))

		// One minute later it is 00:00 KST on the next day.
		afterMidnight := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
		assert.Equal(t, "2026-03-02", DayOf(afterMidnight))
	})

	t.Run("IndependentOfSourceZone", func(t *testing.T) {
		// The same instant expressed in different zones maps to one KST day.
		instant := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
		pacific := time.FixedZone("UTC-8", -8*60*60)
		assert.Equal(t, DayOf(instant), DayOf(instant.In(pacific)))
	})

	t.Run("YearBoundary", func(t *testing.T) {
		// 15:00 UTC on Dec 31 is already New Year in KST.
		newYearEve := time.Date(2025, 12, 31, 15, 0, 0, 0, time.UTC)
		assert.Equal(t, "2026-01-01", DayOf(newYearEve))
	})
}
