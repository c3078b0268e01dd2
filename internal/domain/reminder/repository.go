// internal/domain/reminder/repository.go
package reminder

import (
	"context"
	"time"
)

// Repository persists reminder dispatch records.
type Repository interface {
	// Claim inserts the (userID, kind, day) dispatch row if it does not
	// exist yet. Returns true iff this caller created the row and may
	// therefore send the reminder.
	Claim(ctx context.Context, userID string, kind Kind, day string, at time.Time) (bool, error)
	ListByUserAndDay(ctx context.Context, userID, day string) ([]*Dispatch, error)
}
