// internal/domain/achievement/repository.go
package achievement

import (
	"context"
	"time"
)

// Repository defines persistence for DailyAchievement records, keyed by
// (userID, day).
type Repository interface {
	Get(ctx context.Context, userID, day string) (*DailyAchievement, error)
	// Create initializes the record for (userID, day) with achieved=false
	// and no notified_at. Returns ErrDuplicateAchievement from the infra
	// layer if the key already exists; callers re-Get instead of failing.
	Create(ctx context.Context, userID, day string) (*DailyAchievement, error)
	// SetAchieved updates only the achieved flag and updated_at. It must
	// leave a previously set notified_at untouched.
	SetAchieved(ctx context.Context, userID, day string, achieved bool) error
	// ClaimNotification marks the record achieved and stamps notified_at,
	// but only while notified_at is still unset. Exactly one of any number
	// of racing callers gets true; everyone else gets false.
	ClaimNotification(ctx context.Context, userID, day string, at time.Time) (bool, error)
}
