package notify

import "context"

// Notifier delivers a message to a user. Fire-and-forget: implementations
// give no delivery confirmation beyond the outcome of the send call itself.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string) error
}
