package events

import "context"

// Publisher emits domain events to an external broker. Implementations must
// be safe for concurrent use; publishing is best-effort from the caller's
// point of view and never participates in the storage transaction.
type Publisher interface {
	Publish(ctx context.Context, event any) error
	Close() error
}
