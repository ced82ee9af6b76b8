package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which webhook event IDs have already been
// handled so a replayed delivery is dropped instead of applied twice.
type IdempotencyStore interface {
	// MarkProcessed records eventID for ttl. It reports true when the ID was
	// newly recorded and false when a previous delivery already claimed it.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether eventID has been recorded and not yet expired.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Release forgets a claimed eventID so the sender's retry of a failed
	// delivery is processed instead of being dropped as a duplicate.
	Release(ctx context.Context, eventID string) error

	Close() error
}
