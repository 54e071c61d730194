package interfaces

import (
	"context"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/models"
)

// EventPublisher pushes warmup lifecycle events onto the message bus for
// downstream consumers. Implementations must be safe to call when the broker
// is unavailable: failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishStatusChange(ctx context.Context, mailboxID string, from, to enum.WarmupStatus)
	PublishAlert(ctx context.Context, alert *models.WarmupAlert)
	Close() error
}
