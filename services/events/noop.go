package events

import (
	"context"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/models"
)

// noopPublisher stands in when no broker is configured. Events are logged and
// dropped so the warmup pipeline keeps running without RabbitMQ.
type noopPublisher struct {
	logger logger.Logger
}

func NewNoopPublisher(logger logger.Logger) interfaces.EventPublisher {
	return &noopPublisher{logger: logger}
}

func (n *noopPublisher) PublishStatusChange(ctx context.Context, mailboxID string, from, to enum.WarmupStatus) {
	n.logger.Infof("event bus disabled, dropping status change for mailbox %s: %s -> %s", mailboxID, from, to)
}

func (n *noopPublisher) PublishAlert(ctx context.Context, alert *models.WarmupAlert) {
	n.logger.Infof("event bus disabled, dropping alert %s (%s)", alert.Title, alert.Severity)
}

func (n *noopPublisher) Close() error { return nil }
