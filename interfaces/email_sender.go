package interfaces

import (
	"context"

	"github.com/coldreach/warmstack/internal/models"
)

type SendResult struct {
	MessageID string
}

// EmailSender is the SMTP transport capability owned by the adapter layer.
type EmailSender interface {
	Send(ctx context.Context, mailbox *models.Mailbox, to, subject, bodyHTML, bodyText string) (*SendResult, error)
	TestConnection(ctx context.Context, mailbox *models.Mailbox) error
}
