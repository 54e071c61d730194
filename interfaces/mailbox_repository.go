package interfaces

import (
	"context"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/models"
)

type MailboxRepository interface {
	GetMailboxes(ctx context.Context) ([]*models.Mailbox, error)
	GetMailbox(ctx context.Context, id string) (*models.Mailbox, error)
	GetMailboxByEmailAddress(ctx context.Context, emailAddress string) (*models.Mailbox, error)
	GetMailboxesByStatus(ctx context.Context, statuses ...enum.WarmupStatus) ([]*models.Mailbox, error)
	GetActiveMailboxes(ctx context.Context) ([]*models.Mailbox, error)
	SaveMailbox(ctx context.Context, mailbox *models.Mailbox) error
	DeactivateMailbox(ctx context.Context, id string) error

	// IncrementSendCounters bumps emails_sent_today, total_emails_sent and
	// warmup_emails_sent in one guarded update. Returns ErrQuotaExceeded when
	// the daily limit is already reached.
	IncrementSendCounters(ctx context.Context, id string) error
	IncrementReceivedCounter(ctx context.Context, id string) error
	IncrementReplyCounters(ctx context.Context, id string) error
	IncrementOpenCounter(ctx context.Context, id string) error
	ResetDailyCounters(ctx context.Context) (int64, error)
}
