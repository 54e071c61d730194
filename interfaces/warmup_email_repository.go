package interfaces

import (
	"context"
	"time"

	"github.com/coldreach/warmstack/internal/models"
)

type WarmupEmailFilter struct {
	SenderMailboxID   string
	ReceiverMailboxID string
	Limit             int
	Offset            int
}

type WarmupEmailRepository interface {
	Create(ctx context.Context, email *models.WarmupEmail) error
	GetByID(ctx context.Context, id string) (*models.WarmupEmail, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*models.WarmupEmail, error)
	List(ctx context.Context, filter WarmupEmailFilter) ([]*models.WarmupEmail, error)

	// GetReplyCandidates returns SENT, unreplied peer emails whose
	// reply_eligible_at has passed and whose sent_at is no older than staleBefore.
	GetReplyCandidates(ctx context.Context, now time.Time, staleBefore time.Time) ([]*models.WarmupEmail, error)

	// MarkReplied sets replied_at and status=replied only when replied_at is
	// still null. Returns ErrAlreadyReplied otherwise.
	MarkReplied(ctx context.Context, id string, at time.Time) error

	// MarkOpened records the first open only; later opens are no-ops.
	MarkOpened(ctx context.Context, id string, at time.Time) (bool, error)

	CountSentSince(ctx context.Context, mailboxID string, since time.Time) (int64, error)
}
