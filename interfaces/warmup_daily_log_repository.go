package interfaces

import (
	"context"
	"time"

	"github.com/coldreach/warmstack/internal/models"
)

type WarmupDailyLogRepository interface {
	// CreateIfAbsent writes the snapshot unless one already exists for the
	// mailbox and day. Reports whether a row was created.
	CreateIfAbsent(ctx context.Context, log *models.WarmupDailyLog) (bool, error)
	ListSince(ctx context.Context, mailboxIDs []string, since time.Time) ([]*models.WarmupDailyLog, error)
}
