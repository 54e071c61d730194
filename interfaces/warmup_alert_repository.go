package interfaces

import (
	"context"

	"github.com/coldreach/warmstack/internal/models"
)

type WarmupAlertRepository interface {
	Create(ctx context.Context, alert *models.WarmupAlert) error
	List(ctx context.Context, unreadOnly bool, limit int) ([]*models.WarmupAlert, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}
