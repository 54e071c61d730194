package interfaces

import (
	"context"

	"github.com/coldreach/warmstack/internal/models"
)

type DNSCheckRepository interface {
	Create(ctx context.Context, result *models.DNSCheckResult) error
	GetLatest(ctx context.Context, mailboxID string) (*models.DNSCheckResult, error)
}

type BlacklistCheckRepository interface {
	Create(ctx context.Context, result *models.BlacklistCheckResult) error
	GetLatest(ctx context.Context, mailboxID string) (*models.BlacklistCheckResult, error)
}
