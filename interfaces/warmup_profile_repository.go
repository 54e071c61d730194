package interfaces

import (
	"context"

	"github.com/coldreach/warmstack/internal/models"
)

type WarmupProfileRepository interface {
	Create(ctx context.Context, profile *models.WarmupProfile) error
	GetByID(ctx context.Context, id string) (*models.WarmupProfile, error)
	GetDefault(ctx context.Context) (*models.WarmupProfile, error)
	List(ctx context.Context) ([]*models.WarmupProfile, error)
	Update(ctx context.Context, profile *models.WarmupProfile) error
	Delete(ctx context.Context, id string) error
}
