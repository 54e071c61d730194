package repository

import (
	"context"
	stderrors "errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/errors"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
)

type warmupProfileRepository struct {
	db *gorm.DB
}

func NewWarmupProfileRepository(db *gorm.DB) interfaces.WarmupProfileRepository {
	return &warmupProfileRepository{db: db}
}

func (r *warmupProfileRepository) Create(ctx context.Context, profile *models.WarmupProfile) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupProfileRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *warmupProfileRepository) GetByID(ctx context.Context, id string) (*models.WarmupProfile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupProfileRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var profile models.WarmupProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProfileNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &profile, nil
}

func (r *warmupProfileRepository) GetDefault(ctx context.Context) (*models.WarmupProfile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupProfileRepository.GetDefault")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var profile models.WarmupProfile
	err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&profile).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProfileNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &profile, nil
}

func (r *warmupProfileRepository) List(ctx context.Context) ([]*models.WarmupProfile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupProfileRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var profiles []*models.WarmupProfile
	if err := r.db.WithContext(ctx).Order("created_at").Find(&profiles).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return profiles, nil
}

func (r *warmupProfileRepository) Update(ctx context.Context, profile *models.WarmupProfile) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupProfileRepository.Update")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *warmupProfileRepository) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupProfileRepository.Delete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var profile models.WarmupProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrProfileNotFound
		}
		tracing.TraceErr(span, err)
		return err
	}
	if profile.IsSystem {
		return errors.ErrProfileProtected
	}

	if err := r.db.WithContext(ctx).Delete(&profile).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
