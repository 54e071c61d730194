package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
)

type warmupAlertRepository struct {
	db *gorm.DB
}

func NewWarmupAlertRepository(db *gorm.DB) interfaces.WarmupAlertRepository {
	return &warmupAlertRepository{db: db}
}

func (r *warmupAlertRepository) Create(ctx context.Context, alert *models.WarmupAlert) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupAlertRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	err := r.db.WithContext(ctx).Create(alert).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *warmupAlertRepository) List(ctx context.Context, unreadOnly bool, limit int) ([]*models.WarmupAlert, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupAlertRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	query := r.db.WithContext(ctx).Model(&models.WarmupAlert{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var alerts []*models.WarmupAlert
	result := query.Order("created_at DESC").Find(&alerts)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return nil, result.Error
	}
	return alerts, nil
}

func (r *warmupAlertRepository) MarkRead(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupAlertRepository.MarkRead")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	return r.db.WithContext(ctx).Model(&models.WarmupAlert{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *warmupAlertRepository) MarkAllRead(ctx context.Context) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupAlertRepository.MarkAllRead")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).Model(&models.WarmupAlert{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *warmupAlertRepository) CountUnread(ctx context.Context) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupAlertRepository.CountUnread")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.WarmupAlert{}).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}
	return count, nil
}
