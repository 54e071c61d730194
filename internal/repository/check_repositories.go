package repository

import (
	"context"
	stderrors "errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
)

type dnsCheckRepository struct {
	db *gorm.DB
}

func NewDNSCheckRepository(db *gorm.DB) interfaces.DNSCheckRepository {
	return &dnsCheckRepository{db: db}
}

func (r *dnsCheckRepository) Create(ctx context.Context, result *models.DNSCheckResult) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "dnsCheckRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *dnsCheckRepository) GetLatest(ctx context.Context, mailboxID string) (*models.DNSCheckResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "dnsCheckRepository.GetLatest")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var result models.DNSCheckResult
	err := r.db.WithContext(ctx).
		Where("mailbox_id = ?", mailboxID).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &result, nil
}

type blacklistCheckRepository struct {
	db *gorm.DB
}

func NewBlacklistCheckRepository(db *gorm.DB) interfaces.BlacklistCheckRepository {
	return &blacklistCheckRepository{db: db}
}

func (r *blacklistCheckRepository) Create(ctx context.Context, result *models.BlacklistCheckResult) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "blacklistCheckRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *blacklistCheckRepository) GetLatest(ctx context.Context, mailboxID string) (*models.BlacklistCheckResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "blacklistCheckRepository.GetLatest")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var result models.BlacklistCheckResult
	err := r.db.WithContext(ctx).
		Where("mailbox_id = ?", mailboxID).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &result, nil
}
