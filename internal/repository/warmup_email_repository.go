package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/errors"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
)

type warmupEmailRepository struct {
	db *gorm.DB
}

func NewWarmupEmailRepository(db *gorm.DB) interfaces.WarmupEmailRepository {
	return &warmupEmailRepository{db: db}
}

func (r *warmupEmailRepository) Create(ctx context.Context, email *models.WarmupEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupEmailRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	err := r.db.WithContext(ctx).Create(email).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *warmupEmailRepository) GetByID(ctx context.Context, id string) (*models.WarmupEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupEmailRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var email models.WarmupEmail
	err := r.db.WithContext(ctx).First(&email, "id = ?", id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrWarmupEmailNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

func (r *warmupEmailRepository) GetByTrackingID(ctx context.Context, trackingID string) (*models.WarmupEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupEmailRepository.GetByTrackingID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var email models.WarmupEmail
	err := r.db.WithContext(ctx).First(&email, "tracking_id = ?", trackingID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrWarmupEmailNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

func (r *warmupEmailRepository) List(ctx context.Context, filter interfaces.WarmupEmailFilter) ([]*models.WarmupEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupEmailRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	query := r.db.WithContext(ctx).Model(&models.WarmupEmail{})
	if filter.SenderMailboxID != "" {
		query = query.Where("sender_mailbox_id = ?", filter.SenderMailboxID)
	}
	if filter.ReceiverMailboxID != "" {
		query = query.Where("receiver_mailbox_id = ?", filter.ReceiverMailboxID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var emails []*models.WarmupEmail
	result := query.Order("sent_at DESC").Find(&emails)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return nil, result.Error
	}
	return emails, nil
}

func (r *warmupEmailRepository) GetReplyCandidates(ctx context.Context, now time.Time, staleBefore time.Time) ([]*models.WarmupEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupEmailRepository.GetReplyCandidates")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var emails []*models.WarmupEmail
	result := r.db.WithContext(ctx).
		Where("status = ?", enum.WarmupEmailStatusSent).
		Where("replied_at IS NULL").
		Where("receiver_mailbox_id IS NOT NULL").
		Where("reply_eligible_at IS NOT NULL AND reply_eligible_at <= ?", now).
		Where("sent_at >= ?", staleBefore).
		Find(&emails)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return nil, result.Error
	}
	return emails, nil
}

func (r *warmupEmailRepository) MarkReplied(ctx context.Context, id string, at time.Time) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupEmailRepository.MarkReplied")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	// replied_at is written at most once, guarded inside the update itself
	result := r.db.WithContext(ctx).Model(&models.WarmupEmail{}).
		Where("id = ? AND replied_at IS NULL", id).
		Updates(map[string]interface{}{
			"replied_at": at,
			"status":     enum.WarmupEmailStatusReplied,
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrAlreadyReplied
	}
	return nil
}

func (r *warmupEmailRepository) MarkOpened(ctx context.Context, id string, at time.Time) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupEmailRepository.MarkOpened")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).Model(&models.WarmupEmail{}).
		Where("id = ? AND opened_at IS NULL", id).
		Updates(map[string]interface{}{
			"opened_at": at,
			"status": gorm.Expr(
				"CASE WHEN status = ? THEN ? ELSE status END",
				enum.WarmupEmailStatusSent, enum.WarmupEmailStatusOpened),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *warmupEmailRepository) CountSentSince(ctx context.Context, mailboxID string, since time.Time) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupEmailRepository.CountSentSince")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.WarmupEmail{}).
		Where("sender_mailbox_id = ? AND sent_at >= ?", mailboxID, since).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}
	return count, nil
}
