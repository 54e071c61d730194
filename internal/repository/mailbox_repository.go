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

type mailboxRepository struct {
	db *gorm.DB
}

func NewMailboxRepository(db *gorm.DB) interfaces.MailboxRepository {
	return &mailboxRepository{db: db}
}

func (r *mailboxRepository) GetMailboxes(ctx context.Context) ([]*models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.GetMailboxes")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var mailboxes []*models.Mailbox
	result := r.db.WithContext(ctx).Find(&mailboxes)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return nil, result.Error
	}
	return mailboxes, nil
}

func (r *mailboxRepository) GetMailbox(ctx context.Context, id string) (*models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.GetMailbox")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMailbox(span, id)

	var mailbox models.Mailbox
	err := r.db.WithContext(ctx).First(&mailbox, "id = ?", id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrMailboxNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &mailbox, nil
}

func (r *mailboxRepository) GetMailboxByEmailAddress(ctx context.Context, emailAddress string) (*models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.GetMailboxByEmailAddress")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var mailbox models.Mailbox
	err := r.db.WithContext(ctx).First(&mailbox, "email_address = ?", emailAddress).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrMailboxNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &mailbox, nil
}

func (r *mailboxRepository) GetMailboxesByStatus(ctx context.Context, statuses ...enum.WarmupStatus) ([]*models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.GetMailboxesByStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var mailboxes []*models.Mailbox
	result := r.db.WithContext(ctx).Where("warmup_status IN ?", statuses).Find(&mailboxes)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return nil, result.Error
	}
	return mailboxes, nil
}

func (r *mailboxRepository) GetActiveMailboxes(ctx context.Context) ([]*models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.GetActiveMailboxes")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var mailboxes []*models.Mailbox
	result := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&mailboxes)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return nil, result.Error
	}
	return mailboxes, nil
}

func (r *mailboxRepository) SaveMailbox(ctx context.Context, mailbox *models.Mailbox) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.SaveMailbox")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMailbox(span, mailbox.ID)

	err := r.db.WithContext(ctx).Save(mailbox).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *mailboxRepository) DeactivateMailbox(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.DeactivateMailbox")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMailbox(span, id)

	// Mailboxes referenced by warmup history are never physically deleted
	return r.db.WithContext(ctx).Model(&models.Mailbox{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *mailboxRepository) IncrementSendCounters(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.IncrementSendCounters")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMailbox(span, id)

	// The quota guard lives inside the WHERE clause so concurrent jobs can
	// never push emails_sent_today past daily_send_limit.
	result := r.db.WithContext(ctx).Model(&models.Mailbox{}).
		Where("id = ? AND emails_sent_today < daily_send_limit", id).
		Updates(map[string]interface{}{
			"emails_sent_today":  gorm.Expr("emails_sent_today + 1"),
			"total_emails_sent":  gorm.Expr("total_emails_sent + 1"),
			"warmup_emails_sent": gorm.Expr("warmup_emails_sent + 1"),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrQuotaExceeded
	}
	return nil
}

func (r *mailboxRepository) IncrementReceivedCounter(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.IncrementReceivedCounter")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMailbox(span, id)

	return r.db.WithContext(ctx).Model(&models.Mailbox{}).
		Where("id = ?", id).
		Update("warmup_emails_received", gorm.Expr("warmup_emails_received + 1")).Error
}

func (r *mailboxRepository) IncrementReplyCounters(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.IncrementReplyCounters")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMailbox(span, id)

	return r.db.WithContext(ctx).Model(&models.Mailbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reply_count":    gorm.Expr("reply_count + 1"),
			"warmup_replies": gorm.Expr("warmup_replies + 1"),
		}).Error
}

func (r *mailboxRepository) IncrementOpenCounter(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.IncrementOpenCounter")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagMailbox(span, id)

	return r.db.WithContext(ctx).Model(&models.Mailbox{}).
		Where("id = ?", id).
		Update("warmup_opens", gorm.Expr("warmup_opens + 1")).Error
}

func (r *mailboxRepository) ResetDailyCounters(ctx context.Context) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxRepository.ResetDailyCounters")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).Model(&models.Mailbox{}).
		Where("emails_sent_today > 0").
		Updates(map[string]interface{}{
			"emails_sent_today": 0,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
