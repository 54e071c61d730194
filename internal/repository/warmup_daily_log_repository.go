package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/tracing"
)

type warmupDailyLogRepository struct {
	db *gorm.DB
}

func NewWarmupDailyLogRepository(db *gorm.DB) interfaces.WarmupDailyLogRepository {
	return &warmupDailyLogRepository{db: db}
}

func (r *warmupDailyLogRepository) CreateIfAbsent(ctx context.Context, log *models.WarmupDailyLog) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupDailyLogRepository.CreateIfAbsent")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mailbox_id"}, {Name: "log_date"}},
			DoNothing: true,
		}).
		Create(log)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *warmupDailyLogRepository) ListSince(ctx context.Context, mailboxIDs []string, since time.Time) ([]*models.WarmupDailyLog, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "warmupDailyLogRepository.ListSince")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	query := r.db.WithContext(ctx).Where("log_date >= ?", since)
	if len(mailboxIDs) > 0 {
		query = query.Where("mailbox_id IN ?", mailboxIDs)
	}

	var logs []*models.WarmupDailyLog
	result := query.Order("log_date, mailbox_id").Find(&logs)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return nil, result.Error
	}
	return logs, nil
}
