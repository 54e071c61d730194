package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/internal/utils"
)

// ReportRow is one mailbox-day of warmup history, joined with the mailbox
// address for readability.
type ReportRow struct {
	Date           string  `json:"date"`
	MailboxID      string  `json:"mailboxId"`
	Email          string  `json:"email"`
	EmailsSent     int     `json:"emailsSent"`
	EmailsReceived int     `json:"emailsReceived"`
	Opens          int     `json:"opens"`
	Replies        int     `json:"replies"`
	Bounces        int     `json:"bounces"`
	HealthScore    float64 `json:"healthScore"`
	WarmupDay      int     `json:"warmupDay"`
	Phase          int     `json:"phase"`
	DailyLimit     int     `json:"dailyLimit"`
	BounceRate     float64 `json:"bounceRate"`
	ReplyRate      float64 `json:"replyRate"`
}

// Report is the JSON export envelope.
type Report struct {
	Report       []ReportRow `json:"report"`
	GeneratedAt  time.Time   `json:"generatedAt"`
	Days         int         `json:"days"`
	TotalRecords int         `json:"totalRecords"`
}

type Exporter struct {
	log          logger.Logger
	repositories *repository.Repositories
}

func NewExporter(log logger.Logger, repositories *repository.Repositories) *Exporter {
	return &Exporter{
		log:          log,
		repositories: repositories,
	}
}

// BuildReport collects the daily log rows for the last N days, optionally
// scoped to specific mailboxes.
func (e *Exporter) BuildReport(ctx context.Context, mailboxIDs []string, days int) (*Report, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ReportExporter.BuildReport")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("days", days, "mailboxes", len(mailboxIDs))

	if days <= 0 {
		days = 30
	}
	since := utils.StartOfDay(utils.Now().AddDate(0, 0, -days))

	logs, err := e.repositories.WarmupDailyLogRepository.ListSince(ctx, mailboxIDs, since)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	emailByID := map[string]string{}
	rows := make([]ReportRow, 0, len(logs))
	for _, log := range logs {
		email, ok := emailByID[log.MailboxID]
		if !ok {
			if mailbox, err := e.repositories.MailboxRepository.GetMailbox(ctx, log.MailboxID); err == nil {
				email = mailbox.EmailAddress
			}
			emailByID[log.MailboxID] = email
		}
		rows = append(rows, ReportRow{
			Date:           log.LogDate.Format("2006-01-02"),
			MailboxID:      log.MailboxID,
			Email:          email,
			EmailsSent:     log.EmailsSent,
			EmailsReceived: log.EmailsRecvd,
			Opens:          log.Opens,
			Replies:        log.Replies,
			Bounces:        log.Bounces,
			HealthScore:    log.HealthScore,
			WarmupDay:      log.WarmupDay,
			Phase:          log.Phase,
			DailyLimit:     log.DailyLimit,
			BounceRate:     log.BounceRate,
			ReplyRate:      log.ReplyRate,
		})
	}

	return &Report{
		Report:       rows,
		GeneratedAt:  utils.Now(),
		Days:         days,
		TotalRecords: len(rows),
	}, nil
}

func (e *Exporter) ExportJSON(ctx context.Context, mailboxIDs []string, days int) ([]byte, error) {
	report, err := e.BuildReport(ctx, mailboxIDs, days)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(report, "", "  ")
}

var csvHeader = []string{
	"date", "mailbox_id", "email", "emails_sent", "emails_received", "opens",
	"replies", "bounces", "health_score", "warmup_day", "phase", "daily_limit",
	"bounce_rate", "reply_rate",
}

func (e *Exporter) ExportCSV(ctx context.Context, mailboxIDs []string, days int) ([]byte, error) {
	report, err := e.BuildReport(ctx, mailboxIDs, days)
	if err != nil {
		return nil, err
	}

	buffer := bytes.NewBuffer(nil)
	writer := csv.NewWriter(buffer)
	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range report.Report {
		record := []string{
			row.Date,
			row.MailboxID,
			row.Email,
			strconv.Itoa(row.EmailsSent),
			strconv.Itoa(row.EmailsReceived),
			strconv.Itoa(row.Opens),
			strconv.Itoa(row.Replies),
			strconv.Itoa(row.Bounces),
			strconv.FormatFloat(row.HealthScore, 'f', 1, 64),
			strconv.Itoa(row.WarmupDay),
			strconv.Itoa(row.Phase),
			strconv.Itoa(row.DailyLimit),
			strconv.FormatFloat(row.BounceRate, 'f', 2, 64),
			strconv.FormatFloat(row.ReplyRate, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
