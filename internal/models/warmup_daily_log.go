package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/coldreach/warmstack/internal/utils"
)

// WarmupDailyLog is an append-only per-day snapshot of a mailbox, written once
// per (mailbox, day) by the end-of-day snapshot job.
type WarmupDailyLog struct {
	ID          string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	MailboxID   string    `gorm:"column:mailbox_id;type:varchar(50);index:idx_daily_log_mailbox_date,unique;not null" json:"mailboxId"`
	LogDate     time.Time `gorm:"column:log_date;type:date;index:idx_daily_log_mailbox_date,unique;not null" json:"logDate"`
	EmailsSent  int       `gorm:"column:emails_sent;not null;default:0" json:"emailsSent"`
	EmailsRecvd int       `gorm:"column:emails_received;not null;default:0" json:"emailsReceived"`
	Opens       int       `gorm:"column:opens;not null;default:0" json:"opens"`
	Replies     int       `gorm:"column:replies;not null;default:0" json:"replies"`
	Bounces     int       `gorm:"column:bounces;not null;default:0" json:"bounces"`
	HealthScore float64   `gorm:"column:health_score;not null;default:0" json:"healthScore"`
	WarmupDay   int       `gorm:"column:warmup_day;not null;default:0" json:"warmupDay"`
	Phase       int       `gorm:"column:phase;not null;default:0" json:"phase"`
	DailyLimit  int       `gorm:"column:daily_limit;not null;default:0" json:"dailyLimit"`
	BounceRate  float64   `gorm:"column:bounce_rate;not null;default:0" json:"bounceRate"`
	ReplyRate   float64   `gorm:"column:reply_rate;not null;default:0" json:"replyRate"`
	Blacklisted bool      `gorm:"column:blacklisted;not null;default:false" json:"blacklisted"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (WarmupDailyLog) TableName() string {
	return "warmup_daily_logs"
}

func (l *WarmupDailyLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = utils.GenerateNanoIDWithPrefix("wdl", 16)
	}
	return nil
}
