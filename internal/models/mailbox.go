package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/utils"
)

type Mailbox struct {
	ID           string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	EmailAddress string `gorm:"column:email_address;type:varchar(255);uniqueIndex;not null" json:"emailAddress"`
	DisplayName  string `gorm:"column:display_name;type:varchar(255)" json:"displayName"`
	// SMTP Configuration
	SmtpServer   string `gorm:"column:smtp_server;type:varchar(255);not null" json:"smtpServer"`
	SmtpPort     int    `gorm:"column:smtp_port;not null;default:587" json:"smtpPort"`
	SmtpUsername string `gorm:"column:smtp_username;type:varchar(255);not null" json:"smtpUsername"`
	SmtpPassword string `gorm:"column:smtp_password;type:varchar(255);not null" json:"-"`
	SmtpTLS      bool   `gorm:"column:smtp_tls;not null;default:true" json:"smtpTls"`
	// Warmup state
	WarmupStatus        enum.WarmupStatus `gorm:"column:warmup_status;type:varchar(30);index;not null;default:inactive" json:"warmupStatus"`
	IsActive            bool              `gorm:"column:is_active;not null;default:true" json:"isActive"`
	WarmupStartedAt     *time.Time        `gorm:"column:warmup_started_at;type:timestamp" json:"warmupStartedAt"`
	WarmupCompletedAt   *time.Time        `gorm:"column:warmup_completed_at;type:timestamp" json:"warmupCompletedAt"`
	WarmupDaysCompleted int               `gorm:"column:warmup_days_completed;not null;default:0" json:"warmupDaysCompleted"`
	CurrentPhase        int               `gorm:"column:current_phase;not null;default:0" json:"currentPhase"`
	WarmupProfileID     *string           `gorm:"column:warmup_profile_id;type:varchar(50)" json:"warmupProfileId"`
	PausedAt            *time.Time        `gorm:"column:paused_at;type:timestamp" json:"pausedAt"`
	RecoveryStartedAt   *time.Time        `gorm:"column:recovery_started_at;type:timestamp" json:"recoveryStartedAt"`
	RecoveryDays        int               `gorm:"column:recovery_days;not null;default:0" json:"recoveryDays"`
	// Quotas and counters
	DailySendLimit  int `gorm:"column:daily_send_limit;not null;default:2" json:"dailySendLimit"`
	EmailsSentToday int `gorm:"column:emails_sent_today;not null;default:0" json:"emailsSentToday"`
	TotalEmailsSent int `gorm:"column:total_emails_sent;not null;default:0" json:"totalEmailsSent"`
	BounceCount     int `gorm:"column:bounce_count;not null;default:0" json:"bounceCount"`
	ReplyCount      int `gorm:"column:reply_count;not null;default:0" json:"replyCount"`
	ComplaintCount  int `gorm:"column:complaint_count;not null;default:0" json:"complaintCount"`
	// Warmup traffic counters
	WarmupEmailsSent     int `gorm:"column:warmup_emails_sent;not null;default:0" json:"warmupEmailsSent"`
	WarmupEmailsReceived int `gorm:"column:warmup_emails_received;not null;default:0" json:"warmupEmailsReceived"`
	WarmupOpens          int `gorm:"column:warmup_opens;not null;default:0" json:"warmupOpens"`
	WarmupReplies        int `gorm:"column:warmup_replies;not null;default:0" json:"warmupReplies"`
	// Deliverability checks
	DNSScore             int        `gorm:"column:dns_score;not null;default:0" json:"dnsScore"`
	IsBlacklisted        bool       `gorm:"column:is_blacklisted;not null;default:false" json:"isBlacklisted"`
	LastDNSCheckAt       *time.Time `gorm:"column:last_dns_check_at;type:timestamp" json:"lastDnsCheckAt"`
	LastBlacklistCheckAt *time.Time `gorm:"column:last_blacklist_check_at;type:timestamp" json:"lastBlacklistCheckAt"`
	// Connection test
	ConnectionStatus     enum.ConnectionStatus `gorm:"column:connection_status;type:varchar(20);not null;default:untested" json:"connectionStatus"`
	ConnectionError      string                `gorm:"column:connection_error;type:text" json:"connectionError"`
	LastConnectionTestAt *time.Time            `gorm:"column:last_connection_test_at;type:timestamp" json:"lastConnectionTestAt"`
	// Standard timestamps
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Mailbox) TableName() string {
	return "mailboxes"
}

func (m *Mailbox) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("mbox", 16)
	}
	return nil
}

// Domain returns the sending domain of the mailbox address
func (m *Mailbox) Domain() string {
	return utils.ExtractDomainFromEmail(m.EmailAddress)
}

// SenderName returns the display name, falling back to the address local part
func (m *Mailbox) SenderName() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return utils.LocalPartFromEmail(m.EmailAddress)
}

// CanSend reports whether the outreach pipeline may pick this mailbox as a sender
func (m *Mailbox) CanSend() bool {
	return m.IsActive &&
		(m.WarmupStatus == enum.WarmupStatusColdReady || m.WarmupStatus == enum.WarmupStatusActive) &&
		m.EmailsSentToday < m.DailySendLimit
}

// RemainingDailyQuota returns how many more emails may be sent today
func (m *Mailbox) RemainingDailyQuota() int {
	remaining := m.DailySendLimit - m.EmailsSentToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsWarmupEligible reports whether the peer dispatcher may use this mailbox
func (m *Mailbox) IsWarmupEligible() bool {
	return m.IsActive &&
		m.ConnectionStatus == enum.ConnectionStatusSuccessful &&
		(m.WarmupStatus == enum.WarmupStatusWarmingUp || m.WarmupStatus == enum.WarmupStatusRecovering)
}
