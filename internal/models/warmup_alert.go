package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/utils"
)

// WarmupAlert is a persisted operator notification. MailboxID is nil for
// system-wide alerts.
type WarmupAlert struct {
	ID        string             `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	MailboxID *string            `gorm:"column:mailbox_id;type:varchar(50);index" json:"mailboxId"`
	AlertType enum.AlertType     `gorm:"column:alert_type;type:varchar(30);not null" json:"alertType"`
	Severity  enum.AlertSeverity `gorm:"column:severity;type:varchar(10);not null;default:info" json:"severity"`
	Title     string             `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Message   string             `gorm:"column:message;type:text" json:"message"`
	IsRead    bool               `gorm:"column:is_read;index;not null;default:false" json:"isRead"`
	CreatedAt time.Time          `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (WarmupAlert) TableName() string {
	return "warmup_alerts"
}

func (a *WarmupAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = utils.GenerateNanoIDWithPrefix("alr", 16)
	}
	return nil
}
