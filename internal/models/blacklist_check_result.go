package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/coldreach/warmstack/internal/utils"
)

// BlacklistCheckResult is the snapshot of one DNSBL sweep for a mailbox domain.
type BlacklistCheckResult struct {
	ID           string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	MailboxID    string         `gorm:"column:mailbox_id;type:varchar(50);index;not null" json:"mailboxId"`
	Domain       string         `gorm:"column:domain;type:varchar(255);not null" json:"domain"`
	IPAddress    string         `gorm:"column:ip_address;type:varchar(45)" json:"ipAddress"`
	ListedOn     pq.StringArray `gorm:"column:listed_on;type:text[]" json:"listedOn"`
	TotalChecked int            `gorm:"column:total_checked;not null;default:0" json:"totalChecked"`
	TotalListed  int            `gorm:"column:total_listed;not null;default:0" json:"totalListed"`
	IsClean      bool           `gorm:"column:is_clean;not null;default:true" json:"isClean"`
	CheckedAt    time.Time      `gorm:"column:checked_at;type:timestamp;default:current_timestamp" json:"checkedAt"`
}

func (BlacklistCheckResult) TableName() string {
	return "blacklist_check_results"
}

func (r *BlacklistCheckResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateNanoIDWithPrefix("blc", 16)
	}
	return nil
}
