package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/coldreach/warmstack/internal/utils"
)

// DNSCheckResult is the snapshot of one SPF/DKIM/DMARC/MX validation run for a
// mailbox domain. The mailbox row mirrors the latest OverallScore.
type DNSCheckResult struct {
	ID           string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	MailboxID    string         `gorm:"column:mailbox_id;type:varchar(50);index;not null" json:"mailboxId"`
	Domain       string         `gorm:"column:domain;type:varchar(255);not null" json:"domain"`
	SPFValid     bool           `gorm:"column:spf_valid;not null;default:false" json:"spfValid"`
	SPFRecord    string         `gorm:"column:spf_record;type:text" json:"spfRecord"`
	DKIMValid    bool           `gorm:"column:dkim_valid;not null;default:false" json:"dkimValid"`
	DKIMSelector string         `gorm:"column:dkim_selector;type:varchar(100)" json:"dkimSelector"`
	DMARCValid   bool           `gorm:"column:dmarc_valid;not null;default:false" json:"dmarcValid"`
	DMARCRecord  string         `gorm:"column:dmarc_record;type:text" json:"dmarcRecord"`
	DMARCPolicy  string         `gorm:"column:dmarc_policy;type:varchar(50)" json:"dmarcPolicy"`
	MXHosts      pq.StringArray `gorm:"column:mx_hosts;type:text[]" json:"mxHosts"`
	OverallScore int            `gorm:"column:overall_score;not null;default:0" json:"overallScore"`
	CheckedAt    time.Time      `gorm:"column:checked_at;type:timestamp;default:current_timestamp" json:"checkedAt"`
}

func (DNSCheckResult) TableName() string {
	return "dns_check_results"
}

func (r *DNSCheckResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateNanoIDWithPrefix("dns", 16)
	}
	return nil
}
