package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/utils"
)

// WarmupEmail is one synthetic message exchanged between peer mailboxes.
// ReceiverMailboxID is nil when the recipient is outside the peer pool.
type WarmupEmail struct {
	ID                string                 `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	SenderMailboxID   string                 `gorm:"column:sender_mailbox_id;type:varchar(50);index;not null" json:"senderMailboxId"`
	ReceiverMailboxID *string                `gorm:"column:receiver_mailbox_id;type:varchar(50);index" json:"receiverMailboxId"`
	Subject           string                 `gorm:"column:subject;type:varchar(500)" json:"subject"`
	BodyHTML          string                 `gorm:"column:body_html;type:text" json:"bodyHtml"`
	BodyText          string                 `gorm:"column:body_text;type:text" json:"bodyText"`
	MessageID         string                 `gorm:"column:message_id;type:varchar(255)" json:"messageId"`
	Status            enum.WarmupEmailStatus `gorm:"column:status;type:varchar(20);index;not null;default:sent" json:"status"`
	TrackingID        string                 `gorm:"column:tracking_id;type:varchar(64);uniqueIndex;not null" json:"trackingId"`
	AIGenerated       bool                   `gorm:"column:ai_generated;not null;default:false" json:"aiGenerated"`
	AIProvider        string                 `gorm:"column:ai_provider;type:varchar(50)" json:"aiProvider"`
	SentAt            time.Time              `gorm:"column:sent_at;type:timestamp;index;default:current_timestamp" json:"sentAt"`
	OpenedAt          *time.Time             `gorm:"column:opened_at;type:timestamp" json:"openedAt"`
	RepliedAt         *time.Time             `gorm:"column:replied_at;type:timestamp" json:"repliedAt"`
	// Earliest moment the auto-reply engine may answer this email. Computed at
	// send time from the configured delay range so there is a single
	// authoritative reply-timing mechanism.
	ReplyEligibleAt *time.Time `gorm:"column:reply_eligible_at;type:timestamp;index" json:"replyEligibleAt"`
}

func (WarmupEmail) TableName() string {
	return "warmup_emails"
}

func (e *WarmupEmail) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("wml", 16)
	}
	if e.TrackingID == "" {
		e.TrackingID = uuid.New().String()
	}
	return nil
}
