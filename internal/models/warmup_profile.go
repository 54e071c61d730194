package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/coldreach/warmstack/internal/utils"
)

// WarmupProfile is a named 4-phase ramp template. Applying a profile copies
// its phase parameters onto the mailbox; later edits do not propagate unless
// the profile is reapplied.
type WarmupProfile struct {
	ID          string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Name        string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
	IsSystem    bool   `gorm:"column:is_system;not null;default:false" json:"isSystem"`
	IsDefault   bool   `gorm:"column:is_default;not null;default:false" json:"isDefault"`

	Phase1Days      int `gorm:"column:phase_1_days;not null" json:"phase1Days"`
	Phase1MinEmails int `gorm:"column:phase_1_min_emails;not null" json:"phase1MinEmails"`
	Phase1MaxEmails int `gorm:"column:phase_1_max_emails;not null" json:"phase1MaxEmails"`
	Phase2Days      int `gorm:"column:phase_2_days;not null" json:"phase2Days"`
	Phase2MinEmails int `gorm:"column:phase_2_min_emails;not null" json:"phase2MinEmails"`
	Phase2MaxEmails int `gorm:"column:phase_2_max_emails;not null" json:"phase2MaxEmails"`
	Phase3Days      int `gorm:"column:phase_3_days;not null" json:"phase3Days"`
	Phase3MinEmails int `gorm:"column:phase_3_min_emails;not null" json:"phase3MinEmails"`
	Phase3MaxEmails int `gorm:"column:phase_3_max_emails;not null" json:"phase3MaxEmails"`
	Phase4Days      int `gorm:"column:phase_4_days;not null" json:"phase4Days"`
	Phase4MinEmails int `gorm:"column:phase_4_min_emails;not null" json:"phase4MinEmails"`
	Phase4MaxEmails int `gorm:"column:phase_4_max_emails;not null" json:"phase4MaxEmails"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (WarmupProfile) TableName() string {
	return "warmup_profiles"
}

func (p *WarmupProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = utils.GenerateNanoIDWithPrefix("wpr", 16)
	}
	return nil
}

// PhaseDays returns the configured day count for a phase (1-4)
func (p *WarmupProfile) PhaseDays(phase int) int {
	switch phase {
	case 1:
		return p.Phase1Days
	case 2:
		return p.Phase2Days
	case 3:
		return p.Phase3Days
	default:
		return p.Phase4Days
	}
}

// PhaseRange returns the min/max daily email range for a phase (1-4)
func (p *WarmupProfile) PhaseRange(phase int) (int, int) {
	switch phase {
	case 1:
		return p.Phase1MinEmails, p.Phase1MaxEmails
	case 2:
		return p.Phase2MinEmails, p.Phase2MaxEmails
	case 3:
		return p.Phase3MinEmails, p.Phase3MaxEmails
	default:
		return p.Phase4MinEmails, p.Phase4MaxEmails
	}
}

// TotalDays returns the full ramp length across all four phases
func (p *WarmupProfile) TotalDays() int {
	return p.Phase1Days + p.Phase2Days + p.Phase3Days + p.Phase4Days
}
