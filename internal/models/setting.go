package models

import "time"

// Setting is one key/value row of the runtime-tunable configuration store.
// The warmup engine only reads this table; ownership sits with the operator
// tooling that writes it.
type Setting struct {
	Key       string    `gorm:"column:key;type:varchar(100);primaryKey" json:"key"`
	Value     string    `gorm:"column:value;type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (Setting) TableName() string {
	return "settings"
}
