package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusFailed  LogStatus = "failed"
	LogStatusSkipped LogStatus = "skipped"
)

// ScheduleLogEntry is one immutable audit record of a scheduler decision for
// one contract in one run. Entries are append-only.
type ScheduleLogEntry struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID    string       `gorm:"type:text;not null;index" json:"store_id"`
	ContractID snowflake.ID `gorm:"not null;index" json:"contract_id"`
	Status     LogStatus    `gorm:"type:text;not null" json:"status"`
	Message    *string      `gorm:"type:text" json:"message,omitempty"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
}

func (ScheduleLogEntry) TableName() string { return "schedule_log_entries" }
