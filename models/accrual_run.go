package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AccrualRun records one completed daily interest run. The unique run_date
// index is what makes a second same-day trigger a no-op.
type AccrualRun struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	RunID         string          `gorm:"type:varchar(36);not null" json:"run_id"`
	RunDate       time.Time       `gorm:"type:date;not null;uniqueIndex" json:"run_date"`
	Policy        string          `gorm:"type:varchar(20);not null" json:"policy"`
	Processed     int             `gorm:"not null;default:0" json:"processed"`
	Errors        int             `gorm:"not null;default:0" json:"errors"`
	TotalInterest decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0.00" json:"total_interest"`
	Summary       json.RawMessage `gorm:"type:json" json:"summary,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (AccrualRun) TableName() string {
	return "accrual_runs"
}
