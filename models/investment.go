package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvestmentStatusActive    = "Active"
	InvestmentStatusCompleted = "Completed"
	InvestmentStatusCancelled = "Cancelled"
)

type Investment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AccountID     uint            `gorm:"not null;index" json:"account_id"`
	PlanName      string          `gorm:"size:100;not null" json:"plan_name"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	ReturnRate    decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"return_rate"`
	DurationDays  int             `gorm:"not null" json:"duration_days"`
	DaysProcessed int             `gorm:"not null;default:0" json:"days_processed"`
	TotalEarned   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0.00" json:"total_earned"`
	EndDate       time.Time       `gorm:"not null" json:"end_date"`
	OrderID       string          `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	Status        string          `gorm:"type:enum('Active','Completed','Cancelled');default:'Active'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}

// EligibleAt reports whether the investment may accrue interest on the given
// day. All three conditions must hold: the position is still Active, the end
// date has not passed, and fewer than DurationDays payouts have been made.
// DaysProcessed reaching DurationDays makes the position permanently
// ineligible regardless of EndDate.
func (i *Investment) EligibleAt(now time.Time) bool {
	if i.Status != InvestmentStatusActive {
		return false
	}
	if now.After(i.EndDate) {
		return false
	}
	return i.DaysProcessed < i.DurationDays
}
