package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive   = "Active"
	AccountStatusInactive = "Inactive"
	AccountStatusSuspend  = "Suspend"
)

type Account struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"size:100;not null" json:"name"`
	Number           string          `gorm:"size:20;uniqueIndex;not null" json:"number"`
	ReffCode         string          `gorm:"size:20;uniqueIndex;not null" json:"reff_code"`
	ReffBy           *uint           `gorm:"column:reff_by" json:"reff_by"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0.00" json:"available_balance"`
	TotalEarnings    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0.00" json:"total_earnings"`
	TotalFunded      decimal.Decimal `gorm:"column:total_funded;type:decimal(15,2);not null;default:0.00" json:"total_funded"`
	LastAccruedAt    *time.Time      `json:"last_accrued_at,omitempty"`
	Status           string          `gorm:"type:enum('Active','Inactive','Suspend');default:'Active'" json:"status"`
	CreatedAt        time.Time       `json:"-"`
	UpdatedAt        time.Time       `json:"-"`

	// Relations
	Investments  []Investment  `gorm:"foreignKey:AccountID" json:"investments,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}
