package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeInterest   = "interest"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeRefund     = "refund"

	TransactionStatusSuccess = "Success"
	TransactionStatusPending = "Pending"
	TransactionStatusFailed  = "Failed"
)

type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AccountID    uint            `gorm:"not null;index" json:"account_id"`
	InvestmentID *uint           `gorm:"index" json:"investment_id,omitempty"`
	Type         string          `gorm:"type:varchar(50);not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	ReferenceID  string          `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference_id"`
	Status       string          `gorm:"type:enum('Success','Pending','Failed');not null;default:'Pending'" json:"status"`
	Message      *string         `gorm:"type:text" json:"message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
