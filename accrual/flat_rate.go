package accrual

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/config"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/utils"
)

// FlatRatePolicy pays a single configured daily percentage of the account's
// total funded amount. Accounts that have never funded are skipped. At most
// one transaction per account per day, written as a deposit credit with no
// investment-level state change.
type FlatRatePolicy struct {
	Rate decimal.Decimal // percent per day
}

func (FlatRatePolicy) Name() string { return config.PolicyFlatRate }

func (p FlatRatePolicy) Compute(acct *models.Account, now time.Time) []Accrual {
	if !acct.TotalFunded.IsPositive() {
		return nil
	}

	interest := acct.TotalFunded.Mul(p.Rate).Div(oneHundred).Round(2)
	if !interest.IsPositive() {
		return nil
	}

	msg := "Profit harian dana investasi"
	return []Accrual{{
		Transaction: models.Transaction{
			AccountID:   acct.ID,
			Type:        models.TransactionTypeDeposit,
			Amount:      interest,
			ReferenceID: utils.FlatAccrualReferenceID(now, acct.ID),
			Status:      models.TransactionStatusSuccess,
			Message:     &msg,
		},
		BalanceDelta:  interest,
		EarningsDelta: interest,
	}}
}
