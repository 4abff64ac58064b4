package accrual

import (
	"fmt"
	"time"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/config"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/utils"
)

// PerPlanPolicy pays each eligible investment its own daily return:
// amount * return_rate / 100, rounded half-up to cents. One transaction per
// eligible position, and the position's counters advance with it.
type PerPlanPolicy struct{}

func (PerPlanPolicy) Name() string { return config.PolicyPerPlan }

func (PerPlanPolicy) Compute(acct *models.Account, now time.Time) []Accrual {
	var out []Accrual
	for i := range acct.Investments {
		inv := &acct.Investments[i]
		if !inv.EligibleAt(now) {
			continue
		}

		daily := inv.Amount.Mul(inv.ReturnRate).Div(oneHundred).Round(2)
		if !daily.IsPositive() {
			continue
		}

		invID := inv.ID
		msg := fmt.Sprintf("Profit investasi paket %s", inv.PlanName)
		out = append(out, Accrual{
			Transaction: models.Transaction{
				AccountID:    acct.ID,
				InvestmentID: &invID,
				Type:         models.TransactionTypeInterest,
				Amount:       daily,
				ReferenceID:  utils.AccrualReferenceID(now, acct.ID, inv.ID),
				Status:       models.TransactionStatusSuccess,
				Message:      &msg,
			},
			BalanceDelta:  daily,
			EarningsDelta: daily,
			Mutations: []InvestmentMutation{{
				InvestmentID:          inv.ID,
				ExpectedDaysProcessed: inv.DaysProcessed,
				EarnedDelta:           daily,
				Complete:              inv.DaysProcessed+1 >= inv.DurationDays,
			}},
		})
	}
	return out
}
