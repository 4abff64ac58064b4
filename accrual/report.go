package accrual

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
)

// AccountResult is one account's outcome within a run.
type AccountResult struct {
	AccountID uint             `json:"account_id"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Error     string           `json:"error,omitempty"`
	Success   bool             `json:"success"`
}

// RunReport is the aggregate outcome of one batch invocation.
type RunReport struct {
	RunID         string          `json:"run_id"`
	Date          time.Time       `json:"date"`
	Policy        string          `json:"policy"`
	Processed     int             `json:"processed"`
	Errors        int             `json:"errors"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	Details       []AccountResult `json:"details"`
}

func (r *RunReport) add(res AccountResult) {
	r.Details = append(r.Details, res)
	if res.Success {
		r.Processed++
		if res.Amount != nil {
			r.TotalInterest = r.TotalInterest.Add(*res.Amount)
		}
	} else {
		r.Errors++
	}
}

// toRun converts a finished report into its persistent record.
func (r *RunReport) toRun() *models.AccrualRun {
	summary, err := json.Marshal(r.Details)
	if err != nil {
		summary = nil
	}
	return &models.AccrualRun{
		RunID:         r.RunID,
		RunDate:       r.Date,
		Policy:        r.Policy,
		Processed:     r.Processed,
		Errors:        r.Errors,
		TotalInterest: r.TotalInterest,
		Summary:       summary,
	}
}

// reportFromRun rebuilds a report from a recorded run, used when a same-day
// trigger finds the work already done.
func reportFromRun(run *models.AccrualRun) *RunReport {
	rep := &RunReport{
		RunID:         run.RunID,
		Date:          run.RunDate,
		Policy:        run.Policy,
		Processed:     run.Processed,
		Errors:        run.Errors,
		TotalInterest: run.TotalInterest,
	}
	if len(run.Summary) > 0 {
		_ = json.Unmarshal(run.Summary, &rep.Details)
	}
	return rep
}
