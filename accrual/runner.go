package accrual

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
)

// RunnerConfig tunes one runner. Locker and Archiver are optional.
type RunnerConfig struct {
	Workers        int
	BatchSize      int
	AccountTimeout time.Duration
	Locker         RunLocker
	Archiver       ReportArchiver
}

// Runner orchestrates one daily accrual run: streams every active account,
// applies the policy's credits one account at a time, and isolates failures
// so a bad account never aborts the batch.
type Runner struct {
	accounts AccountStore
	runs     RunStore
	policy   Policy
	cfg      RunnerConfig
	log      *logrus.Entry
}

func NewRunner(accounts AccountStore, runs RunStore, policy Policy, cfg RunnerConfig) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 200
	}
	if cfg.AccountTimeout <= 0 {
		cfg.AccountTimeout = 10 * time.Second
	}
	return &Runner{
		accounts: accounts,
		runs:     runs,
		policy:   policy,
		cfg:      cfg,
		log:      logrus.WithField("component", "accrual"),
	}
}

// Run executes the accrual batch for now's calendar date. A date that has
// already been run returns the recorded report together with ErrAlreadyRan
// and touches no account. Per-account failures are recorded in the report;
// only enumeration failure aborts the run.
func (r *Runner) Run(ctx context.Context, now time.Time) (*RunReport, error) {
	runDate := DateOnly(now)

	if r.cfg.Locker != nil {
		ok, err := r.cfg.Locker.Acquire(ctx, runDate)
		if err != nil {
			// Lock store outage degrades to the run_date unique index.
			r.log.WithError(err).Warn("run lock unavailable, continuing without it")
		} else if !ok {
			return nil, ErrAlreadyRan
		} else {
			defer func() {
				if rerr := r.cfg.Locker.Release(context.WithoutCancel(ctx), runDate); rerr != nil {
					r.log.WithError(rerr).Warn("failed to release run lock")
				}
			}()
		}
	}

	if prev, err := r.runs.GetByDate(ctx, runDate); err != nil {
		return nil, fmt.Errorf("checking prior run: %w", err)
	} else if prev != nil {
		return reportFromRun(prev), ErrAlreadyRan
	}

	report := &RunReport{
		RunID:  uuid.NewString(),
		Date:   runDate,
		Policy: r.policy.Name(),
	}
	log := r.log.WithFields(logrus.Fields{"run_id": report.RunID, "run_date": runDate.Format("2006-01-02"), "policy": report.Policy})
	log.Info("starting daily interest run")

	var mu sync.Mutex
	record := func(res AccountResult) {
		mu.Lock()
		report.add(res)
		mu.Unlock()
	}

	var err error
	if r.cfg.Workers == 1 {
		err = r.accounts.ForEachAccount(ctx, r.cfg.BatchSize, func(acct *models.Account) error {
			if res, ok := r.processAccount(ctx, acct, now, runDate, log); ok {
				record(res)
			}
			return nil
		})
	} else {
		err = r.runParallel(ctx, now, runDate, log, record)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}

	r.finish(ctx, report, log)
	return report, nil
}

// runParallel fans accounts out across a bounded worker pool. Each account's
// read-modify-write is self-contained, so ordering across accounts does not
// matter.
func (r *Runner) runParallel(ctx context.Context, now, runDate time.Time, log *logrus.Entry, record func(AccountResult)) error {
	jobs := make(chan *models.Account, r.cfg.Workers)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for acct := range jobs {
				if res, ok := r.processAccount(ctx, acct, now, runDate, log); ok {
					record(res)
				}
			}
		}()
	}

	err := r.accounts.ForEachAccount(ctx, r.cfg.BatchSize, func(acct *models.Account) error {
		select {
		case jobs <- acct:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(jobs)
	wg.Wait()
	return err
}

// processAccount computes and applies one account's accrual. The bool result
// is false when the account had nothing to accrue and is left out of the
// report entirely.
func (r *Runner) processAccount(ctx context.Context, acct *models.Account, now, runDate time.Time, log *logrus.Entry) (AccountResult, bool) {
	items := r.policy.Compute(acct, now)
	if len(items) == 0 {
		return AccountResult{}, false
	}

	total := sumBalanceDeltas(items)

	actx, cancel := context.WithTimeout(ctx, r.cfg.AccountTimeout)
	defer cancel()
	if err := r.accounts.ApplyAccrual(actx, acct.ID, runDate, items); err != nil {
		log.WithError(err).WithField("account_id", acct.ID).Warn("accrual failed for account")
		return AccountResult{AccountID: acct.ID, Error: err.Error()}, true
	}

	log.WithFields(logrus.Fields{"account_id": acct.ID, "amount": total.StringFixed(2), "credits": len(items)}).Info("interest accrued")
	return AccountResult{AccountID: acct.ID, Amount: &total, Success: true}, true
}

// finish persists the run record and archives the report. Neither failure
// undoes applied accruals, so both are logged rather than returned.
func (r *Runner) finish(ctx context.Context, report *RunReport, log *logrus.Entry) {
	if err := r.runs.Create(ctx, report.toRun()); err != nil {
		log.WithError(err).Error("failed to record accrual run")
	}

	if r.cfg.Archiver != nil {
		if payload, err := json.Marshal(report); err == nil {
			if err := r.cfg.Archiver.Archive(ctx, report.Date, payload); err != nil {
				log.WithError(err).Warn("failed to archive run report")
			}
		}
	}

	log.WithFields(logrus.Fields{
		"processed":      report.Processed,
		"errors":         report.Errors,
		"total_interest": report.TotalInterest.StringFixed(2),
	}).Info("daily interest run finished")
}

func sumBalanceDeltas(items []Accrual) (total decimal.Decimal) {
	for _, it := range items {
		total = total.Add(it.BalanceDelta)
	}
	return total
}
