// Package accrual implements the daily interest batch job: policy
// computation, per-account application, and run orchestration.
package accrual

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/config"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
)

var (
	// ErrAlreadyRan is returned when interest has already been accrued for
	// the requested date. The accompanying report reflects the recorded run.
	ErrAlreadyRan = errors.New("interest already accrued for this date")

	// ErrEnumeration wraps failures to list accounts at all. Unlike
	// per-account errors, it aborts the run.
	ErrEnumeration = errors.New("account enumeration failed")
)

// InvestmentMutation describes the per-position state change that accompanies
// one day's interest: DaysProcessed advances by exactly one and EarnedDelta
// is added to TotalEarned. ExpectedDaysProcessed carries the counter value
// the computation was based on; the store refuses to apply the mutation if
// the row has moved since (optimistic guard against concurrent accrual).
type InvestmentMutation struct {
	InvestmentID          uint
	ExpectedDaysProcessed int
	EarnedDelta           decimal.Decimal
	Complete              bool
}

// Accrual is one computed credit for one account: the ledger row to append,
// the balance deltas to apply, and any investment-level mutations. Policies
// produce these; the store applies them.
type Accrual struct {
	Transaction   models.Transaction
	BalanceDelta  decimal.Decimal
	EarningsDelta decimal.Decimal
	Mutations     []InvestmentMutation
}

// Policy computes the day's interest for one account snapshot. Compute must
// be pure: no I/O, and the snapshot must not be mutated.
type Policy interface {
	Name() string
	Compute(acct *models.Account, now time.Time) []Accrual
}

// NewPolicy selects the deployment's accrual strategy.
func NewPolicy(cfg *config.Config) Policy {
	if cfg.AccrualPolicy == config.PolicyFlatRate {
		return FlatRatePolicy{Rate: cfg.InterestRate}
	}
	return PerPlanPolicy{}
}

// AccountStore is the account collection contract the runner depends on.
type AccountStore interface {
	// ForEachAccount streams active accounts (with investments preloaded) in
	// pages of batchSize, invoking fn once per account. A non-nil error from
	// fn stops the enumeration.
	ForEachAccount(ctx context.Context, batchSize int, fn func(acct *models.Account) error) error

	// ApplyAccrual applies a day's computed credits to one account in a
	// single database transaction: appends the ledger rows, increments the
	// balance fields, advances investment counters, and stamps
	// last_accrued_at with runDate.
	ApplyAccrual(ctx context.Context, accountID uint, runDate time.Time, items []Accrual) error
}

// RunStore persists run-level records for the same-day guard and the admin
// report surface.
type RunStore interface {
	GetByDate(ctx context.Context, date time.Time) (*models.AccrualRun, error)
	Create(ctx context.Context, run *models.AccrualRun) error
	GetLatest(ctx context.Context) (*models.AccrualRun, error)
	List(ctx context.Context, limit, offset int) ([]models.AccrualRun, int64, error)
}

// RunLocker guards against two triggers racing into the same run. Optional;
// the run_date unique index remains the durable guard.
type RunLocker interface {
	Acquire(ctx context.Context, date time.Time) (bool, error)
	Release(ctx context.Context, date time.Time) error
}

// ReportArchiver stores a completed run report for audit. Optional and best
// effort.
type ReportArchiver interface {
	Archive(ctx context.Context, runDate time.Time, payload []byte) error
}

var oneHundred = decimal.NewFromInt(100)

// DateOnly truncates a timestamp to its calendar date in the timestamp's
// location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
