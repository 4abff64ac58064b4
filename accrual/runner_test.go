package accrual

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
)

// fakeAccountStore applies accruals to in-memory accounts with the same
// semantics as the SQL store: increments, counter advances, and a unique
// reference index.
type fakeAccountStore struct {
	mu       sync.Mutex
	accounts []*models.Account
	refs     map[string]bool
	failIDs  map[uint]bool
	applies  int
	enumErr  error
}

func newFakeAccountStore(accounts ...*models.Account) *fakeAccountStore {
	return &fakeAccountStore{
		accounts: accounts,
		refs:     make(map[string]bool),
		failIDs:  make(map[uint]bool),
	}
}

func (f *fakeAccountStore) ForEachAccount(ctx context.Context, batchSize int, fn func(acct *models.Account) error) error {
	if f.enumErr != nil {
		return f.enumErr
	}
	f.mu.Lock()
	snapshots := make([]*models.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		cp := *a
		cp.Investments = append([]models.Investment(nil), a.Investments...)
		snapshots = append(snapshots, &cp)
	}
	f.mu.Unlock()

	for _, s := range snapshots {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAccountStore) ApplyAccrual(ctx context.Context, accountID uint, runDate time.Time, items []Accrual) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applies++

	if f.failIDs[accountID] {
		return errors.New("write failed")
	}

	var acct *models.Account
	for _, a := range f.accounts {
		if a.ID == accountID {
			acct = a
			break
		}
	}
	if acct == nil {
		return fmt.Errorf("account %d not found", accountID)
	}

	for _, it := range items {
		if f.refs[it.Transaction.ReferenceID] {
			return fmt.Errorf("duplicate reference %s", it.Transaction.ReferenceID)
		}
	}
	for _, it := range items {
		f.refs[it.Transaction.ReferenceID] = true
		acct.AvailableBalance = acct.AvailableBalance.Add(it.BalanceDelta)
		acct.TotalEarnings = acct.TotalEarnings.Add(it.EarningsDelta)
		acct.Transactions = append(acct.Transactions, it.Transaction)
		for _, m := range it.Mutations {
			for i := range acct.Investments {
				inv := &acct.Investments[i]
				if inv.ID != m.InvestmentID {
					continue
				}
				if inv.DaysProcessed != m.ExpectedDaysProcessed {
					return fmt.Errorf("investment %d changed concurrently", inv.ID)
				}
				inv.DaysProcessed++
				inv.TotalEarned = inv.TotalEarned.Add(m.EarnedDelta)
				if m.Complete {
					inv.Status = models.InvestmentStatusCompleted
				}
			}
		}
	}
	d := DateOnly(runDate)
	acct.LastAccruedAt = &d
	return nil
}

type fakeRunStore struct {
	mu   sync.Mutex
	runs map[string]*models.AccrualRun
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: make(map[string]*models.AccrualRun)}
}

func (f *fakeRunStore) GetByDate(ctx context.Context, date time.Time) (*models.AccrualRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[date.Format("2006-01-02")], nil
}

func (f *fakeRunStore) Create(ctx context.Context, run *models.AccrualRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := run.RunDate.Format("2006-01-02")
	if _, exists := f.runs[key]; exists {
		return errors.New("duplicate run_date")
	}
	f.runs[key] = run
	return nil
}

func (f *fakeRunStore) GetLatest(ctx context.Context) (*models.AccrualRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.AccrualRun
	for _, r := range f.runs {
		if latest == nil || r.RunDate.After(latest.RunDate) {
			latest = r
		}
	}
	return latest, nil
}

func (f *fakeRunStore) List(ctx context.Context, limit, offset int) ([]models.AccrualRun, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AccrualRun, 0, len(f.runs))
	for _, r := range f.runs {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func newRunner(accounts *fakeAccountStore, runs *fakeRunStore, policy Policy, workers int) *Runner {
	return NewRunner(accounts, runs, policy, RunnerConfig{Workers: workers, BatchSize: 10, AccountTimeout: time.Second})
}

func TestRunner_SingleAccountSingleDay(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	acct := testAccount(
		testInvestment(7, "100000", "3.53", 30, 0, models.InvestmentStatusActive, now.AddDate(0, 0, 30)),
	)
	accounts := newFakeAccountStore(acct)
	runs := newFakeRunStore()

	report, err := newRunner(accounts, runs, PerPlanPolicy{}, 1).Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Errors)
	assert.True(t, report.TotalInterest.Equal(dec("3530")))
	require.Len(t, report.Details, 1)
	assert.True(t, report.Details[0].Success)
	assert.Equal(t, uint(42), report.Details[0].AccountID)

	assert.True(t, acct.AvailableBalance.Equal(dec("3530")))
	assert.True(t, acct.TotalEarnings.Equal(dec("3530")))
	assert.Equal(t, 1, acct.Investments[0].DaysProcessed)
	assert.True(t, acct.Investments[0].TotalEarned.Equal(dec("3530")))
	require.NotNil(t, acct.LastAccruedAt)
}

func TestRunner_ConsecutiveDaysUntilCompletion(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	duration := 30
	acct := testAccount(
		testInvestment(7, "100000", "3.53", duration, 0, models.InvestmentStatusActive, start.AddDate(0, 0, duration)),
	)
	accounts := newFakeAccountStore(acct)
	runs := newFakeRunStore()
	runner := newRunner(accounts, runs, PerPlanPolicy{}, 1)

	for day := 0; day < duration; day++ {
		_, err := runner.Run(context.Background(), start.AddDate(0, 0, day))
		require.NoError(t, err, "day %d", day)
	}

	assert.Equal(t, duration, acct.Investments[0].DaysProcessed)
	assert.True(t, acct.Investments[0].TotalEarned.Equal(dec("105900")), "got %s", acct.Investments[0].TotalEarned)
	assert.Equal(t, models.InvestmentStatusCompleted, acct.Investments[0].Status)

	// Day 31: nothing left to accrue, balances unchanged.
	before := acct.AvailableBalance
	report, err := runner.Run(context.Background(), start.AddDate(0, 0, duration))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, report.Details)
	assert.True(t, acct.AvailableBalance.Equal(before))
}

func TestRunner_SameDayTriggerIsNoOp(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	acct := testAccount(
		testInvestment(7, "100000", "3.53", 30, 0, models.InvestmentStatusActive, now.AddDate(0, 0, 30)),
	)
	accounts := newFakeAccountStore(acct)
	runs := newFakeRunStore()
	runner := newRunner(accounts, runs, PerPlanPolicy{}, 1)

	first, err := runner.Run(context.Background(), now)
	require.NoError(t, err)
	appliesAfterFirst := accounts.applies

	second, err := runner.Run(context.Background(), now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyRan)
	require.NotNil(t, second)
	assert.Equal(t, first.Processed, second.Processed)
	assert.Equal(t, appliesAfterFirst, accounts.applies, "no account may be touched twice in one day")
	assert.True(t, acct.AvailableBalance.Equal(dec("3530")))
}

func TestRunner_FailingAccountDoesNotStopTheRun(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	bad := testAccount(testInvestment(1, "100000", "3.53", 30, 0, models.InvestmentStatusActive, now.AddDate(0, 0, 30)))
	bad.ID = 1
	bad.Investments[0].AccountID = 1
	good := testAccount(testInvestment(2, "50000", "2.00", 15, 0, models.InvestmentStatusActive, now.AddDate(0, 0, 15)))
	good.ID = 2
	good.Investments[0].AccountID = 2

	accounts := newFakeAccountStore(bad, good)
	accounts.failIDs[1] = true
	runs := newFakeRunStore()

	report, err := newRunner(accounts, runs, PerPlanPolicy{}, 1).Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.Details, 2)

	var badRes, goodRes *AccountResult
	for i := range report.Details {
		switch report.Details[i].AccountID {
		case 1:
			badRes = &report.Details[i]
		case 2:
			goodRes = &report.Details[i]
		}
	}
	require.NotNil(t, badRes)
	require.NotNil(t, goodRes)
	assert.False(t, badRes.Success)
	assert.NotEmpty(t, badRes.Error)
	assert.True(t, goodRes.Success)
	assert.True(t, good.AvailableBalance.Equal(dec("1000")))
	assert.True(t, bad.AvailableBalance.IsZero())
}

func TestRunner_EnumerationFailureAbortsRun(t *testing.T) {
	accounts := newFakeAccountStore()
	accounts.enumErr = errors.New("connection refused")
	runs := newFakeRunStore()

	report, err := newRunner(accounts, runs, PerPlanPolicy{}, 1).Run(context.Background(), time.Now())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrEnumeration)

	// No run is recorded for an aborted enumeration, so the next trigger may retry.
	latest, _ := runs.GetLatest(context.Background())
	assert.Nil(t, latest)
}

func TestRunner_BoundedWorkerPool(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	var all []*models.Account
	for i := uint(1); i <= 20; i++ {
		a := testAccount(testInvestment(i, "10000", "1.00", 10, 0, models.InvestmentStatusActive, now.AddDate(0, 0, 10)))
		a.ID = i
		a.Investments[0].AccountID = i
		all = append(all, a)
	}
	accounts := newFakeAccountStore(all...)
	runs := newFakeRunStore()

	report, err := newRunner(accounts, runs, PerPlanPolicy{}, 4).Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 20, report.Processed)
	assert.Equal(t, 0, report.Errors)
	assert.True(t, report.TotalInterest.Equal(dec("2000")))
	for _, a := range all {
		assert.True(t, a.AvailableBalance.Equal(dec("100")), "account %d", a.ID)
	}
}

type heldLocker struct{}

func (heldLocker) Acquire(ctx context.Context, date time.Time) (bool, error) { return false, nil }
func (heldLocker) Release(ctx context.Context, date time.Time) error         { return nil }

func TestRunner_LockedRunReturnsAlreadyRan(t *testing.T) {
	accounts := newFakeAccountStore(testAccount())
	runs := newFakeRunStore()
	runner := NewRunner(accounts, runs, PerPlanPolicy{}, RunnerConfig{Locker: heldLocker{}})

	report, err := runner.Run(context.Background(), time.Now())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrAlreadyRan)
	assert.Equal(t, 0, accounts.applies)
}

func TestRunner_RecordsRun(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	acct := testAccount(
		testInvestment(7, "100000", "3.53", 30, 0, models.InvestmentStatusActive, now.AddDate(0, 0, 30)),
	)
	accounts := newFakeAccountStore(acct)
	runs := newFakeRunStore()

	report, err := newRunner(accounts, runs, PerPlanPolicy{}, 1).Run(context.Background(), now)
	require.NoError(t, err)

	run, err := runs.GetByDate(context.Background(), DateOnly(now))
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, report.RunID, run.RunID)
	assert.Equal(t, 1, run.Processed)
	assert.True(t, run.TotalInterest.Equal(dec("3530")))
	assert.NotEmpty(t, run.Summary)
}
