// Package store provides the GORM-backed persistence layer for the accrual
// job.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/accrual"
	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
)

// AccountStore implements accrual.AccountStore on MySQL.
type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

// ForEachAccount streams active accounts in pages so memory stays flat
// regardless of how many accounts exist. Investments are preloaded per page.
func (s *AccountStore) ForEachAccount(ctx context.Context, batchSize int, fn func(acct *models.Account) error) error {
	if batchSize < 1 {
		batchSize = 200
	}
	var accounts []models.Account
	result := s.db.WithContext(ctx).
		Preload("Investments").
		Where("status = ?", models.AccountStatusActive).
		FindInBatches(&accounts, batchSize, func(tx *gorm.DB, _ int) error {
			for i := range accounts {
				acct := accounts[i]
				if err := fn(&acct); err != nil {
					return err
				}
			}
			return nil
		})
	if result.Error != nil {
		return fmt.Errorf("listing accounts: %w", result.Error)
	}
	return nil
}

// GetAccount loads one account with its investments.
func (s *AccountStore) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var acct models.Account
	if err := s.db.WithContext(ctx).Preload("Investments").First(&acct, id).Error; err != nil {
		return nil, fmt.Errorf("loading account %d: %w", id, err)
	}
	return &acct, nil
}

// ApplyAccrual writes one account's daily credits in a single database
// transaction. Balance fields are advanced with field-level SQL increments,
// never read-then-overwrite, so a concurrent deposit or admin credit between
// this job's read and write cannot be lost. Investment counters carry an
// optimistic days_processed guard; a row that moved since the snapshot
// aborts the whole account, and the unique reference_id index rejects a
// same-day replay.
func (s *AccountStore) ApplyAccrual(ctx context.Context, accountID uint, runDate time.Time, items []accrual.Accrual) error {
	if len(items) == 0 {
		return nil
	}

	balanceDelta := decimal.Zero
	earningsDelta := decimal.Zero

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			trx := it.Transaction
			if err := tx.Create(&trx).Error; err != nil {
				return fmt.Errorf("appending transaction %s: %w", trx.ReferenceID, err)
			}

			for _, m := range it.Mutations {
				updates := map[string]interface{}{
					"days_processed": gorm.Expr("days_processed + 1"),
					"total_earned":   gorm.Expr("total_earned + ?", m.EarnedDelta),
				}
				if m.Complete {
					updates["status"] = models.InvestmentStatusCompleted
				}
				res := tx.Model(&models.Investment{}).
					Where("id = ? AND account_id = ? AND days_processed = ?", m.InvestmentID, accountID, m.ExpectedDaysProcessed).
					Updates(updates)
				if res.Error != nil {
					return fmt.Errorf("updating investment %d: %w", m.InvestmentID, res.Error)
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("investment %d changed concurrently, accrual aborted", m.InvestmentID)
				}
			}

			balanceDelta = balanceDelta.Add(it.BalanceDelta)
			earningsDelta = earningsDelta.Add(it.EarningsDelta)
		}

		res := tx.Model(&models.Account{}).
			Where("id = ?", accountID).
			Updates(map[string]interface{}{
				"available_balance": gorm.Expr("available_balance + ?", balanceDelta),
				"total_earnings":    gorm.Expr("total_earnings + ?", earningsDelta),
				"last_accrued_at":   runDate,
			})
		if res.Error != nil {
			return fmt.Errorf("updating account %d balances: %w", accountID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("account %d not found", accountID)
		}
		return nil
	})
}
