package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/models"
)

// AccrualRunStore implements accrual.RunStore on MySQL.
type AccrualRunStore struct {
	db *gorm.DB
}

func NewAccrualRunStore(db *gorm.DB) *AccrualRunStore {
	return &AccrualRunStore{db: db}
}

// GetByDate returns the run recorded for a calendar date, or nil when none
// exists.
func (s *AccrualRunStore) GetByDate(ctx context.Context, date time.Time) (*models.AccrualRun, error) {
	var run models.AccrualRun
	err := s.db.WithContext(ctx).
		Where("run_date = ?", date.Format("2006-01-02")).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading accrual run for %s: %w", date.Format("2006-01-02"), err)
	}
	return &run, nil
}

func (s *AccrualRunStore) Create(ctx context.Context, run *models.AccrualRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("recording accrual run for %s: %w", run.RunDate.Format("2006-01-02"), err)
	}
	return nil
}

// GetLatest returns the most recent run, or nil when no run has happened yet.
func (s *AccrualRunStore) GetLatest(ctx context.Context) (*models.AccrualRun, error) {
	var run models.AccrualRun
	err := s.db.WithContext(ctx).Order("run_date DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest accrual run: %w", err)
	}
	return &run, nil
}

// List returns runs newest first plus the total count, for the admin
// console's paginated history view.
func (s *AccrualRunStore) List(ctx context.Context, limit, offset int) ([]models.AccrualRun, int64, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.AccrualRun{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting accrual runs: %w", err)
	}

	var runs []models.AccrualRun
	err := s.db.WithContext(ctx).
		Order("run_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing accrual runs: %w", err)
	}
	return runs, total, nil
}
