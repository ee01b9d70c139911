package payroll

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	// WithTx returns a repository bound to the given transaction;
	// every method runs inside it.
	WithTx(tx *gorm.DB) Repository

	// Create inserts a ledger row. The (employee_id, run_date) unique
	// index turns a duplicate run into a constraint violation the caller
	// maps to a skip.
	Create(ctx context.Context, p *PayrollRecord) error

	ExistsForRunDate(ctx context.Context, employeeID string, runDate time.Time) (bool, error)

	// FindLatestPeriodEnd returns the most recent period end across the
	// whole ledger, or nil when no payroll has ever run.
	FindLatestPeriodEnd(ctx context.Context) (*time.Time, error)

	FindAll(ctx context.Context) ([]PayrollRecord, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]PayrollRecord, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, p *PayrollRecord) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) ExistsForRunDate(ctx context.Context, employeeID string, runDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PayrollRecord{}).
		Where("employee_id = ?", employeeID).
		Where("run_date = ?", runDate.Format("2006-01-02")).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindLatestPeriodEnd(ctx context.Context) (*time.Time, error) {
	var p PayrollRecord
	err := r.db.WithContext(ctx).
		Order("period_end DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p.PeriodEnd, nil
}

func (r *repository) FindAll(ctx context.Context) ([]PayrollRecord, error) {
	var rows []PayrollRecord
	err := r.db.WithContext(ctx).
		Order("run_date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]PayrollRecord, error) {
	var rows []PayrollRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("run_date DESC").
		Find(&rows).Error
	return rows, err
}
