package employee

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	// WithTx returns a repository bound to the given transaction;
	// every method runs inside it.
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error

	// AddToTotalSalary and ResetTotalSalary mutate the running accumulator
	// atomically instead of read-modify-write on the whole row, so
	// concurrent clock-outs cannot lose updates.
	AddToTotalSalary(ctx context.Context, id string, delta int64) error
	ResetTotalSalary(ctx context.Context, id string) error

	// DeductLeaveCredit only succeeds when enough credit remains; returns
	// false without mutating otherwise.
	DeductLeaveCredit(ctx context.Context, id string, days int) (bool, error)

	SetDayOff(ctx context.Context, id string, dayOff bool) error
	SetAllStatus(ctx context.Context, status string) error
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

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id).Error
}

func (r *repository) AddToTotalSalary(ctx context.Context, id string, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		UpdateColumn("total_salary", gorm.Expr("total_salary + ?", delta)).Error
}

func (r *repository) ResetTotalSalary(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		UpdateColumn("total_salary", 0).Error
}

func (r *repository) DeductLeaveCredit(ctx context.Context, id string, days int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		Where("leave_credit >= ?", days).
		UpdateColumn("leave_credit", gorm.Expr("leave_credit - ?", days))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) SetDayOff(ctx context.Context, id string, dayOff bool) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", id).
		UpdateColumn("day_off", dayOff).Error
}

func (r *repository) SetAllStatus(ctx context.Context, status string) error {
	return r.db.WithContext(ctx).
		Model(&Employee{}).
		Where("deleted_at IS NULL").
		UpdateColumn("status", status).Error
}
