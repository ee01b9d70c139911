package leave

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	// WithTx returns a repository bound to the given transaction;
	// every method runs inside it.
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)

	// HasOutstanding reports whether the employee already has a request
	// in PENDING, PROCESSING or APPROVED.
	HasOutstanding(ctx context.Context, employeeID string) (bool, error)

	// FindOverlapping returns requests in the given statuses whose range
	// touches [start, end].
	FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, statuses []string) ([]LeaveRequest, error)

	// Transition moves a request from one status to another only if it is
	// still in the expected state; reports false when it already moved.
	Transition(ctx context.Context, id, from, to string) (bool, error)

	// MarkStarted sets started_at once; reports false on every later call.
	MarkStarted(ctx context.Context, id string, at time.Time) (bool, error)

	FindApprovedCovering(ctx context.Context, date time.Time) ([]LeaveRequest, error)
	// FindApprovedEndedBefore returns approved requests whose end date is
	// strictly before the given day, however long ago they ended.
	FindApprovedEndedBefore(ctx context.Context, date time.Time) ([]LeaveRequest, error)
	FindPendingStartedBefore(ctx context.Context, date time.Time) ([]LeaveRequest, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) HasOutstanding(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", OutstandingStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, statuses []string) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", statuses).
		Where("start_date <= ? AND end_date >= ?", end.Format("2006-01-02"), start.Format("2006-01-02")).
		Order("start_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Transition(ctx context.Context, id, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkStarted(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Where("started_at IS NULL").
		Update("started_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindApprovedCovering(ctx context.Context, date time.Time) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	d := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", d, d).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindApprovedEndedBefore(ctx context.Context, date time.Time) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusApproved).
		Where("end_date < ?", date.Format("2006-01-02")).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindPendingStartedBefore(ctx context.Context, date time.Time) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Where("start_date < ?", date.Format("2006-01-02")).
		Find(&rows).Error
	return rows, err
}
