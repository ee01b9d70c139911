package payroll

import (
	"testing"
	"time"

	"go-payday/internal/attendance"
	"go-payday/internal/leave"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// March 2026: the 1st, 8th and 15th are Sundays, so [1,15] has 12 workdays.
func marchPeriod() Period {
	return Period{Start: date(2026, time.March, 1), End: date(2026, time.March, 15)}
}

func attendanceRow(day int, timeInHour int, hours float64) attendance.Attendance {
	d := date(2026, time.March, day)
	timeIn := time.Date(2026, time.March, day, timeInHour, 0, 0, 0, time.UTC)
	timeOut := timeIn.Add(time.Duration(hours * float64(time.Hour)))
	return attendance.Attendance{
		ID:         uuid.New(),
		EmployeeID: uuid.New(),
		Date:       d,
		TimeIn:     timeIn,
		TimeOut:    &timeOut,
		Hours:      hours,
	}
}

func TestReconcile_SundaysNeverEnumerated(t *testing.T) {
	result := Reconcile(marchPeriod(), nil, nil, nil, zap.NewNop())

	assert.Len(t, result.Days, 12)
	for _, d := range result.Days {
		assert.NotEqual(t, time.Sunday, d.Date.Weekday())
	}
	// Empty attendance: every enumerated workday is an absence, Sundays
	// contribute nothing.
	assert.Equal(t, 12, result.AbsenceCount)
}

func TestReconcile_LeavePrecedesAttendance(t *testing.T) {
	rows := []attendance.Attendance{attendanceRow(2, 7, 8)}
	leaves := []leave.LeaveRequest{{
		Status:    leave.StatusApproved,
		StartDate: date(2026, time.March, 2),
		EndDate:   date(2026, time.March, 4),
	}}

	result := Reconcile(marchPeriod(), rows, leaves, nil, zap.NewNop())

	byKey := make(map[string]DayRecord)
	for _, d := range result.Days {
		byKey[d.Date.Format("2006-01-02")] = d
	}

	assert.Equal(t, DayOffDuty, byKey["2026-03-02"].Status)
	assert.Equal(t, DayOffDuty, byKey["2026-03-03"].Status)
	assert.Equal(t, DayOffDuty, byKey["2026-03-04"].Status)
	// Leave days never count as absences and their hours never count.
	assert.Equal(t, float64(0), result.TotalHours)
	assert.Equal(t, 9, result.AbsenceCount)
}

func TestReconcile_ArrivalCutoff(t *testing.T) {
	rows := []attendance.Attendance{
		attendanceRow(2, 7, 8),
		attendanceRow(3, 9, 8),
	}

	result := Reconcile(marchPeriod(), rows, nil, nil, zap.NewNop())

	byKey := make(map[string]DayRecord)
	for _, d := range result.Days {
		byKey[d.Date.Format("2006-01-02")] = d
	}
	assert.Equal(t, DayPresent, byKey["2026-03-02"].Status)
	assert.Equal(t, DayLate, byKey["2026-03-03"].Status)
	assert.Equal(t, float64(16), result.TotalHours)
}

func TestReconcile_OpenRecordAttendedWithZeroHours(t *testing.T) {
	row := attendanceRow(2, 7, 8)
	row.TimeOut = nil
	result := Reconcile(marchPeriod(), []attendance.Attendance{row}, nil, nil, zap.NewNop())

	byKey := make(map[string]DayRecord)
	for _, d := range result.Days {
		byKey[d.Date.Format("2006-01-02")] = d
	}
	assert.Equal(t, DayPresent, byKey["2026-03-02"].Status)
	assert.Equal(t, float64(0), byKey["2026-03-02"].Hours)
	assert.Equal(t, 11, result.AbsenceCount)
}

func TestReconcile_BadDurationClampsToZero(t *testing.T) {
	row := attendanceRow(2, 7, 8)
	out := row.TimeIn // zero-length shift
	row.TimeOut = &out

	result := Reconcile(marchPeriod(), []attendance.Attendance{row}, nil, nil, zap.NewNop())

	assert.Equal(t, float64(0), result.TotalHours)
	assert.GreaterOrEqual(t, result.TotalHours, float64(0))
}

func TestReconcile_OvernightShiftRollsForward(t *testing.T) {
	row := attendanceRow(2, 22, 0)
	out := time.Date(2026, time.March, 3, 6, 0, 0, 0, time.UTC)
	row.TimeOut = &out

	result := Reconcile(marchPeriod(), []attendance.Attendance{row}, nil, nil, zap.NewNop())
	assert.Equal(t, float64(8), result.TotalHours)
}

func TestReconcile_HolidayFlagged(t *testing.T) {
	holidays := map[string]bool{"2026-03-02": true}
	result := Reconcile(marchPeriod(), nil, nil, holidays, zap.NewNop())

	var found bool
	for _, d := range result.Days {
		if d.Date.Format("2006-01-02") == "2026-03-02" {
			found = d.Holiday
		}
	}
	assert.True(t, found)
}
