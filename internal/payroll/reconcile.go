package payroll

import (
	"time"

	"go-payday/internal/attendance"
	"go-payday/internal/leave"

	"go.uber.org/zap"
)

const (
	DayPresent = "PRESENT"
	DayLate    = "LATE"
	DayAbsent  = "ABSENT"
	DayOffDuty = "OFF_DUTY"
)

// DayRecord is one reconciled workday. Sundays never appear; the org is
// closed and they count toward nothing.
type DayRecord struct {
	Date    time.Time
	Status  string
	Hours   float64
	Holiday bool
}

type ReconcileResult struct {
	Days         []DayRecord
	TotalHours   float64
	AbsenceCount int
}

// Reconcile merges clock records, approved/done leave and the holiday
// calendar into a per-day classification of the period. Priority per day:
// leave wins over everything, then a time-in makes the day attended,
// otherwise the day is an absence.
func Reconcile(
	period Period,
	rows []attendance.Attendance,
	leaves []leave.LeaveRequest,
	holidays map[string]bool,
	logger *zap.Logger,
) ReconcileResult {
	byDate := make(map[string]attendance.Attendance, len(rows))
	for _, a := range rows {
		byDate[a.Date.Format("2006-01-02")] = a
	}

	onLeave := make(map[string]bool)
	for _, l := range leaves {
		for d := l.StartDate; !d.After(l.EndDate); d = d.AddDate(0, 0, 1) {
			onLeave[d.Format("2006-01-02")] = true
		}
	}

	var result ReconcileResult
	for d := period.Start; !d.After(period.End); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			continue
		}
		key := d.Format("2006-01-02")

		rec := DayRecord{Date: d, Holiday: holidays[key]}
		switch {
		case onLeave[key]:
			rec.Status = DayOffDuty

		case hasTimeIn(byDate, key):
			row := byDate[key]
			rec.Status = classifyArrival(row.TimeIn)
			rec.Hours = workedHours(row, logger)
			result.TotalHours += rec.Hours

		default:
			rec.Status = DayAbsent
			result.AbsenceCount++
		}

		result.Days = append(result.Days, rec)
	}
	return result
}

func hasTimeIn(byDate map[string]attendance.Attendance, key string) bool {
	row, ok := byDate[key]
	return ok && !row.TimeIn.IsZero()
}

// classifyArrival applies the 08:00 cutoff against the clock-in
// timestamp itself, so the stored status cannot drift from the rule.
func classifyArrival(timeIn time.Time) string {
	cutoff := time.Date(timeIn.Year(), timeIn.Month(), timeIn.Day(), 8, 0, 0, 0, timeIn.Location())
	if timeIn.After(cutoff) {
		return DayLate
	}
	return DayPresent
}

// workedHours recomputes the day's hours from the raw timestamps. An open
// record contributes zero but still counts as attended; bad data clamps
// to zero with a warning instead of going negative.
func workedHours(row attendance.Attendance, logger *zap.Logger) float64 {
	if row.TimeOut == nil {
		return 0
	}
	hours, err := attendance.WorkedHours(row.TimeIn, *row.TimeOut)
	if err != nil || hours < 0 {
		logger.Warn("attendance record yields a non-positive duration, clamping to zero",
			zap.String("attendance_id", row.ID.String()),
			zap.String("employee_id", row.EmployeeID.String()),
			zap.String("date", row.Date.Format("2006-01-02")),
		)
		return 0
	}
	return hours
}
