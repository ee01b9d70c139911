package payroll

import (
	"time"

	payrollerrors "go-payday/internal/payroll/errors"
)

// Period is one semi-monthly payroll window, either [1st, 15th] or
// [16th, month-end]. Both bounds are inclusive dates in the org timezone.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) String() string {
	return p.Start.Format("2006-01-02") + " to " + p.End.Format("2006-01-02")
}

func monthEnd(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
}

func firstWindow(year int, month time.Month, loc *time.Location) Period {
	return Period{
		Start: time.Date(year, month, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year, month, 15, 0, 0, 0, 0, loc),
	}
}

func secondWindow(year int, month time.Month, loc *time.Location) Period {
	return Period{
		Start: time.Date(year, month, 16, 0, 0, 0, 0, loc),
		End:   monthEnd(year, month, loc),
	}
}

// ResolvePeriod picks the payroll window for a run on today. Without
// history it is the window containing today. With history the next
// window starts the day after lastEnd; a lastEnd that is neither a 15th
// nor a month end means the ledger history is corrupt and the run must
// not guess.
func ResolvePeriod(today time.Time, lastEnd *time.Time) (Period, error) {
	loc := today.Location()

	if lastEnd == nil {
		if today.Day() <= 15 {
			return firstWindow(today.Year(), today.Month(), loc), nil
		}
		return secondWindow(today.Year(), today.Month(), loc), nil
	}

	end := lastEnd.In(loc)

	if end.Day() == 15 {
		return secondWindow(end.Year(), end.Month(), loc), nil
	}
	if end.Day() == monthEnd(end.Year(), end.Month(), loc).Day() {
		next := end.AddDate(0, 0, 1)
		return firstWindow(next.Year(), next.Month(), loc), nil
	}

	return Period{}, payrollerrors.ErrCorruptPeriodHistory
}
