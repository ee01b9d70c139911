package payroll

import (
	"math"

	"go-payday/internal/employee"
)

const (
	standardDayHours   = 8.0
	overtimeMultiplier = 1.3
)

// PayBreakdown is in centavos. FinalPay = RegularPay + OvertimePay −
// Deduction, floored at zero.
type PayBreakdown struct {
	RegularPay  int64
	OvertimePay int64
	Deduction   int64
	FinalPay    int64
}

// ComputePay turns reconciled days into a pay breakdown.
//
// Managerial and supervisor staff get basicSalary flat per period,
// attendance detail notwithstanding. Rank-and-file staff are hourly at
// basicSalary/8: a short day pays the hours worked and books the gap as
// deduction, a long day pays 8 hours plus 1.3x overtime, and a national
// holiday doubles the day's regular pay only. No single day contributes
// a negative amount.
func ComputePay(emp employee.Employee, days []DayRecord) PayBreakdown {
	if emp.FixedSalary() {
		return PayBreakdown{
			RegularPay: emp.BasicSalary,
			FinalPay:   emp.BasicSalary,
		}
	}

	hourlyRate := float64(emp.BasicSalary) / standardDayHours

	var regular, overtime, deduction int64
	for _, day := range days {
		if day.Status != DayPresent && day.Status != DayLate {
			continue
		}

		hours := math.Max(day.Hours, 0)
		var dailyPay, dailyOvertime, dailyDeduction float64
		if hours < standardDayHours {
			dailyPay = hourlyRate * hours
			dailyDeduction = hourlyRate * (standardDayHours - hours)
		} else {
			dailyPay = hourlyRate * standardDayHours
			dailyOvertime = hourlyRate * overtimeMultiplier * (hours - standardDayHours)
		}

		if day.Holiday {
			dailyPay *= 2
		}

		regular += centavos(dailyPay)
		overtime += centavos(dailyOvertime)
		deduction += centavos(dailyDeduction)
	}

	final := regular + overtime - deduction
	if final < 0 {
		final = 0
	}
	return PayBreakdown{
		RegularPay:  regular,
		OvertimePay: overtime,
		Deduction:   deduction,
		FinalPay:    final,
	}
}

func centavos(v float64) int64 {
	if v <= 0 {
		return 0
	}
	return int64(math.Round(v))
}
