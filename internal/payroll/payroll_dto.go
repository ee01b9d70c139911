package payroll

type PayrollResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	RunDate      string  `json:"run_date"`
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	HoursWorked  float64 `json:"hours_worked"`
	RegularPay   int64   `json:"regular_pay"`
	OvertimePay  int64   `json:"overtime_pay"`
	Deduction    int64   `json:"deduction"`
	TotalPay     int64   `json:"total_pay"`
	AbsenceCount int     `json:"absence_count"`
}

type RunReport struct {
	RunDate     string `json:"run_date"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Processed   int    `json:"processed"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
}

type TimesheetDay struct {
	Date    string  `json:"date"`
	Status  string  `json:"status"`
	Hours   float64 `json:"hours"`
	Holiday bool    `json:"holiday"`
}

type TimesheetResponse struct {
	EmployeeID   string         `json:"employee_id"`
	Start        string         `json:"start"`
	End          string         `json:"end"`
	Days         []TimesheetDay `json:"days"`
	TotalHours   float64        `json:"total_hours"`
	AbsenceCount int            `json:"absence_count"`
}

func mapToResponse(p PayrollRecord) PayrollResponse {
	return PayrollResponse{
		ID:           p.ID.String(),
		EmployeeID:   p.EmployeeID.String(),
		RunDate:      p.RunDate.Format("2006-01-02"),
		PeriodStart:  p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:    p.PeriodEnd.Format("2006-01-02"),
		HoursWorked:  p.HoursWorked,
		RegularPay:   p.RegularPay,
		OvertimePay:  p.OvertimePay,
		Deduction:    p.Deduction,
		TotalPay:     p.TotalPay,
		AbsenceCount: p.AbsenceCount,
	}
}

func mapToListResponse(rows []PayrollRecord) []PayrollResponse {
	resp := make([]PayrollResponse, 0, len(rows))
	for _, p := range rows {
		resp = append(resp, mapToResponse(p))
	}
	return resp
}
