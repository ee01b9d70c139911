package attendance

type TimeInRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
}

type TimeOutRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
}

type AttendanceResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	TimeIn     string  `json:"time_in"`
	TimeOut    *string `json:"time_out,omitempty"`
	Hours      float64 `json:"hours"`
	Status     string  `json:"status"`
}
