package employee

type CreateEmployeeRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	PhoneNumber    string `json:"phone_number"`
	Department     string `json:"department"`
	Position       string `json:"position"`
	Classification string `json:"classification" binding:"required,oneof=RANK_AND_FILE MANAGERIAL SUPERVISOR"`
	BasicSalary    int64  `json:"basic_salary" binding:"required,gt=0"`
	LeaveCredit    int    `json:"leave_credit" binding:"gte=0"`
}

type UpdateEmployeeRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	PhoneNumber    string `json:"phone_number"`
	Department     string `json:"department"`
	Position       string `json:"position"`
	Classification string `json:"classification" binding:"required,oneof=RANK_AND_FILE MANAGERIAL SUPERVISOR"`
	BasicSalary    int64  `json:"basic_salary" binding:"required,gt=0"`
	LeaveCredit    int    `json:"leave_credit" binding:"gte=0"`
}

type EmployeeResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	Department     string `json:"department,omitempty"`
	Position       string `json:"position,omitempty"`
	Classification string `json:"classification"`
	BasicSalary    int64  `json:"basic_salary"`
	TotalSalary    int64  `json:"total_salary"`
	LeaveCredit    int    `json:"leave_credit"`
	DayOff         bool   `json:"day_off"`
	Status         string `json:"status"`
}
