package payrollerrors

import (
	"net/http"

	"go-payday/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrRunInProgress = apperror.New(
		apperror.CodeConflict,
		"a payroll run is already in progress",
		http.StatusConflict,
	)
	ErrCorruptPeriodHistory = apperror.New(
		apperror.CodeDataInconsistent,
		"latest payroll period end is neither a 15th nor a month end",
		http.StatusInternalServerError,
	)
)
