package attendanceerrors

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
	ErrAlreadyTimedIn = apperror.New(
		apperror.CodeConflict,
		"already timed in for today",
		http.StatusConflict,
	)
	ErrNoTimeIn = apperror.New(
		apperror.CodeInvalidState,
		"no time-in record for today",
		http.StatusBadRequest,
	)
	ErrAlreadyTimedOut = apperror.New(
		apperror.CodeInvalidState,
		"already timed out for today",
		http.StatusBadRequest,
	)
	ErrNonPositiveDuration = apperror.New(
		apperror.CodeInvalidState,
		"time-out does not yield a positive working duration",
		http.StatusBadRequest,
	)
)
