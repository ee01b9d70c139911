package employeeerrors

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
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"email is already registered",
		http.StatusConflict,
	)
	ErrInsufficientLeaveCredit = apperror.New(
		apperror.CodeInvalidState,
		"employee does not have enough leave credit",
		http.StatusBadRequest,
	)
)
