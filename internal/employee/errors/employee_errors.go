package employeeerrors

import (
	"net/http"

	"leavedesk/internal/shared/apperror"
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
		"an employee with this email already exists",
		http.StatusConflict,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeNotFound,
		"report manager not found",
		http.StatusNotFound,
	)
	ErrNotAManager = apperror.New(
		apperror.CodeInvalidState,
		"target employee is not a report manager",
		http.StatusBadRequest,
	)
	ErrSelfAssignment = apperror.New(
		apperror.CodeInvalidInput,
		"an employee cannot be assigned to themselves",
		http.StatusBadRequest,
	)
	ErrMemberNotAssigned = apperror.New(
		apperror.CodeInvalidState,
		"employee is not assigned to this manager",
		http.StatusBadRequest,
	)
)
