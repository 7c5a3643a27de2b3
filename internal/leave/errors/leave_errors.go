package leaveerrors

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
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrUnknownPolicy = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave policy",
		http.StatusBadRequest,
	)
	ErrNothingToDebit = apperror.New(
		apperror.CodeInvalidInput,
		"requested period contains no working days",
		http.StatusBadRequest,
	)
	ErrExceedsMaxApply = apperror.New(
		apperror.CodeInvalidInput,
		"requested period exceeds the policy's per-request limit",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"insufficient leave balance",
		http.StatusConflict,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already exists in overlapping period",
		http.StatusConflict,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"leave is not pending",
		http.StatusBadRequest,
	)
	ErrNotActionedByYou = apperror.New(
		apperror.CodeForbidden,
		"this leave is not assigned to you for action",
		http.StatusForbidden,
	)
	ErrNotYourLeave = apperror.New(
		apperror.CodeForbidden,
		"only the applicant can delete a pending leave",
		http.StatusForbidden,
	)
	ErrRejectReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"reject_reason is required when rejecting",
		http.StatusBadRequest,
	)
)
