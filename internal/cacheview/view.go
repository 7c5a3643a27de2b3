// Package cacheview defines the denormalized shapes stored in the cache.
//
// These are materialized views over the relational entities: an employee
// carries its balances, the leaves it applied for, the leaves it is expected
// to action, and its directly assigned members. The same leave therefore
// appears in up to three places (the standalone list, the applicant's
// leaves_applied, the actioner's leaves_actioned), and the patch subpackage
// is the only code allowed to rewrite those copies.
package cacheview

import "github.com/shopspring/decimal"

// Employee roles.
const (
	RoleAdmin         = "ADMIN"
	RoleSubAdmin      = "SUB_ADMIN"
	RoleReportManager = "REPORT_MANAGER"
	RoleMember        = "MEMBER"
)

// Employment statuses.
const (
	StatusActive    = "Active"
	StatusProbation = "Probation"
	StatusInActive  = "InActive"
)

// Leave statuses. PENDING is the only non-terminal state.
const (
	LeavePending  = "PENDING"
	LeaveApproved = "APPROVED"
	LeaveRejected = "REJECTED"
)

// Absent-type markers on a leave boundary.
const (
	FullDay    = "FULL_DAY"
	FirstHalf  = "FIRST_HALF"
	SecondHalf = "SECOND_HALF"
)

type EmployeeView struct {
	ID              string        `json:"id"`
	FullName        string        `json:"full_name"`
	Email           string        `json:"email"`
	Role            string        `json:"role"`
	Status          string        `json:"status"`
	ReportManagerID *string       `json:"report_manager_id,omitempty"`
	LeaveBalances   []BalanceView `json:"leave_balances"`
	LeavesApplied   []LeaveView   `json:"leaves_applied"`
	LeavesActioned  []LeaveView   `json:"leaves_actioned"`
	AssignMembers   []MemberView  `json:"assign_members"`
}

// MemberView is the shallow employee projection embedded in a manager's
// assign_members. It stays shallow on purpose: nesting full EmployeeViews
// would make the duplication graph cyclic.
type MemberView struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type BalanceView struct {
	EmployeeID string          `json:"employee_id"`
	PolicyName string          `json:"policy_name"`
	Balance    decimal.Decimal `json:"balance"`
}

type LeaveView struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	PolicyName      string  `json:"policy_name"`
	StartDate       string  `json:"start_date"`
	EndDate         *string `json:"end_date,omitempty"`
	StartAbsentType string  `json:"start_absent_type"`
	EndAbsentType   *string `json:"end_absent_type,omitempty"`
	Status          string  `json:"status"`
	Reason          string  `json:"reason,omitempty"`
	ActionByID      *string `json:"action_by_employee_id,omitempty"`
	RejectReason    *string `json:"reject_reason,omitempty"`
}

type HolidayView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}
