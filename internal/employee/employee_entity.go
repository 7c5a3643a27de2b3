package employee

import (
	"time"

	"leavedesk/internal/leave"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Employee struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName string    `gorm:"type:varchar(120);not null"`
	Email    string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_employees_email"`

	Role   string `gorm:"type:varchar(20);not null;default:'MEMBER';index:idx_employees_role"`
	Status string `gorm:"type:varchar(20);not null;default:'Probation'"`

	ReportManagerID *uuid.UUID `gorm:"type:uuid;index:idx_employees_report_manager"`

	LeaveBalances  []LeaveBalance `gorm:"foreignKey:EmployeeID"`
	LeavesApplied  []leave.Leave  `gorm:"foreignKey:EmployeeID"`
	LeavesActioned []leave.Leave  `gorm:"foreignKey:ActionByID"`
	AssignMembers  []Employee     `gorm:"foreignKey:ReportManagerID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employees_deleted_at"`
}

// LeaveBalance is the remaining day-units an employee holds against one
// policy. 0.5 is the smallest unit; numeric(6,1) keeps it exact in postgres.
type LeaveBalance struct {
	EmployeeID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PolicyName string          `gorm:"type:varchar(60);primaryKey"`
	Balance    decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}
