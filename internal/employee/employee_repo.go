package employee

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	SeedBalance(ctx context.Context, employeeID uuid.UUID, policyName string, balance decimal.Decimal) error
	FindAllExpanded(ctx context.Context) ([]Employee, error)
	FindByIDExpanded(ctx context.Context, id string) (*Employee, error)
	UpdateRole(ctx context.Context, id, role string) error
	UpdateStatus(ctx context.Context, id, status string) error
	DetachMembers(ctx context.Context, managerID string) error
	ClearPendingActionBy(ctx context.Context, managerID string) error
	SetReportManager(ctx context.Context, memberID string, managerID *string) error
	ClearPendingActionByForMember(ctx context.Context, managerID, memberID string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// exec routes writes through the ambient transaction when one is attached,
// so multi-row cascades commit or roll back together.
func (r *repository) exec(ctx context.Context, query string, args ...any) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, query, args...)
		return err
	}
	return r.db.WithContext(ctx).Exec(query, args...).Error
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	query := `
        INSERT INTO employees (id, full_name, email, role, status, report_manager_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, now(), now())
    `
	return r.exec(ctx, query, e.ID, e.FullName, e.Email, e.Role, e.Status, e.ReportManagerID)
}

func (r *repository) SeedBalance(ctx context.Context, employeeID uuid.UUID, policyName string, balance decimal.Decimal) error {
	query := `
        INSERT INTO leave_balances (employee_id, policy_name, balance, created_at, updated_at)
        VALUES ($1, $2, $3, now(), now())
        ON CONFLICT (employee_id, policy_name) DO NOTHING
    `
	return r.exec(ctx, query, employeeID, policyName, balance)
}

// expanded preloads every nested relation the cache shape carries. Cache
// fills must match this shape exactly; the patch functions assume it.
func (r *repository) expanded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("LeaveBalances").
		Preload("LeavesApplied").
		Preload("LeavesActioned").
		Preload("AssignMembers")
}

func (r *repository) FindAllExpanded(ctx context.Context) ([]Employee, error) {
	var emps []Employee
	err := r.expanded(ctx).
		Order("created_at ASC").
		Find(&emps).Error
	return emps, err
}

func (r *repository) FindByIDExpanded(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.expanded(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) UpdateRole(ctx context.Context, id, role string) error {
	return r.exec(ctx, `UPDATE employees SET role = $2, updated_at = now() WHERE id = $1`, id, role)
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.exec(ctx, `UPDATE employees SET status = $2, updated_at = now() WHERE id = $1`, id, status)
}

func (r *repository) DetachMembers(ctx context.Context, managerID string) error {
	return r.exec(ctx, `
        UPDATE employees SET report_manager_id = NULL, updated_at = now()
        WHERE report_manager_id = $1
    `, managerID)
}

func (r *repository) ClearPendingActionBy(ctx context.Context, managerID string) error {
	return r.exec(ctx, `
        UPDATE leaves SET action_by_employee_id = NULL, updated_at = now()
        WHERE action_by_employee_id = $1 AND status = 'PENDING'
    `, managerID)
}

func (r *repository) SetReportManager(ctx context.Context, memberID string, managerID *string) error {
	return r.exec(ctx, `
        UPDATE employees SET report_manager_id = $2, updated_at = now()
        WHERE id = $1
    `, memberID, managerID)
}

func (r *repository) ClearPendingActionByForMember(ctx context.Context, managerID, memberID string) error {
	return r.exec(ctx, `
        UPDATE leaves SET action_by_employee_id = NULL, updated_at = now()
        WHERE employee_id = $2 AND action_by_employee_id = $1 AND status = 'PENDING'
    `, managerID, memberID)
}
