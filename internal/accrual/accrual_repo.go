package accrual

import (
	"context"
	"database/sql"

	"leavedesk/internal/cacheview"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// ListEligibleEmployeeIDs returns employees whose balances accrue:
	// everyone except admins and inactive employees.
	ListEligibleEmployeeIDs(ctx context.Context) ([]string, error)
	HasIncrement(ctx context.Context, employeeID, policyName, period string) (bool, error)
	// CreateIncrement inserts the idempotency marker; returns false when the
	// (employee, policy, period) marker already exists.
	CreateIncrement(ctx context.Context, inc *BalanceIncrement) (bool, error)
	// CreditBalance adds amount to the (employee, policy) balance in a single
	// statement, creating the row when absent and clamping at cap when one is
	// set. Concurrent debits on the same row are never overwritten.
	CreditBalance(ctx context.Context, employeeID, policyName string, amount decimal.Decimal, cap *decimal.Decimal) error
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

func (r *repository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	res := r.db.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

func (r *repository) ListEligibleEmployeeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("role <> ?", cacheview.RoleAdmin).
		Where("status <> ?", cacheview.StatusInActive).
		Where("deleted_at IS NULL").
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) HasIncrement(ctx context.Context, employeeID, policyName, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BalanceIncrement{}).
		Where("employee_id = ?", employeeID).
		Where("policy_name = ?", policyName).
		Where("period = ?", period).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateIncrement(ctx context.Context, inc *BalanceIncrement) (bool, error) {
	rows, err := r.exec(ctx, `
        INSERT INTO balance_increments (id, employee_id, policy_name, period, created_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (employee_id, policy_name, period) DO NOTHING
    `, inc.ID, inc.EmployeeID, inc.PolicyName, inc.Period)
	return rows == 1, err
}

func (r *repository) CreditBalance(ctx context.Context, employeeID, policyName string, amount decimal.Decimal, cap *decimal.Decimal) error {
	if cap != nil {
		_, err := r.exec(ctx, `
        INSERT INTO leave_balances (employee_id, policy_name, balance, created_at, updated_at)
        VALUES ($1, $2, LEAST($3, $4), now(), now())
        ON CONFLICT (employee_id, policy_name)
        DO UPDATE SET balance = LEAST(leave_balances.balance + $3, $4), updated_at = now()
    `, employeeID, policyName, amount, *cap)
		return err
	}
	_, err := r.exec(ctx, `
        INSERT INTO leave_balances (employee_id, policy_name, balance, created_at, updated_at)
        VALUES ($1, $2, $3, now(), now())
        ON CONFLICT (employee_id, policy_name)
        DO UPDATE SET balance = leave_balances.balance + $3, updated_at = now()
    `, employeeID, policyName, amount)
	return err
}
