package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context) ([]Leave, error)
	FindByID(ctx context.Context, id string) (*Leave, error)
	// MarkApproved flips PENDING -> APPROVED and reports whether a row
	// changed. The WHERE status='PENDING' gate is what makes the balance
	// debit exactly-once.
	MarkApproved(ctx context.Context, id string) (bool, error)
	MarkRejected(ctx context.Context, id, rejectReason string) (bool, error)
	DeletePending(ctx context.Context, id string) (bool, error)
	DebitBalance(ctx context.Context, employeeID, policyName string, amount decimal.Decimal) error
	GetBalance(ctx context.Context, employeeID, policyName string) (decimal.Decimal, error)
	ReportManagerOf(ctx context.Context, employeeID string) (*string, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *Leave) error {
	query := `
        INSERT INTO leaves (
            id, employee_id, policy_name, start_date, end_date,
            start_absent_type, end_absent_type, status, reason,
            action_by_employee_id, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
    `
	_, err := r.exec(ctx, query,
		l.ID, l.EmployeeID, l.PolicyName, l.StartDate, l.EndDate,
		l.StartAbsentType, l.EndAbsentType, l.Status, l.Reason, l.ActionByID,
	)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) MarkApproved(ctx context.Context, id string) (bool, error) {
	rows, err := r.exec(ctx, `
        UPDATE leaves SET status = 'APPROVED', updated_at = now()
        WHERE id = $1 AND status = 'PENDING' AND deleted_at IS NULL
    `, id)
	return rows == 1, err
}

func (r *repository) MarkRejected(ctx context.Context, id, rejectReason string) (bool, error) {
	rows, err := r.exec(ctx, `
        UPDATE leaves SET status = 'REJECTED', reject_reason = $2, updated_at = now()
        WHERE id = $1 AND status = 'PENDING' AND deleted_at IS NULL
    `, id, rejectReason)
	return rows == 1, err
}

func (r *repository) DeletePending(ctx context.Context, id string) (bool, error) {
	rows, err := r.exec(ctx, `
        UPDATE leaves SET deleted_at = now()
        WHERE id = $1 AND status = 'PENDING' AND deleted_at IS NULL
    `, id)
	return rows == 1, err
}

func (r *repository) DebitBalance(ctx context.Context, employeeID, policyName string, amount decimal.Decimal) error {
	_, err := r.exec(ctx, `
        UPDATE leave_balances SET balance = balance - $3, updated_at = now()
        WHERE employee_id = $1 AND policy_name = $2
    `, employeeID, policyName, amount)
	return err
}

func (r *repository) GetBalance(ctx context.Context, employeeID, policyName string) (decimal.Decimal, error) {
	var b struct {
		Balance decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("leave_balances").
		Where("employee_id = ?", employeeID).
		Where("policy_name = ?", policyName).
		Select("balance").
		Take(&b).Error
	return b.Balance, err
}

func (r *repository) ReportManagerOf(ctx context.Context, employeeID string) (*string, error) {
	var row struct {
		ReportManagerID *string
	}
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		Select("report_manager_id").
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.ReportManagerID, nil
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status <> ?", "REJECTED").
		Where("NOT (COALESCE(end_date, start_date) < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, err
}
