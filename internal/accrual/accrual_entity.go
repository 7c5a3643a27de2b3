package accrual

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BalanceIncrement is the idempotency marker for one accrual credit. One row
// per (employee, policy, period): the sweep inserts the marker and the credit
// in the same transaction, so re-running a period can never double-credit.
type BalanceIncrement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_increment_once,priority:1"`
	PolicyName string    `gorm:"size:100;not null;uniqueIndex:idx_increment_once,priority:2"`
	Period     string    `gorm:"size:10;not null;uniqueIndex:idx_increment_once,priority:3"`
	CreatedAt  time.Time
}

func (BalanceIncrement) TableName() string {
	return "balance_increments"
}

// PeriodOf renders the accrual period a sweep at t credits: "2026-08" for
// monthly policies, "2026-Q3" for quarterly.
func PeriodOf(t time.Time, quarterly bool) string {
	if !quarterly {
		return t.Format("2006-01")
	}
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
}
