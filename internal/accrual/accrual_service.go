// Package accrual credits leave balances on the policy schedule. The sweep
// is safe to run any number of times per period: each credit is gated by a
// unique (employee, policy, period) marker written in the same transaction
// as the balance update.
package accrual

import (
	"context"
	"database/sql"
	"errors"
	"time"

	cachesync "leavedesk/internal/cache/sync"
	"leavedesk/internal/cacheview"
	"leavedesk/internal/policy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	db     *sql.DB
	repo   Repository
	syncer *cachesync.Syncer
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, syncer *cachesync.Syncer, logger ...*zap.Logger) *Service {
	l := zap.L().Named("accrual.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.service")
	}
	return &Service{db: db, repo: repo, syncer: syncer, logger: l}
}

// RunSweep credits every due policy for every eligible employee as of now.
// Quarterly policies are due only in the first month of a quarter. A partial
// failure skips that employee/policy pair and moves on; the next sweep
// retries whatever was not marked.
func (s *Service) RunSweep(ctx context.Context, now time.Time) error {
	employeeIDs, err := s.repo.ListEligibleEmployeeIDs(ctx)
	if err != nil {
		s.logger.Error("accrual sweep list employees failed", zap.Error(err))
		return err
	}

	credited := 0
	skipped := 0
	failed := 0

	for _, pol := range policy.All() {
		quarterly := pol.Frequency == policy.FreqQuarterly
		if quarterly && !quarterStart(now) {
			continue
		}
		period := PeriodOf(now, quarterly)

		for _, employeeID := range employeeIDs {
			done, err := s.repo.HasIncrement(ctx, employeeID, pol.Name, period)
			if err != nil {
				s.logger.Error("accrual marker lookup failed",
					zap.String("employee_id", employeeID),
					zap.String("policy", pol.Name),
					zap.Error(err),
				)
				failed++
				continue
			}
			if done {
				skipped++
				continue
			}

			switch err := s.creditOne(ctx, employeeID, pol, period); {
			case err == nil:
				credited++
			case errors.Is(err, errAlreadyCredited):
				skipped++
			default:
				s.logger.Error("accrual credit failed",
					zap.String("employee_id", employeeID),
					zap.String("policy", pol.Name),
					zap.String("period", period),
					zap.Error(err),
				)
				failed++
			}
		}
	}

	if credited > 0 {
		// Balances changed wholesale; repatching every cached employee is
		// pointless, let the next read rebuild.
		s.syncer.Invalidate(ctx, cacheview.KeyEmployees, cacheview.KeyLeaves)
	}

	s.logger.Info("accrual sweep finished",
		zap.Time("as_of", now),
		zap.Int("credited", credited),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}

var errAlreadyCredited = errors.New("accrual: period already credited")

func (s *Service) creditOne(ctx context.Context, employeeID string, pol policy.LeavePolicy, period string) error {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	inserted, err := qtx.CreateIncrement(ctx, &BalanceIncrement{
		ID:         uuid.New(),
		EmployeeID: employeeUUID,
		PolicyName: pol.Name,
		Period:     period,
	})
	if err != nil {
		return err
	}
	if !inserted {
		// A concurrent sweep got here first.
		return errAlreadyCredited
	}

	// One incremental statement: a debit committing concurrently lands on the
	// same row, never under an absolute overwrite. Employees who predate a
	// policy get their row created here.
	if err := qtx.CreditBalance(ctx, employeeID, pol.Name, pol.Accrual, pol.Cap); err != nil {
		return err
	}

	return tx.Commit()
}

func quarterStart(t time.Time) bool {
	switch t.Month() {
	case time.January, time.April, time.July, time.October:
		return true
	}
	return false
}
