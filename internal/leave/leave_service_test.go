package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"leavedesk/internal/cache"
	cachesync "leavedesk/internal/cache/sync"
	"leavedesk/internal/cacheview"
	"leavedesk/internal/leave"
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/notification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repoStub is a function-field fake for the leave repository. Unset fields
// return zero values so each test only wires what it exercises.
type repoStub struct {
	createFn        func(ctx context.Context, l *leave.Leave) error
	findAllFn       func(ctx context.Context) ([]leave.Leave, error)
	findByIDFn      func(ctx context.Context, id string) (*leave.Leave, error)
	markApprovedFn  func(ctx context.Context, id string) (bool, error)
	markRejectedFn  func(ctx context.Context, id, rejectReason string) (bool, error)
	deletePendingFn func(ctx context.Context, id string) (bool, error)
	debitFn         func(ctx context.Context, employeeID, policyName string, amount decimal.Decimal) error
	getBalanceFn    func(ctx context.Context, employeeID, policyName string) (decimal.Decimal, error)
	managerOfFn     func(ctx context.Context, employeeID string) (*string, error)
	existsFn        func(ctx context.Context, employeeID string) (bool, error)
	overlapFn       func(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
}

func (r *repoStub) WithTx(tx *sql.Tx) leave.Repository { return r }

func (r *repoStub) Create(ctx context.Context, l *leave.Leave) error {
	if r.createFn != nil {
		return r.createFn(ctx, l)
	}
	return nil
}

func (r *repoStub) FindAll(ctx context.Context) ([]leave.Leave, error) {
	if r.findAllFn != nil {
		return r.findAllFn(ctx)
	}
	return nil, nil
}

func (r *repoStub) FindByID(ctx context.Context, id string) (*leave.Leave, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, errors.New("findByID not stubbed")
}

func (r *repoStub) MarkApproved(ctx context.Context, id string) (bool, error) {
	if r.markApprovedFn != nil {
		return r.markApprovedFn(ctx, id)
	}
	return false, nil
}

func (r *repoStub) MarkRejected(ctx context.Context, id, rejectReason string) (bool, error) {
	if r.markRejectedFn != nil {
		return r.markRejectedFn(ctx, id, rejectReason)
	}
	return false, nil
}

func (r *repoStub) DeletePending(ctx context.Context, id string) (bool, error) {
	if r.deletePendingFn != nil {
		return r.deletePendingFn(ctx, id)
	}
	return false, nil
}

func (r *repoStub) DebitBalance(ctx context.Context, employeeID, policyName string, amount decimal.Decimal) error {
	if r.debitFn != nil {
		return r.debitFn(ctx, employeeID, policyName, amount)
	}
	return nil
}

func (r *repoStub) GetBalance(ctx context.Context, employeeID, policyName string) (decimal.Decimal, error) {
	if r.getBalanceFn != nil {
		return r.getBalanceFn(ctx, employeeID, policyName)
	}
	return decimal.Zero, nil
}

func (r *repoStub) ReportManagerOf(ctx context.Context, employeeID string) (*string, error) {
	if r.managerOfFn != nil {
		return r.managerOfFn(ctx, employeeID)
	}
	return nil, nil
}

func (r *repoStub) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	if r.existsFn != nil {
		return r.existsFn(ctx, employeeID)
	}
	return true, nil
}

func (r *repoStub) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	if r.overlapFn != nil {
		return r.overlapFn(ctx, employeeID, startDate, endDate)
	}
	return false, nil
}

// outboxStub records jobs instead of writing to the outbox table.
type outboxStub struct {
	jobs []notification.OutboxJob
}

func (o *outboxStub) WithTx(tx *sql.Tx) notification.OutboxRepository { return o }
func (o *outboxStub) Create(ctx context.Context, job notification.OutboxJob) error {
	o.jobs = append(o.jobs, job)
	return nil
}
func (o *outboxStub) ListPending(ctx context.Context, limit int) ([]notification.OutboxJob, error) {
	return nil, nil
}
func (o *outboxStub) MarkSent(ctx context.Context, id string) error               { return nil }
func (o *outboxStub) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *repoStub
	outbox  *outboxStub
	service leave.Service
}

// setupServiceTest wires the service against stubs plus an expectation-free
// redis mock: every cache command errors, which the sync layer must absorb
// without affecting the result.
func setupServiceTest(t *testing.T, repo *repoStub, holidays []cacheview.HolidayView) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, _ := redismock.NewClientMock()
	store := cache.NewStore(rdb)

	leaveReader := cache.NewCollectionReader(store, cacheview.KeyLeaves,
		func(ctx context.Context) ([]cacheview.LeaveView, error) {
			ls, err := repo.FindAll(ctx)
			if err != nil {
				return nil, err
			}
			return leave.ToViewList(ls), nil
		})
	holidayReader := cache.NewCollectionReader(store, cacheview.KeyHolidays,
		func(ctx context.Context) ([]cacheview.HolidayView, error) {
			return holidays, nil
		})
	employeeReader := cache.NewCollectionReader(store, cacheview.KeyEmployees,
		func(ctx context.Context) ([]cacheview.EmployeeView, error) {
			return nil, nil
		})
	syncer := cachesync.NewSyncer(store, employeeReader, leaveReader, holidayReader)

	outbox := &outboxStub{}
	svc := leave.NewService(db, repo, leaveReader, holidayReader, syncer, notification.NewOutboxPublisher(outbox))

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		repo:    repo,
		outbox:  outbox,
		service: svc,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func pendingLeave(applicant, manager uuid.UUID) *leave.Leave {
	start, _ := time.Parse("2006-01-02", "2026-08-03")
	return &leave.Leave{
		ID:              uuid.New(),
		EmployeeID:      applicant,
		PolicyName:      "Casual Leave",
		StartDate:       start,
		StartAbsentType: cacheview.FullDay,
		Status:          cacheview.LeavePending,
		ActionByID:      &manager,
	}
}

func TestLeaveService_Apply(t *testing.T) {
	ctx := context.Background()
	applicant := uuid.New()
	manager := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		var created *leave.Leave
		repo := &repoStub{
			createFn: func(ctx context.Context, l *leave.Leave) error {
				created = l
				return nil
			},
			getBalanceFn: func(ctx context.Context, employeeID, policyName string) (decimal.Decimal, error) {
				return decimal.NewFromInt(5), nil
			},
			managerOfFn: func(ctx context.Context, employeeID string) (*string, error) {
				return &manager, nil
			},
		}
		deps := setupServiceTest(t, repo, nil)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Apply(ctx, applicant.String(), leave.ApplyLeaveRequest{
			PolicyName:      "Casual Leave",
			StartDate:       "2026-08-03", // a Monday
			StartAbsentType: cacheview.FullDay,
			Reason:          "family visit",
		})

		require.NoError(t, err)
		assert.Equal(t, cacheview.LeavePending, resp.Status)
		require.NotNil(t, resp.ActionByID)
		assert.Equal(t, manager, *resp.ActionByID)

		require.NotNil(t, created)
		assert.Equal(t, applicant, created.EmployeeID)

		require.Len(t, deps.outbox.jobs, 1)
		assert.Equal(t, "leave.request.applied.v1", deps.outbox.jobs[0].Target)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown policy", func(t *testing.T) {
		deps := setupServiceTest(t, &repoStub{}, nil)

		_, err := deps.service.Apply(ctx, applicant.String(), leave.ApplyLeaveRequest{
			PolicyName:      "Imaginary Leave",
			StartDate:       "2026-08-03",
			StartAbsentType: cacheview.FullDay,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrUnknownPolicy)
	})

	t.Run("overlap rejected before any write", func(t *testing.T) {
		repo := &repoStub{
			overlapFn: func(ctx context.Context, employeeID string, s, e time.Time) (bool, error) {
				return true, nil
			},
		}
		deps := setupServiceTest(t, repo, nil)

		_, err := deps.service.Apply(ctx, applicant.String(), leave.ApplyLeaveRequest{
			PolicyName:      "Casual Leave",
			StartDate:       "2026-08-03",
			StartAbsentType: cacheview.FullDay,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.Empty(t, deps.outbox.jobs)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("exceeds per-request limit", func(t *testing.T) {
		deps := setupServiceTest(t, &repoStub{}, nil)

		end := "2026-08-07"
		full := cacheview.FullDay
		_, err := deps.service.Apply(ctx, applicant.String(), leave.ApplyLeaveRequest{
			PolicyName:      "Casual Leave", // max 3 at once
			StartDate:       "2026-08-03",
			EndDate:         &end, // 5 working days
			StartAbsentType: cacheview.FullDay,
			EndAbsentType:   &full,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrExceedsMaxApply)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		repo := &repoStub{
			getBalanceFn: func(ctx context.Context, employeeID, policyName string) (decimal.Decimal, error) {
				return decimal.RequireFromString("0.5"), nil
			},
		}
		deps := setupServiceTest(t, repo, nil)

		_, err := deps.service.Apply(ctx, applicant.String(), leave.ApplyLeaveRequest{
			PolicyName:      "Casual Leave",
			StartDate:       "2026-08-03",
			StartAbsentType: cacheview.FullDay,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
	})

	t.Run("period of only non-working days", func(t *testing.T) {
		deps := setupServiceTest(t, &repoStub{}, nil)

		_, err := deps.service.Apply(ctx, applicant.String(), leave.ApplyLeaveRequest{
			PolicyName:      "Casual Leave",
			StartDate:       "2026-08-09", // a Sunday
			StartAbsentType: cacheview.FullDay,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrNothingToDebit)
	})
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()
	applicant := uuid.New()
	manager := uuid.New()

	t.Run("success debits exactly the computed amount", func(t *testing.T) {
		l := pendingLeave(applicant, manager)
		var debited decimal.Decimal
		flipped := false
		repo := &repoStub{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				cp := *l
				return &cp, nil
			},
			markApprovedFn: func(ctx context.Context, id string) (bool, error) {
				flipped = true
				return true, nil
			},
			debitFn: func(ctx context.Context, employeeID, policyName string, amount decimal.Decimal) error {
				debited = amount
				return nil
			},
		}
		deps := setupServiceTest(t, repo, nil)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Approve(ctx, manager.String(), cacheview.RoleReportManager, l.ID.String())

		require.NoError(t, err)
		assert.Equal(t, cacheview.LeaveApproved, resp.Status)
		assert.True(t, flipped)
		assert.True(t, debited.Equal(decimal.NewFromInt(1)), "one full working day, got %s", debited)

		require.Len(t, deps.outbox.jobs, 1)
		assert.Equal(t, "leave.request.actioned.v1", deps.outbox.jobs[0].Target)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("admin can approve someone else's assignment", func(t *testing.T) {
		l := pendingLeave(applicant, manager)
		repo := &repoStub{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				cp := *l
				return &cp, nil
			},
			markApprovedFn: func(ctx context.Context, id string) (bool, error) { return true, nil },
		}
		deps := setupServiceTest(t, repo, nil)
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Approve(ctx, uuid.NewString(), cacheview.RoleAdmin, l.ID.String())
		assert.NoError(t, err)
	})

	t.Run("stranger cannot approve", func(t *testing.T) {
		l := pendingLeave(applicant, manager)
		repo := &repoStub{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				cp := *l
				return &cp, nil
			},
		}
		deps := setupServiceTest(t, repo, nil)

		_, err := deps.service.Approve(ctx, uuid.NewString(), cacheview.RoleMember, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrNotActionedByYou)
	})

	t.Run("already decided", func(t *testing.T) {
		l := pendingLeave(applicant, manager)
		l.Status = cacheview.LeaveApproved
		repo := &repoStub{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				cp := *l
				return &cp, nil
			},
		}
		deps := setupServiceTest(t, repo, nil)

		_, err := deps.service.Approve(ctx, manager.String(), cacheview.RoleReportManager, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
	})

	t.Run("lost race rolls back without debiting", func(t *testing.T) {
		l := pendingLeave(applicant, manager)
		debitCalled := false
		repo := &repoStub{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				cp := *l
				return &cp, nil
			},
			// Another decision landed between the read and the update.
			markApprovedFn: func(ctx context.Context, id string) (bool, error) { return false, nil },
			debitFn: func(ctx context.Context, employeeID, policyName string, amount decimal.Decimal) error {
				debitCalled = true
				return nil
			},
		}
		deps := setupServiceTest(t, repo, nil)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, manager.String(), cacheview.RoleReportManager, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.False(t, debitCalled)
		assert.Empty(t, deps.outbox.jobs)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := context.Background()
	applicant := uuid.New()
	manager := uuid.New()

	t.Run("success never touches balances", func(t *testing.T) {
		l := pendingLeave(applicant, manager)
		debitCalled := false
		var gotReason string
		repo := &repoStub{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				cp := *l
				return &cp, nil
			},
			markRejectedFn: func(ctx context.Context, id, rejectReason string) (bool, error) {
				gotReason = rejectReason
				return true, nil
			},
			debitFn: func(ctx context.Context, employeeID, policyName string, amount decimal.Decimal) error {
				debitCalled = true
				return nil
			},
		}
		deps := setupServiceTest(t, repo, nil)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Reject(ctx, manager.String(), cacheview.RoleReportManager, l.ID.String(), "coverage gap")

		require.NoError(t, err)
		assert.Equal(t, cacheview.LeaveRejected, resp.Status)
		require.NotNil(t, resp.RejectReason)
		assert.Equal(t, "coverage gap", *resp.RejectReason)
		assert.Equal(t, "coverage gap", gotReason)
		assert.False(t, debitCalled)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reason required", func(t *testing.T) {
		deps := setupServiceTest(t, &repoStub{}, nil)

		_, err := deps.service.Reject(ctx, manager.String(), cacheview.RoleReportManager, uuid.NewString(), "")
		assert.ErrorIs(t, err, leaveerrors.ErrRejectReasonRequired)
	})
}

func TestLeaveService_Delete(t *testing.T) {
	ctx := context.Background()
	applicant := uuid.New()
	manager := uuid.New()

	t.Run("applicant deletes own pending leave", func(t *testing.T) {
		l := pendingLeave(applicant, manager)
		repo := &repoStub{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				cp := *l
				return &cp, nil
			},
			deletePendingFn: func(ctx context.Context, id string) (bool, error) { return true, nil },
		}
		deps := setupServiceTest(t, repo, nil)
		expectTx(t, deps.sqlMock, true)

		err := deps.service.Delete(ctx, applicant.String(), cacheview.RoleMember, l.ID.String())

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("someone else's leave is forbidden", func(t *testing.T) {
		l := pendingLeave(applicant, manager)
		repo := &repoStub{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				cp := *l
				return &cp, nil
			},
		}
		deps := setupServiceTest(t, repo, nil)

		err := deps.service.Delete(ctx, uuid.NewString(), cacheview.RoleMember, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrNotYourLeave)
	})
}
