package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"leavedesk/internal/cache"
	cachesync "leavedesk/internal/cache/sync"
	"leavedesk/internal/cacheview"
	"leavedesk/internal/cacheview/patch"
	"leavedesk/internal/events"
	leaveerrors "leavedesk/internal/leave/errors"
	"leavedesk/internal/notification"
	"leavedesk/internal/policy"
	"leavedesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Apply(ctx context.Context, applicantID string, req ApplyLeaveRequest) (cacheview.LeaveView, error)
	GetAll(ctx context.Context) ([]cacheview.LeaveView, error)
	GetByID(ctx context.Context, id string) (cacheview.LeaveView, error)
	Approve(ctx context.Context, actorID, actorRole, id string) (cacheview.LeaveView, error)
	Reject(ctx context.Context, actorID, actorRole, id, rejectReason string) (cacheview.LeaveView, error)
	Delete(ctx context.Context, actorID, actorRole, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	reader   *cache.CollectionReader[cacheview.LeaveView]
	holidays *cache.CollectionReader[cacheview.HolidayView]
	syncer   *cachesync.Syncer
	outbox   *notification.OutboxPublisher
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	reader *cache.CollectionReader[cacheview.LeaveView],
	holidays *cache.CollectionReader[cacheview.HolidayView],
	syncer *cachesync.Syncer,
	outbox *notification.OutboxPublisher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		reader:   reader,
		holidays: holidays,
		syncer:   syncer,
		outbox:   outbox,
		logger:   l,
	}
}

func (s *service) Apply(ctx context.Context, applicantID string, req ApplyLeaveRequest) (cacheview.LeaveView, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", applicantID),
		zap.String("policy", req.PolicyName),
		zap.String("start_date", req.StartDate),
	)

	employeeUUID, err := uuid.Parse(applicantID)
	if err != nil {
		return cacheview.LeaveView{}, leaveerrors.ErrInvalidEmployeeID
	}

	pol, ok := policy.Get(req.PolicyName)
	if !ok {
		return cacheview.LeaveView{}, leaveerrors.ErrUnknownPolicy
	}

	startDate, endDate, err := parseSpan(req.StartDate, req.EndDate)
	if err != nil {
		return cacheview.LeaveView{}, err
	}

	exists, err := s.repo.EmployeeExists(ctx, applicantID)
	if err != nil {
		return cacheview.LeaveView{}, err
	}
	if !exists {
		return cacheview.LeaveView{}, leaveerrors.ErrEmployeeNotFound
	}

	spanEnd := startDate
	if endDate != nil {
		spanEnd = *endDate
	}
	overlap, err := s.repo.HasOverlappingPeriod(ctx, applicantID, startDate, spanEnd)
	if err != nil {
		return cacheview.LeaveView{}, err
	}
	if overlap {
		s.logger.Warn("apply leave overlap detected",
			zap.String("employee_id", applicantID),
			zap.String("start_date", req.StartDate),
		)
		return cacheview.LeaveView{}, leaveerrors.ErrLeaveOverlap
	}

	holidayDates, err := s.holidayDates(ctx)
	if err != nil {
		return cacheview.LeaveView{}, err
	}
	requested := CalculateDebit(startDate, endDate, req.StartAbsentType, req.EndAbsentType, pol.Sandwich, holidayDates)
	if requested.IsZero() {
		return cacheview.LeaveView{}, leaveerrors.ErrNothingToDebit
	}
	if pol.MaxApplyAtOnce != nil && requested.GreaterThan(*pol.MaxApplyAtOnce) {
		return cacheview.LeaveView{}, leaveerrors.ErrExceedsMaxApply
	}

	balance, err := s.repo.GetBalance(ctx, applicantID, pol.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return cacheview.LeaveView{}, err
	}
	if balance.LessThan(requested) {
		s.logger.Warn("apply leave insufficient balance",
			zap.String("employee_id", applicantID),
			zap.String("policy", pol.Name),
			zap.String("balance", balance.String()),
			zap.String("requested", requested.String()),
		)
		return cacheview.LeaveView{}, leaveerrors.ErrInsufficientBalance
	}

	managerID, err := s.repo.ReportManagerOf(ctx, applicantID)
	if err != nil {
		return cacheview.LeaveView{}, err
	}
	var actionBy *uuid.UUID
	if managerID != nil {
		parsed, err := uuid.Parse(*managerID)
		if err == nil {
			actionBy = &parsed
		}
	}

	l := &Leave{
		ID:              uuid.New(),
		EmployeeID:      employeeUUID,
		PolicyName:      pol.Name,
		StartDate:       startDate,
		EndDate:         endDate,
		StartAbsentType: req.StartAbsentType,
		EndAbsentType:   req.EndAbsentType,
		Status:          cacheview.LeavePending,
		Reason:          req.Reason,
		ActionByID:      actionBy,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply leave begin tx failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("apply leave persist failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}

	if err := s.enqueueApplied(ctx, tx, rid, l); err != nil {
		return cacheview.LeaveView{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply leave commit failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}

	view := ToView(*l)
	s.syncer.LeaveApplied(ctx, view)

	s.logger.Info("apply leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("requested", requested.String()),
	)
	return view, nil
}

func (s *service) enqueueApplied(ctx context.Context, tx *sql.Tx, rid string, l *Leave) error {
	event := events.LeaveAppliedEvent{
		EventType:  "leave_applied",
		RequestID:  rid,
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		PolicyName: l.PolicyName,
		OccurredAt: time.Now().UTC(),
	}
	if l.ActionByID != nil {
		event.ActionByID = l.ActionByID.String()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Publish(ctx, notification.Job{
		Target:  events.LeaveAppliedTopic,
		Payload: payload,
	}); err != nil {
		s.logger.Error("apply leave outbox persist failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) GetAll(ctx context.Context) ([]cacheview.LeaveView, error) {
	return s.reader.Read(ctx)
}

func (s *service) GetByID(ctx context.Context, id string) (cacheview.LeaveView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return cacheview.LeaveView{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cacheview.LeaveView{}, leaveerrors.ErrLeaveNotFound
		}
		return cacheview.LeaveView{}, err
	}
	return ToView(*l), nil
}

// Approve flips a pending leave to APPROVED and debits the applicant's
// balance for the computed day-units. The debit rides the same transaction
// as the status gate, so it happens exactly once no matter how often the
// endpoint is hit.
func (s *service) Approve(ctx context.Context, actorID, actorRole, id string) (cacheview.LeaveView, error) {
	l, err := s.loadActionable(ctx, actorID, actorRole, id)
	if err != nil {
		return cacheview.LeaveView{}, err
	}

	holidayDates, err := s.holidayDates(ctx)
	if err != nil {
		return cacheview.LeaveView{}, err
	}
	pol, ok := policy.Get(l.PolicyName)
	if !ok {
		return cacheview.LeaveView{}, leaveerrors.ErrUnknownPolicy
	}
	deducted := CalculateDebit(l.StartDate, l.EndDate, l.StartAbsentType, l.EndAbsentType, pol.Sandwich, holidayDates)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	flipped, err := qtx.MarkApproved(ctx, id)
	if err != nil {
		s.logger.Error("approve leave persist failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}
	if !flipped {
		// Lost the race to another decision; nothing was debited.
		return cacheview.LeaveView{}, leaveerrors.ErrInvalidStatusTransition
	}
	if err := qtx.DebitBalance(ctx, l.EmployeeID.String(), l.PolicyName, deducted); err != nil {
		s.logger.Error("approve leave debit failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}
	if err := s.enqueueActioned(ctx, tx, l, cacheview.LeaveApproved, ""); err != nil {
		return cacheview.LeaveView{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}

	s.syncer.LeaveActioned(ctx, patch.LeaveStatusPatch{
		LeaveID:         id,
		EmployeeID:      l.EmployeeID.String(),
		ActionByID:      ToView(*l).ActionByID,
		NewStatus:       cacheview.LeaveApproved,
		PolicyName:      l.PolicyName,
		DeductedBalance: deducted,
	})

	l.Status = cacheview.LeaveApproved
	s.logger.Info("approve leave success",
		zap.String("leave_id", id),
		zap.String("deducted", deducted.String()),
	)
	return ToView(*l), nil
}

func (s *service) Reject(ctx context.Context, actorID, actorRole, id, rejectReason string) (cacheview.LeaveView, error) {
	if rejectReason == "" {
		return cacheview.LeaveView{}, leaveerrors.ErrRejectReasonRequired
	}

	l, err := s.loadActionable(ctx, actorID, actorRole, id)
	if err != nil {
		return cacheview.LeaveView{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject leave begin tx failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	flipped, err := qtx.MarkRejected(ctx, id, rejectReason)
	if err != nil {
		s.logger.Error("reject leave persist failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}
	if !flipped {
		return cacheview.LeaveView{}, leaveerrors.ErrInvalidStatusTransition
	}
	if err := s.enqueueActioned(ctx, tx, l, cacheview.LeaveRejected, rejectReason); err != nil {
		return cacheview.LeaveView{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("reject leave commit failed", zap.Error(err))
		return cacheview.LeaveView{}, err
	}

	s.syncer.LeaveActioned(ctx, patch.LeaveStatusPatch{
		LeaveID:         id,
		EmployeeID:      l.EmployeeID.String(),
		ActionByID:      ToView(*l).ActionByID,
		NewStatus:       cacheview.LeaveRejected,
		PolicyName:      l.PolicyName,
		DeductedBalance: decimal.Zero,
		RejectReason:    &rejectReason,
	})

	l.Status = cacheview.LeaveRejected
	l.RejectReason = &rejectReason
	s.logger.Info("reject leave success", zap.String("leave_id", id))
	return ToView(*l), nil
}

func (s *service) Delete(ctx context.Context, actorID, actorRole, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}
	if l.EmployeeID.String() != actorID && !isAdminRole(actorRole) {
		return leaveerrors.ErrNotYourLeave
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deleted, err := s.repo.WithTx(tx).DeletePending(ctx, id)
	if err != nil {
		s.logger.Error("delete leave persist failed", zap.Error(err))
		return err
	}
	if !deleted {
		return leaveerrors.ErrInvalidStatusTransition
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncer.LeaveDeleted(ctx, ToView(*l))

	s.logger.Info("delete leave success", zap.String("leave_id", id))
	return nil
}

// loadActionable fetches a pending leave and checks the actor may decide it:
// the assigned manager, or an admin role.
func (s *service) loadActionable(ctx context.Context, actorID, actorRole, id string) (*Leave, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	if l.Status != cacheview.LeavePending {
		return nil, leaveerrors.ErrInvalidStatusTransition
	}
	if !isAdminRole(actorRole) {
		if l.ActionByID == nil || l.ActionByID.String() != actorID {
			return nil, leaveerrors.ErrNotActionedByYou
		}
	}
	return l, nil
}

func (s *service) enqueueActioned(ctx context.Context, tx *sql.Tx, l *Leave, status, rejectReason string) error {
	event := events.LeaveActionedEvent{
		EventType:    "leave_actioned",
		RequestID:    contextutil.GetRequestID(ctx),
		LeaveID:      l.ID.String(),
		EmployeeID:   l.EmployeeID.String(),
		Status:       status,
		RejectReason: rejectReason,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Publish(ctx, notification.Job{
		Target:  events.LeaveActionedTopic,
		Payload: payload,
	}); err != nil {
		s.logger.Error("leave actioned outbox persist failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) holidayDates(ctx context.Context) ([]time.Time, error) {
	views, err := s.holidays.Read(ctx)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(views))
	for _, v := range views {
		d, err := time.Parse(dateLayout, v.Date)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func isAdminRole(role string) bool {
	return role == cacheview.RoleAdmin || role == cacheview.RoleSubAdmin
}

func parseSpan(start string, end *string) (time.Time, *time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, nil, leaveerrors.ErrInvalidDateFormat
	}
	if end == nil {
		return startDate, nil, nil
	}
	endDate, err := time.Parse(dateLayout, *end)
	if err != nil {
		return time.Time{}, nil, leaveerrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return time.Time{}, nil, leaveerrors.ErrInvalidDateRange
	}
	return startDate, &endDate, nil
}
