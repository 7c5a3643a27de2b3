package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"leavedesk/internal/cache"
	cachesync "leavedesk/internal/cache/sync"
	"leavedesk/internal/cacheview"
	employeeerrors "leavedesk/internal/employee/errors"
	"leavedesk/internal/events"
	"leavedesk/internal/notification"
	"leavedesk/internal/policy"
	"leavedesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (cacheview.EmployeeView, error)
	GetAll(ctx context.Context) ([]cacheview.EmployeeView, error)
	GetByID(ctx context.Context, id string) (cacheview.EmployeeView, error)
	ChangeRole(ctx context.Context, id, newRole string) error
	ChangeStatus(ctx context.Context, id, newStatus string) error
	AssignMembers(ctx context.Context, managerID string, memberIDs []string) error
	UnassignMember(ctx context.Context, managerID, memberID string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	store  *cache.Store
	reader *cache.CollectionReader[cacheview.EmployeeView]
	syncer *cachesync.Syncer
	outbox *notification.OutboxPublisher
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	store *cache.Store,
	reader *cache.CollectionReader[cacheview.EmployeeView],
	syncer *cachesync.Syncer,
	outbox *notification.OutboxPublisher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		store:  store,
		reader: reader,
		syncer: syncer,
		outbox: outbox,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (cacheview.EmployeeView, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
		zap.String("role", req.Role),
	)

	status := req.Status
	if status == "" {
		status = cacheview.StatusProbation
	}

	var managerID *uuid.UUID
	if req.ReportManagerID != nil {
		parsed, err := uuid.Parse(*req.ReportManagerID)
		if err != nil {
			return cacheview.EmployeeView{}, employeeerrors.ErrInvalidEmployeeID
		}
		mgr, err := s.repo.FindByIDExpanded(ctx, parsed.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return cacheview.EmployeeView{}, employeeerrors.ErrManagerNotFound
			}
			return cacheview.EmployeeView{}, err
		}
		if mgr.Role != cacheview.RoleReportManager {
			return cacheview.EmployeeView{}, employeeerrors.ErrNotAManager
		}
		managerID = &parsed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.Error(err))
		return cacheview.EmployeeView{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl := &Employee{
		ID:              uuid.New(),
		FullName:        req.FullName,
		Email:           req.Email,
		Role:            req.Role,
		Status:          status,
		ReportManagerID: managerID,
	}
	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return cacheview.EmployeeView{}, mapRepositoryError(err)
	}

	// Seed a zero balance per policy so the accrual sweep and the approval
	// debit always have a row to hit.
	for _, p := range policy.All() {
		if err := qtx.SeedBalance(ctx, empl.ID, p.Name, decimal.Zero); err != nil {
			s.logger.Error("seed balance failed",
				zap.String("policy", p.Name),
				zap.Error(err),
			)
			return cacheview.EmployeeView{}, err
		}
	}

	event := events.EmployeeCreatedEvent{
		EventType:  "employee_created",
		RequestID:  rid,
		EmployeeID: empl.ID.String(),
		Email:      empl.Email,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return cacheview.EmployeeView{}, err
	}
	if err := s.outbox.WithTx(tx).Publish(ctx, notification.Job{
		Target:  events.EmployeeCreatedTopic,
		Payload: payload,
	}); err != nil {
		s.logger.Error("create employee outbox persist failed", zap.Error(err))
		return cacheview.EmployeeView{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.Error(err))
		return cacheview.EmployeeView{}, err
	}

	view := ToView(*empl)
	view.LeaveBalances = seededBalances(empl.ID)
	s.syncer.EmployeeCreated(ctx, view)

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)
	return view, nil
}

func seededBalances(employeeID uuid.UUID) []cacheview.BalanceView {
	policies := policy.All()
	out := make([]cacheview.BalanceView, 0, len(policies))
	for _, p := range policies {
		out = append(out, cacheview.BalanceView{
			EmployeeID: employeeID.String(),
			PolicyName: p.Name,
			Balance:    decimal.Zero,
		})
	}
	return out
}

func (s *service) GetAll(ctx context.Context) ([]cacheview.EmployeeView, error) {
	views, err := s.reader.Read(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return views, nil
}

func (s *service) GetByID(ctx context.Context, id string) (cacheview.EmployeeView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return cacheview.EmployeeView{}, employeeerrors.ErrInvalidEmployeeID
	}

	var cached cacheview.EmployeeView
	if found, err := s.store.Get(ctx, cacheview.KeyUser(id), &cached); err == nil && found {
		return cached, nil
	}

	empl, err := s.repo.FindByIDExpanded(ctx, id)
	if err != nil {
		return cacheview.EmployeeView{}, mapRepositoryError(err)
	}

	view := ToView(*empl)
	if err := s.store.Set(ctx, cacheview.KeyUser(id), view); err != nil {
		s.logger.Warn("single employee cache fill failed",
			zap.String("employee_id", id),
			zap.Error(err),
		)
	}
	return view, nil
}

// ChangeRole swaps an employee's role. Demoting a report manager cascades in
// one transaction: members are detached and their pending leaves stop
// pointing at the former manager.
func (s *service) ChangeRole(ctx context.Context, id, newRole string) error {
	s.logger.Debug("change role requested",
		zap.String("employee_id", id),
		zap.String("new_role", newRole),
	)

	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByIDExpanded(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("change role begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.UpdateRole(ctx, id, newRole); err != nil {
		s.logger.Error("change role persist failed", zap.Error(err))
		return err
	}

	if empl.Role == cacheview.RoleReportManager && newRole != cacheview.RoleReportManager {
		if err := qtx.DetachMembers(ctx, id); err != nil {
			s.logger.Error("change role detach members failed", zap.Error(err))
			return err
		}
		if err := qtx.ClearPendingActionBy(ctx, id); err != nil {
			s.logger.Error("change role clear pending actions failed", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("change role commit failed", zap.Error(err))
		return err
	}

	s.syncer.RoleChanged(ctx, id, newRole)

	s.logger.Info("change role success",
		zap.String("employee_id", id),
		zap.String("new_role", newRole),
	)
	return nil
}

func (s *service) ChangeStatus(ctx context.Context, id, newStatus string) error {
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}
	if _, err := s.repo.FindByIDExpanded(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).UpdateStatus(ctx, id, newStatus); err != nil {
		s.logger.Error("change status persist failed", zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncer.StatusChanged(ctx, id, newStatus)

	s.logger.Info("change status success",
		zap.String("employee_id", id),
		zap.String("status", newStatus),
	)
	return nil
}

func (s *service) AssignMembers(ctx context.Context, managerID string, memberIDs []string) error {
	s.logger.Debug("assign members requested",
		zap.String("manager_id", managerID),
		zap.Int("member_count", len(memberIDs)),
	)

	mgr, err := s.repo.FindByIDExpanded(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return employeeerrors.ErrManagerNotFound
		}
		return err
	}
	if mgr.Role != cacheview.RoleReportManager {
		return employeeerrors.ErrNotAManager
	}
	for _, memberID := range memberIDs {
		if memberID == managerID {
			return employeeerrors.ErrSelfAssignment
		}
		if _, err := s.repo.FindByIDExpanded(ctx, memberID); err != nil {
			return mapRepositoryError(err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	for _, memberID := range memberIDs {
		if err := qtx.SetReportManager(ctx, memberID, &managerID); err != nil {
			s.logger.Error("assign member persist failed",
				zap.String("member_id", memberID),
				zap.Error(err),
			)
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncer.MembersAssigned(ctx, managerID, memberIDs)

	s.logger.Info("assign members success",
		zap.String("manager_id", managerID),
		zap.Int("member_count", len(memberIDs)),
	)
	return nil
}

func (s *service) UnassignMember(ctx context.Context, managerID, memberID string) error {
	member, err := s.repo.FindByIDExpanded(ctx, memberID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if member.ReportManagerID == nil || member.ReportManagerID.String() != managerID {
		return employeeerrors.ErrMemberNotAssigned
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.SetReportManager(ctx, memberID, nil); err != nil {
		s.logger.Error("unassign member persist failed", zap.Error(err))
		return err
	}
	if err := qtx.ClearPendingActionByForMember(ctx, managerID, memberID); err != nil {
		s.logger.Error("unassign member clear pending actions failed", zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncer.MemberRemoved(ctx, managerID, memberID)

	s.logger.Info("unassign member success",
		zap.String("manager_id", managerID),
		zap.String("member_id", memberID),
	)
	return nil
}
