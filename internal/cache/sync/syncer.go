// Package sync propagates committed database mutations into the cached
// collections. Every method runs strictly after the authoritative write:
// read the affected collections, apply the pure patch, write the result
// back. If any of that fails the affected keys are deleted instead, so the
// next read repopulates from the database. Nothing here ever fails the
// request that triggered it.
package sync

import (
	"context"

	"leavedesk/internal/cache"
	"leavedesk/internal/cacheview"
	"leavedesk/internal/cacheview/patch"

	"go.uber.org/zap"
)

type Syncer struct {
	store     *cache.Store
	employees *cache.CollectionReader[cacheview.EmployeeView]
	leaves    *cache.CollectionReader[cacheview.LeaveView]
	holidays  *cache.CollectionReader[cacheview.HolidayView]
	logger    *zap.Logger
}

func NewSyncer(
	store *cache.Store,
	employees *cache.CollectionReader[cacheview.EmployeeView],
	leaves *cache.CollectionReader[cacheview.LeaveView],
	holidays *cache.CollectionReader[cacheview.HolidayView],
	logger ...*zap.Logger,
) *Syncer {
	l := zap.L().Named("cache.sync")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cache.sync")
	}
	return &Syncer{
		store:     store,
		employees: employees,
		leaves:    leaves,
		holidays:  holidays,
		logger:    l,
	}
}

// run is the single recovery boundary: a failing apply demotes the patch to
// an invalidation of every key that might now be stale.
func (s *Syncer) run(ctx context.Context, op string, staleKeys []string, apply func(ctx context.Context) error) {
	err := apply(ctx)
	if err == nil {
		return
	}

	s.logger.Error("cache patch failed, invalidating",
		zap.String("op", op),
		zap.Strings("keys", staleKeys),
		zap.Error(err),
	)
	if delErr := s.store.Delete(ctx, staleKeys...); delErr != nil {
		// Both the patch and the invalidation failed; the cache may serve
		// stale data until the next successful write or restart.
		s.logger.Error("cache invalidation failed",
			zap.String("op", op),
			zap.Strings("keys", staleKeys),
			zap.Error(delErr),
		)
	}
}

func (s *Syncer) EmployeeCreated(ctx context.Context, v cacheview.EmployeeView) {
	keys := []string{cacheview.KeyEmployees, cacheview.KeyUser(v.ID)}
	if v.ReportManagerID != nil {
		keys = append(keys, cacheview.KeyUser(*v.ReportManagerID))
	}
	s.run(ctx, "employee_created", keys, func(ctx context.Context) error {
		emps, err := s.employees.Read(ctx)
		if err != nil {
			return err
		}
		if err := s.store.Set(ctx, cacheview.KeyEmployees, patch.EmployeeCreate(emps, v)); err != nil {
			return err
		}
		if err := s.store.Set(ctx, cacheview.KeyUser(v.ID), v); err != nil {
			return err
		}
		// The manager's single entry now misses the new member; drop it.
		if v.ReportManagerID != nil {
			return s.store.Delete(ctx, cacheview.KeyUser(*v.ReportManagerID))
		}
		return nil
	})
}

func (s *Syncer) RoleChanged(ctx context.Context, employeeID, newRole string) {
	keys := []string{cacheview.KeyEmployees, cacheview.KeyLeaves, cacheview.KeyUser(employeeID)}
	s.run(ctx, "role_changed", keys, func(ctx context.Context) error {
		emps, leaves, err := s.readEmployeesAndLeaves(ctx)
		if err != nil {
			return err
		}
		emps, leaves = patch.RoleChange(emps, leaves, employeeID, newRole)
		if err := s.writeEmployeesAndLeaves(ctx, emps, leaves); err != nil {
			return err
		}
		// Single-employee entries are not patched in place; drop them.
		return s.store.Delete(ctx, cacheview.KeyUser(employeeID))
	})
}

func (s *Syncer) StatusChanged(ctx context.Context, employeeID, newStatus string) {
	keys := []string{cacheview.KeyEmployees, cacheview.KeyUser(employeeID)}
	s.run(ctx, "status_changed", keys, func(ctx context.Context) error {
		emps, err := s.employees.Read(ctx)
		if err != nil {
			return err
		}
		if err := s.store.Set(ctx, cacheview.KeyEmployees, patch.StatusChange(emps, employeeID, newStatus)); err != nil {
			return err
		}
		return s.store.Delete(ctx, cacheview.KeyUser(employeeID))
	})
}

func (s *Syncer) MembersAssigned(ctx context.Context, managerID string, memberIDs []string) {
	keys := append([]string{cacheview.KeyEmployees, cacheview.KeyUser(managerID)}, userKeys(memberIDs)...)
	s.run(ctx, "members_assigned", keys, func(ctx context.Context) error {
		emps, err := s.employees.Read(ctx)
		if err != nil {
			return err
		}
		if err := s.store.Set(ctx, cacheview.KeyEmployees, patch.MemberAssignment(emps, managerID, memberIDs)); err != nil {
			return err
		}
		return s.store.Delete(ctx, keys[1:]...)
	})
}

func (s *Syncer) MemberRemoved(ctx context.Context, managerID, memberID string) {
	keys := []string{cacheview.KeyEmployees, cacheview.KeyLeaves, cacheview.KeyUser(managerID), cacheview.KeyUser(memberID)}
	s.run(ctx, "member_removed", keys, func(ctx context.Context) error {
		emps, leaves, err := s.readEmployeesAndLeaves(ctx)
		if err != nil {
			return err
		}
		emps, leaves = patch.MemberRemoval(emps, leaves, managerID, memberID)
		if err := s.writeEmployeesAndLeaves(ctx, emps, leaves); err != nil {
			return err
		}
		return s.store.Delete(ctx, cacheview.KeyUser(managerID), cacheview.KeyUser(memberID))
	})
}

func (s *Syncer) LeaveApplied(ctx context.Context, lv cacheview.LeaveView) {
	keys := append([]string{cacheview.KeyEmployees, cacheview.KeyLeaves}, leaveUserKeys(lv.EmployeeID, lv.ActionByID)...)
	s.run(ctx, "leave_applied", keys, func(ctx context.Context) error {
		emps, leaves, err := s.readEmployeesAndLeaves(ctx)
		if err != nil {
			return err
		}
		emps, leaves = patch.LeaveCreate(emps, leaves, lv)
		if err := s.writeEmployeesAndLeaves(ctx, emps, leaves); err != nil {
			return err
		}
		return s.store.Delete(ctx, keys[2:]...)
	})
}

func (s *Syncer) LeaveActioned(ctx context.Context, p patch.LeaveStatusPatch) {
	keys := append([]string{cacheview.KeyEmployees, cacheview.KeyLeaves}, leaveUserKeys(p.EmployeeID, p.ActionByID)...)
	s.run(ctx, "leave_actioned", keys, func(ctx context.Context) error {
		emps, leaves, err := s.readEmployeesAndLeaves(ctx)
		if err != nil {
			return err
		}
		emps, leaves = patch.LeaveStatusChange(emps, leaves, p)
		if err := s.writeEmployeesAndLeaves(ctx, emps, leaves); err != nil {
			return err
		}
		return s.store.Delete(ctx, keys[2:]...)
	})
}

func (s *Syncer) LeaveDeleted(ctx context.Context, lv cacheview.LeaveView) {
	keys := append([]string{cacheview.KeyEmployees, cacheview.KeyLeaves}, leaveUserKeys(lv.EmployeeID, lv.ActionByID)...)
	s.run(ctx, "leave_deleted", keys, func(ctx context.Context) error {
		emps, leaves, err := s.readEmployeesAndLeaves(ctx)
		if err != nil {
			return err
		}
		emps, leaves = patch.LeaveDelete(emps, leaves, lv.ID)
		if err := s.writeEmployeesAndLeaves(ctx, emps, leaves); err != nil {
			return err
		}
		return s.store.Delete(ctx, keys[2:]...)
	})
}

func (s *Syncer) HolidayCreated(ctx context.Context, v cacheview.HolidayView) {
	s.run(ctx, "holiday_created", []string{cacheview.KeyHolidays}, func(ctx context.Context) error {
		hs, err := s.holidays.Read(ctx)
		if err != nil {
			return err
		}
		return s.store.Set(ctx, cacheview.KeyHolidays, patch.HolidayCreate(hs, v))
	})
}

func (s *Syncer) HolidayUpdated(ctx context.Context, v cacheview.HolidayView) {
	s.run(ctx, "holiday_updated", []string{cacheview.KeyHolidays}, func(ctx context.Context) error {
		hs, err := s.holidays.Read(ctx)
		if err != nil {
			return err
		}
		return s.store.Set(ctx, cacheview.KeyHolidays, patch.HolidayEdit(hs, v))
	})
}

func (s *Syncer) HolidayDeleted(ctx context.Context, id string) {
	s.run(ctx, "holiday_deleted", []string{cacheview.KeyHolidays}, func(ctx context.Context) error {
		hs, err := s.holidays.Read(ctx)
		if err != nil {
			return err
		}
		return s.store.Set(ctx, cacheview.KeyHolidays, patch.HolidayDelete(hs, id))
	})
}

// Invalidate drops whole collections. Used by bulk operations (the accrual
// sweep) where incremental patching buys nothing.
func (s *Syncer) Invalidate(ctx context.Context, keys ...string) {
	if err := s.store.Delete(ctx, keys...); err != nil {
		s.logger.Error("bulk invalidation failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

func (s *Syncer) readEmployeesAndLeaves(ctx context.Context) ([]cacheview.EmployeeView, []cacheview.LeaveView, error) {
	emps, err := s.employees.Read(ctx)
	if err != nil {
		return nil, nil, err
	}
	leaves, err := s.leaves.Read(ctx)
	if err != nil {
		return nil, nil, err
	}
	return emps, leaves, nil
}

func (s *Syncer) writeEmployeesAndLeaves(ctx context.Context, emps []cacheview.EmployeeView, leaves []cacheview.LeaveView) error {
	if err := s.store.Set(ctx, cacheview.KeyEmployees, emps); err != nil {
		return err
	}
	return s.store.Set(ctx, cacheview.KeyLeaves, leaves)
}

func userKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheview.KeyUser(id)
	}
	return keys
}

// leaveUserKeys names the single-employee entries a leave mutation touches:
// the applicant's, and the assigned manager's when one is set.
func leaveUserKeys(employeeID string, actionByID *string) []string {
	keys := []string{cacheview.KeyUser(employeeID)}
	if actionByID != nil && *actionByID != employeeID {
		keys = append(keys, cacheview.KeyUser(*actionByID))
	}
	return keys
}
