package sync_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"leavedesk/internal/cache"
	cachesync "leavedesk/internal/cache/sync"
	"leavedesk/internal/cacheview"
	"leavedesk/internal/cacheview/patch"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func holidayReader(store *cache.Store, rows []cacheview.HolidayView, err error) *cache.CollectionReader[cacheview.HolidayView] {
	return cache.NewCollectionReader(store, cacheview.KeyHolidays, func(ctx context.Context) ([]cacheview.HolidayView, error) {
		return rows, err
	})
}

func employeeReader(store *cache.Store, rows []cacheview.EmployeeView, err error) *cache.CollectionReader[cacheview.EmployeeView] {
	return cache.NewCollectionReader(store, cacheview.KeyEmployees, func(ctx context.Context) ([]cacheview.EmployeeView, error) {
		return rows, err
	})
}

func leaveReader(store *cache.Store, rows []cacheview.LeaveView, err error) *cache.CollectionReader[cacheview.LeaveView] {
	return cache.NewCollectionReader(store, cacheview.KeyLeaves, func(ctx context.Context) ([]cacheview.LeaveView, error) {
		return rows, err
	})
}

func TestSyncer_HolidayCreated_PatchesCachedList(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := cache.NewStore(rdb)

	existing := []cacheview.HolidayView{{ID: "h1", Name: "Founders Day", Date: "2026-03-02"}}
	added := cacheview.HolidayView{ID: "h2", Name: "Harvest", Date: "2026-09-14"}

	cachedRaw, _ := json.Marshal(existing)
	patchedRaw, _ := json.Marshal(append(existing, added))

	mock.ExpectGet(cacheview.KeyHolidays).SetVal(string(cachedRaw))
	mock.ExpectSet(cacheview.KeyHolidays, patchedRaw, 0).SetVal("OK")

	s := cachesync.NewSyncer(store, nil, nil, holidayReader(store, nil, errors.New("unused")))
	s.HolidayCreated(context.Background(), added)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncer_EmployeeCreated_DropsManagerEntry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := cache.NewStore(rdb)

	managerID := "m1"
	existing := []cacheview.EmployeeView{{ID: "m1", FullName: "Mona Manager", Role: cacheview.RoleReportManager}}
	hire := cacheview.EmployeeView{
		ID:              "c1",
		FullName:        "Cleo New",
		Role:            cacheview.RoleMember,
		ReportManagerID: &managerID,
	}

	cachedRaw, _ := json.Marshal(existing)
	patchedRaw, _ := json.Marshal(patch.EmployeeCreate(existing, hire))
	hireRaw, _ := json.Marshal(hire)

	mock.ExpectGet(cacheview.KeyEmployees).SetVal(string(cachedRaw))
	mock.ExpectSet(cacheview.KeyEmployees, patchedRaw, 0).SetVal("OK")
	mock.ExpectSet(cacheview.KeyUser("c1"), hireRaw, 0).SetVal("OK")
	// The manager's cached entry no longer lists the new member.
	mock.ExpectDel(cacheview.KeyUser("m1")).SetVal(1)

	s := cachesync.NewSyncer(store, employeeReader(store, nil, errors.New("unused")), nil, nil)
	s.EmployeeCreated(context.Background(), hire)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncer_LeaveApplied_InvalidatesOnReadFailure(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := cache.NewStore(rdb)

	// Cache miss and the authoritative fetch is down: the patch cannot be
	// applied, so both collections and the applicant's entry must be dropped.
	mock.ExpectGet(cacheview.KeyEmployees).RedisNil()
	mock.ExpectDel(cacheview.KeyEmployees, cacheview.KeyLeaves, cacheview.KeyUser("a1")).SetVal(3)

	s := cachesync.NewSyncer(store,
		employeeReader(store, nil, errors.New("db down")),
		leaveReader(store, nil, nil),
		nil,
	)
	s.LeaveApplied(context.Background(), cacheview.LeaveView{ID: "l1", EmployeeID: "a1"})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncer_LeaveApplied_WriteBackFailureInvalidates(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := cache.NewStore(rdb)

	emps := []cacheview.EmployeeView{{ID: "a1", FullName: "Ana"}}
	leaves := []cacheview.LeaveView{{ID: "l0", EmployeeID: "a1", Status: cacheview.LeaveApproved}}
	empsRaw, _ := json.Marshal(emps)
	leavesRaw, _ := json.Marshal(leaves)

	mock.ExpectGet(cacheview.KeyEmployees).SetVal(string(empsRaw))
	mock.ExpectGet(cacheview.KeyLeaves).SetVal(string(leavesRaw))

	// First write-back fails mid-patch; the recovery path must invalidate
	// everything the mutation touches rather than leave it half-updated.
	mock.Regexp().ExpectSet(cacheview.KeyEmployees, `.*`, 0).SetErr(errors.New("oom"))
	mock.ExpectDel(cacheview.KeyEmployees, cacheview.KeyLeaves, cacheview.KeyUser("a1")).SetVal(3)

	s := cachesync.NewSyncer(store,
		employeeReader(store, nil, errors.New("unused")),
		leaveReader(store, nil, errors.New("unused")),
		nil,
	)
	s.LeaveApplied(context.Background(), cacheview.LeaveView{
		ID:         "l1",
		EmployeeID: "a1",
		Status:     cacheview.LeavePending,
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncer_Invalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := cache.NewStore(rdb)

	mock.ExpectDel(cacheview.KeyEmployees, cacheview.KeyLeaves).SetVal(2)

	s := cachesync.NewSyncer(store, nil, nil, nil)
	s.Invalidate(context.Background(), cacheview.KeyEmployees, cacheview.KeyLeaves)

	require.NoError(t, mock.ExpectationsWereMet())
}
