package app

import (
	"context"
	"database/sql"

	"leavedesk/internal/accrual"
	"leavedesk/internal/cache"
	cachesync "leavedesk/internal/cache/sync"
	"leavedesk/internal/cacheview"
	"leavedesk/internal/employee"
	"leavedesk/internal/holiday"
	"leavedesk/internal/leave"
	"leavedesk/internal/notification"
	"leavedesk/internal/status"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Registry is everything the binaries wire together. The readers and syncer
// are shared: every service patches the same cached collections.
type Registry struct {
	Store     *cache.Store
	Syncer    *cachesync.Syncer
	Employees employee.Service
	Leaves    leave.Service
	Holidays  holiday.Service
	Accrual   *accrual.Service
}

func buildRegistry(db *sql.DB, gormDB *gorm.DB, rdb *redis.Client) *Registry {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	accrualRepo := accrual.NewRepository(gormDB)
	outboxRepo := notification.NewOutboxRepository(db)

	// --- Cache layer ---
	store := cache.NewStore(rdb)
	employeeReader := cache.NewCollectionReader(store, cacheview.KeyEmployees,
		func(ctx context.Context) ([]cacheview.EmployeeView, error) {
			emps, err := employeeRepo.FindAllExpanded(ctx)
			if err != nil {
				return nil, err
			}
			return employee.ToViewList(emps), nil
		})
	leaveReader := cache.NewCollectionReader(store, cacheview.KeyLeaves,
		func(ctx context.Context) ([]cacheview.LeaveView, error) {
			leaves, err := leaveRepo.FindAll(ctx)
			if err != nil {
				return nil, err
			}
			return leave.ToViewList(leaves), nil
		})
	holidayReader := cache.NewCollectionReader(store, cacheview.KeyHolidays,
		func(ctx context.Context) ([]cacheview.HolidayView, error) {
			hs, err := holidayRepo.FindAll(ctx)
			if err != nil {
				return nil, err
			}
			return holiday.ToViewList(hs), nil
		})
	syncer := cachesync.NewSyncer(store, employeeReader, leaveReader, holidayReader)

	// --- Notification boundary ---
	outbox := notification.NewOutboxPublisher(outboxRepo)

	// --- Services ---
	employeeService := employee.NewService(db, employeeRepo, store, employeeReader, syncer, outbox)
	leaveService := leave.NewService(db, leaveRepo, leaveReader, holidayReader, syncer, outbox)
	holidayService := holiday.NewService(db, holidayRepo, holidayReader, syncer)
	accrualService := accrual.NewService(db, accrualRepo, syncer)

	return &Registry{
		Store:     store,
		Syncer:    syncer,
		Employees: employeeService,
		Leaves:    leaveService,
		Holidays:  holidayService,
		Accrual:   accrualService,
	}
}

func registerRoutes(router *gin.Engine, reg *Registry, db *sql.DB, rdb *redis.Client) {
	employeeHandler := employee.NewHandler(reg.Employees)
	leaveHandler := leave.NewHandler(reg.Leaves)
	holidayHandler := holiday.NewHandler(reg.Holidays)
	accrualHandler := accrual.NewHandler(reg.Accrual)
	statusHandler := status.NewHandler(db, rdb)

	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler)
		leave.RegisterRoutes(api, leaveHandler)
		holiday.RegisterRoutes(api, holidayHandler)
		accrual.RegisterRoutes(api, accrualHandler)
		status.RegisterRoutes(api, statusHandler)
	}
}
