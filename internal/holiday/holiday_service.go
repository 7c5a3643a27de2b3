package holiday

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"leavedesk/internal/cache"
	cachesync "leavedesk/internal/cache/sync"
	"leavedesk/internal/cacheview"
	holidayerrors "leavedesk/internal/holiday/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type Service interface {
	Create(ctx context.Context, req CreateHolidayRequest) (cacheview.HolidayView, error)
	GetAll(ctx context.Context) ([]cacheview.HolidayView, error)
	Update(ctx context.Context, id string, req UpdateHolidayRequest) (cacheview.HolidayView, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	reader *cache.CollectionReader[cacheview.HolidayView]
	syncer *cachesync.Syncer
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	reader *cache.CollectionReader[cacheview.HolidayView],
	syncer *cachesync.Syncer,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{db: db, repo: repo, reader: reader, syncer: syncer, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateHolidayRequest) (cacheview.HolidayView, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return cacheview.HolidayView{}, holidayerrors.ErrInvalidDateFormat
	}

	h := &Holiday{
		ID:   uuid.New(),
		Name: req.Name,
		Date: date,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cacheview.HolidayView{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, h); err != nil {
		s.logger.Error("create holiday persist failed", zap.Error(err))
		return cacheview.HolidayView{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return cacheview.HolidayView{}, err
	}

	view := ToView(*h)
	s.syncer.HolidayCreated(ctx, view)

	s.logger.Info("create holiday success",
		zap.String("holiday_id", h.ID.String()),
		zap.String("date", req.Date),
	)
	return view, nil
}

func (s *service) GetAll(ctx context.Context) ([]cacheview.HolidayView, error) {
	return s.reader.Read(ctx)
}

func (s *service) Update(ctx context.Context, id string, req UpdateHolidayRequest) (cacheview.HolidayView, error) {
	holidayUUID, err := uuid.Parse(id)
	if err != nil {
		return cacheview.HolidayView{}, holidayerrors.ErrInvalidHolidayID
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return cacheview.HolidayView{}, holidayerrors.ErrInvalidDateFormat
	}

	h := &Holiday{
		ID:   holidayUUID,
		Name: req.Name,
		Date: date,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cacheview.HolidayView{}, err
	}
	defer tx.Rollback()

	updated, err := s.repo.WithTx(tx).Update(ctx, h)
	if err != nil {
		s.logger.Error("update holiday persist failed", zap.Error(err))
		return cacheview.HolidayView{}, mapRepositoryError(err)
	}
	if !updated {
		return cacheview.HolidayView{}, holidayerrors.ErrHolidayNotFound
	}
	if err := tx.Commit(); err != nil {
		return cacheview.HolidayView{}, err
	}

	view := ToView(*h)
	s.syncer.HolidayUpdated(ctx, view)

	s.logger.Info("update holiday success", zap.String("holiday_id", id))
	return view, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete holiday persist failed", zap.Error(err))
		return err
	}
	if !deleted {
		return holidayerrors.ErrHolidayNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncer.HolidayDeleted(ctx, id)

	s.logger.Info("delete holiday success", zap.String("holiday_id", id))
	return nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return holidayerrors.ErrHolidayNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return holidayerrors.ErrDuplicateDate
	}

	return err
}
