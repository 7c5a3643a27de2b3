package holiday

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, h *Holiday) error
	FindAll(ctx context.Context) ([]Holiday, error)
	FindByID(ctx context.Context, id string) (*Holiday, error)
	Update(ctx context.Context, h *Holiday) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
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

func (r *repository) Create(ctx context.Context, h *Holiday) error {
	_, err := r.exec(ctx, `
        INSERT INTO holidays (id, name, date, created_at, updated_at)
        VALUES ($1, $2, $3, now(), now())
    `, h.ID, h.Name, h.Date)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]Holiday, error) {
	var hs []Holiday
	err := r.db.WithContext(ctx).
		Order("date ASC").
		Find(&hs).Error
	return hs, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Holiday, error) {
	var h Holiday
	err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error
	return &h, err
}

func (r *repository) Update(ctx context.Context, h *Holiday) (bool, error) {
	rows, err := r.exec(ctx, `
        UPDATE holidays SET name = $2, date = $3, updated_at = now()
        WHERE id = $1
    `, h.ID, h.Name, h.Date)
	return rows == 1, err
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	rows, err := r.exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	return rows == 1, err
}
