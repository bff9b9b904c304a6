package repository

import (
	"context"

	"cajapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	historialLimitDefault = 50
	historialLimitMax     = 200
)

// HistorialPrecioRepository stores the append-only log of price changes.
type HistorialPrecioRepository interface {
	CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error
	ListByProducto(ctx context.Context, productoID uuid.UUID, page, limit int) ([]model.HistorialPrecio, int64, error)
}

type historialPrecioRepository struct{ db *gorm.DB }

func NewHistorialPrecioRepository(db *gorm.DB) HistorialPrecioRepository {
	return &historialPrecioRepository{db: db}
}

func (r *historialPrecioRepository) CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error {
	return tx.Create(h).Error
}

func deProducto(id uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("producto_id = ?", id) }
}

func pagina(page, limit int) func(*gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > historialLimitMax {
		limit = historialLimitDefault
	}
	return func(db *gorm.DB) *gorm.DB { return db.Limit(limit).Offset((page - 1) * limit) }
}

// ListByProducto pages through one product's price changes, newest first.
// The total counts every change of the product, not only the page.
func (r *historialPrecioRepository) ListByProducto(ctx context.Context, productoID uuid.UUID, page, limit int) ([]model.HistorialPrecio, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.HistorialPrecio{}).Scopes(deProducto(productoID))

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cambios []model.HistorialPrecio
	err := q.Session(&gorm.Session{}).
		Scopes(pagina(page, limit)).
		Order("created_at DESC, id").
		Find(&cambios).Error
	return cambios, total, err
}
