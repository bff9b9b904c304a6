package repository

import (
	"context"
	"time"

	"cajapos/internal/model"

	"gorm.io/gorm"
)

type HistorialInventarioRepository interface {
	CreateTx(tx *gorm.DB, h *model.HistorialInventario) error
	// ListDesde returns entries at or after desde, newest first, with their product.
	ListDesde(ctx context.Context, desde time.Time) ([]model.HistorialInventario, error)
	// DeleteAntesDe removes entries strictly older than limite and returns how many.
	DeleteAntesDe(ctx context.Context, limite time.Time) (int64, error)
}

type historialInventarioRepo struct{ db *gorm.DB }

func NewHistorialInventarioRepository(db *gorm.DB) HistorialInventarioRepository {
	return &historialInventarioRepo{db: db}
}

func (r *historialInventarioRepo) CreateTx(tx *gorm.DB, h *model.HistorialInventario) error {
	return tx.Create(h).Error
}

func (r *historialInventarioRepo) ListDesde(ctx context.Context, desde time.Time) ([]model.HistorialInventario, error) {
	var rows []model.HistorialInventario
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Where("fecha >= ?", desde).
		Order("fecha DESC").
		Find(&rows).Error
	return rows, err
}

func (r *historialInventarioRepo) DeleteAntesDe(ctx context.Context, limite time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("fecha < ?", limite).Delete(&model.HistorialInventario{})
	return res.RowsAffected, res.Error
}
