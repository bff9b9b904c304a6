package repository

import (
	"context"
	"time"

	"cajapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaFilter narrows ListEntre to one product when ProductoID is set.
type VentaFilter struct {
	Desde      time.Time
	Hasta      time.Time
	ProductoID *uuid.UUID
}

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	// ListEntre returns sales in [Desde, Hasta), newest first, with their product.
	ListEntre(ctx context.Context, f VentaFilter) ([]model.Venta, error)
	SumIngresoEntre(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error)
	Totales(ctx context.Context) (unidades int64, ingreso decimal.Decimal, err error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Venta{}, "id = ?", id).Error
}

func (r *ventaRepo) ListEntre(ctx context.Context, f VentaFilter) ([]model.Venta, error) {
	q := r.db.WithContext(ctx).
		Preload("Producto").
		Where("fecha >= ? AND fecha < ?", f.Desde, f.Hasta)
	if f.ProductoID != nil {
		q = q.Where("producto_id = ?", *f.ProductoID)
	}
	var ventas []model.Venta
	err := q.Order("fecha DESC").Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) SumIngresoEntre(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("COALESCE(SUM(ingreso), 0) AS total").
		Where("fecha >= ? AND fecha < ?", desde, hasta).
		Scan(&row).Error
	return row.Total, err
}

func (r *ventaRepo) Totales(ctx context.Context) (int64, decimal.Decimal, error) {
	var row struct {
		Unidades int64
		Ingreso  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("COALESCE(SUM(cantidad), 0) AS unidades, COALESCE(SUM(ingreso), 0) AS ingreso").
		Scan(&row).Error
	return row.Unidades, row.Ingreso, err
}
