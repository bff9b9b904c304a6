package repository

import (
	"context"
	"time"

	"cajapos/internal/model"
	"cajapos/internal/tiempo"

	"gorm.io/gorm"
)

// LiquidacionRepository stores settlement snapshots, one per civil date.
// Dates are bound as YYYY-MM-DD strings so the `date` column never goes
// through a timestamptz cast.
type LiquidacionRepository interface {
	FindByFecha(ctx context.Context, fecha time.Time) (*model.Liquidacion, error)
	// FindAnterior returns the most recent snapshot strictly before fecha.
	FindAnterior(ctx context.Context, fecha time.Time) (*model.Liquidacion, error)
	FindUltima(ctx context.Context) (*model.Liquidacion, error)
	ListEntre(ctx context.Context, desde, hasta time.Time) ([]model.Liquidacion, error)
	// Upsert inserts or overwrites the row for l.Fecha.
	Upsert(ctx context.Context, l *model.Liquidacion) error
}

type liquidacionRepo struct{ db *gorm.DB }

func NewLiquidacionRepository(db *gorm.DB) LiquidacionRepository { return &liquidacionRepo{db: db} }

func (r *liquidacionRepo) FindByFecha(ctx context.Context, fecha time.Time) (*model.Liquidacion, error) {
	var l model.Liquidacion
	err := r.db.WithContext(ctx).Where("fecha = ?::date", tiempo.Civil(fecha)).First(&l).Error
	return &l, err
}

func (r *liquidacionRepo) FindAnterior(ctx context.Context, fecha time.Time) (*model.Liquidacion, error) {
	var l model.Liquidacion
	err := r.db.WithContext(ctx).
		Where("fecha < ?::date", tiempo.Civil(fecha)).
		Order("fecha DESC").
		First(&l).Error
	return &l, err
}

func (r *liquidacionRepo) FindUltima(ctx context.Context) (*model.Liquidacion, error) {
	var l model.Liquidacion
	err := r.db.WithContext(ctx).Order("fecha DESC").First(&l).Error
	return &l, err
}

func (r *liquidacionRepo) ListEntre(ctx context.Context, desde, hasta time.Time) ([]model.Liquidacion, error) {
	var rows []model.Liquidacion
	err := r.db.WithContext(ctx).
		Where("fecha BETWEEN ?::date AND ?::date", tiempo.Civil(desde), tiempo.Civil(hasta)).
		Order("fecha ASC").
		Find(&rows).Error
	return rows, err
}

func (r *liquidacionRepo) Upsert(ctx context.Context, l *model.Liquidacion) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO liquidaciones
			(fecha, caja_anterior, ventas, entradas, salidas, gastos, caja, inventario_valor, updated_at)
		VALUES (?::date, ?, ?, ?, ?, ?, ?, ?, now())
		ON CONFLICT (fecha) DO UPDATE SET
			caja_anterior    = EXCLUDED.caja_anterior,
			ventas           = EXCLUDED.ventas,
			entradas         = EXCLUDED.entradas,
			salidas          = EXCLUDED.salidas,
			gastos           = EXCLUDED.gastos,
			caja             = EXCLUDED.caja,
			inventario_valor = EXCLUDED.inventario_valor,
			updated_at       = now()`,
		tiempo.Civil(l.Fecha), l.CajaAnterior, l.Ventas, l.Entradas, l.Salidas, l.Gastos, l.Caja, l.InventarioValor,
	).Error
}
