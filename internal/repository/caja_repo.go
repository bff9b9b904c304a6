package repository

import (
	"context"
	"time"

	"cajapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CajaRepository is the manual cash ledger. Rows are only ever inserted,
// except salidas which may be deleted.
type CajaRepository interface {
	Create(ctx context.Context, m *model.MovimientoCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListEntre returns movements in [desde, hasta) ascending; tipos filters when non-empty.
	ListEntre(ctx context.Context, desde, hasta time.Time, tipos ...string) ([]model.MovimientoCaja, error)
	SumPorTipoEntre(ctx context.Context, desde, hasta time.Time) (map[string]decimal.Decimal, error)
	Count(ctx context.Context) (int64, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) Create(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	var m model.MovimientoCaja
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *cajaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MovimientoCaja{}, "id = ?", id).Error
}

func (r *cajaRepo) ListEntre(ctx context.Context, desde, hasta time.Time, tipos ...string) ([]model.MovimientoCaja, error) {
	q := r.db.WithContext(ctx).Where("fecha >= ? AND fecha < ?", desde, hasta)
	if len(tipos) > 0 {
		q = q.Where("tipo IN ?", tipos)
	}
	var movs []model.MovimientoCaja
	err := q.Order("fecha ASC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumPorTipoEntre(ctx context.Context, desde, hasta time.Time) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Tipo  string
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).
		Select("tipo, COALESCE(SUM(monto), 0) AS total").
		Where("fecha >= ? AND fecha < ?", desde, hasta).
		Group("tipo").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := map[string]decimal.Decimal{
		model.MovimientoEntrada: decimal.Zero,
		model.MovimientoSalida:  decimal.Zero,
		model.MovimientoGasto:   decimal.Zero,
	}
	for _, row := range rows {
		sums[row.Tipo] = row.Total
	}
	return sums, nil
}

func (r *cajaRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).Count(&n).Error
	return n, err
}
