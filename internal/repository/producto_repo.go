package repository

import (
	"context"

	"cajapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// so they can be unit tested against in-memory stubs.
type ProductoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	ExisteCodigo(ctx context.Context, codigo string) (bool, error)
	MaxOrden(ctx context.Context) (int, error)
	ListOrdenados(ctx context.Context) ([]model.Producto, error)
	Count(ctx context.Context) (int64, error)
	// SumValorInventario returns Σ restantes × valor_unitario × (1 + interes/100), unrounded.
	SumValorInventario(ctx context.Context) (decimal.Decimal, error)

	// Used inside transactions; callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Producto) error
	SaveTx(tx *gorm.DB, p *model.Producto) error
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	LockByCodigoTx(tx *gorm.DB, codigo string) (*model.Producto, error)
	LockOrdenadosTx(tx *gorm.DB) ([]model.Producto, error)
	UpdateOrdenTx(tx *gorm.DB, id uuid.UUID, orden int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

const ordenProductos = "orden ASC, created_at ASC, id ASC"

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) ExisteCodigo(ctx context.Context, codigo string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Where("codigo = ?", codigo).Count(&n).Error
	return n > 0, err
}

func (r *productoRepo) MaxOrden(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Select("COALESCE(MAX(orden), 0)").Scan(&max).Error
	return max, err
}

func (r *productoRepo) ListOrdenados(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Order(ordenProductos).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Count(&n).Error
	return n, err
}

func (r *productoRepo) SumValorInventario(ctx context.Context) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(unidades_restantes * valor_unitario * (1 + interes / 100)), 0) AS total
		FROM productos`).Scan(&row).Error
	return row.Total, err
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) SaveTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Save(p).Error
}

func (r *productoRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) LockByCodigoTx(tx *gorm.DB, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("codigo = ?", codigo).First(&p).Error
	return &p, err
}

func (r *productoRepo) LockOrdenadosTx(tx *gorm.DB) ([]model.Producto, error) {
	var productos []model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order(ordenProductos).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) UpdateOrdenTx(tx *gorm.DB, id uuid.UUID, orden int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).Update("orden", orden).Error
}
