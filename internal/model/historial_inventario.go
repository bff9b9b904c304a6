package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistorialInventario records one stock-in. ValorTotal is cantidad × valor
// unitario at the time, without markup. Rows past the retention window are
// purged by the retention job.
type HistorialInventario struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad   int             `gorm:"not null"`
	ValorTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha      time.Time       `gorm:"not null;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName keeps the singular table name used by the migrations.
func (HistorialInventario) TableName() string { return "historial_inventario" }
