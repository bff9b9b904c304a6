package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is an immutable sale of one product. It can only be deleted, which
// reverses its effect on the product counters.
type Venta struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad   int             `gorm:"not null"`
	Ingreso    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha      time.Time       `gorm:"not null;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
