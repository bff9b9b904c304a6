package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistorialPrecio registra cada cambio de precio de un producto.
// Los registros son inmutables: nunca se eliminan ni modifican.
type HistorialPrecio struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ValorUnitarioAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ValorUnitarioNuevo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVentaNuevo      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Interes               decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	CreatedAt             time.Time
}
