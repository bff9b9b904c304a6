package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Liquidacion is the persisted snapshot of a day's settlement. Every column is
// derived from the ventas and movimientos_caja ledgers and is overwritten on
// each recomputation:
//
//	caja = caja_anterior + ventas + entradas - salidas - gastos
type Liquidacion struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha           time.Time       `gorm:"type:date;uniqueIndex;not null"`
	CajaAnterior    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Ventas          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Entradas        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Salidas         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Gastos          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Caja            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	InventarioValor decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UpdatedAt       time.Time
}

// TableName overrides GORM's default pluralization (liquidacions → liquidaciones).
func (Liquidacion) TableName() string { return "liquidaciones" }
