package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// Producto is a catalogue entry with its stock and the counters of the day
// named by Fecha. When Fecha is not today the counters are stale and read as 0.
type Producto struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo            string          `gorm:"type:varchar(6);uniqueIndex;not null"`
	Nombre            string          `gorm:"type:varchar(100);not null"`
	Orden             int             `gorm:"not null;default:0;index"`
	StockInicial      int             `gorm:"not null;default:0"`
	UnidadesRestantes int             `gorm:"not null;default:0"`
	ValorUnitario     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Interes is the markup percentage applied over ValorUnitario.
	Interes         decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Fecha           time.Time       `gorm:"type:date;not null"`
	VendidasDia     int             `gorm:"not null;default:0"`
	ValorVendidoDia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Factor returns 1 + interes/100.
func (p *Producto) Factor() decimal.Decimal {
	return decimal.NewFromInt(1).Add(p.Interes.Div(cien))
}

// PrecioVenta is the marked-up unit price, unrounded.
func (p *Producto) PrecioVenta() decimal.Decimal {
	return p.ValorUnitario.Mul(p.Factor())
}

// Ingreso is the revenue of selling cantidad units, rounded to cents.
func (p *Producto) Ingreso(cantidad int) decimal.Decimal {
	return p.PrecioVenta().Mul(decimal.NewFromInt(int64(cantidad))).Round(2)
}

// ValorInventario is the marked-up value of the remaining units, unrounded.
func (p *Producto) ValorInventario() decimal.Decimal {
	return p.PrecioVenta().Mul(decimal.NewFromInt(int64(p.UnidadesRestantes)))
}
