package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
	MovimientoGasto   = "gasto"
)

// MovimientoCaja is a manual entry in the cash ledger.
// Tipo: "entrada" | "salida" | "gasto". Only salidas can be deleted.
type MovimientoCaja struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo        string          `gorm:"type:varchar(20);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion string          `gorm:"type:varchar(255);not null"`
	Fecha       time.Time       `gorm:"not null;index"`
}

// TableName overrides GORM's default pluralization (movimiento_cajas → movimientos_caja).
func (MovimientoCaja) TableName() string { return "movimientos_caja" }
