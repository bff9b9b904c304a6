package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovimientoCajaRequest struct {
	Tipo        string          `json:"tipo"        validate:"required,oneof=entrada salida gasto"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Descripcion string          `json:"descripcion" validate:"max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoCajaResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion"`
	Fecha       string          `json:"fecha"`
}

type MovimientosDelDiaResponse struct {
	Fecha       string                   `json:"fecha"`
	Movimientos []MovimientoCajaResponse `json:"movimientos"`
	Total       decimal.Decimal          `json:"total"`
}
