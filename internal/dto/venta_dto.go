package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	Cantidad       int             `json:"cantidad"`
	Ingreso        decimal.Decimal `json:"ingreso"`
	Fecha          string          `json:"fecha"`
}

// VentaRegistradaResponse echoes the product counters after the sale.
type VentaRegistradaResponse struct {
	Venta             VentaResponse   `json:"venta"`
	UnidadesRestantes int             `json:"unidades_restantes"`
	VendidasDia       int             `json:"vendidas_dia"`
	ValorVendidoDia   decimal.Decimal `json:"valor_vendido_dia"`
}

// VentaEliminadaResponse reports the product counters after the reversal.
type VentaEliminadaResponse struct {
	UnidadesRestantes int             `json:"unidades_restantes"`
	VendidasDia       int             `json:"vendidas_dia"`
	ValorVendidoDia   decimal.Decimal `json:"valor_vendido_dia"`
}

type VentasDelDiaResponse struct {
	Fecha    string          `json:"fecha"`
	Ventas   []VentaResponse `json:"ventas"`
	Cantidad int             `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

type VentasProductoHoyResponse struct {
	ProductoID string          `json:"producto_id"`
	Codigo     string          `json:"codigo"`
	Nombre     string          `json:"nombre"`
	Ventas     []VentaResponse `json:"ventas"`
	Cantidad   int             `json:"cantidad"`
	Total      decimal.Decimal `json:"total"`
}
