package dto

import "github.com/shopspring/decimal"

// HistorialPrecioItem is one row in the price-history list.
type HistorialPrecioItem struct {
	ID                    string          `json:"id"`
	ProductoID            string          `json:"producto_id"`
	ValorUnitarioAnterior decimal.Decimal `json:"valor_unitario_anterior"`
	ValorUnitarioNuevo    decimal.Decimal `json:"valor_unitario_nuevo"`
	PrecioVentaNuevo      decimal.Decimal `json:"precio_venta_nuevo"`
	Interes               decimal.Decimal `json:"interes"`
	CreatedAt             string          `json:"created_at"`
}

// HistorialPrecioListResponse is returned by GET /v1/productos/:id/historial-precios.
type HistorialPrecioListResponse struct {
	Data  []HistorialPrecioItem `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
