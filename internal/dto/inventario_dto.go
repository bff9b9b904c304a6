package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// EntradaInventarioRequest identifies the product by codigo or by producto_id.
type EntradaInventarioRequest struct {
	Codigo     string `json:"codigo"      validate:"omitempty,len=6,numeric"`
	ProductoID string `json:"producto_id" validate:"omitempty,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type HistorialInventarioItem struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoCodigo string          `json:"producto_codigo,omitempty"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	Cantidad       int             `json:"cantidad"`
	ValorTotal     decimal.Decimal `json:"valor_total"`
	Fecha          string          `json:"fecha"`
}

type EntradaInventarioResponse struct {
	Entrada           HistorialInventarioItem `json:"entrada"`
	UnidadesRestantes int                     `json:"unidades_restantes"`
	StockInicial      int                     `json:"stock_inicial"`
}
