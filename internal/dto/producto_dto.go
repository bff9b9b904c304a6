package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre        string          `json:"nombre"         validate:"required,min=1,max=100"`
	Orden         *int            `json:"orden"          validate:"omitempty,min=1"`
	ValorUnitario decimal.Decimal `json:"valor_unitario" validate:"min=0"`
	Interes       decimal.Decimal `json:"interes"        validate:"min=0"`
	StockInicial  int             `json:"stock_inicial"  validate:"min=0"`
}

type ReordenarRequest struct {
	Posicion int `json:"posicion" validate:"required"`
}

type ActualizarPrecioRequest struct {
	Precio decimal.Decimal `json:"precio" validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ProductoResponse carries the effective daily counters: they read as zero
// when the stored as-of date is not today.
type ProductoResponse struct {
	ID                string          `json:"id"`
	Codigo            string          `json:"codigo"`
	Nombre            string          `json:"nombre"`
	Orden             int             `json:"orden"`
	StockInicial      int             `json:"stock_inicial"`
	UnidadesRestantes int             `json:"unidades_restantes"`
	ValorUnitario     decimal.Decimal `json:"valor_unitario"`
	Interes           decimal.Decimal `json:"interes"`
	PrecioVenta       decimal.Decimal `json:"precio_venta"`
	VendidasDia       int             `json:"vendidas_dia"`
	ValorVendidoDia   decimal.Decimal `json:"valor_vendido_dia"`
	Fecha             string          `json:"fecha"`
}

type ProductoListResponse struct {
	Data            []ProductoResponse `json:"data"`
	Total           int                `json:"total"`
	TotalVendidoHoy decimal.Decimal    `json:"total_vendido_hoy"`
}

type DashboardResponse struct {
	TotalProductos        int64           `json:"total_productos"`
	TotalUnidadesVendidas int64           `json:"total_unidades_vendidas"`
	ValorTotalVendido     decimal.Decimal `json:"valor_total_vendido"`
	TotalMovimientos      int64           `json:"total_movimientos"`
	InventarioTotal       decimal.Decimal `json:"inventario_total"`
}
