package dto

import "github.com/shopspring/decimal"

type LiquidacionResponse struct {
	Fecha           string          `json:"fecha"`
	CajaAnterior    decimal.Decimal `json:"caja_anterior"`
	Ventas          decimal.Decimal `json:"ventas"`
	Entradas        decimal.Decimal `json:"entradas"`
	Salidas         decimal.Decimal `json:"salidas"`
	Gastos          decimal.Decimal `json:"gastos"`
	Caja            decimal.Decimal `json:"caja"`
	InventarioValor decimal.Decimal `json:"inventario_valor"`
}

type LiquidacionRangoResponse struct {
	Desde           string                `json:"desde"`
	Hasta           string                `json:"hasta"`
	Dias            []LiquidacionResponse `json:"dias"`
	TotalVentas     decimal.Decimal       `json:"total_ventas"`
	TotalEntradas   decimal.Decimal       `json:"total_entradas"`
	TotalSalidas    decimal.Decimal       `json:"total_salidas"`
	TotalGastos     decimal.Decimal       `json:"total_gastos"`
	CajaFinal       decimal.Decimal       `json:"caja_final"`
	InventarioTotal decimal.Decimal       `json:"inventario_total"`
}
