package infra

import (
	"bytes"
	"fmt"

	"cajapos/internal/model"

	"github.com/xuri/excelize/v2"
)

const hojaLiquidacion = "Liquidacion"

var encabezadoLiquidacion = []interface{}{
	"Fecha", "Caja anterior", "Ventas", "Entradas", "Salidas", "Gastos", "Caja", "Inventario",
}

// GenerateLiquidacionXLSX writes one row per settlement plus a totals row.
func GenerateLiquidacionXLSX(rows []model.Liquidacion) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", hojaLiquidacion); err != nil {
		return nil, err
	}

	if err := setRow(f, 1, encabezadoLiquidacion); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	_ = f.SetRowStyle(hojaLiquidacion, 1, 1, bold)

	for i, l := range rows {
		err := setRow(f, i+2, []interface{}{
			l.Fecha.Format("2006-01-02"),
			l.CajaAnterior.InexactFloat64(),
			l.Ventas.InexactFloat64(),
			l.Entradas.InexactFloat64(),
			l.Salidas.InexactFloat64(),
			l.Gastos.InexactFloat64(),
			l.Caja.InexactFloat64(),
			l.InventarioValor.InexactFloat64(),
		})
		if err != nil {
			return nil, err
		}
	}

	if len(rows) > 0 {
		last := len(rows) + 1
		totalRow := last + 1
		if err := f.SetCellValue(hojaLiquidacion, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
			return nil, err
		}
		for _, col := range []string{"C", "D", "E", "F"} {
			cell := fmt.Sprintf("%s%d", col, totalRow)
			if err := f.SetCellFormula(hojaLiquidacion, cell, fmt.Sprintf("SUM(%s2:%s%d)", col, col, last)); err != nil {
				return nil, err
			}
		}
		_ = f.SetRowStyle(hojaLiquidacion, totalRow, totalRow, bold)
	}

	_ = f.SetColWidth(hojaLiquidacion, "A", "H", 15)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(hojaLiquidacion, cell, &values)
}
