package infra

// pdf.go: one-page daily settlement report using go-pdf/fpdf.
//   - Shop header and date
//   - Opening cash, sales, manual entries, outflows, expenses
//   - Bold closing cash
//   - Inventory valuation snapshot

import (
	"bytes"
	"fmt"
	"time"

	"cajapos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateLiquidacionPDF renders liq as an A5 report and returns the bytes.
func GenerateLiquidacionPDF(negocio string, liq *model.Liquidacion, generado time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Liquidación diaria"), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 6, liq.Fecha.Format("02/01/2006"), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Lines ────────────────────────────────────────────────────────────────
	labelW := contentW * 0.6
	valueW := contentW * 0.4
	row := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 7, "$"+v.StringFixed(2), "", 1, "R", false, 0, "")
	}

	row("Caja anterior", liq.CajaAnterior, false)
	row("Ventas del día", liq.Ventas, false)
	row("Entradas manuales", liq.Entradas, false)
	row("Salidas", liq.Salidas.Neg(), false)
	row("Gastos", liq.Gastos.Neg(), false)

	pdf.Ln(1)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)
	row("Caja final", liq.Caja, true)
	pdf.Ln(3)
	row("Inventario valorizado", liq.InventarioValor, false)

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Generado %s", generado.Format("02/01/2006 15:04")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
