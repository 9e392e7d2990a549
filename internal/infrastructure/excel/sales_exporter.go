// Package excel exporta reportes de la cuenta a hojas de cálculo (xlsx).
package excel

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/negocio-erp/internal/application/analytics"
	"github.com/jhoicas/negocio-erp/internal/application/dto"
)

const (
	sheetSales   = "Ventas"
	sheetItems   = "Lineas"
	sheetFinance = "Finanzas"
	sheetMargins = "Margenes"
)

var _ analytics.ReportRenderer = (*SalesExporter)(nil)

// SalesExporter genera el libro de ventas de un rango.
type SalesExporter struct{}

// NewSalesExporter construye el exportador.
func NewSalesExporter() *SalesExporter { return &SalesExporter{} }

// RenderSalesReport escribe una hoja por colección y devuelve el xlsx.
func (e *SalesExporter) RenderSalesReport(_ context.Context, report *dto.SalesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSales); err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}
	for _, name := range []string{sheetItems, sheetFinance, sheetMargins} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("excel: hoja %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}

	w := sheetWriter{f: f, style: bold}

	w.header(sheetSales, "Factura", "Fecha", "Cliente", "Medio", "Estado", "Subtotal", "Descuento", "Impuesto", "Total")
	for _, s := range report.Sales {
		w.row(sheetSales, s.InvoiceNumber, s.CreatedAt.Format("2006-01-02 15:04"), s.CustomerName,
			s.PaymentMethod, s.PaymentStatus, num(s.Subtotal), num(s.Discount), num(s.Tax), num(s.Total))
	}

	w.header(sheetItems, "Factura", "Producto", "Cantidad", "Precio unitario", "Total")
	for _, s := range report.Sales {
		for _, it := range s.Items {
			w.row(sheetItems, s.InvoiceNumber, it.ProductName, it.Quantity, num(it.UnitPrice), num(it.Total))
		}
	}

	w.header(sheetFinance, "Fecha", "Tipo", "Categoría", "Descripción", "Estado", "Monto")
	for _, r := range report.Records {
		w.row(sheetFinance, r.CreatedAt.Format("2006-01-02"), r.Type, r.Category, r.Description, r.Status, num(r.Amount))
	}

	w.header(sheetMargins, "SKU", "Producto", "Unidades", "Ingreso", "Costo", "Ganancia", "Margen %")
	for _, m := range report.Margins {
		w.row(sheetMargins, m.SKU, m.ProductName, m.UnitsSold, num(m.GrossRevenue), num(m.TotalCOGS),
			num(m.GrossProfit), num(m.MarginPct))
	}

	if w.err != nil {
		return nil, fmt.Errorf("excel: %w", w.err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter agrega filas por hoja y conserva el primer error.
type sheetWriter struct {
	f     *excelize.File
	style int
	next  map[string]int
	err   error
}

func (w *sheetWriter) header(sheet string, titles ...string) {
	vals := make([]any, len(titles))
	for i, t := range titles {
		vals[i] = t
	}
	w.row(sheet, vals...)
	if w.err != nil {
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(titles), 1)
	w.err = w.f.SetCellStyle(sheet, "A1", last, w.style)
	if w.err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(titles))
		w.err = w.f.SetColWidth(sheet, "A", lastCol, 18)
	}
}

func (w *sheetWriter) row(sheet string, values ...any) {
	if w.err != nil {
		return
	}
	if w.next == nil {
		w.next = make(map[string]int)
	}
	w.next[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, w.next[sheet])
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
