package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/negocio-erp/internal/application/analytics"
	"github.com/jhoicas/negocio-erp/internal/application/dto"
)

var _ analytics.ReportRenderer = (*MarotoGenerator)(nil)

// RenderSalesReport genera el reporte de ventas del rango: resumen, ventas y márgenes por producto.
func (g *MarotoGenerator) RenderSalesReport(_ context.Context, report *dto.SalesReport) ([]byte, error) {
	m := newDocument("Reporte de ventas", report.CompanyName)

	period := fmt.Sprintf("%s al %s", report.From.Format("02/01/2006"), report.To.Format("02/01/2006"))
	m.AddRows(row.New(16).Add(
		col.New(8).Add(
			text.New(report.CompanyName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Reporte de ventas", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(period, props.Text{Size: 9, Align: align.Right, Top: 3}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(row.New(10).Add(
		summaryCol("Ventas", fmt.Sprintf("%d", len(report.Sales))),
		summaryCol("Ingresos", money(report.Revenue)),
		summaryCol("Gastos", money(report.Expenses)),
		summaryCol("Resultado", money(report.Revenue.Sub(report.Expenses))),
	))
	m.AddRows(line.NewRow(4))

	m.AddRows(sectionTitle("Ventas"))
	m.AddRows(headerCells([]string{"Factura", "Fecha", "Medio", "Estado", "Total"}, []int{3, 3, 2, 2, 2}))
	for _, s := range report.Sales {
		m.AddRows(bodyCells([]string{
			s.InvoiceNumber,
			s.CreatedAt.Format("02/01/2006 15:04"),
			nonEmpty(paymentLabels[s.PaymentMethod], s.PaymentMethod),
			nonEmpty(statusLabels[s.PaymentStatus], s.PaymentStatus),
			money(s.Total),
		}, []int{3, 3, 2, 2, 2}))
	}
	m.AddRows(line.NewRow(4))

	m.AddRows(sectionTitle("Margen por producto"))
	m.AddRows(headerCells([]string{"SKU", "Producto", "Unid.", "Ingreso", "Costo", "Margen %"}, []int{2, 4, 1, 2, 2, 1}))
	for _, mg := range report.Margins {
		m.AddRows(bodyCells([]string{
			mg.SKU,
			mg.ProductName,
			fmt.Sprintf("%d", mg.UnitsSold),
			money(mg.GrossRevenue),
			money(mg.TotalCOGS),
			mg.MarginPct.StringFixed(1),
		}, []int{2, 4, 1, 2, 2, 1}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

func summaryCol(label, value string) core.Col {
	return col.New(3).Add(
		text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
		text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 4}),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 1}),
	))
}

func headerCells(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, len(labels))
	for i, l := range labels {
		cols[i] = col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWhite, Top: 1.5, Left: 1,
		}))
	}
	return row.New(6).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func bodyCells(values []string, sizes []int) core.Row {
	cols := make([]core.Col, len(values))
	for i, v := range values {
		cols[i] = col.New(sizes[i]).Add(text.New(v, props.Text{Size: 8, Top: 1, Left: 1}))
	}
	return row.New(5).Add(cols...)
}
