// Package pdf genera los documentos PDF de la cuenta con Maroto v2:
// comprobante de venta y reporte de ventas por rango.
//
// Layout del comprobante (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + documento  │  N° Comprobante + Fecha      │
//	│  CLIENTE: Nombre + documento + contacto                      │
//	│  TABLA: Cant | Descripción | P.Unit | Total                  │
//	│  TOTALES: Subtotal / Descuento / Impuesto / TOTAL            │
//	│  PAGO: medio + estado + vencimiento       │  QR              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var paymentLabels = map[string]string{
	entity.PaymentPix:    "PIX",
	entity.PaymentBoleto: "Boleto",
	entity.PaymentCard:   "Tarjeta",
	entity.PaymentCash:   "Efectivo",
}

var statusLabels = map[string]string{
	entity.PaymentStatusPending: "Pendiente",
	entity.PaymentStatusPaid:    "Pagado",
	entity.PaymentStatusOverdue: "Vencido",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ sales.ReceiptPDFGenerator = (*MarotoGenerator)(nil)

// MarotoGenerator implementa los generadores PDF usando Maroto v2.
type MarotoGenerator struct{}

// NewMarotoGenerator construye el generador.
func NewMarotoGenerator() *MarotoGenerator { return &MarotoGenerator{} }

func newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

// GenerateReceipt genera el comprobante de una venta y devuelve sus bytes.
// customer puede ser nil (consumidor final).
func (g *MarotoGenerator) GenerateReceipt(
	_ context.Context,
	sale *entity.Sale,
	items []*entity.SaleItem,
	company *entity.Company,
	customer *entity.Customer,
) ([]byte, error) {
	m := newDocument("Comprobante "+sale.InvoiceNumber, company.Name)

	m.AddRows(headerRow(sale, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(sale))
	m.AddRows(line.NewRow(3))
	m.AddRows(paymentRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y número de comprobante + fecha (der).
func headerRow(sale *entity.Sale, company *entity.Company) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Documento: "+nonEmpty(company.TaxID, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(sale.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del comprador o "Consumidor final".
func customerRow(customer *entity.Customer) core.Row {
	name, detail := "Consumidor final", ""
	if customer != nil {
		name = customer.Name
		detail = fmt.Sprintf("Documento: %s   |   Email: %s   |   Tel: %s",
			nonEmpty(customer.TaxID, "—"),
			nonEmpty(customer.Email, "—"),
			nonEmpty(customer.Phone, "—"),
		)
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableItemRows: una fila por línea de venta.
func tableItemRows(items []*entity.SaleItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money(it.Total),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(sale *entity.Sale) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(30).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:"),
			label("Descuento:"),
			label("Impuesto:"),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2}),
		),
		col.New(3).Add(
			value(money(sale.Subtotal)),
			value("-"+money(sale.Discount)),
			value(money(sale.Tax)),
			text.New(money(sale.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1}),
		),
	)
}

// paymentRow: medio y estado del pago, con un QR que identifica la venta.
func paymentRow(sale *entity.Sale) core.Row {
	lines := []string{
		"Medio de pago: " + nonEmpty(paymentLabels[sale.PaymentMethod], sale.PaymentMethod),
		"Estado: " + nonEmpty(statusLabels[sale.PaymentStatus], sale.PaymentStatus),
	}
	if sale.DueDate != nil {
		lines = append(lines, "Vence: "+sale.DueDate.Format("02/01/2006"))
	}
	if sale.Notes != "" {
		lines = append(lines, "Notas: "+sale.Notes)
	}
	qr := fmt.Sprintf("%s|%s|%s", sale.InvoiceNumber, sale.ID, sale.Total.StringFixed(2))
	return row.New(40).Add(
		col.New(8).Add(text.New(strings.Join(lines, "\n"), props.Text{Size: 9, Top: 2, Color: colorGray})),
		col.New(4).Add(code.NewQr(qr, props.Rect{Percent: 90, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con separador de miles "." y dos decimales con ",".
// Ej: 25000.5 → "$25.000,50"
func money(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + formatThousands(intPart) + "," + frac
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
