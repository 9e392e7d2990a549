package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// Totals montos de cabecera de una venta.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals: subtotal = Σ qty × precio; total = subtotal − descuento + impuesto.
func ComputeTotals(items []LineItem, discount, tax decimal.Decimal) (Totals, error) {
	if discount.IsNegative() || tax.IsNegative() {
		return Totals{}, domain.ErrInvalidInput
	}
	subtotal := decimal.Zero
	for _, it := range items {
		if it.UnitPrice.IsNegative() {
			return Totals{}, domain.ErrInvalidInput
		}
		subtotal = subtotal.Add(entity.LineTotal(it.Quantity, it.UnitPrice))
	}
	total := subtotal.Sub(discount).Add(tax)
	if total.IsNegative() {
		return Totals{}, fmt.Errorf("el descuento supera el total: %w", domain.ErrInvalidInput)
	}
	return Totals{Subtotal: subtotal, Discount: discount, Tax: tax, Total: total.Round(2)}, nil
}

// InvoiceNumber genera INV-<prefijo de cuenta>-<secuencia de 6 dígitos> con secuencia = count+1.
func InvoiceNumber(companyID string, count int) string {
	return fmt.Sprintf("INV-%s-%06d", entity.InvoicePrefix(companyID), count+1)
}
