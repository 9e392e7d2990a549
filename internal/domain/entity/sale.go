package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentPix    = "pix"
	PaymentBoleto = "boleto"
	PaymentCard   = "card"
	PaymentCash   = "cash"
)

// Estados de pago (compartidos con FinancialRecord).
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue"
)

// SaleStatusCompleted es el único estado que produce el flujo de venta.
const SaleStatusCompleted = "completed"

// Sale es la cabecera de una venta. Inmutable una vez creada.
type Sale struct {
	ID            string
	CompanyID     string
	CustomerID    *string // nil = venta directa/anónima
	InvoiceNumber string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	PaymentStatus string
	Status        string
	DueDate       *time.Time
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

// SaleItem es una línea de venta. ProductName, UnitPrice y Total son una foto
// del producto al momento de la venta.
type SaleItem struct {
	ID          string
	SaleID      string
	CompanyID   string
	ProductID   *string
	VariationID *string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	CreatedAt   time.Time
}

// Ref devuelve la referencia tipada de la línea o nil si es una línea libre.
func (i *SaleItem) Ref() *ItemRef {
	if i.VariationID != nil {
		return &ItemRef{Kind: RefVariation, ID: *i.VariationID}
	}
	if i.ProductID != nil {
		return &ItemRef{Kind: RefProduct, ID: *i.ProductID}
	}
	return nil
}

// LineTotal calcula quantity × unit_price con redondeo a centavos.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// ValidPaymentMethod indica si m es un método de pago aceptado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentPix, PaymentBoleto, PaymentCard, PaymentCash:
		return true
	}
	return false
}

// ValidPaymentStatus indica si s es un estado de pago válido.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}
