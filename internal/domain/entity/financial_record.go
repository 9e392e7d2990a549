package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de registro financiero.
const (
	RecordIncome  = "income"
	RecordExpense = "expense"
)

// Categorías generadas por el flujo de venta.
const (
	CategorySales = "Sales"
	CategoryCOGS  = "Cost of Goods Sold"
)

// FinancialRecord es un ingreso o gasto de la cuenta. Status usa los valores PaymentStatus*.
type FinancialRecord struct {
	ID          string
	CompanyID   string
	Type        string
	Category    string
	Amount      decimal.Decimal
	Description string
	Status      string
	DueDate     *time.Time
	PaidAt      *time.Time
	CustomerID  *string
	SaleID      *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOverdue indica si un registro pendiente ya pasó su vencimiento.
func (r *FinancialRecord) IsOverdue(now time.Time) bool {
	return r.Status == PaymentStatusPending && r.DueDate != nil && r.DueDate.Before(now)
}
