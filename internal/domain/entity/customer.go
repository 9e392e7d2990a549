package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente de la cuenta.
// TotalPurchases y LastPurchaseAt solo se modifican al liquidar ventas.
type Customer struct {
	ID             string
	CompanyID      string
	Name           string
	TaxID          string
	Email          string
	Phone          string // E.164
	Address        string
	Notes          string
	TotalPurchases decimal.Decimal
	LastPurchaseAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
