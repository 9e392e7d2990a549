package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VariationLowStockThreshold es el umbral fijo de alerta para variaciones.
const VariationLowStockThreshold = 1

// ProductVariation es una opción con stock y precio propios (talla, color...) de un Product.
type ProductVariation struct {
	ID        string
	CompanyID string
	ProductID string
	Name      string
	SKU       string
	Price     decimal.Decimal
	Stock     int
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
