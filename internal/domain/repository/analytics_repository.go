package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SKUMarginResult resultado crudo de la consulta de márgenes por producto.
type SKUMarginResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	UnitsSold    int
	GrossRevenue decimal.Decimal
	TotalCOGS    decimal.Decimal // qty * products.cost
	GrossProfit  decimal.Decimal // GrossRevenue - TotalCOGS
}

// AnalyticsRepository define las consultas de lectura para reportes de rentabilidad.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetSKUMargins agrupa las líneas vendidas en [from, to) por producto, ordenado por ingreso desc.
	GetSKUMargins(ctx context.Context, companyID string, from, to time.Time) ([]SKUMarginResult, error)
}
