package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la cuenta.
// Cost es promedio ponderado calculado en cada reposición; Stock nunca es negativo.
// Cuando HasVariations es true, Stock y Price se derivan de las variaciones.
type Product struct {
	ID            string
	CompanyID     string
	SKU           string // código único por empresa
	Name          string
	Description   string
	Category      string
	Price         decimal.Decimal // precio de venta
	Cost          decimal.Decimal // costo promedio ponderado (inicia en 0)
	Stock         int
	MinStock      int // umbral de stock mínimo para alertas
	ImageURL      string
	HasVariations bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica si el stock está en o por debajo del mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}
