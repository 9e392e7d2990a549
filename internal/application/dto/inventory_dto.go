package dto

import "github.com/shopspring/decimal"

// RestockRequest body para POST /api/inventory/restock.
// Exactamente uno de ProductID o VariationID.
type RestockRequest struct {
	ProductID   string           `json:"product_id" validate:"required_without=VariationID,omitempty,uuid"`
	VariationID string           `json:"variation_id" validate:"required_without=ProductID,omitempty,uuid"`
	Quantity    int              `json:"quantity" validate:"required,gt=0"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// SetStockRequest body para PUT /api/inventory/stock (edición manual).
type SetStockRequest struct {
	ProductID   string `json:"product_id" validate:"required_without=VariationID,omitempty,uuid"`
	VariationID string `json:"variation_id" validate:"required_without=ProductID,omitempty,uuid"`
	Stock       int    `json:"stock" validate:"min=0"`
}

// StockChangeResponse resultado de una reposición o edición de stock.
type StockChangeResponse struct {
	RefKind  string           `json:"ref_kind"`
	RefID    string           `json:"ref_id"`
	Previous int              `json:"previous"`
	Current  int              `json:"current"`
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	Resolved bool             `json:"resolved_alerts"`
	Alert    *InsightResponse `json:"alert,omitempty"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un producto
// que está en o por debajo de su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID           string          `json:"product_id"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	CurrentStock        int             `json:"current_stock"`
	MinStock            int             `json:"min_stock"`
	IdealStock          int             `json:"ideal_stock"`         // MinStock * 1.5 (mínimo MinStock+1)
	SuggestedOrderQty   int             `json:"suggested_order_qty"` // IdealStock - CurrentStock
	UnitCost            decimal.Decimal `json:"unit_cost"`           // costo promedio ponderado
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"`
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`
	UnitsSoldLast90Days int             `json:"units_sold_last_90d"`
	Priority            int             `json:"priority"` // 1 = más urgente
}
