package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerID    *string           `json:"customer_id" validate:"omitempty,uuid"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount      decimal.Decimal   `json:"discount" validate:"gte=0"`
	Tax           decimal.Decimal   `json:"tax" validate:"gte=0"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=pix boleto card cash"`
	PaymentStatus string            `json:"payment_status" validate:"omitempty,oneof=pending paid overdue"`
	DueDate       *time.Time        `json:"due_date"`
	TotalCost     *decimal.Decimal  `json:"total_cost"`
	Notes         string            `json:"notes" validate:"max=500"`
}

// SaleItemRequest línea de venta. Se usa Ref, o bien product_id/variation_id (product_id
// admite ids compuestos heredados). Sin referencia = línea libre.
type SaleItemRequest struct {
	Ref         *entity.ItemRef `json:"ref"`
	ProductID   string          `json:"product_id"`
	VariationID string          `json:"variation_id" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"max=200"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

// SaleResponse venta en respuestas.
type SaleResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    *string            `json:"customer_id"`
	CustomerName  string             `json:"customer_name,omitempty"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	Status        string             `json:"status"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items,omitempty"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"product_id"`
	VariationID *string         `json:"variation_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// SaleCreatedResponse salida de POST /api/sales; Warnings lista los pasos secundarios fallidos.
type SaleCreatedResponse struct {
	Sale     SaleResponse      `json:"sale"`
	Insights []InsightResponse `json:"insights"`
	Warnings []string          `json:"warnings,omitempty"`
	Version  uint64            `json:"snapshot_version"`
}

// NewSaleResponse mapea venta y líneas.
func NewSaleResponse(s *entity.Sale, items []*entity.SaleItem, customerName string) SaleResponse {
	out := SaleResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		CustomerName:  customerName,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Tax:           s.Tax,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		PaymentStatus: s.PaymentStatus,
		Status:        s.Status,
		DueDate:       s.DueDate,
		CreatedAt:     s.CreatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return out
}
