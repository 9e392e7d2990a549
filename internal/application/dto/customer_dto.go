package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	TaxID   string `json:"tax_id" validate:"max=30"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty" validate:"max=1000"`
}

// UpdateCustomerRequest body para PUT /api/customers/:id.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	TaxID   *string `json:"tax_id" validate:"omitempty,max=30"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes" validate:"omitempty,max=1000"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	Name           string          `json:"name"`
	TaxID          string          `json:"tax_id"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	LastPurchaseAt *time.Time      `json:"last_purchase_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewCustomerResponse mapea la entidad.
func NewCustomerResponse(c *entity.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{
		ID:             c.ID,
		CompanyID:      c.CompanyID,
		Name:           c.Name,
		TaxID:          c.TaxID,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		Notes:          c.Notes,
		TotalPurchases: c.TotalPurchases,
		LastPurchaseAt: c.LastPurchaseAt,
		CreatedAt:      c.CreatedAt,
	}
}
