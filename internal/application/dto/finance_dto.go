package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// CreateFinancialRecordRequest body para POST /api/finance.
type CreateFinancialRecordRequest struct {
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Category    string          `json:"category" validate:"required,min=1,max=100"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"max=500"`
	Status      string          `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	DueDate     *time.Time      `json:"due_date"`
	CustomerID  *string         `json:"customer_id" validate:"omitempty,uuid"`
}

// UpdateFinancialRecordRequest body para PUT /api/finance/:id.
type UpdateFinancialRecordRequest struct {
	Category    *string          `json:"category" validate:"omitempty,min=1,max=100"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Status      *string          `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	DueDate     *time.Time       `json:"due_date"`
}

// FinancialRecordResponse registro financiero en respuestas.
type FinancialRecordResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	DueDate     *time.Time      `json:"due_date"`
	PaidAt      *time.Time      `json:"paid_at"`
	CustomerID  *string         `json:"customer_id"`
	SaleID      *string         `json:"sale_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewFinancialRecordResponse mapea la entidad.
func NewFinancialRecordResponse(r *entity.FinancialRecord) *FinancialRecordResponse {
	if r == nil {
		return nil
	}
	return &FinancialRecordResponse{
		ID:          r.ID,
		Type:        r.Type,
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
		Status:      r.Status,
		DueDate:     r.DueDate,
		PaidAt:      r.PaidAt,
		CustomerID:  r.CustomerID,
		SaleID:      r.SaleID,
		CreatedAt:   r.CreatedAt,
	}
}
