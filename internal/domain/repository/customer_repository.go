package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, companyID, id string) error
	ListByCompany(ctx context.Context, companyID, search string) ([]*entity.Customer, error)
	// AddPurchase incrementa total_purchases y fija last_purchase_at (incremental, nunca recalcula).
	AddPurchase(ctx context.Context, companyID, id string, amount decimal.Decimal, at time.Time) error
}
