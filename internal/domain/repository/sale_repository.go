package repository

import (
	"context"
	"time"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// SaleFilter filtros opcionales para listar ventas.
type SaleFilter struct {
	CustomerID string
	From       *time.Time
	To         *time.Time
}

// SaleRepository define el puerto de persistencia para Sale y SaleItem.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CountByCompany(ctx context.Context, companyID string) (int, error)
	GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error)
	List(ctx context.Context, companyID string, f SaleFilter) ([]*entity.Sale, error)
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	ListItems(ctx context.Context, companyID, saleID string) ([]*entity.SaleItem, error)
	ListItemsByCompany(ctx context.Context, companyID string) ([]*entity.SaleItem, error)
}
