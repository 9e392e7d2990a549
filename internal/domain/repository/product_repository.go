package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// StockChange resultado de un descuento atómico de stock.
// Oversold indica que el stock previo no alcanzaba para la cantidad pedida (quedó en 0).
type StockChange struct {
	Previous int
	Current  int
	Oversold bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Product, error)
	Delete(ctx context.Context, companyID, id string) error
	// UpdateStock fija stock y costo (reposición o edición manual).
	UpdateStock(ctx context.Context, companyID, id string, stock int, cost decimal.Decimal) error
	// DecrementStock descuenta qty con piso en cero en una sola sentencia.
	DecrementStock(ctx context.Context, companyID, id string, qty int) (StockChange, error)
	// SetAggregates guarda el stock y precio derivados de las variaciones.
	SetAggregates(ctx context.Context, companyID, id string, stock int, price decimal.Decimal, hasVariations bool) error
}

// VariationRepository define el puerto de persistencia para ProductVariation.
type VariationRepository interface {
	Create(ctx context.Context, v *entity.ProductVariation) error
	GetByID(ctx context.Context, companyID, id string) (*entity.ProductVariation, error)
	GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.ProductVariation, error)
	Update(ctx context.Context, v *entity.ProductVariation) error
	Delete(ctx context.Context, companyID, id string) error
	DeleteByProduct(ctx context.Context, companyID, productID string) error
	ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.ProductVariation, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.ProductVariation, error)
	UpdateStock(ctx context.Context, companyID, id string, stock int) error
	DecrementStock(ctx context.Context, companyID, id string, qty int) (StockChange, error)
}
