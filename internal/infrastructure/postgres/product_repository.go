package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, company_id, sku, name, description, category, price, cost, stock, min_stock,
	image_url, has_variations, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Price, &p.Cost,
		&p.Stock, &p.MinStock, &p.ImageURL, &p.HasVariations, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. Cost inicia en 0.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.CompanyID, product.SKU, product.Name, product.Description, product.Category,
		product.Price, product.Cost, product.Stock, product.MinStock, product.ImageURL, product.HasVariations,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID dentro de la empresa.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND company_id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate obtiene el producto bloqueando la fila (solo dentro de una tx).
func (r *ProductRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND company_id = $2 FOR UPDATE`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por empresa y SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 AND sku = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, companyID, sku))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// Update actualiza los datos editables. Stock y costo solo cambian por UpdateStock/DecrementStock/SetAggregates.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET sku = $3, name = $4, description = $5, category = $6, price = $7, min_stock = $8,
		    image_url = $9, updated_at = $10
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.CompanyID, product.SKU, product.Name, product.Description, product.Category,
		product.Price, product.MinStock, product.ImageURL, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista los productos de la empresa ordenados por nombre.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 ORDER BY name, id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	list, err := collect(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return list, nil
}

// Delete elimina el producto; sus variaciones caen por ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, companyID, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// UpdateStock fija stock y costo promedio.
func (r *ProductRepo) UpdateStock(ctx context.Context, companyID, id string, stock int, cost decimal.Decimal) error {
	query := `
		UPDATE products SET stock = GREATEST($3, 0), cost = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query, id, companyID, stock, cost)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DecrementStock descuenta qty con piso en cero y devuelve el stock previo y el resultante.
func (r *ProductRepo) DecrementStock(ctx context.Context, companyID, id string, qty int) (repository.StockChange, error) {
	query := `
		WITH prev AS (
			SELECT id, stock FROM products WHERE id = $1 AND company_id = $2 FOR UPDATE
		)
		UPDATE products p
		SET stock = GREATEST(p.stock - $3, 0), updated_at = NOW()
		FROM prev
		WHERE p.id = prev.id
		RETURNING prev.stock, p.stock`
	return decrementStock(ctx, r.q, query, id, companyID, qty, "product")
}

// SetAggregates guarda stock y precio derivados de las variaciones.
func (r *ProductRepo) SetAggregates(ctx context.Context, companyID, id string, stock int, price decimal.Decimal, hasVariations bool) error {
	query := `
		UPDATE products SET stock = $3, price = $4, has_variations = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query, id, companyID, stock, price, hasVariations)
	if err != nil {
		return fmt.Errorf("set product aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func decrementStock(ctx context.Context, q Querier, query, id, companyID string, qty int, what string) (repository.StockChange, error) {
	var ch repository.StockChange
	if err := q.QueryRow(ctx, query, id, companyID, qty).Scan(&ch.Previous, &ch.Current); err != nil {
		if noRows(err) {
			return repository.StockChange{}, domain.ErrNotFound
		}
		return repository.StockChange{}, fmt.Errorf("decrement %s stock: %w", what, err)
	}
	ch.Oversold = ch.Previous < qty
	return ch, nil
}
