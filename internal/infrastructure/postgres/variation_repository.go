package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.VariationRepository = (*VariationRepo)(nil)

// VariationRepo persistencia de variaciones de producto.
type VariationRepo struct {
	q Querier
}

func NewVariationRepository(q Querier) *VariationRepo {
	return &VariationRepo{q: q}
}

const variationColumns = `id, company_id, product_id, name, sku, price, stock, image_url, created_at, updated_at`

func scanVariation(row pgx.Row) (*entity.ProductVariation, error) {
	var v entity.ProductVariation
	err := row.Scan(&v.ID, &v.CompanyID, &v.ProductID, &v.Name, &v.SKU, &v.Price, &v.Stock,
		&v.ImageURL, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VariationRepo) Create(ctx context.Context, v *entity.ProductVariation) error {
	query := `
		INSERT INTO product_variations (` + variationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, v.ID, v.CompanyID, v.ProductID, v.Name, v.SKU, v.Price, v.Stock,
		v.ImageURL, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert variation: %w", err)
	}
	return nil
}

func (r *VariationRepo) get(ctx context.Context, query, companyID, id string) (*entity.ProductVariation, error) {
	v, err := scanVariation(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variation: %w", err)
	}
	return v, nil
}

func (r *VariationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ProductVariation, error) {
	return r.get(ctx, `SELECT `+variationColumns+` FROM product_variations WHERE id = $1 AND company_id = $2`, companyID, id)
}

func (r *VariationRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.ProductVariation, error) {
	return r.get(ctx, `SELECT `+variationColumns+` FROM product_variations WHERE id = $1 AND company_id = $2 FOR UPDATE`, companyID, id)
}

func (r *VariationRepo) Update(ctx context.Context, v *entity.ProductVariation) error {
	query := `
		UPDATE product_variations
		SET name = $3, sku = $4, price = $5, stock = $6, image_url = $7, updated_at = $8
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query, v.ID, v.CompanyID, v.Name, v.SKU, v.Price, v.Stock, v.ImageURL, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update variation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VariationRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM product_variations WHERE id = $1 AND company_id = $2`, id, companyID); err != nil {
		return fmt.Errorf("delete variation: %w", err)
	}
	return nil
}

func (r *VariationRepo) DeleteByProduct(ctx context.Context, companyID, productID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM product_variations WHERE product_id = $1 AND company_id = $2`, productID, companyID); err != nil {
		return fmt.Errorf("delete variations by product: %w", err)
	}
	return nil
}

func (r *VariationRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.ProductVariation, error) {
	query := `SELECT ` + variationColumns + ` FROM product_variations
		WHERE company_id = $1 AND product_id = $2 ORDER BY created_at, id`
	return r.list(ctx, query, companyID, productID)
}

func (r *VariationRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.ProductVariation, error) {
	query := `SELECT ` + variationColumns + ` FROM product_variations WHERE company_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, companyID)
}

func (r *VariationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ProductVariation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list variations: %w", err)
	}
	list, err := collect(rows, scanVariation)
	if err != nil {
		return nil, fmt.Errorf("scan variation: %w", err)
	}
	return list, nil
}

func (r *VariationRepo) UpdateStock(ctx context.Context, companyID, id string, stock int) error {
	query := `UPDATE product_variations SET stock = GREATEST($3, 0), updated_at = NOW() WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query, id, companyID, stock)
	if err != nil {
		return fmt.Errorf("update variation stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VariationRepo) DecrementStock(ctx context.Context, companyID, id string, qty int) (repository.StockChange, error) {
	query := `
		WITH prev AS (
			SELECT id, stock FROM product_variations WHERE id = $1 AND company_id = $2 FOR UPDATE
		)
		UPDATE product_variations v
		SET stock = GREATEST(v.stock - $3, 0), updated_at = NOW()
		FROM prev
		WHERE v.id = prev.id
		RETURNING prev.stock, v.stock`
	return decrementStock(ctx, r.q, query, id, companyID, qty, "variation")
}
