package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persistencia de ventas y sus líneas.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas (pool o tx).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, company_id, customer_id, invoice_number, subtotal, discount, tax, total,
	payment_method, payment_status, status, due_date, notes, created_by, created_at`

const saleItemColumns = `id, sale_id, company_id, product_id, variation_id, product_name, quantity,
	unit_price, total, created_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.CompanyID, &s.CustomerID, &s.InvoiceNumber, &s.Subtotal, &s.Discount, &s.Tax,
		&s.Total, &s.PaymentMethod, &s.PaymentStatus, &s.Status, &s.DueDate, &s.Notes, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSaleItem(row pgx.Row) (*entity.SaleItem, error) {
	var it entity.SaleItem
	err := row.Scan(&it.ID, &it.SaleID, &it.CompanyID, &it.ProductID, &it.VariationID, &it.ProductName,
		&it.Quantity, &it.UnitPrice, &it.Total, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserta la cabecera; el número de factura es único por empresa.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query, s.ID, s.CompanyID, s.CustomerID, s.InvoiceNumber, s.Subtotal, s.Discount,
		s.Tax, s.Total, s.PaymentMethod, s.PaymentStatus, s.Status, s.DueDate, s.Notes, s.CreatedBy, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE company_id = $1`, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

func (r *SaleRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 AND company_id = $2`
	s, err := scanSale(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// List devuelve las ventas más recientes primero. To es exclusivo.
func (r *SaleRepo) List(ctx context.Context, companyID string, f repository.SaleFilter) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + ` FROM sales
		WHERE company_id = $1
		  AND ($2 = '' OR customer_id::TEXT = $2)
		  AND ($3::TIMESTAMPTZ IS NULL OR created_at >= $3)
		  AND ($4::TIMESTAMPTZ IS NULL OR created_at < $4)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, companyID, f.CustomerID, f.From, f.To)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	list, err := collect(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	return list, nil
}

func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (` + saleItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, it.ID, it.SaleID, it.CompanyID, it.ProductID, it.VariationID, it.ProductName,
		it.Quantity, it.UnitPrice, it.Total, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

func (r *SaleRepo) ListItems(ctx context.Context, companyID, saleID string) ([]*entity.SaleItem, error) {
	query := `SELECT ` + saleItemColumns + ` FROM sale_items WHERE company_id = $1 AND sale_id = $2 ORDER BY created_at, id`
	return r.items(ctx, query, companyID, saleID)
}

func (r *SaleRepo) ListItemsByCompany(ctx context.Context, companyID string) ([]*entity.SaleItem, error) {
	query := `SELECT ` + saleItemColumns + ` FROM sale_items WHERE company_id = $1 ORDER BY created_at, id`
	return r.items(ctx, query, companyID)
}

func (r *SaleRepo) items(ctx context.Context, query string, args ...any) ([]*entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	list, err := collect(rows, scanSaleItem)
	if err != nil {
		return nil, fmt.Errorf("scan sale item: %w", err)
	}
	return list, nil
}
