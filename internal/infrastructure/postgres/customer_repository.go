package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación del puerto CustomerRepository sobre PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador de clientes (pool o tx).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, company_id, name, tax_id, email, phone, address, notes, total_purchases,
	last_purchase_at, created_at, updated_at`

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address, &c.Notes,
		&c.TotalPurchases, &c.LastPurchaseAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query, c.ID, c.CompanyID, c.Name, c.TaxID, c.Email, c.Phone, c.Address, c.Notes,
		c.TotalPurchases, c.LastPurchaseAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 AND company_id = $2`
	c, err := scanCustomer(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// Update no toca total_purchases ni last_purchase_at.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers
		SET name = $3, tax_id = $4, email = $5, phone = $6, address = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query, c.ID, c.CompanyID, c.Name, c.TaxID, c.Email, c.Phone, c.Address, c.Notes, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1 AND company_id = $2`, id, companyID); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// ListByCompany filtra por nombre, email o documento cuando search no está vacío.
func (r *CustomerRepo) ListByCompany(ctx context.Context, companyID, search string) ([]*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + ` FROM customers
		WHERE company_id = $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%' OR tax_id LIKE '%' || $2 || '%')
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, companyID, search)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	list, err := collect(rows, scanCustomer)
	if err != nil {
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return list, nil
}

// AddPurchase suma el monto al acumulado en la misma sentencia.
func (r *CustomerRepo) AddPurchase(ctx context.Context, companyID, id string, amount decimal.Decimal, at time.Time) error {
	query := `
		UPDATE customers
		SET total_purchases = total_purchases + $3, last_purchase_at = $4, updated_at = $4
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query, id, companyID, amount, at)
	if err != nil {
		return fmt.Errorf("add customer purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
