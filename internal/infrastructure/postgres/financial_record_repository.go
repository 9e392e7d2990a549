package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.FinancialRecordRepository = (*FinancialRecordRepo)(nil)

// FinancialRecordRepo persistencia de ingresos y gastos.
type FinancialRecordRepo struct {
	q Querier
}

func NewFinancialRecordRepository(q Querier) *FinancialRecordRepo {
	return &FinancialRecordRepo{q: q}
}

const recordColumns = `id, company_id, type, category, amount, description, status, due_date, paid_at,
	customer_id, sale_id, created_at, updated_at`

func scanRecord(row pgx.Row) (*entity.FinancialRecord, error) {
	var f entity.FinancialRecord
	err := row.Scan(&f.ID, &f.CompanyID, &f.Type, &f.Category, &f.Amount, &f.Description, &f.Status,
		&f.DueDate, &f.PaidAt, &f.CustomerID, &f.SaleID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FinancialRecordRepo) Create(ctx context.Context, f *entity.FinancialRecord) error {
	query := `
		INSERT INTO financial_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, f.ID, f.CompanyID, f.Type, f.Category, f.Amount, f.Description, f.Status,
		f.DueDate, f.PaidAt, f.CustomerID, f.SaleID, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert financial record: %w", err)
	}
	return nil
}

func (r *FinancialRecordRepo) GetByID(ctx context.Context, companyID, id string) (*entity.FinancialRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM financial_records WHERE id = $1 AND company_id = $2`
	f, err := scanRecord(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get financial record: %w", err)
	}
	return f, nil
}

func (r *FinancialRecordRepo) Update(ctx context.Context, f *entity.FinancialRecord) error {
	query := `
		UPDATE financial_records
		SET type = $3, category = $4, amount = $5, description = $6, status = $7, due_date = $8,
		    paid_at = $9, customer_id = $10, updated_at = $11
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query, f.ID, f.CompanyID, f.Type, f.Category, f.Amount, f.Description, f.Status,
		f.DueDate, f.PaidAt, f.CustomerID, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update financial record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FinancialRecordRepo) Delete(ctx context.Context, companyID, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM financial_records WHERE id = $1 AND company_id = $2`, id, companyID); err != nil {
		return fmt.Errorf("delete financial record: %w", err)
	}
	return nil
}

func (r *FinancialRecordRepo) List(ctx context.Context, companyID string, f repository.FinancialRecordFilter) ([]*entity.FinancialRecord, error) {
	query := `
		SELECT ` + recordColumns + ` FROM financial_records
		WHERE company_id = $1
		  AND ($2 = '' OR type = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4 = '' OR sale_id::TEXT = $4)
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, companyID, f.Type, f.Status, f.SaleID)
	if err != nil {
		return nil, fmt.Errorf("list financial records: %w", err)
	}
	list, err := collect(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("scan financial record: %w", err)
	}
	return list, nil
}

func (r *FinancialRecordRepo) MarkOverdue(ctx context.Context, companyID string, now time.Time) (int, error) {
	query := `
		UPDATE financial_records SET status = $2, updated_at = $4
		WHERE company_id = $1 AND status = $3 AND due_date IS NOT NULL AND due_date < $4`
	tag, err := r.q.Exec(ctx, query, companyID, entity.PaymentStatusOverdue, entity.PaymentStatusPending, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
