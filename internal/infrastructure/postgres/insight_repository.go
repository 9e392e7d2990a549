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

var _ repository.InsightRepository = (*InsightRepo)(nil)

// InsightRepo persistencia de insights; el payload va en JSONB.
type InsightRepo struct {
	q Querier
}

func NewInsightRepository(q Querier) *InsightRepo {
	return &InsightRepo{q: q}
}

const insightColumns = `id, company_id, type, title, description, priority, category, ref_id, payload,
	is_read, created_at, read_at`

func scanInsight(row pgx.Row) (*entity.Insight, error) {
	var in entity.Insight
	err := row.Scan(&in.ID, &in.CompanyID, &in.Type, &in.Title, &in.Description, &in.Priority, &in.Category,
		&in.RefID, &in.Payload, &in.Read, &in.CreatedAt, &in.ReadAt)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *InsightRepo) Create(ctx context.Context, in *entity.Insight) error {
	payload := in.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	query := `
		INSERT INTO insights (` + insightColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query, in.ID, in.CompanyID, in.Type, in.Title, in.Description, in.Priority,
		in.Category, in.RefID, payload, in.Read, in.CreatedAt, in.ReadAt)
	if err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	return nil
}

func (r *InsightRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights WHERE id = $1 AND company_id = $2`
	in, err := scanInsight(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get insight: %w", err)
	}
	return in, nil
}

func (r *InsightRepo) List(ctx context.Context, companyID string, unreadOnly bool) ([]*entity.Insight, error) {
	query := `
		SELECT ` + insightColumns + ` FROM insights
		WHERE company_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, companyID, unreadOnly)
}

func (r *InsightRepo) ListUnread(ctx context.Context, companyID, category, refID string) ([]*entity.Insight, error) {
	query := `
		SELECT ` + insightColumns + ` FROM insights
		WHERE company_id = $1 AND NOT is_read AND category = $2 AND ($3 = '' OR ref_id = $3)
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, companyID, category, refID)
}

func (r *InsightRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Insight, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	list, err := collect(rows, scanInsight)
	if err != nil {
		return nil, fmt.Errorf("scan insight: %w", err)
	}
	return list, nil
}

// MarkRead es idempotente: un insight ya leído conserva su read_at.
func (r *InsightRepo) MarkRead(ctx context.Context, companyID, id string, at time.Time) error {
	query := `
		UPDATE insights SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND company_id = $2`
	tag, err := r.q.Exec(ctx, query, id, companyID, at)
	if err != nil {
		return fmt.Errorf("mark insight read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
