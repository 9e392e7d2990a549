package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo una fila por empresa (company_id único).
type SubscriptionRepo struct {
	q Querier
}

func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

const subscriptionColumns = `id, company_id, plan, status, provider_ref, current_period_end, created_at, updated_at`

func (r *SubscriptionRepo) get(ctx context.Context, where string, arg string) (*entity.Subscription, error) {
	var s entity.Subscription
	err := r.q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE `+where, arg).Scan(
		&s.ID, &s.CompanyID, &s.Plan, &s.Status, &s.ProviderRef, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}

func (r *SubscriptionRepo) GetByCompany(ctx context.Context, companyID string) (*entity.Subscription, error) {
	return r.get(ctx, `company_id = $1`, companyID)
}

func (r *SubscriptionRepo) GetByProviderRef(ctx context.Context, providerRef string) (*entity.Subscription, error) {
	if providerRef == "" {
		return nil, nil
	}
	return r.get(ctx, `provider_ref = $1`, providerRef)
}

// Upsert conserva id y created_at de la fila existente.
func (r *SubscriptionRepo) Upsert(ctx context.Context, s *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id) DO UPDATE
		SET plan = EXCLUDED.plan, status = EXCLUDED.status, provider_ref = EXCLUDED.provider_ref,
		    current_period_end = EXCLUDED.current_period_end, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, s.ID, s.CompanyID, s.Plan, s.Status, s.ProviderRef, s.CurrentPeriodEnd, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}
