package repository

import (
	"context"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
}

// SubscriptionRepository define el puerto de persistencia para Subscription.
type SubscriptionRepository interface {
	GetByCompany(ctx context.Context, companyID string) (*entity.Subscription, error)
	GetByProviderRef(ctx context.Context, providerRef string) (*entity.Subscription, error)
	Upsert(ctx context.Context, sub *entity.Subscription) error
}
