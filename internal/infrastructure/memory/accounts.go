package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var (
	_ repository.CompanyRepository      = (*CompanyRepo)(nil)
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)
)

// CompanyRepo implementa repository.CompanyRepository en memoria.
type CompanyRepo struct {
	s *Store
}

func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.companies[c.ID] = entry[entity.Company]{seq: r.s.next(), v: *c}
	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	c := e.v
	return &c, nil
}

func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.companies[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	r.s.companies[c.ID] = entry[entity.Company]{seq: old.seq, v: *c}
	return nil
}

// UserRepo implementa repository.UserRepository en memoria.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.users {
		if strings.EqualFold(e.v.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	r.s.users[u.ID] = entry[entity.User]{seq: r.s.next(), v: *u}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	u := e.v
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.users {
		if strings.EqualFold(e.v.Email, email) {
			u := e.v
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	r.s.users[u.ID] = entry[entity.User]{seq: old.seq, v: *u}
	return nil
}

func (r *UserRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vals := r.s.users.values(func(u entity.User) bool { return u.CompanyID == companyID })
	out := make([]*entity.User, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

// SubscriptionRepo implementa repository.SubscriptionRepository en memoria.
type SubscriptionRepo struct {
	s *Store
}

func (r *SubscriptionRepo) GetByCompany(ctx context.Context, companyID string) (*entity.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.subscriptions {
		if e.v.CompanyID == companyID {
			sub := e.v
			return &sub, nil
		}
	}
	return nil, nil
}

func (r *SubscriptionRepo) GetByProviderRef(ctx context.Context, providerRef string) (*entity.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.subscriptions {
		if providerRef != "" && e.v.ProviderRef == providerRef {
			sub := e.v
			return &sub, nil
		}
	}
	return nil, nil
}

func (r *SubscriptionRepo) Upsert(ctx context.Context, sub *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, e := range r.s.subscriptions {
		if e.v.CompanyID == sub.CompanyID {
			cp := *sub
			cp.ID = e.v.ID
			cp.CreatedAt = e.v.CreatedAt
			r.s.subscriptions[id] = entry[entity.Subscription]{seq: e.seq, v: cp}
			return nil
		}
	}
	r.s.subscriptions[sub.ID] = entry[entity.Subscription]{seq: r.s.next(), v: *sub}
	return nil
}
