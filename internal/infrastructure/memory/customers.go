package memory

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementa repository.CustomerRepository en memoria.
type CustomerRepo struct {
	s *Store
}

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("customers.Create"); err != nil {
		return err
	}
	r.s.customers[c.ID] = entry[entity.Customer]{seq: r.s.next(), v: *c}
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.customers[id]
	if !ok || e.v.CompanyID != companyID {
		return nil, nil
	}
	c := e.v
	return &c, nil
}

func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.customers[c.ID]
	if !ok || old.v.CompanyID != c.CompanyID {
		return domain.ErrNotFound
	}
	upd := *c
	upd.TotalPurchases = old.v.TotalPurchases
	upd.LastPurchaseAt = old.v.LastPurchaseAt
	r.s.customers[c.ID] = entry[entity.Customer]{seq: old.seq, v: upd}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.customers[id]; ok && e.v.CompanyID == companyID {
		delete(r.s.customers, id)
	}
	return nil
}

func (r *CustomerRepo) ListByCompany(ctx context.Context, companyID, search string) ([]*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search = strings.ToLower(strings.TrimSpace(search))
	vals := r.s.customers.values(func(c entity.Customer) bool {
		if c.CompanyID != companyID {
			return false
		}
		return search == "" ||
			strings.Contains(strings.ToLower(c.Name), search) ||
			strings.Contains(strings.ToLower(c.Email), search) ||
			strings.Contains(c.TaxID, search)
	})
	out := make([]*entity.Customer, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

func (r *CustomerRepo) AddPurchase(ctx context.Context, companyID, id string, amount decimal.Decimal, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("customers.AddPurchase"); err != nil {
		return err
	}
	e, ok := r.s.customers[id]
	if !ok || e.v.CompanyID != companyID {
		return domain.ErrNotFound
	}
	e.v.TotalPurchases = e.v.TotalPurchases.Add(amount)
	t := at
	e.v.LastPurchaseAt = &t
	e.v.UpdatedAt = at
	r.s.customers[id] = e
	return nil
}
