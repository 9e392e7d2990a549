package memory

import (
	"context"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementa repository.SaleRepository en memoria.
type SaleRepo struct {
	s *Store
}

func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sales.Create"); err != nil {
		return err
	}
	for _, e := range r.s.sales {
		if e.v.CompanyID == sale.CompanyID && e.v.InvoiceNumber == sale.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.sales[sale.ID] = entry[entity.Sale]{seq: r.s.next(), v: *sale}
	return nil
}

func (r *SaleRepo) CountByCompany(ctx context.Context, companyID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sales.CountByCompany"); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range r.s.sales {
		if e.v.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (r *SaleRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.sales[id]
	if !ok || e.v.CompanyID != companyID {
		return nil, nil
	}
	s := e.v
	return &s, nil
}

func (r *SaleRepo) List(ctx context.Context, companyID string, f repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vals := r.s.sales.values(func(s entity.Sale) bool {
		if s.CompanyID != companyID {
			return false
		}
		if f.CustomerID != "" && (s.CustomerID == nil || *s.CustomerID != f.CustomerID) {
			return false
		}
		if f.From != nil && s.CreatedAt.Before(*f.From) {
			return false
		}
		if f.To != nil && !s.CreatedAt.Before(*f.To) {
			return false
		}
		return true
	})
	// Más recientes primero, como ORDER BY created_at DESC.
	out := make([]*entity.Sale, len(vals))
	for i := range vals {
		out[len(vals)-1-i] = &vals[i]
	}
	return out, nil
}

func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("sales.CreateItem"); err != nil {
		return err
	}
	r.s.saleItems[item.ID] = entry[entity.SaleItem]{seq: r.s.next(), v: *item}
	return nil
}

func (r *SaleRepo) ListItems(ctx context.Context, companyID, saleID string) ([]*entity.SaleItem, error) {
	return r.items(func(i entity.SaleItem) bool { return i.CompanyID == companyID && i.SaleID == saleID }), nil
}

func (r *SaleRepo) ListItemsByCompany(ctx context.Context, companyID string) ([]*entity.SaleItem, error) {
	return r.items(func(i entity.SaleItem) bool { return i.CompanyID == companyID }), nil
}

func (r *SaleRepo) items(keep func(entity.SaleItem) bool) []*entity.SaleItem {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vals := r.s.saleItems.values(keep)
	out := make([]*entity.SaleItem, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out
}
