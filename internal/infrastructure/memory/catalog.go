package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.VariationRepository = (*VariationRepo)(nil)
)

// ProductRepo implementa repository.ProductRepository en memoria.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Create"); err != nil {
		return err
	}
	for _, row := range r.s.products {
		if row.v.CompanyID == p.CompanyID && p.SKU != "" && row.v.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = entry[entity.Product]{seq: r.s.next(), v: *p}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.products[id]
	if !ok || row.v.CompanyID != companyID {
		return nil, nil
	}
	p := row.v
	return &p, nil
}

func (r *ProductRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *ProductRepo) GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.products {
		if row.v.CompanyID == companyID && row.v.SKU == sku {
			p := row.v
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Update"); err != nil {
		return err
	}
	old, ok := r.s.products[p.ID]
	if !ok || old.v.CompanyID != p.CompanyID {
		return domain.ErrNotFound
	}
	// Igual que en SQL: stock y costo solo cambian por UpdateStock/DecrementStock/SetAggregates.
	upd := *p
	upd.Stock = old.v.Stock
	upd.Cost = old.v.Cost
	r.s.products[p.ID] = entry[entity.Product]{seq: old.seq, v: upd}
	return nil
}

func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vals := r.s.products.values(func(p entity.Product) bool { return p.CompanyID == companyID })
	out := make([]*entity.Product, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

func (r *ProductRepo) Delete(ctx context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.Delete"); err != nil {
		return err
	}
	if row, ok := r.s.products[id]; ok && row.v.CompanyID == companyID {
		delete(r.s.products, id)
	}
	return nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, companyID, id string, stock int, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.UpdateStock"); err != nil {
		return err
	}
	old, ok := r.s.products[id]
	if !ok || old.v.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if stock < 0 {
		stock = 0
	}
	old.v.Stock = stock
	old.v.Cost = cost
	old.v.UpdatedAt = time.Now()
	r.s.products[id] = old
	return nil
}

func (r *ProductRepo) DecrementStock(ctx context.Context, companyID, id string, qty int) (repository.StockChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.DecrementStock"); err != nil {
		return repository.StockChange{}, err
	}
	old, ok := r.s.products[id]
	if !ok || old.v.CompanyID != companyID {
		return repository.StockChange{}, domain.ErrNotFound
	}
	ch := decrement(old.v.Stock, qty)
	old.v.Stock = ch.Current
	old.v.UpdatedAt = time.Now()
	r.s.products[id] = old
	return ch, nil
}

func (r *ProductRepo) SetAggregates(ctx context.Context, companyID, id string, stock int, price decimal.Decimal, hasVariations bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.SetAggregates"); err != nil {
		return err
	}
	old, ok := r.s.products[id]
	if !ok || old.v.CompanyID != companyID {
		return domain.ErrNotFound
	}
	old.v.Stock = stock
	old.v.Price = price
	old.v.HasVariations = hasVariations
	old.v.UpdatedAt = time.Now()
	r.s.products[id] = old
	return nil
}

func decrement(stock, qty int) repository.StockChange {
	ch := repository.StockChange{Previous: stock, Current: stock - qty}
	if ch.Current < 0 {
		ch.Current = 0
		ch.Oversold = true
	}
	return ch
}

// VariationRepo implementa repository.VariationRepository en memoria.
type VariationRepo struct {
	s *Store
}

func (r *VariationRepo) Create(ctx context.Context, v *entity.ProductVariation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("variations.Create"); err != nil {
		return err
	}
	if p, ok := r.s.products[v.ProductID]; !ok || p.v.CompanyID != v.CompanyID {
		return domain.ErrNotFound
	}
	r.s.variations[v.ID] = entry[entity.ProductVariation]{seq: r.s.next(), v: *v}
	return nil
}

func (r *VariationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ProductVariation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.variations[id]
	if !ok || row.v.CompanyID != companyID {
		return nil, nil
	}
	v := row.v
	return &v, nil
}

func (r *VariationRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (*entity.ProductVariation, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *VariationRepo) Update(ctx context.Context, v *entity.ProductVariation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("variations.Update"); err != nil {
		return err
	}
	old, ok := r.s.variations[v.ID]
	if !ok || old.v.CompanyID != v.CompanyID {
		return domain.ErrNotFound
	}
	r.s.variations[v.ID] = entry[entity.ProductVariation]{seq: old.seq, v: *v}
	return nil
}

func (r *VariationRepo) Delete(ctx context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if row, ok := r.s.variations[id]; ok && row.v.CompanyID == companyID {
		delete(r.s.variations, id)
	}
	return nil
}

func (r *VariationRepo) DeleteByProduct(ctx context.Context, companyID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, row := range r.s.variations {
		if row.v.CompanyID == companyID && row.v.ProductID == productID {
			delete(r.s.variations, id)
		}
	}
	return nil
}

func (r *VariationRepo) ListByProduct(ctx context.Context, companyID, productID string) ([]*entity.ProductVariation, error) {
	return r.list(func(v entity.ProductVariation) bool {
		return v.CompanyID == companyID && v.ProductID == productID
	}), nil
}

func (r *VariationRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.ProductVariation, error) {
	return r.list(func(v entity.ProductVariation) bool { return v.CompanyID == companyID }), nil
}

func (r *VariationRepo) list(keep func(entity.ProductVariation) bool) []*entity.ProductVariation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vals := r.s.variations.values(keep)
	out := make([]*entity.ProductVariation, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out
}

func (r *VariationRepo) UpdateStock(ctx context.Context, companyID, id string, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("variations.UpdateStock"); err != nil {
		return err
	}
	old, ok := r.s.variations[id]
	if !ok || old.v.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if stock < 0 {
		stock = 0
	}
	old.v.Stock = stock
	old.v.UpdatedAt = time.Now()
	r.s.variations[id] = old
	return nil
}

func (r *VariationRepo) DecrementStock(ctx context.Context, companyID, id string, qty int) (repository.StockChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("variations.DecrementStock"); err != nil {
		return repository.StockChange{}, err
	}
	old, ok := r.s.variations[id]
	if !ok || old.v.CompanyID != companyID {
		return repository.StockChange{}, domain.ErrNotFound
	}
	ch := decrement(old.v.Stock, qty)
	old.v.Stock = ch.Current
	old.v.UpdatedAt = time.Now()
	r.s.variations[id] = old
	return ch, nil
}
