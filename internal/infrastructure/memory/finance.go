package memory

import (
	"context"
	"time"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.FinancialRecordRepository = (*FinancialRecordRepo)(nil)

// FinancialRecordRepo implementa repository.FinancialRecordRepository en memoria.
type FinancialRecordRepo struct {
	s *Store
}

func (r *FinancialRecordRepo) Create(ctx context.Context, rec *entity.FinancialRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("records.Create." + rec.Type); err != nil {
		return err
	}
	r.s.records[rec.ID] = entry[entity.FinancialRecord]{seq: r.s.next(), v: *rec}
	return nil
}

func (r *FinancialRecordRepo) GetByID(ctx context.Context, companyID, id string) (*entity.FinancialRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.records[id]
	if !ok || e.v.CompanyID != companyID {
		return nil, nil
	}
	rec := e.v
	return &rec, nil
}

func (r *FinancialRecordRepo) Update(ctx context.Context, rec *entity.FinancialRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.records[rec.ID]
	if !ok || old.v.CompanyID != rec.CompanyID {
		return domain.ErrNotFound
	}
	r.s.records[rec.ID] = entry[entity.FinancialRecord]{seq: old.seq, v: *rec}
	return nil
}

func (r *FinancialRecordRepo) Delete(ctx context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.records[id]; ok && e.v.CompanyID == companyID {
		delete(r.s.records, id)
	}
	return nil
}

func (r *FinancialRecordRepo) List(ctx context.Context, companyID string, f repository.FinancialRecordFilter) ([]*entity.FinancialRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vals := r.s.records.values(func(rec entity.FinancialRecord) bool {
		if rec.CompanyID != companyID {
			return false
		}
		if f.Type != "" && rec.Type != f.Type {
			return false
		}
		if f.Status != "" && rec.Status != f.Status {
			return false
		}
		if f.SaleID != "" && (rec.SaleID == nil || *rec.SaleID != f.SaleID) {
			return false
		}
		return true
	})
	out := make([]*entity.FinancialRecord, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out, nil
}

func (r *FinancialRecordRepo) MarkOverdue(ctx context.Context, companyID string, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, e := range r.s.records {
		if e.v.CompanyID == companyID && e.v.IsOverdue(now) {
			e.v.Status = entity.PaymentStatusOverdue
			e.v.UpdatedAt = now
			r.s.records[id] = e
			n++
		}
	}
	return n, nil
}
