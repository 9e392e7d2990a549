package memory

import (
	"context"
	"maps"
	"time"

	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.InsightRepository = (*InsightRepo)(nil)

// InsightRepo implementa repository.InsightRepository en memoria.
type InsightRepo struct {
	s *Store
}

func (r *InsightRepo) Create(ctx context.Context, in *entity.Insight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("insights.Create"); err != nil {
		return err
	}
	cp := *in
	cp.Payload = maps.Clone(in.Payload)
	r.s.insights[in.ID] = entry[entity.Insight]{seq: r.s.next(), v: cp}
	return nil
}

func (r *InsightRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Insight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.insights[id]
	if !ok || e.v.CompanyID != companyID {
		return nil, nil
	}
	in := e.v
	in.Payload = maps.Clone(e.v.Payload)
	return &in, nil
}

func (r *InsightRepo) List(ctx context.Context, companyID string, unreadOnly bool) ([]*entity.Insight, error) {
	return r.list(func(in entity.Insight) bool {
		return in.CompanyID == companyID && (!unreadOnly || !in.Read)
	}), nil
}

func (r *InsightRepo) ListUnread(ctx context.Context, companyID, category, refID string) ([]*entity.Insight, error) {
	r.s.mu.Lock()
	err := r.s.fail("insights.ListUnread")
	r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.list(func(in entity.Insight) bool {
		return in.CompanyID == companyID && !in.Read && in.Category == category &&
			(refID == "" || in.RefID == refID)
	}), nil
}

func (r *InsightRepo) list(keep func(entity.Insight) bool) []*entity.Insight {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vals := r.s.insights.values(keep)
	out := make([]*entity.Insight, len(vals))
	for i := range vals {
		vals[i].Payload = maps.Clone(vals[i].Payload)
		out[len(vals)-1-i] = &vals[i]
	}
	return out
}

func (r *InsightRepo) MarkRead(ctx context.Context, companyID, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.insights[id]
	if !ok || e.v.CompanyID != companyID {
		return domain.ErrNotFound
	}
	if !e.v.Read {
		e.v.Read = true
		t := at
		e.v.ReadAt = &t
		r.s.insights[id] = e
	}
	return nil
}
