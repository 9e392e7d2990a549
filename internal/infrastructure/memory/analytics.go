package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo resuelve en memoria la misma agregación que la consulta SQL.
type AnalyticsRepo struct {
	s *Store
}

func (r *AnalyticsRepo) GetSKUMargins(ctx context.Context, companyID string, from, to time.Time) ([]repository.SKUMarginResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inRange := map[string]bool{}
	for id, e := range r.s.sales {
		if e.v.CompanyID == companyID && !e.v.CreatedAt.Before(from) && e.v.CreatedAt.Before(to) {
			inRange[id] = true
		}
	}
	byProduct := map[string]*repository.SKUMarginResult{}
	for _, e := range r.s.saleItems {
		it := e.v
		if !inRange[it.SaleID] || it.ProductID == nil {
			continue
		}
		p, ok := r.s.products[*it.ProductID]
		if !ok {
			continue
		}
		res, ok := byProduct[p.v.ID]
		if !ok {
			res = &repository.SKUMarginResult{ProductID: p.v.ID, SKU: p.v.SKU, ProductName: p.v.Name}
			byProduct[p.v.ID] = res
		}
		res.UnitsSold += it.Quantity
		res.GrossRevenue = res.GrossRevenue.Add(it.Total)
		res.TotalCOGS = res.TotalCOGS.Add(p.v.Cost.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	out := make([]repository.SKUMarginResult, 0, len(byProduct))
	for _, res := range byProduct {
		res.GrossProfit = res.GrossRevenue.Sub(res.TotalCOGS)
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GrossRevenue.Equal(out[j].GrossRevenue) {
			return out[i].GrossRevenue.GreaterThan(out[j].GrossRevenue)
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}
