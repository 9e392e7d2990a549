package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de la cuenta.
// Combina el stock mínimo de cada producto con el historial de márgenes para priorizar.
type ReplenishmentUseCase struct {
	products      repository.ProductRepository
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	products repository.ProductRepository,
	analyticsRepo repository.AnalyticsRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		products:      products,
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

// GenerateReplenishmentList devuelve los productos en o bajo su stock mínimo con la cantidad
// sugerida de pedido, ordenados por déficit y luego por margen histórico.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	list, err := uc.products.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	// Historial de márgenes por producto (últimos 90 días)
	end := uc.now()
	start := end.AddDate(0, 0, -90)
	skuMetrics, err := uc.analyticsRepo.GetSKUMargins(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}
	marginByID := make(map[string]repository.SKUMarginResult, len(skuMetrics))
	for _, m := range skuMetrics {
		marginByID[m.ProductID] = m
	}

	hundred := decimal.NewFromInt(100)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range list {
		if !p.IsLowStock() {
			continue
		}
		ideal := idealStock(p.MinStock)
		qty := ideal - p.Stock
		if qty < 0 {
			qty = 0
		}

		var grossMarginPct decimal.Decimal
		unitsSold := 0
		if m, ok := marginByID[p.ID]; ok {
			unitsSold = m.UnitsSold
			if m.GrossRevenue.IsPositive() {
				grossMarginPct = m.GrossProfit.Div(m.GrossRevenue).Mul(hundred).Round(2)
			}
		} else if p.Price.IsPositive() {
			// Sin historial de ventas: estimar margen por precio y costo
			grossMarginPct = p.Price.Sub(p.Cost).Div(p.Price).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:           p.ID,
			SKU:                 p.SKU,
			ProductName:         p.Name,
			CurrentStock:        p.Stock,
			MinStock:            p.MinStock,
			IdealStock:          ideal,
			SuggestedOrderQty:   qty,
			UnitCost:            p.Cost,
			EstimatedOrderCost:  p.Cost.Mul(decimal.NewFromInt(int64(qty))).Round(2),
			GrossMarginPct:      grossMarginPct,
			UnitsSoldLast90Days: unitsSold,
		})
	}

	// Mayor déficit primero; a igual déficit, mayor margen y luego mayor volumen.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA, defB := a.MinStock-a.CurrentStock, b.MinStock-b.CurrentStock
		if defA != defB {
			return defA > defB
		}
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		return a.UnitsSoldLast90Days > b.UnitsSoldLast90Days
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// idealStock 1.5 veces el mínimo, siempre por encima de él.
func idealStock(minStock int) int {
	ideal := minStock * 3 / 2
	if ideal <= minStock {
		ideal = minStock + 1
	}
	return ideal
}
