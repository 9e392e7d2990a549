package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // Principio de Pareto: el top 20% de SKUs genera el 80% de ingresos
)

var pareto80 = decimal.NewFromInt(paretoThreshold)

// MarginsUseCase ranking de rentabilidad por producto e identificación del top Pareto.
type MarginsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewMarginsUseCase construye el caso de uso.
func NewMarginsUseCase(analyticsRepo repository.AnalyticsRepository) *MarginsUseCase {
	return &MarginsUseCase{analyticsRepo: analyticsRepo}
}

// GetMarginsReport genera el reporte de márgenes del rango [from, to).
func (uc *MarginsUseCase) GetMarginsReport(ctx context.Context, companyID string, from, to time.Time, topN int) (*dto.MarginsReportDTO, error) {
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}
	rows, err := uc.analyticsRepo.GetSKUMargins(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics: SKUs: %w", err)
	}

	var revenue, cogs, profit decimal.Decimal
	for _, r := range rows {
		revenue = revenue.Add(r.GrossRevenue)
		cogs = cogs.Add(r.TotalCOGS)
		profit = profit.Add(r.GrossProfit)
	}

	ranking := buildSKURanking(rows, revenue)
	pareto := []dto.SKURankingDTO{}
	for _, sku := range ranking {
		if sku.IsTopPareto {
			pareto = append(pareto, sku)
		}
	}
	if len(ranking) > topN {
		ranking = ranking[:topN]
	}

	return &dto.MarginsReportDTO{
		Period: dto.PeriodDTO{
			StartDate: from.Format(time.DateOnly),
			EndDate:   to.AddDate(0, 0, -1).Format(time.DateOnly),
		},
		TotalRevenue:     revenue.Round(2),
		TotalCOGS:        cogs.Round(2),
		TotalProfit:      profit.Round(2),
		OverallMarginPct: pct(profit, revenue),
		SKURanking:       ranking,
		ParetoSKUs:       pareto,
	}, nil
}

// buildSKURanking enriquece las filas (ya ordenadas por ingreso desc) con:
//   - MarginPct y RevenuePct por SKU.
//   - CumulativeRevenuePct acumulado (para curva Pareto).
//   - IsTopPareto: true si el SKU cae dentro del primer 80% de ingresos acumulados.
func buildSKURanking(rows []repository.SKUMarginResult, totalRevenue decimal.Decimal) []dto.SKURankingDTO {
	ranking := make([]dto.SKURankingDTO, 0, len(rows))
	var cumulative decimal.Decimal
	for i, r := range rows {
		revenuePct := pct(r.GrossRevenue, totalRevenue)
		cumulative = cumulative.Add(revenuePct)
		// Se incluye el SKU que cruza el umbral (el 80/20 es aproximado).
		isPareto := i == 0 || cumulative.Sub(revenuePct).LessThan(pareto80)

		ranking = append(ranking, dto.SKURankingDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			UnitsSold:        r.UnitsSold,
			GrossRevenue:     r.GrossRevenue.Round(2),
			TotalCOGS:        r.TotalCOGS.Round(2),
			GrossProfit:      r.GrossProfit.Round(2),
			MarginPct:        pct(r.GrossProfit, r.GrossRevenue),
			RevenuePct:       revenuePct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      isPareto,
		})
	}
	return ranking
}

// pct devuelve part/total en porcentaje con 2 decimales (0 si total no es positivo).
func pct(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}
