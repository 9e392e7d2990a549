package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/internal/application/analytics"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

type stubAnalytics struct{ rows []repository.SKUMarginResult }

func (s stubAnalytics) GetSKUMargins(context.Context, string, time.Time, time.Time) ([]repository.SKUMarginResult, error) {
	return s.rows, nil
}

func TestMarginsReport_Pareto(t *testing.T) {
	repo := stubAnalytics{rows: []repository.SKUMarginResult{
		{ProductID: "a", SKU: "A", GrossRevenue: d("700"), TotalCOGS: d("400"), GrossProfit: d("300")},
		{ProductID: "b", SKU: "B", GrossRevenue: d("200"), TotalCOGS: d("100"), GrossProfit: d("100")},
		{ProductID: "c", SKU: "C", GrossRevenue: d("100"), TotalCOGS: d("90"), GrossProfit: d("10")},
	}}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	rep, err := analytics.NewMarginsUseCase(repo).GetMarginsReport(context.Background(), companyID, from, to, 0)
	require.NoError(t, err)

	assert.Equal(t, "2026-01-31", rep.Period.EndDate)
	assert.True(t, d("1000").Equal(rep.TotalRevenue))
	assert.True(t, d("41").Equal(rep.OverallMarginPct))

	require.Len(t, rep.SKURanking, 3)
	assert.True(t, d("70").Equal(rep.SKURanking[0].RevenuePct))
	assert.True(t, d("90").Equal(rep.SKURanking[1].CumulativeRevPct))
	assert.True(t, d("42.86").Equal(rep.SKURanking[0].MarginPct))

	// A (70%) y B (cruza el 80%) forman el grupo Pareto.
	require.Len(t, rep.ParetoSKUs, 2)
	assert.Equal(t, "A", rep.ParetoSKUs[0].SKU)
	assert.Equal(t, "B", rep.ParetoSKUs[1].SKU)
}

func TestParsePeriod(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	from, to, err := analytics.ParsePeriod("", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, to.AddDate(0, 0, -analytics.DefaultPeriodDays), from)

	from, to, err = analytics.ParsePeriod("2026-01-01", "2026-01-31", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), to)

	for _, c := range [][2]string{{"2026-02-01", "2026-01-01"}, {"01/01/2026", ""}, {"2024-01-01", "2026-01-01"}} {
		_, _, err := analytics.ParsePeriod(c[0], c[1], now)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, c)
	}
}
