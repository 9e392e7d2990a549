package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para rentabilidad por SKU.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetSKUMargins agrupa ingresos y COGS por producto en [from, to).
// COGS = qty × costo promedio actual del producto; las líneas libres (sin product_id) no cuentan.
func (r *AnalyticsRepo) GetSKUMargins(ctx context.Context, companyID string, from, to time.Time) ([]repository.SKUMarginResult, error) {
	const query = `
	SELECT
	    p.id::TEXT                              AS product_id,
	    p.sku                                   AS sku,
	    p.name                                  AS product_name,
	    SUM(si.quantity)                        AS units_sold,
	    SUM(si.total)                           AS gross_revenue,
	    SUM(si.quantity * p.cost)               AS total_cogs,
	    SUM(si.total - si.quantity * p.cost)    AS gross_profit
	FROM sales s
	JOIN sale_items si ON si.sale_id = s.id
	JOIN products   p  ON p.id       = si.product_id
	WHERE s.company_id = $1
	  AND s.created_at >= $2
	  AND s.created_at <  $3
	GROUP BY p.id, p.sku, p.name
	ORDER BY gross_revenue DESC, p.sku`

	rows, err := r.q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSKUMargins: %w", err)
	}
	defer rows.Close()

	var results []repository.SKUMarginResult
	for rows.Next() {
		var row repository.SKUMarginResult
		if err := rows.Scan(
			&row.ProductID,
			&row.SKU,
			&row.ProductName,
			&row.UnitsSold,
			&row.GrossRevenue,
			&row.TotalCOGS,
			&row.GrossProfit,
		); err != nil {
			return nil, fmt.Errorf("analytics.GetSKUMargins scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
