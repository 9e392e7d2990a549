package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesReport datos de un reporte de ventas por rango.
type SalesReport struct {
	CompanyName string                    `json:"company_name"`
	From        time.Time                 `json:"from"`
	To          time.Time                 `json:"to"`
	Sales       []SaleResponse            `json:"sales"`
	Records     []FinancialRecordResponse `json:"records"`
	Margins     []SKUMarginDTO            `json:"margins"`
	Revenue     decimal.Decimal           `json:"revenue"`
	Expenses    decimal.Decimal           `json:"expenses"`
}

// SKUMarginDTO margen bruto por producto en el rango.
type SKUMarginDTO struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	UnitsSold    int             `json:"units_sold"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	TotalCOGS    decimal.Decimal `json:"total_cogs"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
}

// AIAdviceResponse recomendaciones generadas por el LLM y persistidas como insights.
type AIAdviceResponse struct {
	Summary  string            `json:"summary"`
	Insights []InsightResponse `json:"insights"`
}

// PeriodDTO rango de fechas de un reporte (YYYY-MM-DD, fin inclusivo).
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SKURankingDTO fila del ranking de rentabilidad por producto.
type SKURankingDTO struct {
	Rank             int             `json:"rank"`
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	UnitsSold        int             `json:"units_sold"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	TotalCOGS        decimal.Decimal `json:"total_cogs"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	RevenuePct       decimal.Decimal `json:"revenue_pct"`
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct"`
	IsTopPareto      bool            `json:"is_top_pareto"`
}

// MarginsReportDTO reporte de márgenes con análisis Pareto (80/20).
type MarginsReportDTO struct {
	Period           PeriodDTO       `json:"period"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalCOGS        decimal.Decimal `json:"total_cogs"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	OverallMarginPct decimal.Decimal `json:"overall_margin_pct"`
	SKURanking       []SKURankingDTO `json:"sku_ranking"`
	ParetoSKUs       []SKURankingDTO `json:"pareto_skus"`
}
