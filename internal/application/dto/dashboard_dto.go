package dto

import "github.com/shopspring/decimal"

// DashboardMetrics respuesta de GET /api/dashboard.
// Compara el período actual contra el anterior de igual duración.
type DashboardMetrics struct {
	PeriodDays int    `json:"period_days"`
	From       string `json:"from"`
	To         string `json:"to"`

	Revenue         decimal.Decimal `json:"revenue"`
	PreviousRevenue decimal.Decimal `json:"previous_revenue"`
	RevenueGrowth   decimal.Decimal `json:"revenue_growth_pct"`

	SalesCount         int             `json:"sales_count"`
	PreviousSalesCount int             `json:"previous_sales_count"`
	SalesGrowth        decimal.Decimal `json:"sales_growth_pct"`

	AverageTicket decimal.Decimal `json:"average_ticket"`
	Expenses      decimal.Decimal `json:"expenses"` // solo gastos pagados
	NetProfit     decimal.Decimal `json:"net_profit"`

	PendingReceivables decimal.Decimal `json:"pending_receivables"`
	OverdueReceivables decimal.Decimal `json:"overdue_receivables"`

	LowStockCount  int `json:"low_stock_count"`
	UnreadInsights int `json:"unread_insights"`
	CustomerCount  int `json:"customer_count"`

	TopProducts []TopProductDTO `json:"top_products"`
}

// TopProductDTO producto más vendido del período (por cantidad).
type TopProductDTO struct {
	ProductID    string          `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}
