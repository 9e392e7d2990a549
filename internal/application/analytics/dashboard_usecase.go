// Package analytics contiene el agregador de métricas del dashboard y los reportes exportables.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

const (
	dashboardTopProducts = 5  // número de productos en el widget del dashboard
	DefaultPeriodDays    = 30 // período por defecto
	maxPeriodDays        = 366
)

var hundred = decimal.NewFromInt(100)

// SnapshotSource entrega el snapshot vigente de una cuenta (snapshot.Cache).
type SnapshotSource interface {
	Get(ctx context.Context, companyID string) (*snapshot.Snapshot, error)
}

// DashboardUseCase expone las métricas del dashboard sobre el snapshot en caché.
type DashboardUseCase struct {
	snapshots SnapshotSource
	now       func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(snapshots SnapshotSource) *DashboardUseCase {
	return &DashboardUseCase{snapshots: snapshots, now: time.Now}
}

// GetMetrics calcula las métricas del período (días) para la cuenta.
func (uc *DashboardUseCase) GetMetrics(ctx context.Context, companyID string, periodDays int) (*dto.DashboardMetrics, error) {
	snap, err := uc.snapshots.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	m := ComputeDashboard(snap, uc.now(), periodDays)
	return &m, nil
}

// ComputeDashboard agrega el snapshot sin efectos secundarios.
//
// Período actual: (now - period, now]. Período anterior: la ventana de igual duración inmediatamente previa.
// Ingresos y cantidad de ventas salen de las ventas; gastos de los registros de gasto pagados;
// cuentas por cobrar de los ingresos pendientes (vencidos si pasaron su fecha).
func ComputeDashboard(snap *snapshot.Snapshot, now time.Time, periodDays int) dto.DashboardMetrics {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	if periodDays > maxPeriodDays {
		periodDays = maxPeriodDays
	}
	period := time.Duration(periodDays) * 24 * time.Hour
	from := now.Add(-period)
	prevFrom := from.Add(-period)

	m := dto.DashboardMetrics{
		PeriodDays: periodDays,
		From:       from.Format(time.RFC3339),
		To:         now.Format(time.RFC3339),
	}

	// ── Ventas ───────────────────────────────────────────────────────────────
	inPeriod := make(map[string]bool)
	for _, s := range snap.Sales {
		switch {
		case within(s.CreatedAt, from, now):
			m.Revenue = m.Revenue.Add(s.Total)
			m.SalesCount++
			inPeriod[s.ID] = true
		case within(s.CreatedAt, prevFrom, from):
			m.PreviousRevenue = m.PreviousRevenue.Add(s.Total)
			m.PreviousSalesCount++
		}
	}
	m.RevenueGrowth = growth(m.Revenue, m.PreviousRevenue)
	m.SalesGrowth = growth(decimal.NewFromInt(int64(m.SalesCount)), decimal.NewFromInt(int64(m.PreviousSalesCount)))
	if m.SalesCount > 0 {
		m.AverageTicket = m.Revenue.Div(decimal.NewFromInt(int64(m.SalesCount))).Round(2)
	}

	// ── Finanzas ─────────────────────────────────────────────────────────────
	for _, r := range snap.Records {
		switch r.Type {
		case entity.RecordExpense:
			if r.Status != entity.PaymentStatusPaid {
				continue
			}
			at := r.CreatedAt
			if r.PaidAt != nil {
				at = *r.PaidAt
			}
			if within(at, from, now) {
				m.Expenses = m.Expenses.Add(r.Amount)
			}
		case entity.RecordIncome:
			switch {
			case r.Status == entity.PaymentStatusOverdue || r.IsOverdue(now):
				m.OverdueReceivables = m.OverdueReceivables.Add(r.Amount)
			case r.Status == entity.PaymentStatusPending:
				m.PendingReceivables = m.PendingReceivables.Add(r.Amount)
			}
		}
	}
	m.NetProfit = m.Revenue.Sub(m.Expenses)

	// ── Inventario, clientes e insights ──────────────────────────────────────
	for _, p := range snap.Products {
		if p.IsLowStock() {
			m.LowStockCount++
		}
	}
	for _, in := range snap.Insights {
		if !in.Read {
			m.UnreadInsights++
		}
	}
	m.CustomerCount = len(snap.Customers)
	m.TopProducts = topProducts(snap.SaleItems, inPeriod)

	m.Revenue = m.Revenue.Round(2)
	m.PreviousRevenue = m.PreviousRevenue.Round(2)
	m.Expenses = m.Expenses.Round(2)
	m.NetProfit = m.NetProfit.Round(2)
	m.PendingReceivables = m.PendingReceivables.Round(2)
	m.OverdueReceivables = m.OverdueReceivables.Round(2)
	return m
}

// topProducts agrupa por producto (o por nombre en líneas libres) y ordena por cantidad.
func topProducts(items []*entity.SaleItem, inPeriod map[string]bool) []dto.TopProductDTO {
	byKey := make(map[string]*dto.TopProductDTO)
	for _, it := range items {
		if !inPeriod[it.SaleID] {
			continue
		}
		key := "name:" + it.ProductName
		productID := ""
		if it.ProductID != nil {
			key, productID = *it.ProductID, *it.ProductID
		}
		row, ok := byKey[key]
		if !ok {
			row = &dto.TopProductDTO{ProductID: productID, ProductName: it.ProductName}
			byKey[key] = row
		}
		row.QuantitySold += it.Quantity
		row.Revenue = row.Revenue.Add(it.Total)
	}
	out := make([]dto.TopProductDTO, 0, len(byKey))
	for _, row := range byKey {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuantitySold != out[j].QuantitySold {
			return out[i].QuantitySold > out[j].QuantitySold
		}
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ProductName < out[j].ProductName
	})
	if len(out) > dashboardTopProducts {
		out = out[:dashboardTopProducts]
	}
	return out
}

// within: t en (from, to].
func within(t, from, to time.Time) bool {
	return t.After(from) && !t.After(to)
}

// growth variación porcentual; sin base previa es 100 si hubo actividad.
func growth(cur, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		if cur.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(hundred).Round(2)
}
