package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/inventory"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const companyID = "5a0d4c3b-2e1f-4a6b-9c8d-7e6f5a4b3c2d"

type recordedEvent struct {
	event   string
	payload any
}

type spyNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *spyNotifier) Notify(_, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{event, payload})
}

func (n *spyNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.event == event {
			c++
		}
	}
	return c
}

type spyCache struct{ invalidated []string }

func (c *spyCache) Invalidate(id string) { c.invalidated = append(c.invalidated, id) }

func seedProduct(t *testing.T, s *memory.Store, stock, minStock int, cost string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SKU:       "SKU-" + uuid.New().String()[:6],
		Name:      "Producto",
		Price:     decimal.NewFromInt(10),
		Cost:      decimal.RequireFromString(cost),
		Stock:     stock,
		MinStock:  minStock,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, s.Products().Create(context.Background(), p))
	return p
}

func seedAlert(t *testing.T, s *memory.Store, refID string) *entity.Insight {
	t.Helper()
	in := &entity.Insight{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Type:      entity.InsightAlert,
		Priority:  entity.PriorityMedium,
		Category:  entity.InsightCategoryInventory,
		Title:     "Stock bajo",
		RefID:     refID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.Insights().Create(context.Background(), in))
	return in
}

func newRestock(s *memory.Store) (*inventory.RestockUseCase, *spyNotifier, *spyCache) {
	n := &spyNotifier{}
	c := &spyCache{}
	gen := insights.NewGenerator(s.Insights(), n, zerolog.Nop())
	return inventory.NewRestockUseCase(memory.NewTxRunner(s), gen, n, c, zerolog.Nop()), n, c
}

// ──────────────────────────────────────────────────────────────────────────────
// Restock
// ──────────────────────────────────────────────────────────────────────────────

func TestRestock_ResolvesOpenAlert(t *testing.T) {
	s := memory.NewStore()
	uc, n, cache := newRestock(s)
	p := seedProduct(t, s, 1, 2, "4.00")
	alert := seedAlert(t, s, p.ID)
	ctx := context.Background()

	out, err := uc.Restock(ctx, companyID, dto.RestockRequest{ProductID: p.ID, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Previous)
	assert.Equal(t, 6, out.Current)
	assert.True(t, out.Resolved)
	assert.Nil(t, out.Alert)

	got, err := s.Insights().GetByID(ctx, companyID, alert.ID)
	require.NoError(t, err)
	assert.True(t, got.Read, "la alerta abierta queda leída")

	all, err := s.Insights().List(ctx, companyID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1, "no se crea un insight nuevo")

	assert.Equal(t, 1, n.count(insights.EventStockUpdate))
	assert.Equal(t, []string{companyID}, cache.invalidated)
}

func TestRestock_WeightedAverageCost(t *testing.T) {
	s := memory.NewStore()
	uc, _, _ := newRestock(s)
	p := seedProduct(t, s, 10, 0, "5.00")
	unit := decimal.RequireFromString("8.00")

	out, err := uc.Restock(context.Background(), companyID, dto.RestockRequest{ProductID: p.ID, Quantity: 10, UnitCost: &unit})
	require.NoError(t, err)
	require.NotNil(t, out.Cost)
	assert.True(t, out.Cost.Equal(decimal.RequireFromString("6.5")), out.Cost.String())

	got, err := s.Products().GetByID(context.Background(), companyID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Stock)
	assert.True(t, got.Cost.Equal(decimal.RequireFromString("6.5")))
}

func TestRestock_StillLowEmitsSingleAlert(t *testing.T) {
	s := memory.NewStore()
	uc, n, _ := newRestock(s)
	p := seedProduct(t, s, 0, 5, "1.00")
	ctx := context.Background()

	out, err := uc.Restock(ctx, companyID, dto.RestockRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	require.NotNil(t, out.Alert)
	assert.False(t, out.Resolved)

	_, err = uc.Restock(ctx, companyID, dto.RestockRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	open, err := s.Insights().ListUnread(ctx, companyID, entity.InsightCategoryInventory, p.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	assert.Equal(t, 1, n.count(insights.EventInsightCreated))
}

func TestRestock_Validation(t *testing.T) {
	s := memory.NewStore()
	uc, _, _ := newRestock(s)
	p := seedProduct(t, s, 1, 1, "1.00")
	ctx := context.Background()
	neg := decimal.NewFromInt(-1)

	_, err := uc.Restock(ctx, companyID, dto.RestockRequest{ProductID: p.ID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Restock(ctx, companyID, dto.RestockRequest{ProductID: p.ID, Quantity: 1, UnitCost: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Restock(ctx, companyID, dto.RestockRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Restock(ctx, companyID, dto.RestockRequest{ProductID: uuid.New().String(), Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRestock_VariationRederivesParent(t *testing.T) {
	s := memory.NewStore()
	uc, _, _ := newRestock(s)
	ctx := context.Background()
	p := seedProduct(t, s, 0, 0, "2.00")
	v := &entity.ProductVariation{ID: uuid.New().String(), CompanyID: companyID, ProductID: p.ID, Name: "XL", Price: decimal.NewFromInt(9), Stock: 1}
	w := &entity.ProductVariation{ID: uuid.New().String(), CompanyID: companyID, ProductID: p.ID, Name: "L", Price: decimal.NewFromInt(7), Stock: 2}
	require.NoError(t, s.Variations().Create(ctx, v))
	require.NoError(t, s.Variations().Create(ctx, w))
	seedAlert(t, s, v.ID)

	out, err := uc.Restock(ctx, companyID, dto.RestockRequest{VariationID: v.ID, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Current)
	assert.True(t, out.Resolved)

	parent, err := s.Products().GetByID(ctx, companyID, p.ID)
	require.NoError(t, err)
	assert.True(t, parent.HasVariations)
	assert.Equal(t, 7, parent.Stock)
	assert.True(t, parent.Price.Equal(decimal.NewFromInt(7)), "precio = menor precio de variación")

	open, err := s.Insights().ListUnread(ctx, companyID, entity.InsightCategoryInventory, v.ID)
	require.NoError(t, err)
	assert.Empty(t, open)
}

// ──────────────────────────────────────────────────────────────────────────────
// SetStock
// ──────────────────────────────────────────────────────────────────────────────

func TestSetStock_DropBelowThresholdAlerts(t *testing.T) {
	s := memory.NewStore()
	uc, _, _ := newRestock(s)
	p := seedProduct(t, s, 10, 3, "1.00")

	out, err := uc.SetStock(context.Background(), companyID, dto.SetStockRequest{ProductID: p.ID, Stock: 0})
	require.NoError(t, err)
	require.NotNil(t, out.Alert)
	assert.Equal(t, entity.PriorityHigh, out.Alert.Priority)
	assert.Equal(t, 10, out.Previous)
	assert.Equal(t, 0, out.Current)
}

func TestSetStock_ProductWithVariationsRejected(t *testing.T) {
	s := memory.NewStore()
	uc, _, _ := newRestock(s)
	p := seedProduct(t, s, 0, 0, "1.00")
	require.NoError(t, s.Products().SetAggregates(context.Background(), companyID, p.ID, 3, decimal.NewFromInt(5), true))

	_, err := uc.SetStock(context.Background(), companyID, dto.SetStockRequest{ProductID: p.ID, Stock: 9})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetStock_StoreFailureIsReturned(t *testing.T) {
	s := memory.NewStore()
	uc, n, _ := newRestock(s)
	p := seedProduct(t, s, 10, 3, "1.00")
	s.FailOnce("products.UpdateStock", errors.New("sin conexión"))

	_, err := uc.SetStock(context.Background(), companyID, dto.SetStockRequest{ProductID: p.ID, Stock: 1})
	require.Error(t, err)
	assert.Equal(t, 0, n.count(insights.EventStockUpdate))
}
