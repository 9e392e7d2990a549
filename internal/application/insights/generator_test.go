package insights_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/memory"
)

const companyID = "3c9e1b7a-0f42-4d6e-8a11-5b2c7d9e0f13"

type chanNotifier chan string

func (c chanNotifier) Notify(_, event string, _ any) { c <- event }

func fixtureSnapshot() (*snapshot.Snapshot, *entity.Product, *entity.ProductVariation) {
	p := &entity.Product{ID: uuid.New().String(), CompanyID: companyID, Name: "Vela", Stock: 5, MinStock: 2}
	v := &entity.ProductVariation{ID: uuid.New().String(), CompanyID: companyID, ProductID: p.ID, Name: "Lavanda", Stock: 3}
	snap := snapshot.New(companyID, 1, time.Now(), snapshot.Collections{
		Products:   []*entity.Product{p},
		Variations: []*entity.ProductVariation{v},
	})
	return snap, p, v
}

func sale(total string) *entity.Sale {
	return &entity.Sale{ID: uuid.New().String(), CompanyID: companyID, InvoiceNumber: "INV-3C9E1B7A-000001", Total: decimal.RequireFromString(total)}
}

func TestOnSaleCompleted_SummaryAndAlerts(t *testing.T) {
	s := memory.NewStore()
	events := make(chanNotifier, 10)
	g := insights.NewGenerator(s.Insights(), events, zerolog.Nop())
	snap, p, v := fixtureSnapshot()

	created, err := g.OnSaleCompleted(context.Background(), snap, sale("123.4"), "Lucía", []insights.SoldLine{
		{Ref: entity.ItemRef{Kind: entity.RefProduct, ID: p.ID}, Quantity: 1},
		{Ref: entity.ItemRef{Kind: entity.RefProduct, ID: p.ID}, Quantity: 2},
		{Ref: entity.ItemRef{Kind: entity.RefVariation, ID: v.ID}, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, created, 2, "resumen + alerta del producto (5-3=2); la variación queda en 2 > 1")

	summary := created[0]
	assert.Equal(t, entity.InsightSummary, summary.Type)
	assert.Equal(t, entity.PriorityLow, summary.Priority)
	assert.Contains(t, summary.Description, "123.40")
	assert.Contains(t, summary.Description, "Lucía")

	alert := created[1]
	assert.Equal(t, p.ID, alert.RefID)
	assert.Equal(t, 2, alert.Payload["remaining_stock"])
	assert.Equal(t, p.ID, alert.Payload["product_id"])
	assert.Len(t, events, 2)
}

func TestOnSaleCompleted_AnonymousAndSoldOut(t *testing.T) {
	s := memory.NewStore()
	g := insights.NewGenerator(s.Insights(), nil, zerolog.Nop())
	snap, _, v := fixtureSnapshot()

	created, err := g.OnSaleCompleted(context.Background(), snap, sale("10"), "", []insights.SoldLine{
		{Ref: entity.ItemRef{Kind: entity.RefVariation, ID: v.ID}, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Contains(t, created[0].Description, insights.AnonymousCustomer)
	assert.Equal(t, entity.PriorityHigh, created[1].Priority, "agotado")
	assert.Equal(t, "Vela - Lavanda", created[1].Title[len("Stock bajo: "):])
}

func TestOnSaleCompleted_DeduplicatesAgainstUnread(t *testing.T) {
	s := memory.NewStore()
	g := insights.NewGenerator(s.Insights(), nil, zerolog.Nop())
	snap, p, _ := fixtureSnapshot()
	ctx := context.Background()
	lines := []insights.SoldLine{{Ref: entity.ItemRef{Kind: entity.RefProduct, ID: p.ID}, Quantity: 4}}

	_, err := g.OnSaleCompleted(ctx, snap, sale("1"), "", lines)
	require.NoError(t, err)
	_, err = g.OnSaleCompleted(ctx, snap, sale("1"), "", lines)
	require.NoError(t, err)

	open, err := s.Insights().ListUnread(ctx, companyID, entity.InsightCategoryInventory, p.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestOnStockChanged_ResolveThenRealert(t *testing.T) {
	s := memory.NewStore()
	g := insights.NewGenerator(s.Insights(), nil, zerolog.Nop())
	ctx := context.Background()
	ref := entity.ItemRef{Kind: entity.RefProduct, ID: uuid.New().String()}

	first, err := g.OnStockChanged(ctx, companyID, ref, "Jabón", 1, 2)
	require.NoError(t, err)
	require.NotNil(t, first)

	again, err := g.OnStockChanged(ctx, companyID, ref, "Jabón", 0, 2)
	require.NoError(t, err)
	assert.Nil(t, again, "ya hay una alerta sin leer")

	resolved, err := g.OnStockChanged(ctx, companyID, ref, "Jabón", 6, 2)
	require.NoError(t, err)
	assert.Nil(t, resolved)
	open, err := s.Insights().ListUnread(ctx, companyID, entity.InsightCategoryInventory, ref.ID)
	require.NoError(t, err)
	assert.Empty(t, open)

	quiet, err := g.OnStockChanged(ctx, companyID, ref, "Jabón", 8, 2)
	require.NoError(t, err)
	assert.Nil(t, quiet, "no resucita alertas mientras el stock esté sobre el umbral")

	realert, err := g.OnStockChanged(ctx, companyID, ref, "Jabón", 2, 2)
	require.NoError(t, err)
	require.NotNil(t, realert)
	assert.NotEqual(t, first.ID, realert.ID)
}

func TestMarkRead(t *testing.T) {
	s := memory.NewStore()
	g := insights.NewGenerator(s.Insights(), nil, zerolog.Nop())
	ctx := context.Background()

	in, err := g.Recommend(ctx, companyID, "Sube precios", "Margen bajo en bebidas", "urgente", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.PriorityMedium, in.Priority)
	assert.Equal(t, entity.InsightCategoryAI, in.Category)

	require.NoError(t, g.MarkRead(ctx, companyID, in.ID))
	require.NoError(t, g.MarkRead(ctx, companyID, in.ID), "idempotente")
	got, err := s.Insights().GetByID(ctx, companyID, in.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	assert.NotNil(t, got.ReadAt)

	assert.ErrorIs(t, g.MarkRead(ctx, companyID, uuid.New().String()), domain.ErrNotFound)
}
