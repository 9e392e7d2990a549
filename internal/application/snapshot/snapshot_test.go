package snapshot_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/memory"
)

const companyID = "b7d2c4e1-5a3f-4c8e-9d10-2f6a8b4c1e07"

func TestSnapshot_StockAndThreshold(t *testing.T) {
	p := &entity.Product{ID: "p1", CompanyID: companyID, Name: "Camiseta", Stock: 7, MinStock: 4}
	v := &entity.ProductVariation{ID: "v1", CompanyID: companyID, ProductID: "p1", Name: "Talla M", Stock: 2}
	s := snapshot.New(companyID, 3, time.Now(), snapshot.Collections{
		Products:   []*entity.Product{p},
		Variations: []*entity.ProductVariation{v},
	})

	stock, name, ok := s.Stock(entity.ItemRef{Kind: entity.RefProduct, ID: "p1"})
	require.True(t, ok)
	assert.Equal(t, 7, stock)
	assert.Equal(t, "Camiseta", name)

	stock, name, ok = s.Stock(entity.ItemRef{Kind: entity.RefVariation, ID: "v1"})
	require.True(t, ok)
	assert.Equal(t, 2, stock)
	assert.Equal(t, "Camiseta - Talla M", name)

	_, _, ok = s.Stock(entity.ItemRef{Kind: entity.RefVariation, ID: "nope"})
	assert.False(t, ok)

	assert.Equal(t, 4, s.Threshold(entity.ItemRef{Kind: entity.RefProduct, ID: "p1"}))
	assert.Equal(t, entity.VariationLowStockThreshold, s.Threshold(entity.ItemRef{Kind: entity.RefVariation, ID: "v1"}))
	assert.Equal(t, 0, s.Threshold(entity.ItemRef{Kind: entity.RefProduct, ID: "nope"}))
}

func TestCache_VersionsAndInvalidate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", CompanyID: companyID, SKU: "A", Name: "Taza", Stock: 3}))

	loader := snapshot.NewLoader(store.Products(), store.Variations(), store.Customers(), store.Sales(), store.FinancialRecords(), store.Insights())
	cache := snapshot.NewCache(loader)

	first, err := cache.Get(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, first.Products, 1)

	again, err := cache.Get(ctx, companyID)
	require.NoError(t, err)
	assert.Same(t, first, again)

	// un snapshot más viejo no reemplaza al vigente
	cache.Put(snapshot.New(companyID, first.Version-1, time.Now(), snapshot.Collections{}))
	cur, err := cache.Get(ctx, companyID)
	require.NoError(t, err)
	assert.Same(t, first, cur)

	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p2", CompanyID: companyID, SKU: "B", Name: "Plato"}))
	cache.Invalidate(companyID)

	reloaded, err := cache.Get(ctx, companyID)
	require.NoError(t, err)
	assert.Greater(t, reloaded.Version, first.Version)
	assert.Len(t, reloaded.Products, 2)
	_, ok := reloaded.Product("p2")
	assert.True(t, ok)
}

func TestCache_InvalidateRejectsEarlierLoads(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", CompanyID: companyID, SKU: "A", Name: "Taza", Stock: 1}))
	loader := snapshot.NewLoader(store.Products(), store.Variations(), store.Customers(), store.Sales(), store.FinancialRecords(), store.Insights())
	cache := snapshot.NewCache(loader)

	// una venta carga su snapshot antes de que un restock confirme
	stale, err := loader.Load(ctx, companyID)
	require.NoError(t, err)

	require.NoError(t, store.Products().UpdateStock(ctx, companyID, "p1", 20, decimal.Zero))
	cache.Invalidate(companyID)

	assert.False(t, cache.Put(stale), "carga previa a la invalidación")
	cur, err := cache.Get(ctx, companyID)
	require.NoError(t, err)
	assert.Greater(t, cur.Version, stale.Version)
	stock, _, ok := cur.Stock(entity.ItemRef{Kind: entity.RefProduct, ID: "p1"})
	require.True(t, ok)
	assert.Equal(t, 20, stock)

	next, err := loader.Load(ctx, companyID)
	require.NoError(t, err)
	assert.True(t, cache.Put(next))
}

func TestCache_MaxAge(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	loader := snapshot.NewLoader(store.Products(), store.Variations(), store.Customers(), store.Sales(), store.FinancialRecords(), store.Insights())

	fresh := snapshot.NewCache(loader, snapshot.WithMaxAge(time.Hour))
	first, err := fresh.Get(ctx, companyID)
	require.NoError(t, err)
	again, err := fresh.Get(ctx, companyID)
	require.NoError(t, err)
	assert.Same(t, first, again)

	short := snapshot.NewCache(loader, snapshot.WithMaxAge(time.Millisecond))
	first, err = short.Get(ctx, companyID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	again, err = short.Get(ctx, companyID)
	require.NoError(t, err)
	assert.Greater(t, again.Version, first.Version, "caducado, se recarga")
}
