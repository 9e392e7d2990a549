package sales_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		items    []sales.LineItem
		discount string
		tax      string
		want     string
		wantErr  bool
	}{
		{"sin ajustes", []sales.LineItem{{Quantity: 2, UnitPrice: d("10.50")}}, "0", "0", "21", false},
		{"descuento e impuesto", []sales.LineItem{{Quantity: 1, UnitPrice: d("100")}, {Quantity: 3, UnitPrice: d("0.99")}}, "10", "5.25", "98.22", false},
		{"cantidad cero", []sales.LineItem{{Quantity: 0, UnitPrice: d("50")}}, "0", "0", "0", false},
		{"descuento mayor al subtotal", []sales.LineItem{{Quantity: 1, UnitPrice: d("5")}}, "6", "0", "", true},
		{"descuento negativo", []sales.LineItem{{Quantity: 1, UnitPrice: d("5")}}, "-1", "0", "", true},
		{"precio negativo", []sales.LineItem{{Quantity: 1, UnitPrice: d("-5")}}, "0", "0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sales.ComputeTotals(tt.items, d(tt.discount), d(tt.tax))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Total.Equal(d(tt.want)), "total %s, esperado %s", got.Total, tt.want)
		})
	}
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-ABCDEF12-000001", sales.InvoiceNumber("abcdef12-3456-7890-abcd-ef1234567890", 0))
	assert.Equal(t, "INV-ABCDEF12-001000", sales.InvoiceNumber("abcdef12-3456-7890-abcd-ef1234567890", 999))
}

func TestReconcileStock(t *testing.T) {
	mugID := "11111111-1111-4111-8111-111111111111"
	shirtID := "33333333-3333-4333-8333-333333333333"
	variationID := "22222222-2222-4222-8222-222222222222"
	snap := snapshot.New(testCompanyID, 1, time.Now(), snapshot.Collections{
		Products: []*entity.Product{
			{ID: mugID, CompanyID: testCompanyID, Name: "Taza", Stock: 3},
			{ID: shirtID, CompanyID: testCompanyID, Name: "Camiseta", Stock: 2, HasVariations: true},
		},
		Variations: []*entity.ProductVariation{
			{ID: variationID, CompanyID: testCompanyID, ProductID: shirtID, Name: "Azul", Stock: 2},
		},
	})
	pRef := &entity.ItemRef{Kind: entity.RefProduct, ID: mugID}
	vRef := &entity.ItemRef{Kind: entity.RefVariation, ID: variationID}

	t.Run("líneas válidas se devuelven sin cambios", func(t *testing.T) {
		items := []sales.LineItem{
			{Ref: pRef, Quantity: 3},
			{Ref: vRef, Quantity: 2},
			{Name: "Instalación", Quantity: 1, UnitPrice: d("20")},
		}
		got, err := sales.ReconcileStock(snap, items)
		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("variación sin stock suficiente", func(t *testing.T) {
		_, err := sales.ReconcileStock(snap, []sales.LineItem{{Ref: vRef, Quantity: 3}})
		var se *sales.StockError
		require.ErrorAs(t, err, &se)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, 0, se.ItemIndex)
		assert.Equal(t, "Camiseta - Azul", se.Name)
		assert.Contains(t, err.Error(), "solicitado 3, disponible 2")
	})

	t.Run("producto con variaciones por referencia de producto", func(t *testing.T) {
		items := []sales.LineItem{
			{Ref: pRef, Quantity: 1},
			{Ref: &entity.ItemRef{Kind: entity.RefProduct, ID: shirtID}, Quantity: 1},
		}
		_, err := sales.ReconcileStock(snap, items)
		var se *sales.StockError
		require.ErrorAs(t, err, &se)
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
		assert.Equal(t, 1, se.ItemIndex)
		assert.Contains(t, err.Error(), "Camiseta")
	})

	t.Run("id compuesto con sufijo de variación", func(t *testing.T) {
		got, err := sales.ReconcileStock(snap, []sales.LineItem{{ProductID: shirtID + "-" + variationID, Quantity: 2}})
		require.NoError(t, err)
		require.NotNil(t, got[0].Ref)
		assert.Equal(t, *vRef, *got[0].Ref)
		assert.Equal(t, shirtID+"-"+variationID, got[0].ProductID)

		_, err = sales.ReconcileStock(snap, []sales.LineItem{{ProductID: shirtID + "-" + variationID, Quantity: 3}})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	t.Run("id compuesto con sufijo libre", func(t *testing.T) {
		got, err := sales.ReconcileStock(snap, []sales.LineItem{{ProductID: mugID + "-rojo", Quantity: 1}})
		require.NoError(t, err)
		assert.Equal(t, *pRef, *got[0].Ref)

		_, err = sales.ReconcileStock(snap, []sales.LineItem{{ProductID: shirtID + "-rojo", Quantity: 1}})
		assert.ErrorIs(t, err, domain.ErrInvalidReference)

		// la variación pertenece a otro producto
		got, err = sales.ReconcileStock(snap, []sales.LineItem{{ProductID: mugID + "-" + variationID, Quantity: 1}})
		require.NoError(t, err)
		assert.Equal(t, *pRef, *got[0].Ref)
	})

	t.Run("id compuesto mal formado", func(t *testing.T) {
		_, err := sales.ReconcileStock(snap, []sales.LineItem{{ProductID: "no-es-uuid-talla-m", Quantity: 1}})
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})

	t.Run("cantidad negativa", func(t *testing.T) {
		_, err := sales.ReconcileStock(snap, []sales.LineItem{{Ref: pRef, Quantity: -1}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cantidad cero se acepta", func(t *testing.T) {
		_, err := sales.ReconcileStock(snap, []sales.LineItem{{Ref: pRef, Quantity: 0}})
		assert.NoError(t, err)
	})
}

func TestParseLegacyProductID(t *testing.T) {
	const id = "11111111-1111-4111-8111-111111111111"
	tests := []struct {
		raw  string
		want *string
	}{
		{id, ptr(id)},
		{id + "-talla-m", ptr(id)},
		{"  " + id + "  ", ptr(id)},
		{id + "x", nil},
		{"abc", nil},
		{"zzzzzzzz-1111-4111-8111-111111111111-rojo", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, entity.ParseLegacyProductID(tt.raw))
		})
	}
}

func TestSplitLegacyID(t *testing.T) {
	const id = "11111111-1111-4111-8111-111111111111"
	head, suffix, ok := entity.SplitLegacyID(id + "-talla-m")
	require.True(t, ok)
	assert.Equal(t, id, head)
	assert.Equal(t, "talla-m", suffix)

	head, suffix, ok = entity.SplitLegacyID(id)
	require.True(t, ok)
	assert.Equal(t, id, head)
	assert.Empty(t, suffix)

	_, _, ok = entity.SplitLegacyID(id + "x")
	assert.False(t, ok)
}

func ptr(s string) *string { return &s }
