package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/inventory"
)

func TestWeightedCost(t *testing.T) {
	// 10 u a 4.00 + 10 u a 6.00 -> 5.00
	got := inventory.WeightedCost(10, decimal.RequireFromString("4"), 10, decimal.RequireFromString("6"))
	assert.True(t, got.Equal(decimal.RequireFromString("5")), got.String())

	// stock negativo se trata como cero: el costo pasa a ser el de la entrada
	got = inventory.WeightedCost(-3, decimal.RequireFromString("4"), 2, decimal.RequireFromString("7.5"))
	assert.True(t, got.Equal(decimal.RequireFromString("7.5")), got.String())

	assert.True(t, inventory.WeightedCost(0, decimal.Zero, 0, decimal.Zero).IsZero())
}

func TestDeriveFromVariations(t *testing.T) {
	_, _, ok := inventory.DeriveFromVariations(nil)
	assert.False(t, ok)

	stock, price, ok := inventory.DeriveFromVariations([]*entity.ProductVariation{
		{Stock: 4, Price: decimal.RequireFromString("12.50")},
		{Stock: 1, Price: decimal.RequireFromString("9.90")},
		{Stock: 0, Price: decimal.RequireFromString("15")},
	})
	assert.True(t, ok)
	assert.Equal(t, 5, stock)
	assert.Equal(t, "9.9", price.String())
}

func TestRemainingAfter(t *testing.T) {
	assert.Equal(t, 3, inventory.RemainingAfter(5, 2))
	assert.Equal(t, 0, inventory.RemainingAfter(2, 5))
}
