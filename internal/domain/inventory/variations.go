package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// DeriveFromVariations calcula el agregado de un producto con variaciones:
// stock = suma del stock de las variaciones, precio = menor precio.
// ok es false cuando no hay variaciones (el producto conserva sus valores).
func DeriveFromVariations(variations []*entity.ProductVariation) (stock int, price decimal.Decimal, ok bool) {
	if len(variations) == 0 {
		return 0, decimal.Zero, false
	}
	price = variations[0].Price
	for _, v := range variations {
		stock += v.Stock
		if v.Price.LessThan(price) {
			price = v.Price
		}
	}
	return stock, price, true
}

// RemainingAfter devuelve el stock proyectado tras vender qty, sin bajar de cero.
func RemainingAfter(stock, qty int) int {
	if qty >= stock {
		return 0
	}
	return stock - qty
}
