package inventory

import (
	"context"

	stockcalc "github.com/jhoicas/negocio-erp/internal/domain/inventory"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre producto y variaciones (stock, costo y agregados).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		products repository.ProductRepository,
		variations repository.VariationRepository,
	) error) error
}

// ImageStore guarda imágenes de productos y variaciones (GCS en producción).
// Upload devuelve la URL pública.
type ImageStore interface {
	Upload(ctx context.Context, companyID, name string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// SnapshotInvalidator descarta el snapshot en caché de una cuenta tras una mutación.
type SnapshotInvalidator interface {
	Invalidate(companyID string)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(string) {}

// resyncParent recalcula stock y precio del producto desde sus variaciones.
// Sin variaciones el producto conserva sus valores y deja de marcarse como variado.
func resyncParent(ctx context.Context, products repository.ProductRepository, variations repository.VariationRepository, companyID, productID string) error {
	vars, err := variations.ListByProduct(ctx, companyID, productID)
	if err != nil {
		return err
	}
	stock, price, ok := stockcalc.DeriveFromVariations(vars)
	if ok {
		return products.SetAggregates(ctx, companyID, productID, stock, price, true)
	}
	p, err := products.GetByID(ctx, companyID, productID)
	if err != nil || p == nil {
		return err
	}
	return products.SetAggregates(ctx, companyID, productID, p.Stock, p.Price, false)
}
