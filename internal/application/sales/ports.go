package sales

import (
	"context"

	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// TxRunner ejecuta la inserción de la cabecera de venta en una transacción
// serializada por cuenta (numeración de factura + insert).
type TxRunner interface {
	RunSale(ctx context.Context, companyID string, fn func(sales repository.SaleRepository) error) error
}

// AccountLocker serializa confirmaciones de venta de una misma cuenta entre instancias.
// Lock devuelve la función que libera el bloqueo.
type AccountLocker interface {
	Lock(ctx context.Context, companyID string) (unlock func(), err error)
}

// SnapshotLoader recarga las colecciones de la cuenta al terminar la venta.
type SnapshotLoader interface {
	Load(ctx context.Context, companyID string) (*snapshot.Snapshot, error)
}

// ReceiptPDFGenerator genera el comprobante (PDF) de una venta.
type ReceiptPDFGenerator interface {
	GenerateReceipt(ctx context.Context, sale *entity.Sale, items []*entity.SaleItem, company *entity.Company, customer *entity.Customer) ([]byte, error)
}
