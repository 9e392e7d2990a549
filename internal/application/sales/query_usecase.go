package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// QueryUseCase lado de lectura de ventas: listados, detalle y comprobante PDF.
type QueryUseCase struct {
	sales     repository.SaleRepository
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	receipts  ReceiptPDFGenerator
}

// NewQueryUseCase construye el caso de uso inyectando todas sus dependencias.
func NewQueryUseCase(
	sales repository.SaleRepository,
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	receipts ReceiptPDFGenerator,
) *QueryUseCase {
	return &QueryUseCase{sales: sales, companies: companies, customers: customers, receipts: receipts}
}

// List devuelve las ventas de la cuenta (más recientes primero).
func (uc *QueryUseCase) List(ctx context.Context, companyID string, f repository.SaleFilter) ([]dto.SaleResponse, error) {
	list, err := uc.sales.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewSaleResponse(s, nil, ""))
	}
	return out, nil
}

// Get devuelve la venta con sus líneas y el nombre del cliente.
func (uc *QueryUseCase) Get(ctx context.Context, companyID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.sales.ListItems(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	name := ""
	if sale.CustomerID != nil {
		if c, err := uc.customers.GetByID(ctx, companyID, *sale.CustomerID); err == nil && c != nil {
			name = c.Name
		}
	}
	resp := dto.NewSaleResponse(sale, items, name)
	return &resp, nil
}

// Receipt genera el comprobante PDF de la venta.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la venta no existe en la cuenta.
func (uc *QueryUseCase) Receipt(ctx context.Context, companyID, saleID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Venta y líneas ─────────────────────────────────────────────────────
	sale, err := uc.sales.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	items, err := uc.sales.ListItems(ctx, companyID, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener líneas: %w", err)
	}

	// ── 2. Empresa y cliente ──────────────────────────────────────────────────
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil || company == nil {
		return nil, "", fmt.Errorf("recibo: obtener empresa: %w", err)
	}
	customer, err := uc.customerOf(ctx, companyID, sale.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener cliente: %w", err)
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.receipts.GenerateReceipt(ctx, sale, items, company, customer)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("recibo_%s.pdf", sale.InvoiceNumber), nil
}

// PurchaseHistory ventas de un cliente en un rango opcional.
func (uc *QueryUseCase) PurchaseHistory(ctx context.Context, companyID, customerID string, from, to *time.Time) ([]dto.SaleResponse, error) {
	c, err := uc.customers.GetByID(ctx, companyID, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return uc.List(ctx, companyID, repository.SaleFilter{CustomerID: customerID, From: from, To: to})
}

func (uc *QueryUseCase) customerOf(ctx context.Context, companyID string, id *string) (*entity.Customer, error) {
	if id == nil {
		return nil, nil
	}
	return uc.customers.GetByID(ctx, companyID, *id)
}
