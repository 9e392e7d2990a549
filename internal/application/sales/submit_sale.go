package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/inventory"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// Pasos secundarios de la confirmación de venta.
const (
	StepItems    = "insert_items"
	StepStock    = "decrement_stock"
	StepCOGS     = "cogs_expense"
	StepCustomer = "customer_aggregate"
	StepIncome   = "income_record"
	StepInsights = "insights"
	StepReload   = "reload"
)

// SaleRequest datos de una venta ya expresados en tipos de dominio.
type SaleRequest struct {
	CustomerID    *string
	Items         []LineItem
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	PaymentMethod string
	PaymentStatus string
	DueDate       *time.Time
	TotalCost     *decimal.Decimal // costo total de mercadería; nil = derivar del costo de los productos
	Notes         string
	UserID        string
}

// StepResult resultado de un paso secundario.
type StepResult struct {
	Step string
	Err  error
}

// StockUpdate stock resultante de una referencia tras la venta.
type StockUpdate struct {
	Ref      entity.ItemRef `json:"ref"`
	Previous int            `json:"previous"`
	Current  int            `json:"current"`
	Oversold bool           `json:"oversold"`
}

// SaleOutcome resultado de SubmitSale. Partial agrega (multierr) los fallos de los pasos 3 a 9;
// la venta queda registrada aunque Partial no sea nil.
type SaleOutcome struct {
	Sale     *entity.Sale
	Items    []*entity.SaleItem
	Stock    []StockUpdate
	Records  []*entity.FinancialRecord
	Insights []*entity.Insight
	Steps    []StepResult
	Partial  error
	Snapshot *snapshot.Snapshot
	// CustomerName nombre del cliente al momento de la venta; vacío si es anónima.
	CustomerName string
}

// Warnings devuelve los mensajes de los pasos fallidos.
func (o *SaleOutcome) Warnings() []string {
	var out []string
	for _, err := range multierr.Errors(o.Partial) {
		out = append(out, err.Error())
	}
	return out
}

// SubmitSaleUseCase confirma una venta: valida stock, registra cabecera y líneas,
// descuenta inventario, genera registros financieros, actualiza el cliente y emite insights.
type SubmitSaleUseCase struct {
	tx         TxRunner
	locker     AccountLocker
	sales      repository.SaleRepository
	products   repository.ProductRepository
	variations repository.VariationRepository
	customers  repository.CustomerRepository
	records    repository.FinancialRecordRepository
	insights   *insights.Generator
	loader     SnapshotLoader
	notifier   insights.Notifier
	log        zerolog.Logger
	now        func() time.Time
}

// NewSubmitSaleUseCase construye el caso de uso. locker y notifier pueden ser nil;
// sin locker las ventas se serializan por cuenta dentro del proceso.
func NewSubmitSaleUseCase(
	tx TxRunner,
	locker AccountLocker,
	sales repository.SaleRepository,
	products repository.ProductRepository,
	variations repository.VariationRepository,
	customers repository.CustomerRepository,
	records repository.FinancialRecordRepository,
	generator *insights.Generator,
	loader SnapshotLoader,
	notifier insights.Notifier,
	log zerolog.Logger,
) *SubmitSaleUseCase {
	if notifier == nil {
		notifier = insights.NopNotifier{}
	}
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &SubmitSaleUseCase{
		tx:         tx,
		locker:     locker,
		sales:      sales,
		products:   products,
		variations: variations,
		customers:  customers,
		records:    records,
		insights:   generator,
		loader:     loader,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// SubmitSale confirma la venta bajo el bloqueo de la cuenta. Con loader, la
// validación usa un snapshot recargado dentro del bloqueo y snap se ignora; sin
// loader se valida contra snap. Los errores de validación y de los pasos 1-2
// (numeración e inserción de la venta) se devuelven sin escribir nada más.
func (uc *SubmitSaleUseCase) SubmitSale(ctx context.Context, snap *snapshot.Snapshot, companyID string, req SaleRequest) (*SaleOutcome, error) {
	if len(req.Items) == 0 || !entity.ValidPaymentMethod(req.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = entity.PaymentStatusPending
	}
	if !entity.ValidPaymentStatus(req.PaymentStatus) {
		return nil, domain.ErrInvalidInput
	}

	unlock, err := uc.locker.Lock(ctx, companyID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if uc.loader != nil {
		fresh, err := uc.loader.Load(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("cargar snapshot: %w", err)
		}
		snap = fresh
	}
	if snap == nil || snap.CompanyID != companyID {
		return nil, fmt.Errorf("snapshot de otra cuenta: %w", domain.ErrInvalidInput)
	}
	customerName := ""
	if req.CustomerID != nil {
		c, ok := snap.Customer(*req.CustomerID)
		if !ok {
			return nil, fmt.Errorf("cliente %q: %w", *req.CustomerID, domain.ErrInvalidReference)
		}
		customerName = c.Name
	}

	lines, err := ReconcileStock(snap, req.Items)
	if err != nil {
		return nil, err
	}
	lines = fillFromSnapshot(snap, lines)
	totals, err := ComputeTotals(lines, req.Discount, req.Tax)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		CustomerID:    req.CustomerID,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		Status:        entity.SaleStatusCompleted,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		CreatedBy:     req.UserID,
		CreatedAt:     now,
	}

	// 1-2) Número de factura + cabecera. Un fallo aquí aborta la operación.
	err = uc.tx.RunSale(ctx, companyID, func(sales repository.SaleRepository) error {
		count, err := sales.CountByCompany(ctx, companyID)
		if err != nil {
			return err
		}
		sale.InvoiceNumber = InvoiceNumber(companyID, count)
		return sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	out := &SaleOutcome{Sale: sale, CustomerName: customerName}
	log := uc.log.With().Str("company_id", companyID).Str("sale_id", sale.ID).Logger()
	record := func(step string, err error) {
		out.Steps = append(out.Steps, StepResult{Step: step, Err: err})
		if err != nil {
			out.Partial = multierr.Append(out.Partial, fmt.Errorf("%s: %w", step, err))
			log.Error().Err(err).Str("step", step).Msg("paso secundario de la venta falló")
		}
	}

	// 3) Líneas.
	record(StepItems, uc.insertItems(ctx, snap, sale, lines, now, out))

	// 4) Stock.
	record(StepStock, uc.decrementStock(ctx, snap, companyID, lines, out))
	if len(out.Stock) > 0 {
		uc.notifier.Notify(companyID, insights.EventStockUpdate, out.Stock)
	}

	// 5) Costo de mercadería.
	cost := derivedCost(snap, lines)
	if req.TotalCost != nil {
		cost = *req.TotalCost
	}
	if cost.IsPositive() {
		paidAt := now
		rec := uc.newRecord(sale, entity.RecordExpense, entity.CategoryCOGS, cost, entity.PaymentStatusPaid, now)
		rec.PaidAt = &paidAt
		rec.Description = "Costo de mercadería " + sale.InvoiceNumber
		record(StepCOGS, uc.createRecord(ctx, rec, out))
	}

	// 6) Agregado del cliente.
	if req.CustomerID != nil {
		record(StepCustomer, uc.customers.AddPurchase(ctx, companyID, *req.CustomerID, sale.Total, now))
	}

	// 7) Ingreso.
	income := uc.newRecord(sale, entity.RecordIncome, entity.CategorySales, sale.Total, sale.PaymentStatus, now)
	income.Description = "Venta " + sale.InvoiceNumber
	income.DueDate = sale.DueDate
	if sale.PaymentStatus == entity.PaymentStatusPaid {
		paidAt := now
		income.PaidAt = &paidAt
	}
	record(StepIncome, uc.createRecord(ctx, income, out))

	// 8) Insights con el estado previo a la venta, antes de devolver el control.
	if uc.insights != nil {
		created, err := uc.insights.OnSaleCompleted(ctx, snap, sale, customerName, soldLines(lines))
		out.Insights = created
		record(StepInsights, err)
	}

	// 9) Recarga completa de la cuenta.
	if uc.loader != nil {
		fresh, err := uc.loader.Load(ctx, companyID)
		out.Snapshot = fresh
		record(StepReload, err)
	}

	return out, nil
}

func (uc *SubmitSaleUseCase) insertItems(ctx context.Context, snap *snapshot.Snapshot, sale *entity.Sale, lines []LineItem, now time.Time, out *SaleOutcome) error {
	var errs error
	for i, l := range lines {
		item := &entity.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			CompanyID:   sale.CompanyID,
			ProductID:   itemProductID(snap, l),
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       entity.LineTotal(l.Quantity, l.UnitPrice),
			CreatedAt:   now,
		}
		if ref, _ := l.ResolvedRef(); ref != nil && ref.Kind == entity.RefVariation {
			id := ref.ID
			item.VariationID = &id
		}
		if err := uc.sales.CreateItem(ctx, item); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ítem %d: %w", i+1, err))
			continue
		}
		out.Items = append(out.Items, item)
	}
	return errs
}

// decrementStock descuenta cada línea de forma independiente (piso en cero) y
// re-deriva el agregado de los productos cuyas variaciones cambiaron.
func (uc *SubmitSaleUseCase) decrementStock(ctx context.Context, snap *snapshot.Snapshot, companyID string, lines []LineItem, out *SaleOutcome) error {
	var errs error
	parents := map[string]bool{}
	var parentOrder []string
	for i, l := range lines {
		ref, _ := l.ResolvedRef()
		if ref == nil || l.Quantity == 0 {
			continue
		}
		var (
			ch  repository.StockChange
			err error
		)
		switch ref.Kind {
		case entity.RefVariation:
			ch, err = uc.variations.DecrementStock(ctx, companyID, ref.ID, l.Quantity)
			if v, ok := snap.Variation(ref.ID); ok && err == nil && !parents[v.ProductID] {
				parents[v.ProductID] = true
				parentOrder = append(parentOrder, v.ProductID)
			}
		default:
			ch, err = uc.products.DecrementStock(ctx, companyID, ref.ID, l.Quantity)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ítem %d (%s): %w", i+1, ref, err))
			continue
		}
		if ch.Oversold {
			uc.log.Warn().Str("company_id", companyID).Str("ref", ref.String()).
				Int("previous", ch.Previous).Int("quantity", l.Quantity).Msg("sobreventa: stock llevado a cero")
			errs = multierr.Append(errs, fmt.Errorf("ítem %d (%s): sobreventa, había %d y se vendieron %d: %w",
				i+1, ref, ch.Previous, l.Quantity, domain.ErrInsufficientStock))
		}
		out.Stock = append(out.Stock, StockUpdate{Ref: *ref, Previous: ch.Previous, Current: ch.Current, Oversold: ch.Oversold})
	}
	for _, productID := range parentOrder {
		if err := uc.resyncParent(ctx, companyID, productID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("agregado de producto %s: %w", productID, err))
		}
	}
	return errs
}

func (uc *SubmitSaleUseCase) resyncParent(ctx context.Context, companyID, productID string) error {
	vars, err := uc.variations.ListByProduct(ctx, companyID, productID)
	if err != nil {
		return err
	}
	stock, price, ok := inventory.DeriveFromVariations(vars)
	if !ok {
		return nil
	}
	return uc.products.SetAggregates(ctx, companyID, productID, stock, price, true)
}

func (uc *SubmitSaleUseCase) newRecord(sale *entity.Sale, typ, category string, amount decimal.Decimal, status string, now time.Time) *entity.FinancialRecord {
	saleID := sale.ID
	return &entity.FinancialRecord{
		ID:         uuid.New().String(),
		CompanyID:  sale.CompanyID,
		Type:       typ,
		Category:   category,
		Amount:     amount.Round(2),
		Status:     status,
		CustomerID: sale.CustomerID,
		SaleID:     &saleID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (uc *SubmitSaleUseCase) createRecord(ctx context.Context, rec *entity.FinancialRecord, out *SaleOutcome) error {
	if err := uc.records.Create(ctx, rec); err != nil {
		return err
	}
	out.Records = append(out.Records, rec)
	return nil
}

// fillFromSnapshot completa nombre y precio de las líneas que no los traen.
func fillFromSnapshot(snap *snapshot.Snapshot, lines []LineItem) []LineItem {
	out := make([]LineItem, len(lines))
	for i, l := range lines {
		ref, _ := l.ResolvedRef()
		if ref != nil {
			if l.Name == "" {
				_, l.Name, _ = snap.Stock(*ref)
			}
			if l.UnitPrice.IsZero() {
				l.UnitPrice = snapshotPrice(snap, *ref)
			}
		}
		out[i] = l
	}
	return out
}

func snapshotPrice(snap *snapshot.Snapshot, ref entity.ItemRef) decimal.Decimal {
	if ref.Kind == entity.RefVariation {
		if v, ok := snap.Variation(ref.ID); ok {
			return v.Price
		}
		return decimal.Zero
	}
	if p, ok := snap.Product(ref.ID); ok {
		return p.Price
	}
	return decimal.Zero
}

// itemProductID resuelve el product_id a guardar en la línea. Los ids compuestos
// se reducen a su UUID inicial y se descartan (nil) si no lo son.
func itemProductID(snap *snapshot.Snapshot, l LineItem) *string {
	if l.ProductID != "" {
		return entity.ParseLegacyProductID(l.ProductID)
	}
	ref, _ := l.ResolvedRef()
	if ref == nil {
		return nil
	}
	if ref.Kind == entity.RefProduct {
		return entity.ParseLegacyProductID(ref.ID)
	}
	if v, ok := snap.Variation(ref.ID); ok {
		return entity.ParseLegacyProductID(v.ProductID)
	}
	return nil
}

// derivedCost suma qty × costo del producto para las líneas con costo conocido.
func derivedCost(snap *snapshot.Snapshot, lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		ref, _ := l.ResolvedRef()
		if ref == nil {
			continue
		}
		productID := ref.ID
		if ref.Kind == entity.RefVariation {
			v, ok := snap.Variation(ref.ID)
			if !ok {
				continue
			}
			productID = v.ProductID
		}
		if p, ok := snap.Product(productID); ok && p.Cost.IsPositive() {
			total = total.Add(p.Cost.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return total.Round(2)
}

func soldLines(lines []LineItem) []insights.SoldLine {
	var out []insights.SoldLine
	for _, l := range lines {
		if ref, _ := l.ResolvedRef(); ref != nil {
			out = append(out, insights.SoldLine{Ref: *ref, Quantity: l.Quantity})
		}
	}
	return out
}

// IsValidationError indica si err proviene de la validación previa a cualquier escritura.
func IsValidationError(err error) bool {
	var se *StockError
	return errors.As(err, &se) || errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidReference)
}
