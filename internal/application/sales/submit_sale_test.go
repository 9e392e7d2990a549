package sales_test

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

	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testCompanyID = "8f14e45f-ceea-467f-a0e6-2b4c1a2d3e4f"

type fixture struct {
	store  *memory.Store
	loader *snapshot.Loader
	uc     *sales.SubmitSaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	loader := snapshot.NewLoader(s.Products(), s.Variations(), s.Customers(), s.Sales(), s.FinancialRecords(), s.Insights())
	gen := insights.NewGenerator(s.Insights(), nil, zerolog.Nop())
	uc := sales.NewSubmitSaleUseCase(
		memory.NewTxRunner(s), nil,
		s.Sales(), s.Products(), s.Variations(), s.Customers(), s.FinancialRecords(),
		gen, loader, nil, zerolog.Nop(),
	)
	return &fixture{store: s, loader: loader, uc: uc}
}

func (f *fixture) product(t *testing.T, name string, stock, minStock int, price, cost string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:        uuid.New().String(),
		CompanyID: testCompanyID,
		SKU:       "SKU-" + name,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Cost:      decimal.RequireFromString(cost),
		Stock:     stock,
		MinStock:  minStock,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) variation(t *testing.T, parent *entity.Product, name string, stock int, price string) *entity.ProductVariation {
	t.Helper()
	v := &entity.ProductVariation{
		ID:        uuid.New().String(),
		CompanyID: testCompanyID,
		ProductID: parent.ID,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.store.Variations().Create(context.Background(), v))
	return v
}

func (f *fixture) customer(t *testing.T, name string) *entity.Customer {
	t.Helper()
	c := &entity.Customer{
		ID:             uuid.New().String(),
		CompanyID:      testCompanyID,
		Name:           name,
		TotalPurchases: decimal.Zero,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, f.store.Customers().Create(context.Background(), c))
	return c
}

func (f *fixture) snap(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	s, err := f.loader.Load(context.Background(), testCompanyID)
	require.NoError(t, err)
	return s
}

func productLine(p *entity.Product, qty int) sales.LineItem {
	return sales.LineItem{Ref: &entity.ItemRef{Kind: entity.RefProduct, ID: p.ID}, Quantity: qty}
}

func cashSale(items ...sales.LineItem) sales.SaleRequest {
	return sales.SaleRequest{Items: items, PaymentMethod: entity.PaymentCash, PaymentStatus: entity.PaymentStatusPaid}
}

func (f *fixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), testCompanyID, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) unreadInventory(t *testing.T, refID string) []*entity.Insight {
	t.Helper()
	list, err := f.store.Insights().ListUnread(context.Background(), testCompanyID, entity.InsightCategoryInventory, refID)
	require.NoError(t, err)
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de extremo a extremo
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitSale_LowStockScenario(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Cafe", 5, 2, "10.00", "4.00")
	ctx := context.Background()

	out, err := f.uc.SubmitSale(ctx, f.snap(t), testCompanyID, cashSale(productLine(p, 4)))
	require.NoError(t, err)
	require.NoError(t, out.Partial)

	assert.Equal(t, 1, f.stockOf(t, p.ID), "stock 5 - 4 = 1")
	assert.True(t, out.Sale.Total.Equal(decimal.RequireFromString("40")))
	assert.Equal(t, entity.SaleStatusCompleted, out.Sale.Status)

	alerts := f.unreadInventory(t, p.ID)
	require.Len(t, alerts, 1, "una alerta de stock bajo (1 <= 2)")
	assert.Equal(t, entity.InsightAlert, alerts[0].Type)
	assert.Equal(t, entity.PriorityMedium, alerts[0].Priority)

	summaries, err := f.store.Insights().ListUnread(ctx, testCompanyID, entity.InsightCategorySales, "")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, entity.InsightSummary, summaries[0].Type)
	assert.Contains(t, summaries[0].Description, insights.AnonymousCustomer)

	income, err := f.store.FinancialRecords().List(ctx, testCompanyID, repository.FinancialRecordFilter{Type: entity.RecordIncome})
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.True(t, income[0].Amount.Equal(out.Sale.Total))
	assert.Equal(t, entity.CategorySales, income[0].Category)
	assert.Equal(t, entity.PaymentStatusPaid, income[0].Status)
	require.NotNil(t, income[0].SaleID)
	assert.Equal(t, out.Sale.ID, *income[0].SaleID)

	require.NotNil(t, out.Snapshot)
	stock, _, ok := out.Snapshot.Stock(entity.ItemRef{Kind: entity.RefProduct, ID: p.ID})
	require.True(t, ok)
	assert.Equal(t, 1, stock, "el snapshot recargado refleja el descuento")
}

func TestSubmitSale_InsufficientStockWritesNothing(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Te", 5, 2, "8.00", "3.00")
	ctx := context.Background()

	out, err := f.uc.SubmitSale(ctx, f.snap(t), testCompanyID, cashSale(productLine(p, 10)))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var stockErr *sales.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)
	assert.Contains(t, err.Error(), "Te")
	assert.True(t, sales.IsValidationError(err))

	assert.Equal(t, 5, f.stockOf(t, p.ID))
	list, err := f.store.Sales().List(ctx, testCompanyID, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	items, err := f.store.Sales().ListItemsByCompany(ctx, testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, items)
	records, err := f.store.FinancialRecords().List(ctx, testCompanyID, repository.FinancialRecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmitSale_AggregatesQuantitiesPerReference(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Azucar", 5, 0, "2.00", "1.00")

	_, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID, cashSale(productLine(p, 3), productLine(p, 3)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, f.stockOf(t, p.ID))
}

func TestSubmitSale_UnknownReference(t *testing.T) {
	f := newFixture(t)
	missing := &entity.ItemRef{Kind: entity.RefVariation, ID: uuid.New().String()}

	_, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID,
		cashSale(sales.LineItem{Ref: missing, Quantity: 1}))
	require.ErrorIs(t, err, domain.ErrInvalidReference)
	assert.Contains(t, err.Error(), missing.ID)
}

func TestSubmitSale_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Pan", 5, 1, "1.00", "0.50")
	req := cashSale(productLine(p, 1))
	ghost := uuid.New().String()
	req.CustomerID = &ghost

	_, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID, req)
	require.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestSubmitSale_RejectsInvalidPayment(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Leche", 5, 1, "1.00", "0.50")
	req := cashSale(productLine(p, 1))
	req.PaymentMethod = "cheque"

	_, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID, req)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Leyes
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitSale_LineTotalLaw(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Queso", 20, 1, "3.35", "1.00")
	q := f.product(t, "Jamon", 20, 1, "7.10", "2.00")
	ctx := context.Background()

	free := sales.LineItem{Name: "Envío", Quantity: 1, UnitPrice: decimal.RequireFromString("5.50")}
	out, err := f.uc.SubmitSale(ctx, f.snap(t), testCompanyID, cashSale(productLine(p, 3), productLine(q, 7), free))
	require.NoError(t, err)
	require.Len(t, out.Items, 3)

	sum := decimal.Zero
	for _, it := range out.Items {
		assert.True(t, it.Total.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))), it.ProductName)
		sum = sum.Add(it.Total)
	}
	assert.True(t, out.Sale.Subtotal.Equal(sum))
	assert.True(t, out.Sale.Total.Equal(decimal.RequireFromString("65.25")), out.Sale.Total.String())
}

func TestSubmitSale_CustomerAggregateLaw(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Arroz", 100, 1, "2.50", "1.00")
	c := f.customer(t, "Ana")
	ctx := context.Background()

	want := decimal.Zero
	snap := f.snap(t)
	for _, qty := range []int{1, 4, 2} {
		req := cashSale(productLine(p, qty))
		req.CustomerID = &c.ID
		out, err := f.uc.SubmitSale(ctx, snap, testCompanyID, req)
		require.NoError(t, err)
		require.NoError(t, out.Partial)
		want = want.Add(out.Sale.Total)
		snap = out.Snapshot
	}

	got, err := f.store.Customers().GetByID(ctx, testCompanyID, c.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalPurchases.Equal(want), "%s != %s", got.TotalPurchases, want)
	assert.NotNil(t, got.LastPurchaseAt)
}

func TestSubmitSale_InvoiceNumbersAreSequential(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Sal", 10, 0, "1.00", "0.20")
	ctx := context.Background()

	snap := f.snap(t)
	var numbers []string
	for i := 0; i < 2; i++ {
		out, err := f.uc.SubmitSale(ctx, snap, testCompanyID, cashSale(productLine(p, 1)))
		require.NoError(t, err)
		numbers = append(numbers, out.Sale.InvoiceNumber)
		snap = out.Snapshot
	}
	assert.Equal(t, []string{"INV-8F14E45F-000001", "INV-8F14E45F-000002"}, numbers)
}

// ──────────────────────────────────────────────────────────────────────────────
// Variaciones, costo y fallos parciales
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitSale_VariationDecrementsAndRederivesParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Camiseta", 0, 0, "0", "6.00")
	small := f.variation(t, p, "S", 3, "15.00")
	f.variation(t, p, "M", 4, "12.00")
	require.NoError(t, f.store.Products().SetAggregates(ctx, testCompanyID, p.ID, 7, decimal.RequireFromString("12.00"), true))

	line := sales.LineItem{Ref: &entity.ItemRef{Kind: entity.RefVariation, ID: small.ID}, Quantity: 2}
	out, err := f.uc.SubmitSale(ctx, f.snap(t), testCompanyID, cashSale(line))
	require.NoError(t, err)
	require.NoError(t, out.Partial)

	v, err := f.store.Variations().GetByID(ctx, testCompanyID, small.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Stock)
	assert.Equal(t, 5, f.stockOf(t, p.ID), "agregado = 1 + 4")

	require.Len(t, out.Items, 1)
	item := out.Items[0]
	require.NotNil(t, item.VariationID)
	assert.Equal(t, small.ID, *item.VariationID)
	require.NotNil(t, item.ProductID)
	assert.Equal(t, p.ID, *item.ProductID)
	assert.Equal(t, "Camiseta - S", item.ProductName)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("15.00")), "precio tomado de la variación")

	alerts := f.unreadInventory(t, small.ID)
	require.Len(t, alerts, 1, "variación con 1 unidad alerta")
	assert.Equal(t, "variation", alerts[0].Payload["ref_kind"])

	var cogs *entity.FinancialRecord
	for _, r := range out.Records {
		if r.Category == entity.CategoryCOGS {
			cogs = r
		}
	}
	require.NotNil(t, cogs, "costo derivado 2 × 6.00")
	assert.True(t, cogs.Amount.Equal(decimal.RequireFromString("12")))
	assert.Equal(t, entity.RecordExpense, cogs.Type)
	assert.NotNil(t, cogs.PaidAt)
}

func TestSubmitSale_ExplicitTotalCost(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Vino", 10, 0, "20.00", "0")
	req := cashSale(productLine(p, 1))
	cost := decimal.RequireFromString("9.99")
	req.TotalCost = &cost

	out, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID, req)
	require.NoError(t, err)
	require.Len(t, out.Records, 2)
	assert.Equal(t, entity.CategoryCOGS, out.Records[0].Category)
	assert.True(t, out.Records[0].Amount.Equal(cost))
}

func TestSubmitSale_NoCOGSWhenCostUnknown(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Regalo", 10, 0, "20.00", "0")

	out, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID, cashSale(productLine(p, 1)))
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, entity.RecordIncome, out.Records[0].Type)
}

func TestSubmitSale_SecondaryFailureIsReportedNotFatal(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Aceite", 10, 2, "5.00", "2.00")
	f.store.FailOnce("products.DecrementStock", errors.New("conexión perdida"))
	f.store.FailOnce("records.Create.income", errors.New("timeout"))

	out, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID, cashSale(productLine(p, 1)))
	require.NoError(t, err, "la venta se reporta como exitosa")
	require.NotNil(t, out.Sale)
	require.Error(t, out.Partial)

	warnings := out.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], sales.StepStock)
	assert.Contains(t, warnings[1], sales.StepIncome)

	failed := map[string]bool{}
	for _, s := range out.Steps {
		if s.Err != nil {
			failed[s.Step] = true
		}
	}
	assert.Equal(t, map[string]bool{sales.StepStock: true, sales.StepIncome: true}, failed)
	assert.Equal(t, 10, f.stockOf(t, p.ID))
	assert.Len(t, out.Items, 1, "las líneas se insertaron igual")
}

func TestSubmitSale_HeaderFailureAborts(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Harina", 10, 2, "5.00", "2.00")
	boom := errors.New("db caída")
	f.store.FailOnce("sales.Create", boom)

	out, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID, cashSale(productLine(p, 1)))
	require.ErrorIs(t, err, boom)
	assert.Nil(t, out)
	assert.Equal(t, 10, f.stockOf(t, p.ID))
	items, err := f.store.Sales().ListItemsByCompany(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubmitSale_ItemFailureKeepsHeader(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Avena", 10, 0, "3.00", "1.00")
	q := f.product(t, "Granola", 10, 0, "4.00", "2.00")
	f.store.FailOnce("sales.CreateItem", errors.New("disco lleno"))

	out, err := f.uc.SubmitSale(context.Background(), nil, testCompanyID, cashSale(productLine(p, 1), productLine(q, 1)))
	require.NoError(t, err)
	require.ErrorContains(t, out.Partial, sales.StepItems)
	assert.Len(t, out.Items, 1, "la línea fallida no revierte la cabecera")

	got, err := f.store.Sales().GetByID(context.Background(), testCompanyID, out.Sale.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 9, f.stockOf(t, p.ID))
	assert.Equal(t, 9, f.stockOf(t, q.ID))
}

func TestSubmitSale_LegacyCompositeProductID(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Gorra", 4, 0, "9.00", "3.00")
	line := sales.LineItem{ProductID: p.ID + "-rojo", Quantity: 1}

	out, err := f.uc.SubmitSale(context.Background(), f.snap(t), testCompanyID, cashSale(line))
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.NotNil(t, out.Items[0].ProductID)
	assert.Equal(t, p.ID, *out.Items[0].ProductID)
	assert.Equal(t, 3, f.stockOf(t, p.ID))
}

func TestSubmitSale_DuplicateAlertSuppressed(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Miel", 6, 3, "4.00", "1.00")
	ctx := context.Background()

	out, err := f.uc.SubmitSale(ctx, f.snap(t), testCompanyID, cashSale(productLine(p, 3)))
	require.NoError(t, err)
	_, err = f.uc.SubmitSale(ctx, out.Snapshot, testCompanyID, cashSale(productLine(p, 2)))
	require.NoError(t, err)

	assert.Len(t, f.unreadInventory(t, p.ID), 1)
}

func TestSubmitSale_ProductWithVariationsRequiresVariation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Polo", 0, 0, "0", "5.00")
	f.variation(t, p, "S", 3, "10.00")
	f.variation(t, p, "M", 4, "10.00")
	require.NoError(t, f.store.Products().SetAggregates(ctx, testCompanyID, p.ID, 7, decimal.RequireFromString("10.00"), true))

	_, err := f.uc.SubmitSale(ctx, f.snap(t), testCompanyID, cashSale(productLine(p, 5)))
	require.ErrorIs(t, err, domain.ErrInvalidReference)
	var stockErr *sales.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Polo", stockErr.Name)

	assert.Equal(t, 7, f.stockOf(t, p.ID))
	list, err := f.store.Sales().List(ctx, testCompanyID, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmitSale_LegacyCompositeVariationID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Buzo", 0, 0, "0", "8.00")
	f.variation(t, p, "S", 3, "20.00")
	medium := f.variation(t, p, "M", 4, "22.00")
	require.NoError(t, f.store.Products().SetAggregates(ctx, testCompanyID, p.ID, 7, decimal.RequireFromString("20.00"), true))

	line := sales.LineItem{ProductID: p.ID + "-" + medium.ID, Quantity: 2}
	out, err := f.uc.SubmitSale(ctx, f.snap(t), testCompanyID, cashSale(line))
	require.NoError(t, err)
	require.NoError(t, out.Partial)

	v, err := f.store.Variations().GetByID(ctx, testCompanyID, medium.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Stock)
	assert.Equal(t, 5, f.stockOf(t, p.ID), "agregado = 3 + 2")

	require.Len(t, out.Items, 1)
	require.NotNil(t, out.Items[0].VariationID)
	assert.Equal(t, medium.ID, *out.Items[0].VariationID)
	require.NotNil(t, out.Items[0].ProductID)
	assert.Equal(t, p.ID, *out.Items[0].ProductID)
	assert.True(t, out.Items[0].UnitPrice.Equal(decimal.RequireFromString("22.00")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitSale_ConcurrentSalesDoNotOversell(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Yerba", 5, 0, "3.00", "1.00")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.SubmitSale(context.Background(), nil, testCompanyID, cashSale(productLine(p, 4)))
		}(i)
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, f.stockOf(t, p.ID))

	list, err := f.store.Sales().List(context.Background(), testCompanyID, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmitSale_OversoldIsReported(t *testing.T) {
	s := memory.NewStore()
	loader := snapshot.NewLoader(s.Products(), s.Variations(), s.Customers(), s.Sales(), s.FinancialRecords(), s.Insights())
	uc := sales.NewSubmitSaleUseCase(
		memory.NewTxRunner(s), nil,
		s.Sales(), s.Products(), s.Variations(), s.Customers(), s.FinancialRecords(),
		nil, nil, nil, zerolog.Nop(),
	)
	f := &fixture{store: s, loader: loader, uc: uc}
	ctx := context.Background()
	p := f.product(t, "Cacao", 5, 0, "6.00", "2.00")
	stale := f.snap(t)
	require.NoError(t, s.Products().UpdateStock(ctx, testCompanyID, p.ID, 1, decimal.RequireFromString("2.00")))

	// sin loader la venta se valida contra el snapshot recibido
	out, err := uc.SubmitSale(ctx, stale, testCompanyID, cashSale(productLine(p, 4)))
	require.NoError(t, err)
	require.Error(t, out.Partial)
	assert.ErrorIs(t, out.Partial, domain.ErrInsufficientStock)
	require.Len(t, out.Stock, 1)
	assert.True(t, out.Stock[0].Oversold)
	assert.Equal(t, 0, f.stockOf(t, p.ID))
}

func TestLocalLocker(t *testing.T) {
	l := sales.NewLocalLocker()
	unlock, err := l.Lock(context.Background(), testCompanyID)
	require.NoError(t, err)

	// otra cuenta no espera
	other, err := l.Lock(context.Background(), uuid.New().String())
	require.NoError(t, err)
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, testCompanyID)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), testCompanyID)
	require.NoError(t, err)
	again()
}
