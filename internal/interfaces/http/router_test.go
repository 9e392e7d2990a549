package http_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/negocio-erp/internal/application/analytics"
	"github.com/jhoicas/negocio-erp/internal/application/auth"
	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/inventory"
	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/application/usecase"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/excel"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/memory"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/negocio-erp/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/negocio-erp/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testWebhookSecret = "whsec-test"

type testAPI struct {
	app       *fiber.App
	token     string
	companyID string
}

// newTestAPI arma la API completa sobre el store en memoria y registra una cuenta.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zerolog.Nop()
	s := memory.NewStore()
	tx := memory.NewTxRunner(s)

	loader := snapshot.NewLoader(s.Products(), s.Variations(), s.Customers(), s.Sales(), s.FinancialRecords(), s.Insights())
	cache := snapshot.NewCache(loader)
	gen := insights.NewGenerator(s.Insights(), nil, log)
	subs := usecase.NewSubscriptionUseCase(s.Subscriptions(), s.Companies(), testWebhookSecret, 14)
	receipts := pdf.NewMarotoGenerator()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(s.Users(), s.Companies(), subs, auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		CompanyUC:      usecase.NewCompanyUseCase(s.Companies(), "BR"),
		UserUC:         usecase.NewUserUseCase(s.Users()),
		ProductUC:      inventory.NewProductUseCase(tx, s.Products(), s.Variations(), nil, gen, cache, log),
		VariationUC:    inventory.NewVariationUseCase(tx, s.Products(), s.Variations(), nil, gen, cache, log),
		RestockUC:      inventory.NewRestockUseCase(tx, gen, nil, cache, log),
		Replenishment:  inventory.NewReplenishmentUseCase(s.Products(), s.Analytics()),
		SubmitSale:     sales.NewSubmitSaleUseCase(tx, nil, s.Sales(), s.Products(), s.Variations(), s.Customers(), s.FinancialRecords(), gen, loader, nil, log),
		SaleQuery:      sales.NewQueryUseCase(s.Sales(), s.Companies(), s.Customers(), receipts),
		CustomerUC:     usecase.NewCustomerUseCase(s.Customers(), "BR", cache),
		FinanceUC:      usecase.NewFinanceUseCase(s.FinancialRecords(), s.Customers(), cache),
		SubscriptionUC: subs,
		DashboardUC:    appanalytics.NewDashboardUseCase(cache),
		ReportUC:       appanalytics.NewReportUseCase(s.Sales(), s.FinancialRecords(), s.Analytics(), s.Companies(), excel.NewSalesExporter(), receipts),
		MarginsUC:      appanalytics.NewMarginsUseCase(s.Analytics()),
		Insights:       gen,
		Snapshots:      cache,
		JWTSecret:      testJWTSecret,
		Log:            log,
	})

	api := &testAPI{app: app}
	resp, body := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"company_name": "Mercadinho Teste",
		"email":        "dono@example.com",
		"password":     "segredo123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var login struct {
		Token string `json:"token"`
		User  struct {
			CompanyID string `json:"company_id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	api.token = "Bearer " + login.Token
	api.companyID = login.User.CompanyID
	return api
}

func (a *testAPI) do(t *testing.T, method, path, authHeader string, payload any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (a *testAPI) createProduct(t *testing.T, sku string, stock, minStock int) string {
	t.Helper()
	resp, body := a.do(t, http.MethodPost, "/api/products", a.token, map[string]any{
		"sku": sku, "name": "Produto " + sku, "price": "10.00", "cost": "6.00",
		"stock": stock, "min_stock": minStock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.ID
}

func (a *testAPI) webhook(t *testing.T, event map[string]any, signature string) (*http.Response, []byte) {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	if signature == "" {
		signature = hex.EncodeToString(usecase.Sign([]byte(testWebhookSecret), raw))
	}
	req := httptest.NewRequest(http.MethodPost, "/api/billing/webhook", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apphttp.HeaderSignature, signature)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSales_CreateDecrementsStockAndEmitsInsights(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "ARROZ-5KG", 5, 4)

	resp, body := api.do(t, http.MethodPost, "/api/sales", api.token, map[string]any{
		"payment_method": "pix",
		"items": []map[string]any{
			{"ref": map[string]string{"kind": "product", "id": productID}, "quantity": 2, "unit_price": "10.00"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out struct {
		Sale struct {
			ID            string `json:"id"`
			InvoiceNumber string `json:"invoice_number"`
			Total         string `json:"total"`
		} `json:"sale"`
		Insights []struct {
			Type string `json:"type"`
		} `json:"insights"`
		Warnings []string `json:"warnings"`
		Version  uint64   `json:"snapshot_version"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.Sale.ID)
	assert.NotEmpty(t, out.Sale.InvoiceNumber)
	assert.Equal(t, "20", out.Sale.Total)
	assert.Empty(t, out.Warnings)
	assert.NotEmpty(t, out.Insights)
	assert.NotZero(t, out.Version)

	resp, body = api.do(t, http.MethodGet, "/api/products/"+productID, api.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var product struct {
		Stock int `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(body, &product))
	assert.Equal(t, 3, product.Stock)

	resp, body = api.do(t, http.MethodGet, "/api/sales/"+out.Sale.ID, api.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), productID)
}

func TestSales_InsufficientStockReturns409WithDetails(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "FEIJAO-1KG", 1, 0)

	resp, body := api.do(t, http.MethodPost, "/api/sales", api.token, map[string]any{
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": productID, "quantity": 3, "unit_price": "8.50"},
		},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode, string(body))

	var errBody struct {
		Code    string `json:"code"`
		Details struct {
			ItemIndex int `json:"item_index"`
			Requested int `json:"requested"`
			Available int `json:"available"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, 0, errBody.Details.ItemIndex)
	assert.Equal(t, 3, errBody.Details.Requested)
	assert.Equal(t, 1, errBody.Details.Available)

	resp, _ = api.do(t, http.MethodGet, "/api/sales", api.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSales_UnknownReferenceReturns422(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/api/sales", api.token, map[string]any{
		"payment_method": "card",
		"items": []map[string]any{
			{"ref": map[string]string{"kind": "variation", "id": "00000000-0000-0000-0000-00000000dead"}, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "INVALID_REFERENCE")
}

func TestSales_ValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.do(t, http.MethodPost, "/api/sales", api.token, map[string]any{
		"payment_method": "cheque",
		"items":          []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

// ──────────────────────────────────────────────────────────────────────────────
// Suscripción y webhook
// ──────────────────────────────────────────────────────────────────────────────

func TestWebhook_InvalidSignatureReturns401(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.webhook(t, map[string]any{
		"type": "subscription.canceled", "company_id": api.companyID,
	}, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_SIGNATURE")
}

func TestWebhook_CanceledSubscriptionBlocksWrites(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.webhook(t, map[string]any{
		"type": "subscription.canceled", "company_id": api.companyID,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = api.do(t, http.MethodPost, "/api/customers", api.token, map[string]any{"name": "Maria"})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode, string(body))

	// las lecturas siguen disponibles
	resp, _ = api.do(t, http.MethodGet, "/api/customers", api.token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = api.webhook(t, map[string]any{
		"type":               "subscription.activated",
		"company_id":         api.companyID,
		"plan":               "pro",
		"current_period_end": time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339),
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = api.do(t, http.MethodPost, "/api/customers", api.token, map[string]any{"name": "Maria"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles, dashboard y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestRoles_VendedorCannotManageFinance(t *testing.T) {
	api := newTestAPI(t)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, api.companyID, "vendedor", testIssuer, testExpMin)
	require.NoError(t, err)

	resp, _ := api.do(t, http.MethodGet, "/api/finance", "Bearer "+tok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.do(t, http.MethodGet, "/api/finance", api.token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDashboardAndReports(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "CAFE-500G", 10, 2)
	resp, body := api.do(t, http.MethodPost, "/api/sales", api.token, map[string]any{
		"payment_method": "pix",
		"items": []map[string]any{
			{"product_id": productID, "quantity": 1, "unit_price": "15.00"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = api.do(t, http.MethodGet, "/api/dashboard?period=7", api.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var metrics struct {
		PeriodDays int `json:"period_days"`
		SalesCount int `json:"sales_count"`
	}
	require.NoError(t, json.Unmarshal(body, &metrics))
	assert.Equal(t, 7, metrics.PeriodDays)
	assert.Equal(t, 1, metrics.SalesCount)

	resp, body = api.do(t, http.MethodGet, "/api/reports/sales.xlsx", api.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(body, []byte("PK")), "xlsx es un zip")

	resp, _ = api.do(t, http.MethodGet, "/api/reports/margins?from=2024-02-01&to=2024-01-01", api.token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInsights_ListAndMarkRead(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "OLEO-900ML", 3, 5)
	resp, body := api.do(t, http.MethodPost, "/api/sales", api.token, map[string]any{
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": productID, "quantity": 1, "unit_price": "7.00"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = api.do(t, http.MethodGet, "/api/insights?unread=true", api.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []struct {
		ID   string `json:"id"`
		Read bool   `json:"read"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.NotEmpty(t, list)

	resp, _ = api.do(t, http.MethodPatch, "/api/insights/"+list[0].ID+"/read", api.token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPatch, "/api/insights/no-existe/read", api.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAI_NotConfiguredReturns503(t *testing.T) {
	api := newTestAPI(t)
	resp, body := api.do(t, http.MethodPost, "/api/insights/ai", api.token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "AI_UNAVAILABLE")
}
