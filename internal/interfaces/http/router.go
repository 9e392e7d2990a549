package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/negocio-erp/internal/application/analytics"
	"github.com/jhoicas/negocio-erp/internal/application/auth"
	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/inventory"
	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/application/usecase"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/ws"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	CompanyUC      *usecase.CompanyUseCase
	UserUC         *usecase.UserUseCase
	ProductUC      *inventory.ProductUseCase
	VariationUC    *inventory.VariationUseCase
	RestockUC      *inventory.RestockUseCase
	Replenishment  *inventory.ReplenishmentUseCase
	SubmitSale     *sales.SubmitSaleUseCase
	SaleQuery      *sales.QueryUseCase
	CustomerUC     *usecase.CustomerUseCase
	FinanceUC      *usecase.FinanceUseCase
	SubscriptionUC *usecase.SubscriptionUseCase
	AIUC           *usecase.AIUseCase // nil sin LLM configurado
	DashboardUC    *appanalytics.DashboardUseCase
	ReportUC       *appanalytics.ReportUseCase
	MarginsUC      *appanalytics.MarginsUseCase
	Insights       *insights.Generator
	Snapshots      *snapshot.Cache
	Hub            *ws.Hub // nil desactiva /ws
	JWTSecret      string
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Webhook de pagos (público, firmado)
	billingHandler := NewBillingHandler(deps.SubscriptionUC, deps.Log)
	api.Post("/billing/webhook", billingHandler.Webhook)

	// Rutas protegidas (Bearer Token); las escrituras exigen suscripción activa.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireActiveSubscription(deps.SubscriptionUC, deps.Log))
	adminOrManager := RequireRole(entity.RoleAdmin, entity.RoleManager)

	protected.Get("/billing/subscription", billingHandler.Subscription)

	// Company y usuarios
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.UserUC)
	company := protected.Group("/company")
	company.Get("/", companyHandler.Get)
	company.Put("/", RequireRole(entity.RoleAdmin), companyHandler.Update)
	company.Get("/users", RequireRole(entity.RoleAdmin), companyHandler.ListUsers)
	company.Post("/users", RequireRole(entity.RoleAdmin), companyHandler.CreateUser)
	company.Get("/users/:id", RequireRole(entity.RoleAdmin), companyHandler.GetUser)

	// Products y variaciones
	productHandler := NewProductHandler(deps.ProductUC, deps.VariationUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", adminOrManager, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOrManager, productHandler.Update)
	products.Delete("/:id", adminOrManager, productHandler.Delete)
	products.Get("/:id/variations", productHandler.ListVariations)
	products.Post("/:id/variations", adminOrManager, productHandler.CreateVariation)
	products.Put("/:id/variations/:vid", adminOrManager, productHandler.UpdateVariation)
	products.Delete("/:id/variations/:vid", adminOrManager, productHandler.DeleteVariation)

	// Inventory
	inventoryHandler := NewInventoryHandler(deps.RestockUC, deps.Replenishment)
	inv := protected.Group("/inventory", adminOrManager)
	inv.Post("/restock", inventoryHandler.Restock)
	inv.Put("/stock", inventoryHandler.SetStock)
	inv.Get("/replenishment", inventoryHandler.Replenishment)

	// Sales
	saleHandler := NewSaleHandler(deps.SubmitSale, deps.SaleQuery, deps.Snapshots, deps.Log)
	salesGroup := protected.Group("/sales")
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	// Customers
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.SaleQuery)
	customers := protected.Group("/customers")
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", adminOrManager, customerHandler.Delete)
	customers.Get("/:id/history", customerHandler.History)

	// Finance
	financeHandler := NewFinanceHandler(deps.FinanceUC)
	finance := protected.Group("/finance", adminOrManager)
	finance.Post("/", financeHandler.Create)
	finance.Get("/", financeHandler.List)
	finance.Get("/:id", financeHandler.GetByID)
	finance.Put("/:id", financeHandler.Update)
	finance.Patch("/:id/pay", financeHandler.MarkPaid)
	finance.Delete("/:id", financeHandler.Delete)

	// Insights
	insightHandler := NewInsightHandler(deps.Insights, deps.AIUC)
	ins := protected.Group("/insights")
	ins.Get("/", insightHandler.List)
	ins.Patch("/:id/read", insightHandler.MarkRead)
	ins.Post("/ai", adminOrManager, insightHandler.Advise)

	// Dashboard y reportes
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.ReportUC, deps.MarginsUC)
	protected.Get("/dashboard", dashboardHandler.GetMetrics)
	reports := protected.Group("/reports", adminOrManager)
	reports.Get("/sales.xlsx", dashboardHandler.SalesXLSX)
	reports.Get("/sales.pdf", dashboardHandler.SalesPDF)
	reports.Get("/margins", dashboardHandler.Margins)

	// Eventos en vivo: insights y cambios de stock de la cuenta.
	if deps.Hub != nil {
		app.Use("/ws", wsUpgrade(deps.JWTSecret))
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			companyID, _ := c.Locals(LocalCompanyID).(string)
			deps.Hub.Serve(companyID, c)
		}))
	}
}

// wsUpgrade autentica el handshake WebSocket con el token en ?token= (los navegadores
// no permiten cabeceras propias en el upgrade).
func wsUpgrade(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !setSession(c, jwtSecret, c.Query("token")) {
			return deny(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado")
		}
		return c.Next()
	}
}
