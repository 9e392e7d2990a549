package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	appanalytics "github.com/jhoicas/negocio-erp/internal/application/analytics"
	"github.com/jhoicas/negocio-erp/internal/application/auth"
	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/inventory"
	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/application/usecase"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
	infraai "github.com/jhoicas/negocio-erp/internal/infrastructure/ai"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/excel"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/negocio-erp/internal/infrastructure/pdf"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/negocio-erp/internal/infrastructure/redis"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/storage"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/ws"
	httpRouter "github.com/jhoicas/negocio-erp/internal/interfaces/http"
	"github.com/jhoicas/negocio-erp/pkg/config"
	"github.com/jhoicas/negocio-erp/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// txRunner lo cumplen postgres.TxRunner y memory.TxRunner.
type txRunner interface {
	inventory.TxRunner
	sales.TxRunner
}

// stores repositorios del driver elegido.
type stores struct {
	tx            txRunner
	companies     repository.CompanyRepository
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	products      repository.ProductRepository
	variations    repository.VariationRepository
	customers     repository.CustomerRepository
	sales         repository.SaleRepository
	records       repository.FinancialRecordRepository
	insights      repository.InsightRepository
	analytics     repository.AnalyticsRepository
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		tx:            postgres.NewTxRunner(pool),
		companies:     postgres.NewCompanyRepository(pool),
		users:         postgres.NewUserRepository(pool),
		subscriptions: postgres.NewSubscriptionRepository(pool),
		products:      postgres.NewProductRepository(pool),
		variations:    postgres.NewVariationRepository(pool),
		customers:     postgres.NewCustomerRepository(pool),
		sales:         postgres.NewSaleRepository(pool),
		records:       postgres.NewFinancialRecordRepository(pool),
		insights:      postgres.NewInsightRepository(pool),
		analytics:     postgres.NewAnalyticsRepository(pool),
	}
}

func memoryStores() stores {
	s := memory.NewStore()
	return stores{
		tx:            memory.NewTxRunner(s),
		companies:     s.Companies(),
		users:         s.Users(),
		subscriptions: s.Subscriptions(),
		products:      s.Products(),
		variations:    s.Variations(),
		customers:     s.Customers(),
		sales:         s.Sales(),
		records:       s.FinancialRecords(),
		insights:      s.Insights(),
		analytics:     s.Analytics(),
	}
}

// @title                       Negocio ERP API
// @version                     1.0
// @description                 Inventario, ventas, clientes, finanzas e insights para pequeños negocios.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Token JWT con el prefijo "Bearer ".
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var st stores
	switch cfg.Store.Driver {
	case "memory":
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		st = memoryStores()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		st = postgresStores(pool)
	}

	// Bloqueo distribuido de ventas por cuenta; sin Redis el caso de uso bloquea en proceso.
	var (
		locker    sales.AccountLocker
		cacheOpts []snapshot.CacheOption
	)
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewAccountLocker(rdb, cfg.Redis.LockTTL, log.Component("lock"))
		// otras instancias escriben en la misma cuenta; la caché local caduca
		cacheOpts = append(cacheOpts, snapshot.WithMaxAge(cfg.Redis.SnapshotMaxAge))
	}

	// Imágenes de productos (opcional).
	var images inventory.ImageStore
	if cfg.Storage.GCSBucket != "" {
		gcs, err := storage.NewGCSImageStore(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente de Cloud Storage")
		}
		defer gcs.Close()
		images = gcs
	}

	hub := ws.NewHub(log.Component("ws"))
	go hub.Run()
	defer hub.Stop()

	loader := snapshot.NewLoader(st.products, st.variations, st.customers, st.sales, st.records, st.insights)
	cache := snapshot.NewCache(loader, cacheOpts...)
	generator := insights.NewGenerator(st.insights, hub, log.Component("insights"))
	subscriptionUC := usecase.NewSubscriptionUseCase(st.subscriptions, st.companies, cfg.Billing.WebhookSecret, cfg.Billing.TrialDays)
	pdfGenerator := infrapdf.NewMarotoGenerator()

	var aiUC *usecase.AIUseCase
	if cfg.AI.AnthropicKey != "" || cfg.AI.GeminiKey != "" {
		llm, err := infraai.New(cfg.AI.Provider, cfg.AI.AnthropicKey, cfg.AI.GeminiKey, cfg.AI.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("proveedor de IA")
		}
		aiUC = usecase.NewAIUseCase(llm, cache, generator, log.Component("ai"))
	}

	authUC := auth.NewAuthUseCase(st.users, st.companies, subscriptionUC, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 << 20,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	// Swagger UI en local: http://localhost:<port>/docs (requiere docs/swagger.json generado)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Negocio ERP API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		CompanyUC:      usecase.NewCompanyUseCase(st.companies, cfg.Locale.PhoneRegion),
		UserUC:         usecase.NewUserUseCase(st.users),
		ProductUC:      inventory.NewProductUseCase(st.tx, st.products, st.variations, images, generator, cache, log.Component("products")),
		VariationUC:    inventory.NewVariationUseCase(st.tx, st.products, st.variations, images, generator, cache, log.Component("products")),
		RestockUC:      inventory.NewRestockUseCase(st.tx, generator, hub, cache, log.Component("inventory")),
		Replenishment:  inventory.NewReplenishmentUseCase(st.products, st.analytics),
		SubmitSale:     sales.NewSubmitSaleUseCase(st.tx, locker, st.sales, st.products, st.variations, st.customers, st.records, generator, loader, hub, log.Component("sales")),
		SaleQuery:      sales.NewQueryUseCase(st.sales, st.companies, st.customers, pdfGenerator),
		CustomerUC:     usecase.NewCustomerUseCase(st.customers, cfg.Locale.PhoneRegion, cache),
		FinanceUC:      usecase.NewFinanceUseCase(st.records, st.customers, cache),
		SubscriptionUC: subscriptionUC,
		AIUC:           aiUC,
		DashboardUC:    appanalytics.NewDashboardUseCase(cache),
		ReportUC:       appanalytics.NewReportUseCase(st.sales, st.records, st.analytics, st.companies, excel.NewSalesExporter(), pdfGenerator),
		MarginsUC:      appanalytics.NewMarginsUseCase(st.analytics),
		Insights:       generator,
		Snapshots:      cache,
		Hub:            hub,
		JWTSecret:      cfg.JWT.Secret,
		Log:            zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
