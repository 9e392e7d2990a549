package snapshot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// Loader lee todas las colecciones de una cuenta en paralelo.
type Loader struct {
	products   repository.ProductRepository
	variations repository.VariationRepository
	customers  repository.CustomerRepository
	sales      repository.SaleRepository
	records    repository.FinancialRecordRepository
	insights   repository.InsightRepository
	version    atomic.Uint64
}

// NewLoader construye el loader con los repositorios de lectura.
func NewLoader(
	products repository.ProductRepository,
	variations repository.VariationRepository,
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
	records repository.FinancialRecordRepository,
	insights repository.InsightRepository,
) *Loader {
	return &Loader{
		products:   products,
		variations: variations,
		customers:  customers,
		sales:      sales,
		records:    records,
		insights:   insights,
	}
}

// Load construye un snapshot nuevo. La versión se asigna al iniciar la lectura:
// una carga que empieza después de otra siempre tiene versión mayor.
func (l *Loader) Load(ctx context.Context, companyID string) (*Snapshot, error) {
	version := l.version.Add(1)
	var c Collections
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Products, err = l.products.ListByCompany(gctx, companyID)
		return wrap("products", err)
	})
	g.Go(func() (err error) {
		c.Variations, err = l.variations.ListByCompany(gctx, companyID)
		return wrap("variations", err)
	})
	g.Go(func() (err error) {
		c.Customers, err = l.customers.ListByCompany(gctx, companyID, "")
		return wrap("customers", err)
	})
	g.Go(func() (err error) {
		c.Sales, err = l.sales.List(gctx, companyID, repository.SaleFilter{})
		return wrap("sales", err)
	})
	g.Go(func() (err error) {
		c.SaleItems, err = l.sales.ListItemsByCompany(gctx, companyID)
		return wrap("sale items", err)
	})
	g.Go(func() (err error) {
		c.Records, err = l.records.List(gctx, companyID, repository.FinancialRecordFilter{})
		return wrap("financial records", err)
	})
	g.Go(func() (err error) {
		c.Insights, err = l.insights.List(gctx, companyID, false)
		return wrap("insights", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return New(companyID, version, time.Now(), c), nil
}

// Version devuelve la última versión asignada.
func (l *Loader) Version() uint64 { return l.version.Load() }

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

// Cache guarda el último snapshot por cuenta.
type Cache struct {
	loader *Loader
	maxAge time.Duration
	now    func() time.Time
	mu     sync.RWMutex
	byID   map[string]*Snapshot
	floor  map[string]uint64
}

// CacheOption configura la caché.
type CacheOption func(*Cache)

// WithMaxAge descarta en Get los snapshots cargados hace más de d. Con varias
// instancias las escrituras de las demás no invalidan la caché local.
func WithMaxAge(d time.Duration) CacheOption {
	return func(c *Cache) { c.maxAge = d }
}

// NewCache construye la caché sobre un loader.
func NewCache(loader *Loader, opts ...CacheOption) *Cache {
	c := &Cache{
		loader: loader,
		now:    time.Now,
		byID:   make(map[string]*Snapshot),
		floor:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get devuelve el snapshot vigente de la cuenta, cargándolo si no existe o caducó.
func (c *Cache) Get(ctx context.Context, companyID string) (*Snapshot, error) {
	c.mu.RLock()
	s, ok := c.byID[companyID]
	c.mu.RUnlock()
	if ok && (c.maxAge <= 0 || c.now().Sub(s.LoadedAt) < c.maxAge) {
		return s, nil
	}
	return c.Refresh(ctx, companyID)
}

// Refresh recarga la cuenta desde el store.
func (c *Cache) Refresh(ctx context.Context, companyID string) (*Snapshot, error) {
	s, err := c.loader.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	c.Put(s)
	return s, nil
}

// Put guarda s si es más nuevo que el vigente y que la última invalidación.
// Devuelve false si lo descarta.
func (c *Cache) Put(s *Snapshot) bool {
	if s == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.Version <= c.floor[s.CompanyID] {
		return false
	}
	if cur, ok := c.byID[s.CompanyID]; ok && cur.Version >= s.Version {
		return false
	}
	c.byID[s.CompanyID] = s
	return true
}

// Invalidate descarta el snapshot de la cuenta; el siguiente Get recarga. Las
// cargas iniciadas antes de invalidar ya no se aceptan en Put.
func (c *Cache) Invalidate(companyID string) {
	c.mu.Lock()
	delete(c.byID, companyID)
	c.floor[companyID] = c.loader.Version()
	c.mu.Unlock()
}
