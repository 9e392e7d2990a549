// Package memory implementa los puertos de persistencia en memoria.
// Se usa en tests y con STORE_DRIVER=memory para demos locales.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

type entry[T any] struct {
	seq int64
	v   T
}

type table[T any] map[string]entry[T]

// values devuelve copias en orden de inserción filtradas por keep.
func (t table[T]) values(keep func(T) bool) []T {
	rows := make([]entry[T], 0, len(t))
	for _, r := range t {
		if keep == nil || keep(r.v) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.v
	}
	return out
}

// Store guarda todas las colecciones detrás de un único RWMutex.
type Store struct {
	mu            sync.RWMutex
	txMu          sync.Mutex
	seq           int64
	companies     table[entity.Company]
	users         table[entity.User]
	subscriptions table[entity.Subscription]
	products      table[entity.Product]
	variations    table[entity.ProductVariation]
	customers     table[entity.Customer]
	sales         table[entity.Sale]
	saleItems     table[entity.SaleItem]
	records       table[entity.FinancialRecord]
	insights      table[entity.Insight]
	failures      map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		companies:     table[entity.Company]{},
		users:         table[entity.User]{},
		subscriptions: table[entity.Subscription]{},
		products:      table[entity.Product]{},
		variations:    table[entity.ProductVariation]{},
		customers:     table[entity.Customer]{},
		sales:         table[entity.Sale]{},
		saleItems:     table[entity.SaleItem]{},
		records:       table[entity.FinancialRecord]{},
		insights:      table[entity.Insight]{},
		failures:      map[string]error{},
	}
}

// FailOnce hace que la próxima llamada a op ("products.DecrementStock", "sales.CreateItem"...)
// devuelva err. Solo para tests.
func (s *Store) FailOnce(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// fail consume el error inyectado para op. Requiere s.mu tomado.
func (s *Store) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// Repositorios.
func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{s: s} }
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }
func (s *Store) Subscriptions() *SubscriptionRepo { return &SubscriptionRepo{s: s} }
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }
func (s *Store) Variations() *VariationRepo { return &VariationRepo{s: s} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }
func (s *Store) FinancialRecords() *FinancialRecordRepo { return &FinancialRecordRepo{s: s} }
func (s *Store) Insights() *InsightRepo { return &InsightRepo{s: s} }
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

// TxRunner serializa las unidades de trabajo; no hay rollback en memoria.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con los repositorios de catálogo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	products repository.ProductRepository,
	variations repository.VariationRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	return fn(r.s.Products(), r.s.Variations())
}

// RunSale ejecuta fn con el repositorio de ventas, serializado por cuenta.
func (r *TxRunner) RunSale(ctx context.Context, companyID string, fn func(sales repository.SaleRepository) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	return fn(r.s.Sales())
}
