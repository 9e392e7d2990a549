// Package snapshot mantiene la foto versionada de las colecciones de una cuenta
// que usan como modelo de lectura la conciliación de stock, los insights y el dashboard.
package snapshot

import (
	"time"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// Snapshot es inmutable una vez construido; las mutaciones producen uno nuevo con Version mayor.
type Snapshot struct {
	Version    uint64
	CompanyID  string
	LoadedAt   time.Time
	Products   []*entity.Product
	Variations []*entity.ProductVariation
	Customers  []*entity.Customer
	Sales      []*entity.Sale
	SaleItems  []*entity.SaleItem
	Records    []*entity.FinancialRecord
	Insights   []*entity.Insight

	products   map[string]*entity.Product
	variations map[string]*entity.ProductVariation
	customers  map[string]*entity.Customer
	variants   map[string]int
}

// New construye un snapshot e indexa sus colecciones.
func New(companyID string, version uint64, loadedAt time.Time, c Collections) *Snapshot {
	s := &Snapshot{
		Version:    version,
		CompanyID:  companyID,
		LoadedAt:   loadedAt,
		Products:   c.Products,
		Variations: c.Variations,
		Customers:  c.Customers,
		Sales:      c.Sales,
		SaleItems:  c.SaleItems,
		Records:    c.Records,
		Insights:   c.Insights,
		products:   make(map[string]*entity.Product, len(c.Products)),
		variations: make(map[string]*entity.ProductVariation, len(c.Variations)),
		customers:  make(map[string]*entity.Customer, len(c.Customers)),
		variants:   make(map[string]int),
	}
	for _, p := range c.Products {
		s.products[p.ID] = p
	}
	for _, v := range c.Variations {
		s.variations[v.ID] = v
		s.variants[v.ProductID]++
	}
	for _, cu := range c.Customers {
		s.customers[cu.ID] = cu
	}
	return s
}

// Collections agrupa las colecciones crudas de una cuenta.
type Collections struct {
	Products   []*entity.Product
	Variations []*entity.ProductVariation
	Customers  []*entity.Customer
	Sales      []*entity.Sale
	SaleItems  []*entity.SaleItem
	Records    []*entity.FinancialRecord
	Insights   []*entity.Insight
}

func (s *Snapshot) Product(id string) (*entity.Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

func (s *Snapshot) Variation(id string) (*entity.ProductVariation, bool) {
	v, ok := s.variations[id]
	return v, ok
}

func (s *Snapshot) Customer(id string) (*entity.Customer, bool) {
	c, ok := s.customers[id]
	return c, ok
}

// HasVariations indica si el stock del producto se lleva en sus variaciones,
// ya sea por la marca del producto o porque el snapshot contiene alguna.
func (s *Snapshot) HasVariations(productID string) bool {
	if p, ok := s.products[productID]; ok && p.HasVariations {
		return true
	}
	return s.variants[productID] > 0
}

// Stock devuelve el stock y el nombre visible de la referencia.
func (s *Snapshot) Stock(ref entity.ItemRef) (stock int, name string, ok bool) {
	switch ref.Kind {
	case entity.RefProduct:
		p, found := s.products[ref.ID]
		if !found {
			return 0, "", false
		}
		return p.Stock, p.Name, true
	case entity.RefVariation:
		v, found := s.variations[ref.ID]
		if !found {
			return 0, "", false
		}
		name = v.Name
		if p, pf := s.products[v.ProductID]; pf {
			name = p.Name + " - " + v.Name
		}
		return v.Stock, name, true
	}
	return 0, "", false
}

// Threshold devuelve el umbral de alerta de la referencia: MinStock para productos
// y el umbral fijo para variaciones.
func (s *Snapshot) Threshold(ref entity.ItemRef) int {
	if ref.Kind == entity.RefVariation {
		return entity.VariationLowStockThreshold
	}
	if p, ok := s.products[ref.ID]; ok {
		return p.MinStock
	}
	return 0
}
