package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// LineItem es una línea candidata de venta.
// Ref nil y ProductID vacío = línea libre (servicio, cargo), no afecta stock.
// ProductID admite identificadores compuestos heredados ("<uuid>-<sufijo>").
type LineItem struct {
	Ref       *entity.ItemRef
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// ResolvedRef devuelve la referencia efectiva de la línea; ok es false si
// ProductID no contiene un UUID válido.
func (l LineItem) ResolvedRef() (ref *entity.ItemRef, ok bool) {
	if l.Ref != nil {
		return l.Ref, true
	}
	if l.ProductID == "" {
		return nil, true
	}
	id := entity.ParseLegacyProductID(l.ProductID)
	if id == nil {
		return nil, false
	}
	return &entity.ItemRef{Kind: entity.RefProduct, ID: *id}, true
}

// StockError identifica la línea que impide la venta.
type StockError struct {
	ItemIndex int
	Ref       string
	Name      string
	Requested int
	Available int
	Err       error // domain.ErrInsufficientStock o domain.ErrInvalidReference
}

func (e *StockError) Error() string {
	switch {
	case e.Err == domain.ErrInsufficientStock:
		return fmt.Sprintf("ítem %d (%s): stock insuficiente, solicitado %d, disponible %d",
			e.ItemIndex+1, e.Name, e.Requested, e.Available)
	case e.Name != "":
		return fmt.Sprintf("ítem %d (%s): el producto se vende por variación, indique cuál", e.ItemIndex+1, e.Name)
	}
	return fmt.Sprintf("ítem %d: referencia %q no encontrada", e.ItemIndex+1, e.Ref)
}

func (e *StockError) Unwrap() error { return e.Err }

// ReconcileStock valida, sin efectos, que cada línea resuelva contra el snapshot
// y que el stock disponible cubra lo pedido. Las cantidades de una misma referencia
// se acumulan. Un producto con variaciones no se vende por referencia de producto.
// Devuelve las líneas con Ref resuelta; un id compuesto cuyo sufijo es una
// variación del producto se resuelve a esa variación.
func ReconcileStock(snap *snapshot.Snapshot, items []LineItem) ([]LineItem, error) {
	out := make([]LineItem, len(items))
	requested := make(map[entity.ItemRef]int, len(items))
	for i, it := range items {
		if it.Quantity < 0 {
			return nil, fmt.Errorf("ítem %d: cantidad negativa: %w", i+1, domain.ErrInvalidInput)
		}
		ref, ok := resolveRef(snap, it)
		if !ok {
			return nil, &StockError{ItemIndex: i, Ref: it.ProductID, Err: domain.ErrInvalidReference}
		}
		out[i] = it
		if ref == nil {
			continue
		}
		if !ref.Valid() {
			return nil, &StockError{ItemIndex: i, Ref: ref.String(), Err: domain.ErrInvalidReference}
		}
		stock, name, found := snap.Stock(*ref)
		if !found {
			return nil, &StockError{ItemIndex: i, Ref: ref.String(), Err: domain.ErrInvalidReference}
		}
		if ref.Kind == entity.RefProduct && snap.HasVariations(ref.ID) {
			return nil, &StockError{ItemIndex: i, Ref: ref.String(), Name: name, Err: domain.ErrInvalidReference}
		}
		out[i].Ref = ref
		requested[*ref] += it.Quantity
		if requested[*ref] > stock {
			return nil, &StockError{
				ItemIndex: i,
				Ref:       ref.String(),
				Name:      name,
				Requested: requested[*ref],
				Available: stock,
				Err:       domain.ErrInsufficientStock,
			}
		}
	}
	return out, nil
}

// resolveRef resuelve la referencia de la línea contra el snapshot.
func resolveRef(snap *snapshot.Snapshot, it LineItem) (*entity.ItemRef, bool) {
	if it.Ref != nil || it.ProductID == "" {
		return it.ResolvedRef()
	}
	productID, suffix, ok := entity.SplitLegacyID(it.ProductID)
	if !ok {
		return nil, false
	}
	if v, found := snap.Variation(suffix); found && v.ProductID == productID {
		return &entity.ItemRef{Kind: entity.RefVariation, ID: v.ID}, true
	}
	return &entity.ItemRef{Kind: entity.RefProduct, ID: productID}, true
}
