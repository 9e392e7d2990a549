package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	stockcalc "github.com/jhoicas/negocio-erp/internal/domain/inventory"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// RestockUseCase registra entradas de mercadería y ediciones manuales de stock de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback. Tras confirmar, resuelve o emite
// alertas de stock y publica stock_update.
type RestockUseCase struct {
	tx        TxRunner
	generator *insights.Generator
	notifier  insights.Notifier
	cache     SnapshotInvalidator
	log       zerolog.Logger
}

// NewRestockUseCase construye el caso de uso.
func NewRestockUseCase(tx TxRunner, generator *insights.Generator, notifier insights.Notifier, cache SnapshotInvalidator, log zerolog.Logger) *RestockUseCase {
	if notifier == nil {
		notifier = insights.NopNotifier{}
	}
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &RestockUseCase{tx: tx, generator: generator, notifier: notifier, cache: cache, log: log}
}

// stockTarget estado confirmado de la referencia tocada.
type stockTarget struct {
	ref       entity.ItemRef
	name      string
	previous  int
	current   int
	threshold int
	cost      *decimal.Decimal
}

// Restock suma quantity al producto o variación. Con UnitCost recalcula el costo promedio
// ponderado del producto (para una variación, el de su padre).
func (uc *RestockUseCase) Restock(ctx context.Context, companyID string, in dto.RestockRequest) (*dto.StockChangeResponse, error) {
	ref, err := refOf(in.ProductID, in.VariationID)
	if err != nil {
		return nil, err
	}
	if in.Quantity <= 0 || (in.UnitCost != nil && in.UnitCost.IsNegative()) {
		return nil, domain.ErrInvalidInput
	}

	var t stockTarget
	err = uc.tx.Run(ctx, func(products repository.ProductRepository, variations repository.VariationRepository) error {
		if ref.Kind == entity.RefProduct {
			// Bloquea la fila del producto para evitar condiciones de carrera
			p, err := products.GetByIDForUpdate(ctx, companyID, ref.ID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.ErrNotFound
			}
			if p.HasVariations {
				return domain.ErrInvalidInput
			}
			cost := p.Cost
			if in.UnitCost != nil {
				cost = stockcalc.WeightedCost(p.Stock, p.Cost, in.Quantity, *in.UnitCost)
			}
			if err := products.UpdateStock(ctx, companyID, p.ID, p.Stock+in.Quantity, cost); err != nil {
				return err
			}
			t = stockTarget{ref: ref, name: p.Name, previous: p.Stock, current: p.Stock + in.Quantity, threshold: p.MinStock, cost: &cost}
			return nil
		}

		v, err := variations.GetByIDForUpdate(ctx, companyID, ref.ID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrNotFound
		}
		parent, err := products.GetByIDForUpdate(ctx, companyID, v.ProductID)
		if err != nil {
			return err
		}
		if parent == nil {
			return domain.ErrNotFound
		}
		if err := variations.UpdateStock(ctx, companyID, v.ID, v.Stock+in.Quantity); err != nil {
			return err
		}
		if in.UnitCost != nil {
			cost := stockcalc.WeightedCost(parent.Stock, parent.Cost, in.Quantity, *in.UnitCost)
			if err := products.UpdateStock(ctx, companyID, parent.ID, parent.Stock, cost); err != nil {
				return err
			}
			t.cost = &cost
		}
		if err := resyncParent(ctx, products, variations, companyID, parent.ID); err != nil {
			return err
		}
		t.ref, t.name = ref, variationLabel(parent.Name, v.Name)
		t.previous, t.current = v.Stock, v.Stock+in.Quantity
		t.threshold = entity.VariationLowStockThreshold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.afterCommit(ctx, companyID, t), nil
}

// SetStock fija un valor absoluto de stock (conteo físico). Los productos con variaciones
// se editan a través de sus variaciones.
func (uc *RestockUseCase) SetStock(ctx context.Context, companyID string, in dto.SetStockRequest) (*dto.StockChangeResponse, error) {
	ref, err := refOf(in.ProductID, in.VariationID)
	if err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}

	var t stockTarget
	err = uc.tx.Run(ctx, func(products repository.ProductRepository, variations repository.VariationRepository) error {
		if ref.Kind == entity.RefProduct {
			p, err := products.GetByIDForUpdate(ctx, companyID, ref.ID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.ErrNotFound
			}
			if p.HasVariations {
				return domain.ErrInvalidInput
			}
			if err := products.UpdateStock(ctx, companyID, p.ID, in.Stock, p.Cost); err != nil {
				return err
			}
			t = stockTarget{ref: ref, name: p.Name, previous: p.Stock, current: in.Stock, threshold: p.MinStock}
			return nil
		}
		v, err := variations.GetByIDForUpdate(ctx, companyID, ref.ID)
		if err != nil {
			return err
		}
		if v == nil {
			return domain.ErrNotFound
		}
		if err := variations.UpdateStock(ctx, companyID, v.ID, in.Stock); err != nil {
			return err
		}
		if err := resyncParent(ctx, products, variations, companyID, v.ProductID); err != nil {
			return err
		}
		parentName := ""
		if parent, err := products.GetByID(ctx, companyID, v.ProductID); err == nil && parent != nil {
			parentName = parent.Name
		}
		t = stockTarget{
			ref:       ref,
			name:      variationLabel(parentName, v.Name),
			previous:  v.Stock,
			current:   in.Stock,
			threshold: entity.VariationLowStockThreshold,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.afterCommit(ctx, companyID, t), nil
}

// afterCommit corre fuera de la transacción: sus fallas se registran y no revierten el stock.
func (uc *RestockUseCase) afterCommit(ctx context.Context, companyID string, t stockTarget) *dto.StockChangeResponse {
	uc.cache.Invalidate(companyID)
	out := &dto.StockChangeResponse{
		RefKind:  string(t.ref.Kind),
		RefID:    t.ref.ID,
		Previous: t.previous,
		Current:  t.current,
		Cost:     t.cost,
		Resolved: t.current > t.threshold,
	}
	uc.notifier.Notify(companyID, insights.EventStockUpdate, map[string]any{
		"ref":      t.ref,
		"previous": t.previous,
		"current":  t.current,
		"at":       time.Now(),
	})
	if uc.generator == nil {
		return out
	}
	alert, err := uc.generator.OnStockChanged(ctx, companyID, t.ref, t.name, t.current, t.threshold)
	if err != nil {
		out.Resolved = false
		uc.log.Error().Err(err).Str("company_id", companyID).Str("ref", t.ref.String()).Msg("insights de stock no actualizados")
		return out
	}
	out.Alert = dto.NewInsightResponse(alert)
	return out
}

func refOf(productID, variationID string) (entity.ItemRef, error) {
	switch {
	case variationID != "" && productID != "":
		return entity.ItemRef{}, domain.ErrInvalidInput
	case variationID != "":
		return entity.ItemRef{Kind: entity.RefVariation, ID: variationID}, nil
	case productID != "":
		return entity.ItemRef{Kind: entity.RefProduct, ID: productID}, nil
	}
	return entity.ItemRef{}, domain.ErrInvalidInput
}
