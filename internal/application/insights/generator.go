// Package insights deriva registros de asesoría (alertas, resúmenes, recomendaciones)
// a partir de cambios ya confirmados en el store.
package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/inventory"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// AnonymousCustomer nombre usado en resúmenes de ventas sin cliente.
const AnonymousCustomer = "Consumidor final"

// SoldLine cantidad vendida de una referencia en una venta.
type SoldLine struct {
	Ref      entity.ItemRef
	Quantity int
}

// Generator crea insights y resuelve automáticamente las alertas de stock.
type Generator struct {
	repo     repository.InsightRepository
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewGenerator construye el generador. notifier puede ser nil.
func NewGenerator(repo repository.InsightRepository, notifier Notifier, log zerolog.Logger) *Generator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Generator{repo: repo, notifier: notifier, log: log, now: time.Now}
}

// OnProductCreated emite una recomendación de prioridad media para el producto nuevo.
func (g *Generator) OnProductCreated(ctx context.Context, p *entity.Product) (*entity.Insight, error) {
	in := g.build(p.CompanyID, entity.InsightRecommendation, entity.PriorityMedium, entity.InsightCategoryProducts,
		"Nuevo producto: "+p.Name,
		fmt.Sprintf("Define el stock mínimo y una imagen para %q para recibir alertas y mejorar la conversión.", p.Name),
		p.ID,
		map[string]any{"product_id": p.ID, "sku": p.SKU},
	)
	if err := g.create(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// OnSaleCompleted emite el resumen de la venta y las alertas de stock bajo.
// El stock restante se proyecta desde snap (estado previo a la venta), no se relee del store.
func (g *Generator) OnSaleCompleted(ctx context.Context, snap *snapshot.Snapshot, sale *entity.Sale, customerName string, lines []SoldLine) ([]*entity.Insight, error) {
	if customerName == "" {
		customerName = AnonymousCustomer
	}
	var created []*entity.Insight

	summary := g.build(sale.CompanyID, entity.InsightSummary, entity.PriorityLow, entity.InsightCategorySales,
		"Venta "+sale.InvoiceNumber,
		fmt.Sprintf("Venta por %s a %s.", sale.Total.StringFixed(2), customerName),
		"",
		map[string]any{"sale_id": sale.ID, "total": sale.Total.StringFixed(2), "customer": customerName},
	)
	if err := g.create(ctx, summary); err != nil {
		return created, err
	}
	created = append(created, summary)

	sold, order := aggregate(lines)
	if len(order) == 0 {
		return created, nil
	}
	open, err := g.unreadByRef(ctx, sale.CompanyID)
	if err != nil {
		return created, err
	}
	for _, ref := range order {
		stock, name, ok := snap.Stock(ref)
		if !ok {
			continue
		}
		remaining := inventory.RemainingAfter(stock, sold[ref])
		threshold := snap.Threshold(ref)
		if remaining > threshold || open[ref.ID] {
			continue
		}
		alert := g.lowStock(sale.CompanyID, ref, name, remaining, threshold)
		if err := g.create(ctx, alert); err != nil {
			return created, err
		}
		open[ref.ID] = true
		created = append(created, alert)
	}
	return created, nil
}

// OnStockChanged resuelve o emite alertas tras una edición de stock fuera del flujo de venta.
// Si el stock supera el umbral marca como leídas las alertas abiertas; si no, emite una
// solo cuando no hay otra sin leer.
func (g *Generator) OnStockChanged(ctx context.Context, companyID string, ref entity.ItemRef, name string, stock, threshold int) (*entity.Insight, error) {
	open, err := g.repo.ListUnread(ctx, companyID, entity.InsightCategoryInventory, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("list unread insights: %w", err)
	}
	if stock > threshold {
		now := g.now()
		for _, in := range open {
			if err := g.repo.MarkRead(ctx, companyID, in.ID, now); err != nil {
				return nil, fmt.Errorf("resolve insight %s: %w", in.ID, err)
			}
		}
		return nil, nil
	}
	if len(open) > 0 {
		return nil, nil
	}
	alert := g.lowStock(companyID, ref, name, stock, threshold)
	if err := g.create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// List devuelve los insights de la cuenta, más recientes primero.
func (g *Generator) List(ctx context.Context, companyID string, unreadOnly bool) ([]*entity.Insight, error) {
	return g.repo.List(ctx, companyID, unreadOnly)
}

// MarkRead marca un insight como leído por acción del usuario.
func (g *Generator) MarkRead(ctx context.Context, companyID, insightID string) error {
	in, err := g.repo.GetByID(ctx, companyID, insightID)
	if err != nil {
		return err
	}
	if in == nil {
		return domain.ErrNotFound
	}
	if in.Read {
		return nil
	}
	return g.repo.MarkRead(ctx, companyID, insightID, g.now())
}

// Recommend persiste una recomendación externa (IA) y la publica.
func (g *Generator) Recommend(ctx context.Context, companyID, title, description, priority string, payload map[string]any) (*entity.Insight, error) {
	switch priority {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh:
	default:
		priority = entity.PriorityMedium
	}
	in := g.build(companyID, entity.InsightRecommendation, priority, entity.InsightCategoryAI, title, description, "", payload)
	if err := g.create(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (g *Generator) unreadByRef(ctx context.Context, companyID string) (map[string]bool, error) {
	list, err := g.repo.ListUnread(ctx, companyID, entity.InsightCategoryInventory, "")
	if err != nil {
		return nil, fmt.Errorf("list unread insights: %w", err)
	}
	open := make(map[string]bool, len(list))
	for _, in := range list {
		if in.RefID != "" {
			open[in.RefID] = true
		}
	}
	return open, nil
}

func (g *Generator) lowStock(companyID string, ref entity.ItemRef, name string, remaining, threshold int) *entity.Insight {
	priority := entity.PriorityMedium
	if remaining <= 0 {
		priority = entity.PriorityHigh
	}
	payload := map[string]any{
		"ref_kind":        string(ref.Kind),
		"remaining_stock": remaining,
		"threshold":       threshold,
	}
	if ref.Kind == entity.RefVariation {
		payload["variation_id"] = ref.ID
	} else {
		payload["product_id"] = ref.ID
	}
	return g.build(companyID, entity.InsightAlert, priority, entity.InsightCategoryInventory,
		"Stock bajo: "+name,
		fmt.Sprintf("Quedan %d unidades de %s (mínimo %d). Considera reponer.", remaining, name, threshold),
		ref.ID, payload,
	)
}

func (g *Generator) build(companyID, typ, priority, category, title, desc, refID string, payload map[string]any) *entity.Insight {
	return &entity.Insight{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Type:        typ,
		Title:       title,
		Description: desc,
		Priority:    priority,
		Category:    category,
		RefID:       refID,
		Payload:     payload,
		CreatedAt:   g.now(),
	}
}

func (g *Generator) create(ctx context.Context, in *entity.Insight) error {
	if err := g.repo.Create(ctx, in); err != nil {
		return fmt.Errorf("create insight: %w", err)
	}
	g.log.Debug().Str("company_id", in.CompanyID).Str("insight_id", in.ID).Str("type", in.Type).Msg("insight creado")
	g.notifier.Notify(in.CompanyID, EventInsightCreated, dto.NewInsightResponse(in))
	return nil
}

// aggregate suma cantidades por referencia conservando el orden de aparición.
func aggregate(lines []SoldLine) (map[entity.ItemRef]int, []entity.ItemRef) {
	sold := make(map[entity.ItemRef]int, len(lines))
	var order []entity.ItemRef
	for _, l := range lines {
		if !l.Ref.Valid() {
			continue
		}
		if _, seen := sold[l.Ref]; !seen {
			order = append(order, l.Ref)
		}
		sold[l.Ref] += l.Quantity
	}
	return sold, order
}
