package repository

import (
	"context"
	"time"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// InsightRepository define el puerto de persistencia para Insight.
type InsightRepository interface {
	Create(ctx context.Context, insight *entity.Insight) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Insight, error)
	List(ctx context.Context, companyID string, unreadOnly bool) ([]*entity.Insight, error)
	// ListUnread devuelve los insights no leídos de una categoría; refID vacío = todos.
	ListUnread(ctx context.Context, companyID, category, refID string) ([]*entity.Insight, error)
	MarkRead(ctx context.Context, companyID, id string, at time.Time) error
}
