package dto

import (
	"time"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// InsightResponse insight en respuestas y eventos WebSocket.
type InsightResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    string         `json:"priority"`
	Category    string         `json:"category"`
	Payload     map[string]any `json:"payload"`
	Read        bool           `json:"read"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewInsightResponse mapea la entidad.
func NewInsightResponse(in *entity.Insight) *InsightResponse {
	if in == nil {
		return nil
	}
	return &InsightResponse{
		ID:          in.ID,
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		Payload:     in.Payload,
		Read:        in.Read,
		CreatedAt:   in.CreatedAt,
	}
}

// NewInsightResponses mapea una lista.
func NewInsightResponses(list []*entity.Insight) []InsightResponse {
	out := make([]InsightResponse, 0, len(list))
	for _, in := range list {
		out = append(out, *NewInsightResponse(in))
	}
	return out
}
