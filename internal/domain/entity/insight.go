package entity

import "time"

// Tipos de insight.
const (
	InsightRecommendation = "recommendation"
	InsightSummary        = "summary"
	InsightAlert          = "alert"
)

// Prioridades.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Categorías.
const (
	InsightCategoryInventory = "inventory"
	InsightCategorySales     = "sales"
	InsightCategoryProducts  = "products"
	InsightCategoryAI        = "ai"
)

// Insight es un registro de asesoría generado por el sistema.
// RefID identifica el producto o variación de origen (vacío si no aplica).
type Insight struct {
	ID          string
	CompanyID   string
	Type        string
	Title       string
	Description string
	Priority    string
	Category    string
	RefID       string
	Payload     map[string]any
	Read        bool
	CreatedAt   time.Time
	ReadAt      *time.Time
}
