package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/analytics"
	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/ports"
)

const (
	aiTimeout        = 10 * time.Second
	aiMaxAdvice      = 5
	aiLowStockSample = 20

	adviceSystemPrompt = `Eres un asesor de negocios para pequeños comercios.
Recibes métricas del período y la lista de productos con stock bajo, en JSON.
Devuelve ÚNICAMENTE un objeto JSON (sin markdown) con esta estructura exacta:
{
  "summary": "<diagnóstico breve en español, máximo 300 caracteres>",
  "recommendations": [
    {"title": "<máximo 80 caracteres>", "description": "<acción concreta>", "priority": "low|medium|high"}
  ]
}
Máximo 5 recomendaciones. No incluyas texto fuera del JSON.`
)

// AIUseCase pide recomendaciones al LLM a partir de las métricas de la cuenta
// y las guarda como insights de categoría "ai".
// Aplica un timeout de 10 segundos en cada llamada al LLM.
type AIUseCase struct {
	llm       ports.LLMService
	snapshots analytics.SnapshotSource
	generator *insights.Generator
	log       zerolog.Logger
	now       func() time.Time
}

// NewAIUseCase construye el caso de uso inyectando el puerto LLMService.
func NewAIUseCase(llm ports.LLMService, snapshots analytics.SnapshotSource, generator *insights.Generator, log zerolog.Logger) *AIUseCase {
	return &AIUseCase{llm: llm, snapshots: snapshots, generator: generator, log: log, now: time.Now}
}

type advicePrompt struct {
	Metrics  dto.DashboardMetrics `json:"metrics"`
	LowStock []lowStockLine       `json:"low_stock"`
}

type lowStockLine struct {
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
}

type adviceResult struct {
	Summary         string `json:"summary"`
	Recommendations []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	} `json:"recommendations"`
}

// Advise envía métricas y stock bajo al LLM y persiste las recomendaciones recibidas.
func (uc *AIUseCase) Advise(ctx context.Context, companyID string) (*dto.AIAdviceResponse, error) {
	snap, err := uc.snapshots.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}

	in := advicePrompt{Metrics: analytics.ComputeDashboard(snap, uc.now(), analytics.DefaultPeriodDays)}
	for _, p := range snap.Products {
		if p.IsLowStock() && len(in.LowStock) < aiLowStockSample {
			in.LowStock = append(in.LowStock, lowStockLine{Name: p.Name, Stock: p.Stock, MinStock: p.MinStock})
		}
	}
	prompt, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar métricas: %w", err)
	}

	// Timeout de 10 s: las llamadas a LLMs pueden demorar varios segundos.
	llmCtx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	raw, err := uc.llm.Complete(llmCtx, adviceSystemPrompt, string(prompt))
	if err != nil {
		return nil, fmt.Errorf("asesoría IA: %w", err)
	}
	clean := extractJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON válido en la respuesta del modelo")
	}
	var res adviceResult
	if err := json.Unmarshal([]byte(clean), &res); err != nil {
		return nil, fmt.Errorf("AI: parsear recomendaciones: %w", err)
	}

	out := &dto.AIAdviceResponse{Summary: strings.TrimSpace(res.Summary), Insights: []dto.InsightResponse{}}
	for i, r := range res.Recommendations {
		if i == aiMaxAdvice {
			break
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		rec, err := uc.generator.Recommend(ctx, companyID, title, strings.TrimSpace(r.Description),
			strings.ToLower(r.Priority), map[string]any{"source": "llm"})
		if err != nil {
			uc.log.Warn().Err(err).Str("company_id", companyID).Msg("ai: no se pudo guardar la recomendación")
			continue
		}
		out.Insights = append(out.Insights, *dto.NewInsightResponse(rec))
	}
	return out, nil
}

// jsonBlockRe captura desde el primer '{' hasta el último '}'.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON extrae el objeto JSON de un texto libre, aunque venga envuelto en markdown.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
