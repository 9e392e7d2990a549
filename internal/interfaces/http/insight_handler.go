package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/usecase"
)

// InsightHandler lista insights, los marca como leídos y pide recomendaciones al LLM.
type InsightHandler struct {
	generator *insights.Generator
	ai        *usecase.AIUseCase
}

// NewInsightHandler construye el handler. ai puede ser nil si no hay LLM configurado.
func NewInsightHandler(generator *insights.Generator, ai *usecase.AIUseCase) *InsightHandler {
	return &InsightHandler{generator: generator, ai: ai}
}

// List godoc
// @Summary      Listar insights
// @Tags         insights
// @Security     Bearer
// @Produce      json
// @Param        unread  query  bool  false  "Solo no leídos"
// @Success      200     {array}  dto.InsightResponse
// @Router       /api/insights [get]
func (h *InsightHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	list, err := h.generator.List(c.UserContext(), companyID, c.QueryBool("unread", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewInsightResponses(list))
}

// MarkRead godoc
// @Summary      Marcar insight como leído
// @Tags         insights
// @Security     Bearer
// @Param        id   path  string  true  "ID del insight"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/insights/{id}/read [patch]
func (h *InsightHandler) MarkRead(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.generator.MarkRead(c.UserContext(), companyID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Advise godoc
// @Summary      Recomendaciones de negocio con IA
// @Description  Envía las métricas del período y el stock bajo al LLM y guarda hasta 5
// @Description  recomendaciones como insights. Timeout interno de 10 s.
// @Tags         insights
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AIAdviceResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Failure      504  {object}  dto.ErrorResponse
// @Router       /api/insights/ai [post]
func (h *InsightHandler) Advise(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if h.ai == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "AI_UNAVAILABLE", Message: "el servicio de IA no está configurado",
		})
	}
	out, err := h.ai.Advise(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
