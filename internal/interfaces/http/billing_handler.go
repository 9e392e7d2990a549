package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/usecase"
)

// HeaderSignature cabecera con la firma HMAC-SHA256 (hex) del cuerpo del webhook.
const HeaderSignature = "X-Signature"

// BillingHandler estado de la suscripción y webhook del proveedor de pagos.
type BillingHandler struct {
	uc  *usecase.SubscriptionUseCase
	log zerolog.Logger
}

// NewBillingHandler construye el handler.
func NewBillingHandler(uc *usecase.SubscriptionUseCase, log zerolog.Logger) *BillingHandler {
	return &BillingHandler{uc: uc, log: log}
}

// Subscription godoc
// @Summary      Estado de la suscripción
// @Tags         billing
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SubscriptionResponse
// @Router       /api/billing/subscription [get]
func (h *BillingHandler) Subscription(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Webhook godoc
// @Summary      Webhook del proveedor de pagos
// @Description  Público; autenticado con la firma HMAC del cuerpo en X-Signature.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        X-Signature  header  string                   true  "HMAC-SHA256 hex del cuerpo"
// @Param        body         body    dto.BillingWebhookEvent  true  "Evento"
// @Success      200  {object}  dto.SubscriptionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/billing/webhook [post]
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	out, err := h.uc.HandleWebhook(c.UserContext(), c.Body(), c.Get(HeaderSignature))
	if err != nil {
		h.log.Warn().Err(err).Str("ip", c.IP()).Msg("billing webhook rejected")
		return respondError(c, err)
	}
	return c.JSON(out)
}
