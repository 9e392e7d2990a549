package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
)

// subscriptionChecker lo implementa *usecase.SubscriptionUseCase.
type subscriptionChecker interface {
	IsActive(ctx context.Context, companyID string) (bool, error)
}

// RequireActiveSubscription bloquea las escrituras de cuentas sin suscripción vigente.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalCompanyID).
//
//   - 402 Payment Required → trial vencido, cancelada o sin suscripción.
//   - 503 Service Unavailable → fallo al consultar el estado.
//
// Las lecturas (GET/HEAD) pasan siempre.
func RequireActiveSubscription(checker subscriptionChecker, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}
		companyID := GetCompanyID(c)
		if companyID == "" {
			return unauthorized(c)
		}
		active, err := checker.IsActive(c.UserContext(), companyID)
		if err != nil {
			log.Error().Err(err).Str("company_id", companyID).Msg("subscription check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "SUBSCRIPTION_CHECK_FAILED",
				Message: "no se pudo verificar la suscripción, intente más tarde",
			})
		}
		if !active {
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Code:    "SUBSCRIPTION_INACTIVE",
				Message: "la suscripción de la cuenta no está activa",
			})
		}
		return c.Next()
	}
}
