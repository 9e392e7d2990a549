package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/pkg/validator"
)

// respondError traduce errores de dominio a códigos HTTP.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *sales.StockError
	switch {
	case errors.As(err, &stockErr):
		status, code := fiber.StatusConflict, "INSUFFICIENT_STOCK"
		if errors.Is(stockErr.Err, domain.ErrInvalidReference) {
			status, code = fiber.StatusUnprocessableEntity, "INVALID_REFERENCE"
		}
		return c.Status(status).JSON(dto.ErrorResponse{
			Code:    code,
			Message: stockErr.Error(),
			Details: fiber.Map{
				"item_index": stockErr.ItemIndex,
				"ref":        stockErr.Ref,
				"name":       stockErr.Name,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			},
		})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return errJSON(c, fiber.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, domain.ErrInvalidInput):
		return errJSON(c, fiber.StatusBadRequest, "VALIDATION", err)
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return errJSON(c, fiber.StatusConflict, "EMAIL_EXISTS", err)
	case errors.Is(err, domain.ErrDuplicate):
		return errJSON(c, fiber.StatusConflict, "DUPLICATE", err)
	case errors.Is(err, domain.ErrInvalidSignature):
		return errJSON(c, fiber.StatusUnauthorized, "INVALID_SIGNATURE", err)
	case errors.Is(err, domain.ErrUnauthorized):
		return errJSON(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err)
	case errors.Is(err, domain.ErrForbidden):
		return errJSON(c, fiber.StatusForbidden, "FORBIDDEN", err)
	case errors.Is(err, domain.ErrConflict):
		return errJSON(c, fiber.StatusConflict, "CONFLICT", err)
	case errors.Is(err, domain.ErrInsufficientStock):
		return errJSON(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", err)
	case errors.Is(err, domain.ErrInvalidReference):
		return errJSON(c, fiber.StatusUnprocessableEntity, "INVALID_REFERENCE", err)
	case errors.Is(err, domain.ErrLockNotObtained):
		return errJSON(c, fiber.StatusConflict, "SALE_IN_PROGRESS", err)
	case errors.Is(err, domain.ErrSubscriptionInactive):
		return errJSON(c, fiber.StatusPaymentRequired, "SUBSCRIPTION_INACTIVE", err)
	case errors.Is(err, domain.ErrImageUpload):
		return errJSON(c, fiber.StatusBadGateway, "IMAGE_UPLOAD", err)
	case errors.Is(err, context.DeadlineExceeded):
		return errJSON(c, fiber.StatusGatewayTimeout, "TIMEOUT", err)
	default:
		return errJSON(c, fiber.StatusInternalServerError, "INTERNAL", err)
	}
}

func errJSON(c *fiber.Ctx, status int, code string, err error) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: what + " no encontrado"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
}

// parseBody decodifica el cuerpo y valida los tags. Si falla ya escribió la respuesta
// y devuelve ok=false.
func parseBody(c *fiber.Ctx, out any) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return validate(c, out)
}

func validate(c *fiber.Ctx, in any) (ok bool, err error) {
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "datos inválidos",
			Details: errs,
		})
	}
	return true, nil
}
