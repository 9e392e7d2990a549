package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/pkg/jwt"
)

// Claves de c.Locals con la sesión del request.
const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
	LocalRole      = "role"
)

// AuthMiddleware exige "Authorization: Bearer <jwt>" y deja la sesión en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, code, msg := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return deny(c, fiber.StatusUnauthorized, code, msg)
		}
		if !setSession(c, jwtSecret, raw) {
			return deny(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado")
		}
		return c.Next()
	}
}

// bearerToken extrae el token del header; si no hay token devuelve el código de error.
func bearerToken(header string) (token, code, msg string) {
	if header == "" {
		return "", "MISSING_TOKEN", "Authorization header requerido"
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "INVALID_TOKEN", "formato: Bearer <token>"
	}
	if token = strings.TrimSpace(rest); token == "" {
		return "", "MISSING_TOKEN", "token vacío"
	}
	return token, "", ""
}

func setSession(c *fiber.Ctx, jwtSecret, raw string) bool {
	claims, err := jwt.ParseClaims(jwtSecret, raw)
	if err != nil {
		return false
	}
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalCompanyID, claims.CompanyID)
	c.Locals(LocalRole, claims.Role)
	return true
}

// RequireRole deja pasar solo a los roles indicados. Va después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return deny(c, fiber.StatusUnauthorized, "MISSING_ROLE", "el token no incluye rol")
		}
		if _, ok := allowed[role]; !ok {
			return deny(c, fiber.StatusForbidden, "FORBIDDEN", "rol sin permiso para este recurso")
		}
		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) string    { return localString(c, LocalUserID) }
func GetCompanyID(c *fiber.Ctx) string { return localString(c, LocalCompanyID) }
func GetRole(c *fiber.Ctx) string      { return localString(c, LocalRole) }

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

func deny(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
