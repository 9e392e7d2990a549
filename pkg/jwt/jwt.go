// Package jwt emite y valida los tokens de sesión (HS256) de la API.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// leeway tolera desfases de reloj entre instancias.
const leeway = 30 * time.Second

var errEmptySecret = errors.New("jwt: secret vacío")

// Claims son los claims de sesión: cuenta, usuario y rol viajan en el token
// para que los middlewares no consulten la base en cada request.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"` // admin | manager | vendedor
}

// Validate se ejecuta tras la validación estándar (exp, iat).
func (c Claims) Validate() error {
	if c.UserID == "" || c.CompanyID == "" {
		return errors.New("jwt: token sin usuario o cuenta")
	}
	return nil
}

// Generate firma un token de sesión válido por expMinutes.
func Generate(secret, userID, companyID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseClaims valida firma, expiración y opciones adicionales (ej. jwt.WithIssuer).
func ParseClaims(secret, tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	opts = append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	}, opts...)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("jwt: token inválido")
	}
	return claims, nil
}

// Parse es ParseClaims sin opciones, desarmado en sus campos.
func Parse(secret, tokenString string) (userID, companyID, role string, err error) {
	c, err := ParseClaims(secret, tokenString)
	if err != nil {
		return "", "", "", err
	}
	return c.UserID, c.CompanyID, c.Role, nil
}
