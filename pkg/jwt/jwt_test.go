package jwt_test

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/pkg/jwt"
)

const secret = "secreto-de-pruebas-suficientemente-largo"

func TestGenerateParse(t *testing.T) {
	tok, err := jwt.Generate(secret, "u1", "c1", "manager", "negocio-erp", 10)
	require.NoError(t, err)

	c, err := jwt.ParseClaims(secret, tok, gojwt.WithIssuer("negocio-erp"))
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "c1", c.CompanyID)
	assert.Equal(t, "manager", c.Role)
	assert.Equal(t, "u1", c.Subject)

	_, err = jwt.ParseClaims(secret, tok, gojwt.WithIssuer("otro"))
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	_, err := jwt.Generate("", "u1", "c1", "admin", "x", 10)
	assert.Error(t, err)

	noCompany, err := jwt.Generate(secret, "u1", "", "admin", "x", 10)
	require.NoError(t, err)
	_, _, _, err = jwt.Parse(secret, noCompany)
	assert.Error(t, err, "un token sin cuenta no es una sesión válida")

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"user_id": "u1", "company_id": "c1"})
	raw, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, _, _, err = jwt.Parse(secret, raw)
	assert.Error(t, err)

	_, _, _, err = jwt.Parse("", "x.y.z")
	assert.Error(t, err)
}
