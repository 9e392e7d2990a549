package validator_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/pkg/validator"
)

type priced struct {
	Name  string          `validate:"required"`
	Price decimal.Decimal `validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, validator.ValidateStruct(priced{Name: "Camiseta", Price: decimal.RequireFromString("10.5")}))

	errs := validator.ValidateStruct(priced{Price: decimal.RequireFromString("-1")})
	require.Len(t, errs, 2)
	assert.Equal(t, "priced.Name", errs[0].FailedField)
	assert.Equal(t, "required", errs[0].Tag)
	assert.Equal(t, "priced.Price", errs[1].FailedField)
	assert.Equal(t, "gte", errs[1].Tag)
}
