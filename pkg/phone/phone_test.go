package phone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/pkg/phone"
)

func TestNormalize(t *testing.T) {
	got, err := phone.Normalize("(11) 98765-4321", "BR")
	require.NoError(t, err)
	assert.Equal(t, "+5511987654321", got)

	got, err = phone.Normalize("+55 21 98888-7777", "co")
	require.NoError(t, err)
	assert.Equal(t, "+5521988887777", got)

	got, err = phone.Normalize("  ", "BR")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = phone.Normalize("123", "BR")
	assert.ErrorIs(t, err, phone.ErrInvalid)
}
