// Package phone normaliza teléfonos a formato E.164.
package phone

import (
	"errors"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// ErrInvalid número que no corresponde a un teléfono válido de la región.
var ErrInvalid = errors.New("teléfono inválido")

// Normalize interpreta raw con la región por defecto (ej. "BR") y devuelve el número en E.164.
// Un valor vacío se devuelve vacío.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	p, err := libphonenumber.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", ErrInvalid
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", ErrInvalid
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}
