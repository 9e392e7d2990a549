package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RefKind discrimina el tipo de entidad referenciada por una línea.
type RefKind string

const (
	RefProduct   RefKind = "product"
	RefVariation RefKind = "variation"
)

// ItemRef referencia un producto o una variación.
type ItemRef struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s %s", r.Kind, r.ID)
}

// Valid indica si la referencia tiene tipo conocido e ID.
func (r ItemRef) Valid() bool {
	return (r.Kind == RefProduct || r.Kind == RefVariation) && r.ID != ""
}

const uuidLen = 36

// SplitLegacyID separa un identificador compuesto ("<uuid-producto>-<sufijo>") en
// el UUID del producto y el sufijo (vacío si no hay). ok es false si el segmento
// inicial no es un UUID válido.
func SplitLegacyID(raw string) (productID, suffix string, ok bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < uuidLen {
		return "", "", false
	}
	head := raw[:uuidLen]
	if len(raw) > uuidLen && raw[uuidLen] != '-' {
		return "", "", false
	}
	if _, err := uuid.Parse(head); err != nil {
		return "", "", false
	}
	if len(raw) > uuidLen+1 {
		suffix = raw[uuidLen+1:]
	}
	return head, suffix, true
}

// ParseLegacyProductID extrae el UUID inicial de un identificador compuesto.
// Devuelve nil si el segmento no es un UUID válido.
func ParseLegacyProductID(raw string) *string {
	head, _, ok := SplitLegacyID(raw)
	if !ok {
		return nil
	}
	return &head
}
