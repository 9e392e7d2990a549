package entity

import (
	"strings"
	"time"
)

// Company representa la cuenta (tenant) dueña de todas las entidades del sistema.
type Company struct {
	ID        string
	Name      string
	TaxID     string // CNPJ/CPF/NIT según el país
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Estados de Company.
const (
	CompanyStatusActive    = "active"
	CompanyStatusSuspended = "suspended"
	CompanyStatusInactive  = "inactive"
)

// InvoicePrefix devuelve el prefijo de cuenta usado en los números de factura
// (primeros 8 caracteres del ID, en mayúsculas).
func InvoicePrefix(companyID string) string {
	p := companyID
	if len(p) > 8 {
		p = p[:8]
	}
	return strings.ToUpper(p)
}
