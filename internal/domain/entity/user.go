package entity

import "time"

// Roles de la cuenta. admin administra la cuenta y sus usuarios; manager opera
// catálogo, inventario y finanzas; vendedor registra ventas y clientes.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleVendedor = "vendedor"
)

const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User pertenece a una única cuenta (Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si r es uno de los roles de cuenta.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleVendedor:
		return true
	}
	return false
}

// CanLogin es falso para usuarios suspendidos o dados de baja.
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}
