package entity

import "time"

// Estados de suscripción.
const (
	SubscriptionTrialing = "trialing"
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// Subscription es el plan contratado por la cuenta; lo actualiza el webhook del proveedor de pagos.
type Subscription struct {
	ID               string
	CompanyID        string
	Plan             string
	Status           string
	ProviderRef      string // id de la suscripción en el proveedor
	CurrentPeriodEnd time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsActive indica si la suscripción permite operar en now.
func (s *Subscription) IsActive(now time.Time) bool {
	switch s.Status {
	case SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue:
		// past_due conserva acceso hasta el fin del ciclo pagado.
		return now.Before(s.CurrentPeriodEnd)
	}
	return false
}
