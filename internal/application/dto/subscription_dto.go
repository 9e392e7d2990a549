package dto

import "time"

// SubscriptionResponse estado de la suscripción de la cuenta.
type SubscriptionResponse struct {
	Plan             string    `json:"plan"`
	Status           string    `json:"status"`
	Active           bool      `json:"active"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
}

// BillingWebhookEvent evento del proveedor de pagos (firmado con HMAC en X-Signature).
type BillingWebhookEvent struct {
	ID               string    `json:"id"`
	Type             string    `json:"type" validate:"required,oneof=subscription.activated subscription.renewed subscription.canceled subscription.past_due"`
	CompanyID        string    `json:"company_id" validate:"required,uuid"`
	Plan             string    `json:"plan"`
	ProviderRef      string    `json:"provider_ref"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
}
