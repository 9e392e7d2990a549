package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
	"github.com/jhoicas/negocio-erp/pkg/validator"
)

// Eventos del proveedor de pagos.
const (
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionRenewed   = "subscription.renewed"
	EventSubscriptionCanceled  = "subscription.canceled"
	EventSubscriptionPastDue   = "subscription.past_due"

	PlanTrial = "trial"
)

// SubscriptionUseCase estado de la suscripción de cada cuenta. Es el único punto de la
// aplicación que decide si una cuenta puede operar.
type SubscriptionUseCase struct {
	repo      repository.SubscriptionRepository
	companies repository.CompanyRepository
	secret    []byte
	trialDays int
	now       func() time.Time
}

// NewSubscriptionUseCase construye el caso de uso. secret firma los webhooks (HMAC-SHA256).
func NewSubscriptionUseCase(repo repository.SubscriptionRepository, companies repository.CompanyRepository, secret string, trialDays int) *SubscriptionUseCase {
	if trialDays <= 0 {
		trialDays = 14
	}
	return &SubscriptionUseCase{repo: repo, companies: companies, secret: []byte(secret), trialDays: trialDays, now: time.Now}
}

// StartTrial abre el período de prueba de una cuenta nueva.
func (uc *SubscriptionUseCase) StartTrial(ctx context.Context, companyID string) (*entity.Subscription, error) {
	now := uc.now()
	sub := &entity.Subscription{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		Plan:             PlanTrial,
		Status:           entity.SubscriptionTrialing,
		CurrentPeriodEnd: now.AddDate(0, 0, uc.trialDays),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Get devuelve el estado de la suscripción; sin registro la cuenta figura inactiva.
func (uc *SubscriptionUseCase) Get(ctx context.Context, companyID string) (*dto.SubscriptionResponse, error) {
	sub, err := uc.repo.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.SubscriptionResponse{Status: "none"}, nil
	}
	return &dto.SubscriptionResponse{
		Plan:             sub.Plan,
		Status:           sub.Status,
		Active:           sub.IsActive(uc.now()),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}, nil
}

// IsActive informa si la cuenta puede operar.
// Devuelve error solo ante fallos de infraestructura.
func (uc *SubscriptionUseCase) IsActive(ctx context.Context, companyID string) (bool, error) {
	if companyID == "" {
		return false, fmt.Errorf("subscription: companyID es obligatorio")
	}
	sub, err := uc.repo.GetByCompany(ctx, companyID)
	if err != nil {
		return false, err
	}
	return sub != nil && sub.IsActive(uc.now()), nil
}

// VerifySignature valida la firma hex (opcionalmente con prefijo "sha256=") del cuerpo crudo.
func (uc *SubscriptionUseCase) VerifySignature(body []byte, signature string) error {
	if len(uc.secret) == 0 {
		return fmt.Errorf("%w: secreto de webhook no configurado", domain.ErrInvalidSignature)
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil {
		return domain.ErrInvalidSignature
	}
	if !hmac.Equal(got, Sign(uc.secret, body)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Sign calcula HMAC-SHA256(secret, body).
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

// HandleWebhook verifica la firma y aplica el evento a la suscripción de la cuenta.
func (uc *SubscriptionUseCase) HandleWebhook(ctx context.Context, body []byte, signature string) (*dto.SubscriptionResponse, error) {
	if err := uc.VerifySignature(body, signature); err != nil {
		return nil, err
	}
	var ev dto.BillingWebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: evento mal formado", domain.ErrInvalidInput)
	}
	if errs := validator.ValidateStruct(ev); errs != nil {
		return nil, fmt.Errorf("%w: evento %s", domain.ErrInvalidInput, errs[0].FailedField)
	}
	company, err := uc.companies.GetByID(ctx, ev.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	sub, err := uc.repo.GetByCompany(ctx, ev.CompanyID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &entity.Subscription{ID: uuid.New().String(), CompanyID: ev.CompanyID, Plan: PlanTrial, CreatedAt: now}
	}

	switch ev.Type {
	case EventSubscriptionActivated, EventSubscriptionRenewed:
		if ev.CurrentPeriodEnd.IsZero() {
			return nil, fmt.Errorf("%w: current_period_end es obligatorio", domain.ErrInvalidInput)
		}
		sub.Status = entity.SubscriptionActive
		// Un evento atrasado no acorta el período ya pagado.
		if ev.CurrentPeriodEnd.After(sub.CurrentPeriodEnd) {
			sub.CurrentPeriodEnd = ev.CurrentPeriodEnd
		}
		if ev.Plan != "" {
			sub.Plan = ev.Plan
		}
	case EventSubscriptionCanceled:
		sub.Status = entity.SubscriptionCanceled
	case EventSubscriptionPastDue:
		sub.Status = entity.SubscriptionPastDue
	}
	if ev.ProviderRef != "" {
		sub.ProviderRef = ev.ProviderRef
	}
	sub.UpdatedAt = now
	if err := uc.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{
		Plan:             sub.Plan,
		Status:           sub.Status,
		Active:           sub.IsActive(now),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}, nil
}
