package usecase_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/usecase"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/memory"
)

const webhookSecret = "whsec_test"

func signed(t *testing.T, ev dto.BillingWebhookEvent) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return body, "sha256=" + hex.EncodeToString(usecase.Sign([]byte(webhookSecret), body))
}

func newSubscriptions(t *testing.T) *usecase.SubscriptionUseCase {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Companies().Create(context.Background(), &entity.Company{ID: companyID, Name: "Loja"}))
	return usecase.NewSubscriptionUseCase(store.Subscriptions(), store.Companies(), webhookSecret, 14)
}

func TestSubscription_TrialIsActive(t *testing.T) {
	uc := newSubscriptions(t)
	ctx := context.Background()

	active, err := uc.IsActive(ctx, companyID)
	require.NoError(t, err)
	assert.False(t, active, "sin suscripción la cuenta no opera")

	sub, err := uc.StartTrial(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionTrialing, sub.Status)

	active, err = uc.IsActive(ctx, companyID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestSubscription_WebhookLifecycle(t *testing.T) {
	uc := newSubscriptions(t)
	ctx := context.Background()
	end := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)

	body, sig := signed(t, dto.BillingWebhookEvent{
		ID: "evt_1", Type: usecase.EventSubscriptionActivated, CompanyID: companyID,
		Plan: "pro", ProviderRef: "sub_123", CurrentPeriodEnd: end,
	})
	got, err := uc.HandleWebhook(ctx, body, sig)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, "pro", got.Plan)
	assert.True(t, end.Equal(got.CurrentPeriodEnd))

	// Un evento atrasado no acorta el período.
	body, sig = signed(t, dto.BillingWebhookEvent{
		ID: "evt_0", Type: usecase.EventSubscriptionRenewed, CompanyID: companyID, CurrentPeriodEnd: end.Add(-24 * time.Hour),
	})
	got, err = uc.HandleWebhook(ctx, body, sig)
	require.NoError(t, err)
	assert.True(t, end.Equal(got.CurrentPeriodEnd))

	body, sig = signed(t, dto.BillingWebhookEvent{ID: "evt_2", Type: usecase.EventSubscriptionCanceled, CompanyID: companyID})
	got, err = uc.HandleWebhook(ctx, body, sig)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, entity.SubscriptionCanceled, got.Status)
}

func TestSubscription_WebhookRejectsBadInput(t *testing.T) {
	uc := newSubscriptions(t)
	ctx := context.Background()

	body, _ := signed(t, dto.BillingWebhookEvent{Type: usecase.EventSubscriptionCanceled, CompanyID: companyID})
	_, err := uc.HandleWebhook(ctx, body, "sha256=00ff")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = uc.HandleWebhook(ctx, body, "not-hex")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	body, sig := signed(t, dto.BillingWebhookEvent{Type: "subscription.paused", CompanyID: companyID})
	_, err = uc.HandleWebhook(ctx, body, sig)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	body, sig = signed(t, dto.BillingWebhookEvent{Type: usecase.EventSubscriptionActivated, CompanyID: companyID})
	_, err = uc.HandleWebhook(ctx, body, sig)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "activación sin fin de período")
}
