package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/application/usecase"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/memory"
)

type fakeLLM struct {
	reply    string
	err      error
	prompt   string
	deadline time.Duration
}

func (f *fakeLLM) Complete(ctx context.Context, _, prompt string) (string, error) {
	f.prompt = prompt
	if dl, ok := ctx.Deadline(); ok {
		f.deadline = time.Until(dl)
	}
	return f.reply, f.err
}

func newAIUseCase(t *testing.T, llm *fakeLLM) (*usecase.AIUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	loader := snapshot.NewLoader(store.Products(), store.Variations(), store.Customers(), store.Sales(), store.FinancialRecords(), store.Insights())
	gen := insights.NewGenerator(store.Insights(), nil, zerolog.Nop())
	return usecase.NewAIUseCase(llm, snapshot.NewCache(loader), gen, zerolog.Nop()), store
}

func TestAIUseCase_PersistsRecommendations(t *testing.T) {
	llm := &fakeLLM{reply: "Claro:\n```json\n" + `{
  "summary": "Ventas estables",
  "recommendations": [
    {"title": "Reponer Camiseta", "description": "Quedan 2 unidades", "priority": "HIGH"},
    {"title": "Promoción", "description": "Liquidar stock lento", "priority": "urgente"},
    {"title": "  ", "description": "sin título", "priority": "low"}
  ]
}` + "\n```"}
	uc, store := newAIUseCase(t, llm)
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: uuid.NewString(), CompanyID: companyID, SKU: "CAM", Name: "Camiseta",
		Price: decimal.NewFromInt(10), Stock: 2, MinStock: 5,
	}))

	out, err := uc.Advise(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, "Ventas estables", out.Summary)
	require.Len(t, out.Insights, 2)
	assert.Equal(t, entity.PriorityHigh, out.Insights[0].Priority)
	assert.Equal(t, entity.PriorityMedium, out.Insights[1].Priority)
	assert.Equal(t, entity.InsightCategoryAI, out.Insights[0].Category)

	assert.Contains(t, llm.prompt, "Camiseta", "el stock bajo viaja en el prompt")
	assert.Greater(t, llm.deadline, time.Duration(0))
	assert.LessOrEqual(t, llm.deadline, 10*time.Second)

	stored, err := store.Insights().List(ctx, companyID, true)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestAIUseCase_Errors(t *testing.T) {
	uc, _ := newAIUseCase(t, &fakeLLM{err: errors.New("boom")})
	_, err := uc.Advise(context.Background(), companyID)
	assert.Error(t, err)

	uc, _ = newAIUseCase(t, &fakeLLM{reply: "no tengo idea"})
	_, err = uc.Advise(context.Background(), companyID)
	assert.Error(t, err)
}
