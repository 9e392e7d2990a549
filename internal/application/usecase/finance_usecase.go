package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// FinanceUseCase registros financieros manuales (ingresos y gastos) de la cuenta.
// Los registros generados por una venta no se pueden editar ni borrar.
type FinanceUseCase struct {
	repo      repository.FinancialRecordRepository
	customers repository.CustomerRepository
	cache     SnapshotInvalidator
	now       func() time.Time
}

// NewFinanceUseCase construye el caso de uso.
func NewFinanceUseCase(repo repository.FinancialRecordRepository, customers repository.CustomerRepository, cache SnapshotInvalidator) *FinanceUseCase {
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &FinanceUseCase{repo: repo, customers: customers, cache: cache, now: time.Now}
}

// Create registra un ingreso o gasto. Sin estado explícito queda pendiente.
func (uc *FinanceUseCase) Create(ctx context.Context, companyID string, in dto.CreateFinancialRecordRequest) (*dto.FinancialRecordResponse, error) {
	if in.Type != entity.RecordIncome && in.Type != entity.RecordExpense {
		return nil, domain.ErrInvalidInput
	}
	if !in.Amount.IsPositive() || strings.TrimSpace(in.Category) == "" {
		return nil, domain.ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = entity.PaymentStatusPending
	}
	if !entity.ValidPaymentStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	if in.CustomerID != nil {
		c, err := uc.customers.GetByID(ctx, companyID, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.ErrInvalidReference
		}
	}

	now := uc.now()
	rec := &entity.FinancialRecord{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount.Round(2),
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
		CustomerID:  in.CustomerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == entity.PaymentStatusPaid {
		rec.PaidAt = &now
	}
	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(companyID)
	return dto.NewFinancialRecordResponse(rec), nil
}

// GetByID devuelve el registro o (nil, nil) si no existe.
func (uc *FinanceUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.FinancialRecordResponse, error) {
	rec, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return dto.NewFinancialRecordResponse(rec), nil
}

// List lista los registros, promoviendo antes los pendientes vencidos.
func (uc *FinanceUseCase) List(ctx context.Context, companyID string, f repository.FinancialRecordFilter) ([]dto.FinancialRecordResponse, error) {
	if _, err := uc.RefreshOverdue(ctx, companyID); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FinancialRecordResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *dto.NewFinancialRecordResponse(r))
	}
	return out, nil
}

// Update aplica los campos presentes de un registro manual.
func (uc *FinanceUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateFinancialRecordRequest) (*dto.FinancialRecordResponse, error) {
	rec, err := uc.editable(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			return nil, domain.ErrInvalidInput
		}
		rec.Category = strings.TrimSpace(*in.Category)
	}
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		rec.Amount = in.Amount.Round(2)
	}
	if in.Description != nil {
		rec.Description = *in.Description
	}
	if in.DueDate != nil {
		rec.DueDate = in.DueDate
	}
	now := uc.now()
	if in.Status != nil {
		if !entity.ValidPaymentStatus(*in.Status) {
			return nil, domain.ErrInvalidInput
		}
		setStatus(rec, *in.Status, now)
	}
	rec.UpdatedAt = now
	if err := uc.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(companyID)
	return dto.NewFinancialRecordResponse(rec), nil
}

// MarkPaid marca el registro como pagado (también los de venta). Idempotente.
func (uc *FinanceUseCase) MarkPaid(ctx context.Context, companyID, id string) (*dto.FinancialRecordResponse, error) {
	rec, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if rec.Status == entity.PaymentStatusPaid {
		return dto.NewFinancialRecordResponse(rec), nil
	}
	now := uc.now()
	setStatus(rec, entity.PaymentStatusPaid, now)
	rec.UpdatedAt = now
	if err := uc.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(companyID)
	return dto.NewFinancialRecordResponse(rec), nil
}

// Delete elimina un registro manual.
func (uc *FinanceUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.editable(ctx, companyID, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	uc.cache.Invalidate(companyID)
	return nil
}

// RefreshOverdue pasa a overdue los pendientes con vencimiento pasado.
func (uc *FinanceUseCase) RefreshOverdue(ctx context.Context, companyID string) (int, error) {
	n, err := uc.repo.MarkOverdue(ctx, companyID, uc.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.cache.Invalidate(companyID)
	}
	return n, nil
}

func (uc *FinanceUseCase) editable(ctx context.Context, companyID, id string) (*entity.FinancialRecord, error) {
	rec, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if rec.SaleID != nil {
		return nil, domain.ErrConflict
	}
	return rec, nil
}

func setStatus(rec *entity.FinancialRecord, status string, now time.Time) {
	rec.Status = status
	if status == entity.PaymentStatusPaid {
		if rec.PaidAt == nil {
			rec.PaidAt = &now
		}
		return
	}
	rec.PaidAt = nil
}
