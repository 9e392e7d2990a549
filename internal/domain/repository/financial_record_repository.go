package repository

import (
	"context"
	"time"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// FinancialRecordFilter filtros opcionales para listar registros.
type FinancialRecordFilter struct {
	Type   string
	Status string
	SaleID string
}

// FinancialRecordRepository define el puerto de persistencia para FinancialRecord.
type FinancialRecordRepository interface {
	Create(ctx context.Context, r *entity.FinancialRecord) error
	GetByID(ctx context.Context, companyID, id string) (*entity.FinancialRecord, error)
	Update(ctx context.Context, r *entity.FinancialRecord) error
	Delete(ctx context.Context, companyID, id string) error
	List(ctx context.Context, companyID string, f FinancialRecordFilter) ([]*entity.FinancialRecord, error)
	// MarkOverdue pasa a overdue los pendientes con vencimiento anterior a now. Devuelve cuántos cambió.
	MarkOverdue(ctx context.Context, companyID string, now time.Time) (int, error)
}
