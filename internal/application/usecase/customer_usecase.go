package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
	"github.com/jhoicas/negocio-erp/pkg/phone"
)

// SnapshotInvalidator descarta la foto cacheada de la cuenta tras una mutación.
type SnapshotInvalidator interface {
	Invalidate(companyID string)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(string) {}

// CustomerUseCase casos de uso para clientes. TotalPurchases solo lo modifica el flujo de venta.
type CustomerUseCase struct {
	repo   repository.CustomerRepository
	region string
	cache  SnapshotInvalidator
}

// NewCustomerUseCase construye el caso de uso. region es la región por defecto de los teléfonos (ej. "BR").
func NewCustomerUseCase(repo repository.CustomerRepository, region string, cache SnapshotInvalidator) *CustomerUseCase {
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &CustomerUseCase{repo: repo, region: region, cache: cache}
}

// Create crea un nuevo cliente con el teléfono normalizado a E.164.
func (uc *CustomerUseCase) Create(ctx context.Context, companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	tel, err := uc.normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		TaxID:     strings.TrimSpace(in.TaxID),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     tel,
		Address:   in.Address,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(companyID)
	return dto.NewCustomerResponse(customer), nil
}

// GetByID obtiene un cliente; (nil, nil) si no existe.
func (uc *CustomerUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCustomerResponse(c), nil
}

// Update aplica los campos presentes; (nil, nil) si no existe.
func (uc *CustomerUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		c.Name = name
	}
	if in.TaxID != nil {
		c.TaxID = strings.TrimSpace(*in.TaxID)
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		if c.Phone, err = uc.normalizePhone(*in.Phone); err != nil {
			return nil, err
		}
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.cache.Invalidate(companyID)
	return dto.NewCustomerResponse(c), nil
}

// Delete elimina el cliente. Las ventas conservan su customer_id.
func (uc *CustomerUseCase) Delete(ctx context.Context, companyID, id string) error {
	c, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	uc.cache.Invalidate(companyID)
	return nil
}

// List lista clientes de la empresa; search filtra por nombre, email o documento.
func (uc *CustomerUseCase) List(ctx context.Context, companyID, search string) ([]dto.CustomerResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *dto.NewCustomerResponse(c))
	}
	return out, nil
}

func (uc *CustomerUseCase) normalizePhone(raw string) (string, error) {
	tel, err := phone.Normalize(raw, uc.region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return tel, nil
}
