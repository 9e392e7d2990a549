package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
	"github.com/jhoicas/negocio-erp/pkg/phone"
)

// CompanyUseCase perfil de la cuenta (tenant) del usuario autenticado.
type CompanyUseCase struct {
	repo   repository.CompanyRepository
	region string
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, region string) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, region: region}
}

// GetByID obtiene una empresa por ID; (nil, nil) si no existe.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Update aplica los campos presentes al perfil de la cuenta.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		company.Name = name
	}
	if in.TaxID != nil {
		company.TaxID = strings.TrimSpace(*in.TaxID)
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Phone != nil {
		tel, err := phone.Normalize(*in.Phone, uc.region)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		company.Phone = tel
	}
	if in.Email != nil {
		company.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
