package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/insights"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Cost y Stock se manejan vía reposiciones.
type ProductUseCase struct {
	tx         TxRunner
	repo       repository.ProductRepository
	variations repository.VariationRepository
	images     ImageStore
	generator  *insights.Generator
	cache      SnapshotInvalidator
	log        zerolog.Logger
}

// NewProductUseCase construye el caso de uso. images y cache pueden ser nil.
func NewProductUseCase(
	tx TxRunner,
	repo repository.ProductRepository,
	variations repository.VariationRepository,
	images ImageStore,
	generator *insights.Generator,
	cache SnapshotInvalidator,
	log zerolog.Logger,
) *ProductUseCase {
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &ProductUseCase{
		tx:         tx,
		repo:       repo,
		variations: variations,
		images:     images,
		generator:  generator,
		cache:      cache,
		log:        log,
	}
}

// Create crea un nuevo producto. La imagen se sube antes de escribir la entidad:
// si falla, no se crea nada y se devuelve ErrImageUpload.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest, img *dto.ImageUpload) (*dto.ProductResponse, error) {
	if in.Price.IsNegative() || in.Cost.IsNegative() || in.Stock < 0 || in.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(ctx, companyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		SKU:         strings.TrimSpace(in.SKU),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Cost:        in.Cost,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if img != nil {
		url, err := uploadImage(ctx, uc.images, companyID, "products/"+product.ID, img)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		dropImage(ctx, uc.images, uc.log, product.ImageURL)
		return nil, err
	}
	uc.cache.Invalidate(companyID)

	if uc.generator != nil {
		if _, err := uc.generator.OnProductCreated(ctx, product); err != nil {
			uc.log.Warn().Err(err).Str("product_id", product.ID).Msg("insight de producto nuevo no creado")
		}
	}
	return dto.NewProductResponse(product), nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return dto.NewProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost ni Stock.
// Con imagen nueva, la anterior se borra tras guardar.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest, img *dto.ImageUpload) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if !product.HasVariations {
			product.Price = *in.Price
		}
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}

	oldImage := ""
	if img != nil {
		url, err := uploadImage(ctx, uc.images, companyID, "products/"+product.ID, img)
		if err != nil {
			return nil, err
		}
		oldImage, product.ImageURL = product.ImageURL, url
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		if img != nil {
			dropImage(ctx, uc.images, uc.log, product.ImageURL)
		}
		return nil, err
	}
	dropImage(ctx, uc.images, uc.log, oldImage)
	uc.cache.Invalidate(companyID)
	return dto.NewProductResponse(product), nil
}

// List lista productos por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	total := len(list)
	items := make([]dto.ProductResponse, 0, limit)
	for i := offset; i < total && len(items) < limit; i++ {
		items = append(items, *dto.NewProductResponse(list[i]))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Delete elimina el producto con sus variaciones y luego sus imágenes.
func (uc *ProductUseCase) Delete(ctx context.Context, companyID, id string) error {
	product, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	vars, err := uc.variations.ListByProduct(ctx, companyID, id)
	if err != nil {
		return err
	}
	err = uc.tx.Run(ctx, func(products repository.ProductRepository, variations repository.VariationRepository) error {
		if err := variations.DeleteByProduct(ctx, companyID, id); err != nil {
			return err
		}
		return products.Delete(ctx, companyID, id)
	})
	if err != nil {
		return err
	}
	uc.cache.Invalidate(companyID)

	dropImage(ctx, uc.images, uc.log, product.ImageURL)
	for _, v := range vars {
		dropImage(ctx, uc.images, uc.log, v.ImageURL)
	}
	return nil
}
