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

// VariationUseCase CRUD de variaciones. Toda mutación recalcula el agregado del producto padre
// en la misma transacción.
type VariationUseCase struct {
	tx         TxRunner
	products   repository.ProductRepository
	variations repository.VariationRepository
	images     ImageStore
	generator  *insights.Generator
	cache      SnapshotInvalidator
	log        zerolog.Logger
}

// NewVariationUseCase construye el caso de uso.
func NewVariationUseCase(
	tx TxRunner,
	products repository.ProductRepository,
	variations repository.VariationRepository,
	images ImageStore,
	generator *insights.Generator,
	cache SnapshotInvalidator,
	log zerolog.Logger,
) *VariationUseCase {
	if cache == nil {
		cache = nopInvalidator{}
	}
	return &VariationUseCase{
		tx:         tx,
		products:   products,
		variations: variations,
		images:     images,
		generator:  generator,
		cache:      cache,
		log:        log,
	}
}

// List devuelve las variaciones de un producto.
func (uc *VariationUseCase) List(ctx context.Context, companyID, productID string) ([]dto.VariationResponse, error) {
	parent, err := uc.products.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.variations.ListByProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VariationResponse, 0, len(list))
	for _, v := range list {
		out = append(out, *dto.NewVariationResponse(v))
	}
	return out, nil
}

// Create agrega una variación al producto y recalcula el padre.
func (uc *VariationUseCase) Create(ctx context.Context, companyID, productID string, in dto.CreateVariationRequest, img *dto.ImageUpload) (*dto.VariationResponse, error) {
	if in.Price.IsNegative() || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	v := &entity.ProductVariation{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ProductID: productID,
		Name:      strings.TrimSpace(in.Name),
		SKU:       strings.TrimSpace(in.SKU),
		Price:     in.Price,
		Stock:     in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if img != nil {
		url, err := uploadImage(ctx, uc.images, companyID, "variations/"+v.ID, img)
		if err != nil {
			return nil, err
		}
		v.ImageURL = url
	}
	err := uc.tx.Run(ctx, func(products repository.ProductRepository, variations repository.VariationRepository) error {
		parent, err := products.GetByIDForUpdate(ctx, companyID, productID)
		if err != nil {
			return err
		}
		if parent == nil {
			return domain.ErrNotFound
		}
		if err := variations.Create(ctx, v); err != nil {
			return err
		}
		return resyncParent(ctx, products, variations, companyID, productID)
	})
	if err != nil {
		dropImage(ctx, uc.images, uc.log, v.ImageURL)
		return nil, err
	}
	uc.cache.Invalidate(companyID)
	return dto.NewVariationResponse(v), nil
}

// Update modifica una variación. Un cambio de stock pasa por el generador de insights
// igual que una edición manual.
func (uc *VariationUseCase) Update(ctx context.Context, companyID, productID, id string, in dto.UpdateVariationRequest, img *dto.ImageUpload) (*dto.VariationResponse, error) {
	if in.Price != nil && in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	newImage := ""
	if img != nil {
		url, err := uploadImage(ctx, uc.images, companyID, "variations/"+id, img)
		if err != nil {
			return nil, err
		}
		newImage = url
	}

	var (
		v          *entity.ProductVariation
		oldImage   string
		stockMoved bool
		parentName string
	)
	err := uc.tx.Run(ctx, func(products repository.ProductRepository, variations repository.VariationRepository) error {
		var err error
		v, err = variations.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if v == nil || v.ProductID != productID {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			v.Name = strings.TrimSpace(*in.Name)
		}
		if in.SKU != nil {
			v.SKU = strings.TrimSpace(*in.SKU)
		}
		if in.Price != nil {
			v.Price = *in.Price
		}
		if newImage != "" {
			oldImage, v.ImageURL = v.ImageURL, newImage
		}
		v.UpdatedAt = time.Now()
		if err := variations.Update(ctx, v); err != nil {
			return err
		}
		if in.Stock != nil && *in.Stock != v.Stock {
			if *in.Stock < 0 {
				return domain.ErrInvalidInput
			}
			if err := variations.UpdateStock(ctx, companyID, id, *in.Stock); err != nil {
				return err
			}
			v.Stock = *in.Stock
			stockMoved = true
		}
		if parent, err := products.GetByID(ctx, companyID, productID); err == nil && parent != nil {
			parentName = parent.Name
		}
		return resyncParent(ctx, products, variations, companyID, productID)
	})
	if err != nil {
		dropImage(ctx, uc.images, uc.log, newImage)
		return nil, err
	}
	dropImage(ctx, uc.images, uc.log, oldImage)
	uc.cache.Invalidate(companyID)

	if stockMoved && uc.generator != nil {
		ref := entity.ItemRef{Kind: entity.RefVariation, ID: v.ID}
		if _, err := uc.generator.OnStockChanged(ctx, companyID, ref, variationLabel(parentName, v.Name), v.Stock, entity.VariationLowStockThreshold); err != nil {
			uc.log.Warn().Err(err).Str("variation_id", v.ID).Msg("insights de stock no actualizados")
		}
	}
	return dto.NewVariationResponse(v), nil
}

// Delete elimina una variación y recalcula el padre.
func (uc *VariationUseCase) Delete(ctx context.Context, companyID, productID, id string) error {
	var imageURL string
	err := uc.tx.Run(ctx, func(products repository.ProductRepository, variations repository.VariationRepository) error {
		v, err := variations.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if v == nil || v.ProductID != productID {
			return domain.ErrNotFound
		}
		imageURL = v.ImageURL
		if err := variations.Delete(ctx, companyID, id); err != nil {
			return err
		}
		return resyncParent(ctx, products, variations, companyID, productID)
	})
	if err != nil {
		return err
	}
	dropImage(ctx, uc.images, uc.log, imageURL)
	uc.cache.Invalidate(companyID)
	return nil
}

// variationLabel nombre mostrado de una variación ("Producto - Variación").
func variationLabel(product, variation string) string {
	if product == "" {
		return variation
	}
	return product + " - " + variation
}
