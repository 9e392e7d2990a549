package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"max=100"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Cost        decimal.Decimal `json:"cost" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"min=0"`
	MinStock    int             `json:"min_stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost ni Stock).
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	MinStock    *int             `json:"min_stock" validate:"omitempty,min=0"`
}

// ImageUpload imagen adjunta a un create/update (multipart).
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	LowStock      bool            `json:"low_stock"`
	ImageURL      string          `json:"image_url,omitempty"`
	HasVariations bool            `json:"has_variations"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateVariationRequest entrada para crear una variación.
type CreateVariationRequest struct {
	Name  string          `json:"name" validate:"required,min=1,max=120"`
	SKU   string          `json:"sku" validate:"max=100"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Stock int             `json:"stock" validate:"min=0"`
}

// UpdateVariationRequest entrada para actualizar una variación.
type UpdateVariationRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=1,max=120"`
	SKU   *string          `json:"sku" validate:"omitempty,max=100"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock" validate:"omitempty,min=0"`
}

// VariationResponse salida de una variación.
type VariationResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"image_url,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewProductResponse mapea la entidad a la salida HTTP.
func NewProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price,
		Cost:          p.Cost,
		Stock:         p.Stock,
		MinStock:      p.MinStock,
		LowStock:      p.IsLowStock(),
		ImageURL:      p.ImageURL,
		HasVariations: p.HasVariations,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewVariationResponse mapea la entidad a la salida HTTP.
func NewVariationResponse(v *entity.ProductVariation) *VariationResponse {
	if v == nil {
		return nil
	}
	return &VariationResponse{
		ID:        v.ID,
		ProductID: v.ProductID,
		Name:      v.Name,
		SKU:       v.SKU,
		Price:     v.Price,
		Stock:     v.Stock,
		ImageURL:  v.ImageURL,
		UpdatedAt: v.UpdatedAt,
	}
}
