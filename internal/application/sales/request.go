package sales

import (
	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
)

// RequestFromDTO traduce el cuerpo HTTP a una SaleRequest. Por línea manda ref; si no
// viene, variation_id y por último product_id (que puede ser un id compuesto heredado).
func RequestFromDTO(in dto.CreateSaleRequest, userID string) SaleRequest {
	req := SaleRequest{
		CustomerID:    in.CustomerID,
		Discount:      in.Discount,
		Tax:           in.Tax,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: in.PaymentStatus,
		DueDate:       in.DueDate,
		TotalCost:     in.TotalCost,
		Notes:         in.Notes,
		UserID:        userID,
		Items:         make([]LineItem, 0, len(in.Items)),
	}
	if req.CustomerID != nil && *req.CustomerID == "" {
		req.CustomerID = nil
	}
	for _, it := range in.Items {
		line := LineItem{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		switch {
		case it.Ref != nil:
			ref := *it.Ref
			line.Ref = &ref
		case it.VariationID != "":
			line.Ref = &entity.ItemRef{Kind: entity.RefVariation, ID: it.VariationID}
		default:
			line.ProductID = it.ProductID
		}
		req.Items = append(req.Items, line)
	}
	return req
}
