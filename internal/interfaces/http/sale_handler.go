package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/sales"
	"github.com/jhoicas/negocio-erp/internal/application/snapshot"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// SaleHandler confirma ventas y expone su lectura.
type SaleHandler struct {
	submit *sales.SubmitSaleUseCase
	query  *sales.QueryUseCase
	cache  *snapshot.Cache
	log    zerolog.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(submit *sales.SubmitSaleUseCase, query *sales.QueryUseCase, cache *snapshot.Cache, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{submit: submit, query: query, cache: cache, log: log}
}

// Create godoc
// @Summary      Confirmar venta
// @Description  Valida stock contra el estado vigente de la cuenta, registra la venta y ejecuta los pasos
// @Description  secundarios (líneas, stock, costos, cliente, ingreso, insights). Los pasos secundarios
// @Description  fallidos no revierten la venta y se listan en warnings.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      402   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	// el caso de uso valida contra un snapshot recargado bajo el bloqueo de la cuenta
	out, err := h.submit.SubmitSale(c.UserContext(), nil, companyID, sales.RequestFromDTO(in, GetUserID(c)))
	if err != nil {
		return respondError(c, err)
	}
	if out.Snapshot != nil {
		h.cache.Put(out.Snapshot)
	} else {
		h.cache.Invalidate(companyID)
	}
	if out.Partial != nil {
		h.log.Warn().Err(out.Partial).
			Str("company_id", companyID).
			Str("sale_id", out.Sale.ID).
			Msg("sale committed with failed steps")
	}

	resp := dto.SaleCreatedResponse{
		Sale:     dto.NewSaleResponse(out.Sale, out.Items, out.CustomerName),
		Insights: dto.NewInsightResponses(out.Insights),
		Warnings: out.Warnings(),
	}
	if out.Snapshot != nil {
		resp.Version = out.Snapshot.Version
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  false  "Filtrar por cliente"
// @Param        from         query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Success      200  {array}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	from, to, err := optionalRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: err.Error()})
	}
	out, err := h.query.List(c.UserContext(), companyID, repository.SaleFilter{
		CustomerID: c.Query("customer_id"),
		From:       from,
		To:         to,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.query.Get(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "venta")
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	pdfBytes, filename, err := h.query.Receipt(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, "application/pdf", filename, pdfBytes)
}

// optionalRange lee from/to (YYYY-MM-DD) si vienen; to se toma inclusivo.
func optionalRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, nil, fmt.Errorf("from inválido, formato YYYY-MM-DD")
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, nil, fmt.Errorf("to inválido, formato YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

func sendFile(c *fiber.Ctx, contentType, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
