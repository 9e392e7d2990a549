package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/application/usecase"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

// FinanceHandler maneja ingresos y gastos.
type FinanceHandler struct {
	uc *usecase.FinanceUseCase
}

// NewFinanceHandler construye el handler.
func NewFinanceHandler(uc *usecase.FinanceUseCase) *FinanceHandler {
	return &FinanceHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar ingreso o gasto
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateFinancialRecordRequest  true  "Registro"
// @Success      201   {object}  dto.FinancialRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/finance [post]
func (h *FinanceHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateFinancialRecordRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar registros financieros
// @Description  Antes de listar, los pendientes con vencimiento pasado pasan a overdue.
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        type     query  string  false  "income | expense"
// @Param        status   query  string  false  "pending | paid | overdue"
// @Param        sale_id  query  string  false  "Registros de una venta"
// @Success      200      {array}  dto.FinancialRecordResponse
// @Router       /api/finance [get]
func (h *FinanceHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.List(c.UserContext(), companyID, repository.FinancialRecordFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		SaleID: c.Query("sale_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener registro financiero
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.FinancialRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/finance/{id} [get]
func (h *FinanceHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetByID(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "registro")
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar registro financiero
// @Description  Los registros generados por una venta no se editan (409).
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del registro"
// @Param        body  body  dto.UpdateFinancialRecordRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.FinancialRecordResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/finance/{id} [put]
func (h *FinanceHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateFinancialRecordRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), companyID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkPaid godoc
// @Summary      Marcar como pagado
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del registro"
// @Success      200  {object}  dto.FinancialRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/finance/{id}/pay [patch]
func (h *FinanceHandler) MarkPaid(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.MarkPaid(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar registro financiero
// @Tags         finance
// @Security     Bearer
// @Param        id   path  string  true  "ID del registro"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/finance/{id} [delete]
func (h *FinanceHandler) Delete(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.UserContext(), companyID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
