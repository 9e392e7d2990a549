package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/negocio-erp/internal/application/analytics"
)

// DashboardHandler maneja los endpoints de métricas y reportes.
type DashboardHandler struct {
	uc      *appanalytics.DashboardUseCase
	reports *appanalytics.ReportUseCase
	margins *appanalytics.MarginsUseCase
	now     func() time.Time
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, reports *appanalytics.ReportUseCase, margins *appanalytics.MarginsUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc, reports: reports, margins: margins, now: time.Now}
}

// GetMetrics godoc
// @Summary      Métricas del dashboard
// @Description  Ingresos, ventas, ticket medio, gastos y cuentas por cobrar del período, comparados
// @Description  con el período anterior de igual duración.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        period  query  int  false  "Días del período"  default(30)
// @Success      200     {object}  dto.DashboardMetrics
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetMetrics(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetMetrics(c.UserContext(), companyID, c.QueryInt("period", appanalytics.DefaultPeriodDays))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SalesXLSX godoc
// @Summary      Exportar ventas a Excel
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Success      200   {file}  binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/sales.xlsx [get]
func (h *DashboardHandler) SalesXLSX(c *fiber.Ctx) error {
	return h.export(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", h.reports.ExportXLSX)
}

// SalesPDF godoc
// @Summary      Exportar ventas a PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Success      200   {file}  binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/sales.pdf [get]
func (h *DashboardHandler) SalesPDF(c *fiber.Ctx) error {
	return h.export(c, "application/pdf", h.reports.ExportPDF)
}

// Margins godoc
// @Summary      Ranking de márgenes por producto (Pareto 80/20)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from   query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to     query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        limit  query  int     false  "Máximo de productos en el ranking"
// @Success      200    {object}  dto.MarginsReportDTO
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/reports/margins [get]
func (h *DashboardHandler) Margins(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	from, to, err := appanalytics.ParsePeriod(c.Query("from"), c.Query("to"), h.now())
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.margins.GetMarginsReport(c.UserContext(), companyID, from, to, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

type exportFunc func(ctx context.Context, companyID string, from, to time.Time) ([]byte, string, error)

func (h *DashboardHandler) export(c *fiber.Ctx, contentType string, fn exportFunc) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	from, to, err := appanalytics.ParsePeriod(c.Query("from"), c.Query("to"), h.now())
	if err != nil {
		return respondError(c, err)
	}
	data, filename, err := fn(c.UserContext(), companyID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return sendFile(c, contentType, filename, data)
}
