package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/domain"
	"github.com/jhoicas/negocio-erp/internal/domain/entity"
	"github.com/jhoicas/negocio-erp/internal/domain/repository"
)

const maxReportDays = 366

// ReportRenderer convierte un reporte de ventas en un archivo (xlsx, pdf).
type ReportRenderer interface {
	RenderSalesReport(ctx context.Context, report *dto.SalesReport) ([]byte, error)
}

// ReportUseCase arma el reporte de ventas de un rango y lo exporta.
type ReportUseCase struct {
	sales     repository.SaleRepository
	records   repository.FinancialRecordRepository
	analytics repository.AnalyticsRepository
	companies repository.CompanyRepository
	xlsx      ReportRenderer
	pdf       ReportRenderer
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	sales repository.SaleRepository,
	records repository.FinancialRecordRepository,
	analytics repository.AnalyticsRepository,
	companies repository.CompanyRepository,
	xlsx, pdf ReportRenderer,
) *ReportUseCase {
	return &ReportUseCase{sales: sales, records: records, analytics: analytics, companies: companies, xlsx: xlsx, pdf: pdf}
}

// ParsePeriod interpreta from/to (YYYY-MM-DD); to es inclusivo. Vacíos = últimos 30 días.
func ParsePeriod(fromStr, toStr string, now time.Time) (from, to time.Time, err error) {
	to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	from = to.AddDate(0, 0, -DefaultPeriodDays)
	if fromStr != "" {
		if from, err = time.ParseInLocation(time.DateOnly, fromStr, now.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from debe ser YYYY-MM-DD", domain.ErrInvalidInput)
		}
	}
	if toStr != "" {
		t, err := time.ParseInLocation(time.DateOnly, toStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to debe ser YYYY-MM-DD", domain.ErrInvalidInput)
		}
		to = t.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from debe ser anterior a to", domain.ErrInvalidInput)
	}
	if to.Sub(from) > maxReportDays*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: el rango máximo es de %d días", domain.ErrInvalidInput, maxReportDays)
	}
	return from, to, nil
}

// Build reúne ventas con líneas, registros financieros y márgenes del rango [from, to).
func (uc *ReportUseCase) Build(ctx context.Context, companyID string, from, to time.Time) (*dto.SalesReport, error) {
	var (
		company *entity.Company
		list    []*entity.Sale
		items   []*entity.SaleItem
		records []*entity.FinancialRecord
		margins []repository.SKUMarginResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		company, err = uc.companies.GetByID(gctx, companyID)
		return err
	})
	g.Go(func() (err error) {
		list, err = uc.sales.List(gctx, companyID, repository.SaleFilter{From: &from, To: &to})
		return err
	})
	g.Go(func() (err error) {
		items, err = uc.sales.ListItemsByCompany(gctx, companyID)
		return err
	})
	g.Go(func() (err error) {
		records, err = uc.records.List(gctx, companyID, repository.FinancialRecordFilter{})
		return err
	})
	g.Go(func() (err error) {
		margins, err = uc.analytics.GetSKUMargins(gctx, companyID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reporte: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	report := &dto.SalesReport{
		CompanyName: company.Name,
		From:        from,
		To:          to.AddDate(0, 0, -1),
		Sales:       make([]dto.SaleResponse, 0, len(list)),
		Records:     []dto.FinancialRecordResponse{},
		Margins:     make([]dto.SKUMarginDTO, 0, len(margins)),
	}

	bySale := make(map[string][]*entity.SaleItem)
	for _, it := range items {
		bySale[it.SaleID] = append(bySale[it.SaleID], it)
	}
	for _, s := range list {
		report.Sales = append(report.Sales, dto.NewSaleResponse(s, bySale[s.ID], ""))
		report.Revenue = report.Revenue.Add(s.Total)
	}
	for _, r := range records {
		if r.CreatedAt.Before(from) || !r.CreatedAt.Before(to) {
			continue
		}
		report.Records = append(report.Records, *dto.NewFinancialRecordResponse(r))
		if r.Type == entity.RecordExpense {
			report.Expenses = report.Expenses.Add(r.Amount)
		}
	}
	for _, m := range margins {
		report.Margins = append(report.Margins, dto.SKUMarginDTO{
			ProductID:    m.ProductID,
			SKU:          m.SKU,
			ProductName:  m.ProductName,
			UnitsSold:    m.UnitsSold,
			GrossRevenue: m.GrossRevenue.Round(2),
			TotalCOGS:    m.TotalCOGS.Round(2),
			GrossProfit:  m.GrossProfit.Round(2),
			MarginPct:    pct(m.GrossProfit, m.GrossRevenue),
		})
	}
	report.Revenue = report.Revenue.Round(2)
	report.Expenses = report.Expenses.Round(2)
	return report, nil
}

// ExportXLSX genera el reporte como hoja de cálculo.
func (uc *ReportUseCase) ExportXLSX(ctx context.Context, companyID string, from, to time.Time) ([]byte, string, error) {
	return uc.export(ctx, uc.xlsx, companyID, from, to, "xlsx")
}

// ExportPDF genera el reporte como PDF.
func (uc *ReportUseCase) ExportPDF(ctx context.Context, companyID string, from, to time.Time) ([]byte, string, error) {
	return uc.export(ctx, uc.pdf, companyID, from, to, "pdf")
}

func (uc *ReportUseCase) export(ctx context.Context, r ReportRenderer, companyID string, from, to time.Time, ext string) ([]byte, string, error) {
	report, err := uc.Build(ctx, companyID, from, to)
	if err != nil {
		return nil, "", err
	}
	data, err := r.RenderSalesReport(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("reporte %s: %w", ext, err)
	}
	name := fmt.Sprintf("ventas_%s_%s.%s", report.From.Format("20060102"), report.To.Format("20060102"), ext)
	return data, name, nil
}
