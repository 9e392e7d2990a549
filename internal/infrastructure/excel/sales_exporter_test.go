package excel_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/negocio-erp/internal/application/dto"
	"github.com/jhoicas/negocio-erp/internal/infrastructure/excel"
)

func TestSalesExporter_WritesOneSheetPerCollection(t *testing.T) {
	report := &dto.SalesReport{
		CompanyName: "Loja Teste",
		From:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Sales: []dto.SaleResponse{{
			InvoiceNumber: "INV-ABCDEF12-000001",
			Total:         decimal.RequireFromString("40"),
			PaymentMethod: "cash",
			PaymentStatus: "paid",
			CreatedAt:     time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
			Items: []dto.SaleItemResponse{
				{ProductName: "Camiseta", Quantity: 4, UnitPrice: decimal.RequireFromString("10"), Total: decimal.RequireFromString("40")},
			},
		}},
	}

	data, err := excel.NewSalesExporter().RenderSalesReport(context.Background(), report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ventas", "Lineas", "Finanzas", "Margenes"}, f.GetSheetList())

	inv, err := f.GetCellValue("Ventas", "A2")
	require.NoError(t, err)
	assert.Equal(t, "INV-ABCDEF12-000001", inv)

	name, err := f.GetCellValue("Lineas", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Camiseta", name)

	qty, err := f.GetCellValue("Lineas", "C2")
	require.NoError(t, err)
	assert.Equal(t, "4", qty)
}
