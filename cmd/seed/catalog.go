package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const catalogColumns = 7

type catalogRow struct {
	SKU      string
	Name     string
	Category string
	Price    decimal.Decimal
	Cost     decimal.Decimal
	Stock    int
	MinStock int
}

// readCatalog decodifica el CSV; la primera fila es cabecera.
func readCatalog(r io.Reader, encoding string) ([]catalogRow, error) {
	switch strings.ToLower(encoding) {
	case "utf8", "utf-8", "":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("encoding desconocido %q", encoding)
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(256)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cr := csv.NewReader(br)
	if first, _, _ := strings.Cut(string(head), "\n"); strings.Count(first, ";") > strings.Count(first, ",") {
		cr.Comma = ';'
	}
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("catálogo vacío")
	}

	seen := make(map[string]int, len(records))
	out := make([]catalogRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < catalogColumns {
			return nil, fmt.Errorf("línea %d: se esperaban %d columnas", line, catalogColumns)
		}
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if prev, ok := seen[row.SKU]; ok {
			return nil, fmt.Errorf("línea %d: sku %q repetido (línea %d)", line, row.SKU, prev)
		}
		seen[row.SKU] = line
		out = append(out, row)
	}
	return out, nil
}

func parseRow(rec []string) (catalogRow, error) {
	row := catalogRow{
		SKU:      strings.TrimSpace(rec[0]),
		Name:     strings.TrimSpace(rec[1]),
		Category: strings.TrimSpace(rec[2]),
	}
	if row.SKU == "" || row.Name == "" {
		return row, errors.New("sku y nombre son obligatorios")
	}
	var err error
	if row.Price, err = parseMoney(rec[3]); err != nil {
		return row, fmt.Errorf("precio: %w", err)
	}
	if row.Cost, err = parseMoney(rec[4]); err != nil {
		return row, fmt.Errorf("costo: %w", err)
	}
	if row.Stock, err = parseQty(rec[5]); err != nil {
		return row, fmt.Errorf("stock: %w", err)
	}
	if row.MinStock, err = parseQty(rec[6]); err != nil {
		return row, fmt.Errorf("stock mínimo: %w", err)
	}
	return row, nil
}

// parseMoney acepta "1.234,56", "1234,56" y "1234.56".
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negativo")
	}
	return d, nil
}

func parseQty(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negativo")
	}
	return n, nil
}

// writeSQL emite un INSERT por producto, idempotente por (company_id, sku).
func writeSQL(w io.Writer, companyID string, rows []catalogRow) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Catálogo inicial de la cuenta %s (%d productos)\n", companyID, len(rows))
	bw.WriteString("BEGIN;\n")
	for _, r := range rows {
		fmt.Fprintf(bw,
			"INSERT INTO products (id, company_id, sku, name, category, price, cost, stock, min_stock)\n"+
				"VALUES ('%s', '%s', '%s', '%s', '%s', %s, %s, %d, %d)\n"+
				"ON CONFLICT (company_id, sku) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,\n"+
				"  price = EXCLUDED.price, min_stock = EXCLUDED.min_stock, updated_at = NOW();\n",
			uuid.New().String(), companyID, escapeSQL(r.SKU), escapeSQL(r.Name), escapeSQL(r.Category),
			r.Price.StringFixed(2), r.Cost.StringFixed(4), r.Stock, r.MinStock)
	}
	bw.WriteString("COMMIT;\n")
	return bw.Flush()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
