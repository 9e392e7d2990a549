package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCatalog_Latin1Semicolon(t *testing.T) {
	src := "sku;nombre;categoria;precio;costo;stock;stock_minimo\n" +
		"CAF-1;Café Pilão 500g;Mercearia;1.234,50;9,9;12;3\n" +
		"PAO-1;Pão d'água;Padaria;0,75;0,3;;\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(src)
	require.NoError(t, err)

	rows, err := readCatalog(strings.NewReader(latin1), "latin1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Café Pilão 500g", rows[0].Name)
	assert.Equal(t, "1234.5", rows[0].Price.String())
	assert.Equal(t, "9.9", rows[0].Cost.String())
	assert.Equal(t, 12, rows[0].Stock)
	assert.Equal(t, 3, rows[0].MinStock)
	assert.Equal(t, 0, rows[1].Stock)
}

func TestReadCatalog_Errors(t *testing.T) {
	cases := map[string]string{
		"sku repetido":    "sku,nombre,cat,precio,costo,stock,min\nA,Uno,,1,1,1,1\nA,Dos,,1,1,1,1\n",
		"precio negativo": "sku,nombre,cat,precio,costo,stock,min\nA,Uno,,-1,1,1,1\n",
		"faltan columnas": "sku,nombre,cat,precio,costo,stock,min\nA,Uno,,1\n",
		"sin filas":       "sku,nombre,cat,precio,costo,stock,min\n",
		"stock no entero": "sku,nombre,cat,precio,costo,stock,min\nA,Uno,,1,1,x,1\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := readCatalog(strings.NewReader(src), "utf8")
			assert.Error(t, err)
		})
	}
}

func TestWriteSQL_EscapesQuotes(t *testing.T) {
	rows, err := readCatalog(strings.NewReader("sku,nombre,cat,precio,costo,stock,min\nPAO-1,Pão d'água,Padaria,0.75,0.3,5,1\n"), "utf8")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, "8f14e45f-ceea-467f-a0e6-2b4c1a2d3e4f", rows))

	out := buf.String()
	assert.Contains(t, out, "'Pão d''água'")
	assert.Contains(t, out, "0.75, 0.3000, 5, 1")
	assert.Contains(t, out, "ON CONFLICT (company_id, sku)")
	assert.True(t, strings.HasSuffix(out, "COMMIT;\n"))
}
