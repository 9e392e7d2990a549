// seed genera un script SQL que carga el catálogo de productos de una cuenta
// a partir de un CSV exportado de otro sistema (UTF-8 o Latin-1).
//
// Uso: go run ./cmd/seed -company <uuid> [-encoding latin1] [-out seed.sql] catalogo.csv
//
// Columnas: sku, nombre, categoria, precio, costo, stock, stock_minimo.
// Separador "," o ";" (se detecta por la cabecera). Los decimales aceptan coma.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
)

func main() {
	companyID := flag.String("company", "", "UUID de la cuenta destino")
	encoding := flag.String("encoding", "utf8", "utf8 | latin1")
	outPath := flag.String("out", "", "archivo de salida (por defecto stdout)")
	flag.Parse()

	if _, err := uuid.Parse(*companyID); err != nil || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed -company <uuid> [-encoding latin1] [-out seed.sql] catalogo.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := readCatalog(f, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		if out, err = os.Create(*outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
	}
	if err := writeSQL(out, *companyID, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d productos\n", len(rows))
}
