// seed genera el script SQL con los datos de referencia del libro mayor (agentes, colectores,
// clientes, productos y tipos) a partir de los CSV exportados por el sistema administrativo.
//
// Uso: go run ./cmd/seed [-charset windows-1252] [-region CO] [-out archivo.sql] [directorio]
// Por defecto lee ./catalog y escribe en la salida estándar.
// Archivos: agents.csv, collectors.csv, customers.csv (id,name,phone), products.csv,
// types.csv (id,name,stake,products con products = "p1:2|p2:1").
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jhoicas/Ahorro-api/internal/infrastructure/catalog"
)

func main() {
	charset := flag.String("charset", "utf-8", "codificación de los CSV: utf-8, iso-8859-1, windows-1252")
	region := flag.String("region", catalog.DefaultRegion, "región por defecto de los teléfonos de clientes")
	outPath := flag.String("out", "", "archivo de salida (vacío = stdout)")
	flag.Parse()

	dir := "catalog"
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	cat, err := catalog.Load(dir, catalog.Options{Charset: *charset, Region: *region})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := catalog.WriteSQL(out, cat); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d agentes, %d colectores, %d clientes, %d productos, %d tipos\n",
		len(cat.Agents), len(cat.Collectors), len(cat.Customers), len(cat.Products), len(cat.Types))
}
