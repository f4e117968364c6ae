// seed_plan genera la migración SQL que carga el plan de cuentas a partir de un CSV exportado
// del sistema contable (UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_plan [-encoding auto|utf-8|iso-8859-1] [-version 000003] plan.csv
// Escribe: db/migrations/<version>_seed_plan_de_cuentas.{up,down}.sql
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	encoding := flag.String("encoding", EncodingAuto, "codificación del CSV: auto, utf-8 o iso-8859-1")
	version := flag.String("version", "000003", "número de la migración")
	flag.Parse()

	csvPath := "plan_de_cuentas.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	content, err := decodeInput(raw, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar CSV: %v\n", err)
		os.Exit(1)
	}
	accounts, err := parsePlan(bytes.NewReader(content), detectDelimiter(content))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parsear CSV: %v\n", err)
		os.Exit(1)
	}

	dir := filepath.Join(findModuleRoot(), "db", "migrations")
	base := filepath.Join(dir, *version+"_seed_plan_de_cuentas")
	up, err := os.Create(base + ".up.sql")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer up.Close()
	down, err := os.Create(base + ".down.sql")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer down.Close()

	if err := writeSeed(up, down, accounts, filepath.Base(csvPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	headers := 0
	for _, a := range accounts {
		if a.IsHeader {
			headers++
		}
	}
	fmt.Printf("Generado %s.{up,down}.sql: %d cuentas (%d títulos)\n", base, len(accounts), headers)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
