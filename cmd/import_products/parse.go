package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/sistema-bodega/internal/application/dto"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	"github.com/jhoicas/sistema-bodega/pkg/textsearch"
)

var categories = []string{
	entity.CategoryInsumosAseo, entity.CategoryInsumosEscritorio, entity.CategoryEPP,
	entity.CategoryEmergencias, entity.CategoryFolletoria, entity.CategoryOtros,
}

// row fila del archivo con su número de línea para reportar errores.
type row struct {
	line int
	req  dto.CreateProductRequest
}

// readXLSX lee la primera hoja de la planilla de la bodega. La fila 1 es el encabezado.
// Columnas: codigo_barra, descripcion, categoria, controla_vencimiento, stock_inicial, fecha_vencimiento.
// Las dos últimas son opcionales.
func readXLSX(r io.Reader) ([]row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir planilla: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("la planilla no tiene hojas")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer hoja %q: %w", sheets[0], err)
	}

	var out []row
	for i, rec := range records {
		if i == 0 || blank(rec) {
			continue
		}
		rw, err := parseRecord(i+1, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, nil
}

// readCSV acepta la misma planilla exportada como CSV con separador ';'.
// Con latin1 el archivo se decodifica como Windows-1252.
func readCSV(r io.Reader, latin1 bool) ([]row, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []row
	for first := true; ; first = false {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer CSV: %w", err)
		}
		if first || blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rw, err := parseRecord(line, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, nil
}

func parseRecord(line int, rec []string) (row, error) {
	if len(rec) < 4 {
		return row{}, fmt.Errorf("línea %d: se esperaban al menos 4 columnas", line)
	}
	category, ok := normalizeCategory(rec[2])
	if !ok {
		return row{}, fmt.Errorf("línea %d: categoría desconocida %q", line, rec[2])
	}
	req := dto.CreateProductRequest{
		Barcode:      strings.TrimSpace(rec[0]),
		Description:  strings.TrimSpace(rec[1]),
		Category:     category,
		TracksExpiry: parseYes(rec[3]),
	}
	if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil || n < 0 {
			return row{}, fmt.Errorf("línea %d: stock inicial inválido %q", line, rec[4])
		}
		req.InitialStock = n
	}
	if len(rec) > 5 {
		req.InitialExpiry = strings.TrimSpace(rec[5])
	}
	return row{line: line, req: req}, nil
}

// normalizeCategory acepta el nombre con espacios, tildes o mayúsculas ("insumos aseo", "Emergencias y Desastres").
func normalizeCategory(s string) (string, bool) {
	want := textsearch.Fold(strings.ReplaceAll(s, "_", " "))
	for _, c := range categories {
		if textsearch.Fold(strings.ReplaceAll(c, "_", " ")) == want {
			return c, true
		}
	}
	return "", false
}

func parseYes(s string) bool {
	switch textsearch.Fold(s) {
	case "si", "s", "x", "true", "1":
		return true
	}
	return false
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
