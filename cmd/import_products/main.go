// import_products carga el catálogo inicial desde la planilla .xlsx de la bodega (o su exportación CSV).
// Cada stock inicial entra como una entrada normal del libro (con su lote si controla vencimiento).
// Los códigos ya existentes se omiten.
//
// Uso: go run ./cmd/import_products productos.xlsx
//      go run ./cmd/import_products [-latin1] productos.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/application/usecase"
	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/infrastructure/storage"
	"github.com/jhoicas/sistema-bodega/pkg/config"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

const importUser = "import_products"

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en Windows-1252 (exportación de Excel)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_products [-latin1] productos.xlsx|productos.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir archivo")
	}
	rows, err := readFile(f, flag.Arg(0), *latin1)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("archivo inválido")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	engine := inventory.NewStockEngine(backend.TxRunner, backend.Repos, log.Component("import"))
	uc := usecase.NewProductUseCase(backend.TxRunner, backend.Repos, engine)

	created, skipped, failed := importRows(ctx, uc, rows, log)
	log.Info().Int("creados", created).Int("omitidos", skipped).Int("fallidos", failed).Msg("importación terminada")
	if failed > 0 {
		backend.Close()
		os.Exit(1)
	}
}

// readFile elige el lector por extensión. Todo lo que no sea .csv se trata como .xlsx.
func readFile(r io.Reader, name string, latin1 bool) ([]row, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return readCSV(r, latin1)
	}
	return readXLSX(r)
}

// importRows crea cada producto. Un duplicado se omite; cualquier otro error se registra y se sigue.
func importRows(ctx context.Context, uc *usecase.ProductUseCase, rows []row, log *logger.Logger) (created, skipped, failed int) {
	for _, r := range rows {
		_, err := uc.Create(ctx, importUser, r.req)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
			log.Warn().Int("linea", r.line).Str("codigo_barra", r.req.Barcode).Msg("código ya existe, se omite")
		default:
			failed++
			log.Error().Err(err).Int("linea", r.line).Str("codigo_barra", r.req.Barcode).Msg("no se pudo importar")
		}
	}
	return created, skipped, failed
}
