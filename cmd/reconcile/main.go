// reconcile audita el stock de todos los productos: stock vs suma de lotes activos y stock vs saldo
// del libro. Con -apply corrige el desfase de lotes; el libro nunca se reescribe.
//
// Uso: go run ./cmd/reconcile [-apply]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/infrastructure/storage"
	"github.com/jhoicas/sistema-bodega/pkg/config"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

func main() {
	apply := flag.Bool("apply", false, "corregir el stock de productos con desfase de lotes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	engine := inventory.NewStockEngine(backend.TxRunner, backend.Repos, log.Component("reconcile"))
	report, err := engine.ReconcileAll(ctx, *apply)
	if err != nil {
		log.Error().Err(err).Msg("auditoría")
		backend.Close()
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODIGO\tDESCRIPCION\tSTOCK\tLOTES\tLIBRO\tDESFASE\tCORREGIDO")
	for _, l := range report.Lines {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\t%s\n",
			l.Barcode, l.Description, l.Stock, lotSum(l), l.LedgerBalance, driftLabel(l), yesNo(l.Corrected))
	}
	_ = w.Flush()

	fmt.Printf("\nProductos: %d | desfase lotes: %d | desfase libro: %d | corregidos: %d\n",
		report.Products, report.LotDrift, report.LedgerDrift, report.Corrected)
	if !*apply && report.LotDrift > 0 {
		fmt.Println("Ejecute con -apply para corregir el desfase de lotes.")
	}
}

func lotSum(l inventory.AuditLine) string {
	if !l.Tracked {
		return "-"
	}
	return fmt.Sprint(l.LotSum)
}

func driftLabel(l inventory.AuditLine) string {
	switch {
	case l.LotDrift && l.LedgerDrift:
		return "lotes+libro"
	case l.LotDrift:
		return "lotes"
	case l.LedgerDrift:
		return "libro"
	}
	return "-"
}

func yesNo(b bool) string {
	if b {
		return "si"
	}
	return "no"
}
