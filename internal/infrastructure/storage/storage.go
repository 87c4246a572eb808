// Package storage elige el backend de persistencia según STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/infrastructure/memory"
	"github.com/jhoicas/sistema-bodega/internal/infrastructure/postgres"
	"github.com/jhoicas/sistema-bodega/pkg/config"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

// Backend transacciones, repositorios fuera de tx y cierre.
type Backend struct {
	TxRunner inventory.TxRunner
	Repos    inventory.Repos
	Close    func()
}

// Open abre PostgreSQL (aplicando migraciones pendientes) o el almacén en memoria.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	switch cfg.Storage {
	case "memory":
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos no sobreviven al reinicio")
		store := memory.NewStore()
		return &Backend{TxRunner: store, Repos: store.Repos(), Close: func() {}}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		for _, name := range applied {
			log.Info().Str("migration", name).Msg("migración aplicada")
		}
		return &Backend{
			TxRunner: postgres.NewTxRunner(pool),
			Repos:    postgres.NewRepos(pool),
			Close:    pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.Storage)
}
