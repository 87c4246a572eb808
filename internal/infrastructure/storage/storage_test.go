package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-bodega/internal/infrastructure/storage"
	"github.com/jhoicas/sistema-bodega/pkg/config"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

func TestOpen_Memoria(t *testing.T) {
	b, err := storage.Open(context.Background(), &config.Config{Storage: "memory"}, logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.TxRunner)
	assert.NotNil(t, b.Repos.Products)
	p, err := b.Repos.Products.GetByBarcode(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := storage.Open(context.Background(), &config.Config{Storage: "sqlite"}, logger.Nop())
	assert.Error(t, err)
}
