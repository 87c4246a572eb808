package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/application/usecase"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/internal/infrastructure/events"
	"github.com/jhoicas/sistema-bodega/internal/infrastructure/metrics"
	"github.com/jhoicas/sistema-bodega/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/sistema-bodega/internal/interfaces/http"
	"github.com/jhoicas/sistema-bodega/pkg/config"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	m := metrics.New("bodega")
	publisher := events.New(cfg.Kafka, cfg.App.Name, log.Component("events"), m)
	defer publisher.Close()

	engine := inventory.NewStockEngine(backend.TxRunner, backend.Repos, log.Component("stock"),
		inventory.WithRecorder(m),
		inventory.WithPublisher(publisher),
	)
	thresholds := domaininv.Thresholds{
		CriticalDays: cfg.Expiry.CriticalDays,
		WarningDays:  cfg.Expiry.WarningDays,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Sistema de Bodega API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:      usecase.NewProductUseCase(backend.TxRunner, backend.Repos, engine),
		Engine:         engine,
		DeliveryUC:     inventory.NewDeliveryUseCase(engine),
		DirectoryUC:    inventory.NewDirectoryUseCase(backend.TxRunner, backend.Repos, log),
		BincardUC:      inventory.NewBincardUseCase(backend.Repos),
		ExpiryUC:       inventory.NewExpiryUseCase(backend.Repos, thresholds, nil),
		JWTSecret:      cfg.JWT.Secret,
		Log:            log,
		Metrics:        m,
		MetricsHandler: m.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
