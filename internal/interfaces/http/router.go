package http

import (
	"errors"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/application/usecase"
	"github.com/jhoicas/sistema-bodega/pkg/jwt"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

// HTTPObserver registra duración y estado de cada petición.
type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, elapsed time.Duration)
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Engine      *inventory.StockEngine
	DeliveryUC  *inventory.DeliveryUseCase
	DirectoryUC *inventory.DirectoryUseCase
	BincardUC   *inventory.BincardUseCase
	ExpiryUC    *inventory.ExpiryUseCase
	JWTSecret   string
	Log         *logger.Logger
	// Metrics y MetricsHandler son opcionales.
	Metrics        HTTPObserver
	MetricsHandler nethttp.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	m := errorMapper{log: log.Component("http")}

	if deps.Metrics != nil {
		app.Use(metricsMiddleware(deps.Metrics))
	}
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleConsulta)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	adminOnly := RequireRole(jwt.RoleAdmin)

	productHandler := NewProductHandler(deps.ProductUC, m)
	inventoryHandler := NewInventoryHandler(deps.Engine, deps.BincardUC, m)
	reportHandler := NewReportHandler(deps.BincardUC, deps.ExpiryUC, m)
	deliveryHandler := NewDeliveryHandler(deps.DeliveryUC, m)
	directoryHandler := NewDirectoryHandler(deps.DirectoryUC, m)

	// Products
	products := api.Group("/products")
	products.Post("/", writers, productHandler.Create)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/:barcode", anyRole, productHandler.GetByBarcode)
	products.Put("/:barcode", writers, productHandler.Update)

	// Movimientos y lotes
	products.Post("/:barcode/entries", writers, inventoryHandler.RecordEntry)
	products.Post("/:barcode/exits", writers, inventoryHandler.ReduceStock)
	products.Post("/:barcode/reconcile", adminOnly, inventoryHandler.Reconcile)
	products.Get("/:barcode/lots", anyRole, inventoryHandler.ListLots)
	products.Put("/:barcode/lots/:number/expiry", writers, inventoryHandler.ChangeLotExpiry)
	products.Get("/:barcode/bincard", anyRole, reportHandler.Bincard)

	api.Post("/transactions/:id/reversal", adminOnly, inventoryHandler.Reverse)

	// Actas de entrega
	deliveries := api.Group("/deliveries")
	deliveries.Post("/", writers, deliveryHandler.Create)
	deliveries.Get("/", anyRole, deliveryHandler.List)
	deliveries.Get("/:number", anyRole, deliveryHandler.GetByNumber)

	// Directorio de departamentos
	departments := api.Group("/departments")
	departments.Get("/", anyRole, directoryHandler.List)
	departments.Post("/", adminOnly, directoryHandler.Create)
	departments.Put("/:name", adminOnly, directoryHandler.Update)
	departments.Delete("/:name", adminOnly, directoryHandler.Deactivate)
	departments.Get("/:name/officials", anyRole, directoryHandler.Officials)
	departments.Post("/:name/officials", adminOnly, directoryHandler.AddOfficial)

	api.Get("/expiry-control", anyRole, reportHandler.ExpiryControl)
	api.Get("/audit/stock", adminOnly, inventoryHandler.Audit)
}

// metricsMiddleware usa la ruta registrada (no la URL) para no disparar la cardinalidad.
func metricsMiddleware(obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		obs.ObserveHTTP(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
