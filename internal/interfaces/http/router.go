package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/audit"
	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.Ledger
	Transfers *inventory.TransferCoordinator
	Records   *inventory.RecordService
	Projector *audit.Projector
	AuthUC    *auth.AuthUseCase
	JWTSecret string
	// Gatherer expone /metrics; nil lo omite.
	Gatherer    prometheus.Gatherer
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Auth (público); sin AuthUC los tokens se emiten fuera del servicio
	if deps.AuthUC != nil {
		api.Post("/auth/login", NewAuthHandler(deps.AuthUC).Login)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writer := RequireRole(entity.RoleEmployee)

	// Inventory records
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Records)
	invGroup.Post("/:kind", writer, inventoryHandler.Add)
	invGroup.Get("/:kind/locations/:locationId", inventoryHandler.ListByLocation)
	invGroup.Patch("/:kind/:recordId", writer, inventoryHandler.UpdateClassification)
	invGroup.Delete("/:kind/:recordId", writer, inventoryHandler.Remove)

	// Stock movements
	movements := protected.Group("/stock-movements")
	movementHandler := NewStockMovementHandler(deps.Ledger, deps.Transfers, deps.Projector)
	movements.Post("/transfer", writer, movementHandler.Transfer)
	movements.Get("/audit-log", movementHandler.AuditLog)
	movements.Get("/items/:itemId", movementHandler.ItemHistory)
	movements.Post("/:kind/:recordId/adjust", writer, movementHandler.Adjust)
}
