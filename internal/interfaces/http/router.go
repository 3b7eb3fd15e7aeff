package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/auth"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/deletion"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/estimate"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/ledger"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/reservation"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/stock"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/usecase"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/retry"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	MaterialUC   *usecase.MaterialUseCase
	LocationUC   *usecase.LocationUseCase
	LedgerUC     *ledger.MovementLedgerUseCase
	ProjectionUC *stock.ProjectionUseCase
	TrackerUC    *reservation.TrackerUseCase
	EstimateUC   *estimate.EngineUseCase
	Orchestrator *deletion.OrchestratorUseCase
	JWTSecret    string
	RetryOpts    retry.Options
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Rol de escritura en almacén: admin y almacenista.
	warehouseWrite := RequireRole(entity.RoleAdmin, entity.RoleAlmacenista)

	// Locations (protegido)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Post("/", warehouseWrite, locationHandler.Create)

	// Materials (protegido; mutaciones restringidas por rol)
	materials := protected.Group("/materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC, deps.Orchestrator, deps.RetryOpts)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Post("/", warehouseWrite, materialHandler.Create)
	materials.Put("/:id", warehouseWrite, materialHandler.Update)
	materials.Get("/:id/dependencies", materialHandler.GetDependencies)
	// La eliminación (directa o en cascada) queda reservada al admin.
	materials.Delete("/:id", RequireRole(entity.RoleAdmin), materialHandler.Delete)
	materials.Post("/:id/cascade-delete", RequireRole(entity.RoleAdmin), materialHandler.CascadeDelete)

	// Warehouse: ledger de movimientos, stock y reservas (protegido)
	warehouse := protected.Group("/warehouse")
	warehouseHandler := NewWarehouseHandler(deps.LedgerUC, deps.ProjectionUC, deps.TrackerUC, deps.RetryOpts)
	warehouse.Post("/movements", warehouseWrite, warehouseHandler.RecordMovement)
	warehouse.Put("/movements/:id", warehouseWrite, warehouseHandler.AmendMovement)
	warehouse.Delete("/movements/:id", warehouseWrite, warehouseHandler.RemoveMovement)
	warehouse.Get("/materials/:id/movements", warehouseHandler.ListMovements)
	warehouse.Get("/materials/:id/stock", warehouseHandler.GetStockLevel)
	warehouse.Get("/materials/:id/levels", warehouseHandler.ListStockLevels)
	warehouse.Get("/materials/:id/reservations", warehouseHandler.ListReservations)
	warehouse.Post("/materials/:id/reconcile", RequireRole(entity.RoleAdmin), warehouseHandler.Reconcile)

	// Estimates (protegido)
	estimates := protected.Group("/estimates")
	estimateHandler := NewEstimateHandler(deps.EstimateUC)
	estimates.Post("/", estimateHandler.Create)
	estimates.Get("/:id", estimateHandler.GetByID)
	estimates.Post("/:id/items", estimateHandler.AddItem)
	estimates.Put("/items/:itemId", estimateHandler.UpdateItemQuantity)
	estimates.Delete("/items/:itemId", estimateHandler.RemoveItem)
	estimates.Post("/:id/approve", estimateHandler.Approve)
	estimates.Post("/:id/cancel", estimateHandler.Cancel)
}
