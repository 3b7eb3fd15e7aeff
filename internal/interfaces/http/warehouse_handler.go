package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/dto"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/ledger"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/reservation"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/stock"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/metrics"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/retry"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/validator"
)

// WarehouseHandler maneja el ledger de movimientos, los niveles de stock
// proyectados y la vista de reservas (protegido).
type WarehouseHandler struct {
	ledgerUC     *ledger.MovementLedgerUseCase
	projectionUC *stock.ProjectionUseCase
	trackerUC    *reservation.TrackerUseCase
	retryOpts    retry.Options
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(
	ledgerUC *ledger.MovementLedgerUseCase,
	projectionUC *stock.ProjectionUseCase,
	trackerUC *reservation.TrackerUseCase,
	retryOpts retry.Options,
) *WarehouseHandler {
	return &WarehouseHandler{
		ledgerUC:     ledgerUC,
		projectionUC: projectionUC,
		trackerUC:    trackerUC,
		retryOpts:    retryOpts,
	}
}

// retryTransient reintenta fn solo ante fallos transitorios del almacén.
// Reservado a operaciones idempotentes o de lectura.
func (h *WarehouseHandler) retryTransient(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, h.retryOpts, func(err error) bool {
		if domain.IsTransient(err) {
			metrics.TransientRetries.Inc()
			return true
		}
		return false
	}, fn)
}

// RecordMovement POST /api/warehouse/movements.
func (h *WarehouseHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("INVALID_BODY", "cuerpo inválido"))
	}
	if err := validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("VALIDATION", err.Error()))
	}
	id, err := h.ledgerUC.Record(c.Context(), ledger.RecordMovementInput{
		UserID:           GetUserID(c),
		MaterialID:       in.MaterialID,
		Type:             in.Type,
		Quantity:         in.Quantity,
		SourceLocationID: in.SourceLocationID,
		DestLocationID:   in.DestLocationID,
		UnitCost:         in.UnitCost,
		OrderRef:         in.OrderRef,
		SupplierRef:      in.SupplierRef,
		MovedAt:          in.MovedAt,
	})
	if err != nil {
		return respondError(c, err)
	}
	metrics.MovementsRecorded.WithLabelValues(in.Type).Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// AmendMovement PUT /api/warehouse/movements/:id.
func (h *WarehouseHandler) AmendMovement(c *fiber.Ctx) error {
	var in dto.AmendMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("INVALID_BODY", "cuerpo inválido"))
	}
	err := h.ledgerUC.Amend(c.Context(), GetUserID(c), c.Params("id"), ledger.AmendMovementInput{
		Quantity:         in.Quantity,
		UnitCost:         in.UnitCost,
		SourceLocationID: in.SourceLocationID,
		DestLocationID:   in.DestLocationID,
	})
	if err != nil {
		return respondError(c, err)
	}
	metrics.MovementsAmended.Inc()
	return c.JSON(fiber.Map{"ok": true})
}

// RemoveMovement DELETE /api/warehouse/movements/:id. La eliminación es
// idempotente en el servidor, así que los fallos transitorios se reintentan;
// un retry tras un éxito previo encuentra la fila ausente y devuelve 404.
func (h *WarehouseHandler) RemoveMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	movementID := c.Params("id")
	err := h.retryTransient(c.Context(), func(ctx context.Context) error {
		return h.ledgerUC.Remove(ctx, userID, movementID)
	})
	if err != nil {
		return respondError(c, err)
	}
	metrics.MovementsRemoved.Inc()
	return c.JSON(fiber.Map{"ok": true})
}

// ListMovements GET /api/warehouse/materials/:id/movements.
// Filtros opcionales from/to (RFC 3339) y paginación limit/offset.
func (h *WarehouseHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("VALIDATION", "paginación inválida"))
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("VALIDATION", "from inválido (RFC 3339)"))
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("VALIDATION", "to inválido (RFC 3339)"))
	}

	materialID := c.Params("id")
	var movements []*entity.StockMovement
	err = h.retryTransient(c.Context(), func(ctx context.Context) error {
		var e error
		movements, e = h.ledgerUC.ListByMaterial(ctx, materialID, from, to, page.Limit, page.Offset)
		return e
	})
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetStockLevel GET /api/warehouse/materials/:id/stock.
// Sin location_id devuelve el agregado global del material.
func (h *WarehouseHandler) GetStockLevel(c *fiber.Ctx) error {
	var locationID *string
	if loc := c.Query("location_id"); loc != "" {
		locationID = &loc
	}
	materialID := c.Params("id")
	var level *entity.StockLevel
	err := h.retryTransient(c.Context(), func(ctx context.Context) error {
		var e error
		level, e = h.projectionUC.CurrentLevel(ctx, materialID, locationID)
		return e
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockLevelResponse(level))
}

// ListStockLevels GET /api/warehouse/materials/:id/levels.
// Filas materializadas por ubicación con su estado frente a umbrales.
func (h *WarehouseHandler) ListStockLevels(c *fiber.Ctx) error {
	levels, err := h.projectionUC.Levels(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		items = append(items, toStockLevelResponse(l))
	}
	return c.JSON(fiber.Map{"items": items})
}

// Reconcile POST /api/warehouse/materials/:id/reconcile.
// Re-deriva la proyección materializada del material desde el ledger.
func (h *WarehouseHandler) Reconcile(c *fiber.Ctx) error {
	if err := h.projectionUC.Reconcile(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// ListReservations GET /api/warehouse/materials/:id/reservations.
// Reservas activas y cantidad comprometida total del material.
func (h *WarehouseHandler) ListReservations(c *fiber.Ctx) error {
	materialID := c.Params("id")
	reservations, err := h.trackerUC.ListByMaterial(c.Context(), materialID)
	if err != nil {
		return respondError(c, err)
	}
	committed, err := h.trackerUC.Committed(c.Context(), materialID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"material_id":  materialID,
		"committed":    committed,
		"reservations": reservations,
	})
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:               m.ID,
		MaterialID:       m.MaterialID,
		Type:             m.Type,
		Quantity:         m.Quantity,
		SourceLocationID: m.SourceLocationID,
		DestLocationID:   m.DestLocationID,
		UnitCost:         m.UnitCost,
		OrderRef:         m.OrderRef,
		SupplierRef:      m.SupplierRef,
		MovedAt:          m.MovedAt,
		CreatedBy:        m.CreatedBy,
	}
}

func toStockLevelResponse(l *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		MaterialID: l.MaterialID,
		LocationID: l.LocationID,
		Quantity:   l.Quantity,
		Status:     l.Status,
	}
}
