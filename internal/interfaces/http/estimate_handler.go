package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/dto"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/estimate"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/metrics"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/validator"
)

// EstimateHandler maneja presupuestos de costos y su ciclo de aprobación (protegido).
type EstimateHandler struct {
	uc *estimate.EngineUseCase
}

// NewEstimateHandler construye el handler.
func NewEstimateHandler(uc *estimate.EngineUseCase) *EstimateHandler {
	return &EstimateHandler{uc: uc}
}

// Create POST /api/estimates.
func (h *EstimateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEstimateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("INVALID_BODY", "cuerpo inválido"))
	}
	if err := validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("VALIDATION", err.Error()))
	}
	est, err := h.uc.Create(c.Context(), GetUserID(c), in.OrderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEstimateResponse(est, nil))
}

// GetByID GET /api/estimates/:id. Incluye las líneas del presupuesto.
func (h *EstimateHandler) GetByID(c *fiber.Ctx) error {
	est, items, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toEstimateResponse(est, items))
}

// AddItem POST /api/estimates/:id/items.
func (h *EstimateHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddEstimateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("INVALID_BODY", "cuerpo inválido"))
	}
	if err := validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("VALIDATION", err.Error()))
	}
	item, err := h.uc.AddItem(c.Context(), GetUserID(c), c.Params("id"), in.MaterialID, in.Quantity, in.Price)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEstimateItemResponse(item))
}

// UpdateItemQuantity PUT /api/estimates/items/:itemId.
func (h *EstimateHandler) UpdateItemQuantity(c *fiber.Ctx) error {
	var in dto.UpdateItemQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("INVALID_BODY", "cuerpo inválido"))
	}
	if err := h.uc.UpdateItemQuantity(c.Context(), GetUserID(c), c.Params("itemId"), in.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// RemoveItem DELETE /api/estimates/items/:itemId.
func (h *EstimateHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.uc.RemoveItem(c.Context(), GetUserID(c), c.Params("itemId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Approve POST /api/estimates/:id/approve. Crea una reserva por ítem en la
// misma transacción que la transición de estado.
func (h *EstimateHandler) Approve(c *fiber.Ctx) error {
	if err := h.uc.Approve(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	metrics.EstimatesApproved.Inc()
	return c.JSON(fiber.Map{"ok": true})
}

// Cancel POST /api/estimates/:id/cancel. Si venía de APPROVED libera sus reservas.
func (h *EstimateHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	metrics.EstimatesCancelled.Inc()
	return c.JSON(fiber.Map{"ok": true})
}

func toEstimateResponse(e *entity.Estimate, items []*entity.EstimateItem) dto.EstimateResponse {
	out := dto.EstimateResponse{
		ID:        e.ID,
		OrderID:   e.OrderID,
		Status:    e.Status,
		TotalCost: e.TotalCost,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, toEstimateItemResponse(it))
	}
	return out
}

func toEstimateItemResponse(i *entity.EstimateItem) dto.EstimateItemResponse {
	return dto.EstimateItemResponse{
		ID:                i.ID,
		EstimateID:        i.EstimateID,
		MaterialID:        i.MaterialID,
		QuantityNeeded:    i.QuantityNeeded,
		PriceAtEstimation: i.PriceAtEstimation,
		Subtotal:          i.Subtotal(),
	}
}
