package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/deletion"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/dto"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/usecase"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/metrics"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/retry"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/pkg/validator"
)

// MaterialHandler maneja el catálogo de materiales y su eliminación
// orquestada (protegido).
type MaterialHandler struct {
	materialUC   *usecase.MaterialUseCase
	orchestrator *deletion.OrchestratorUseCase
	retryOpts    retry.Options
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(
	materialUC *usecase.MaterialUseCase,
	orchestrator *deletion.OrchestratorUseCase,
	retryOpts retry.Options,
) *MaterialHandler {
	return &MaterialHandler{
		materialUC:   materialUC,
		orchestrator: orchestrator,
		retryOpts:    retryOpts,
	}
}

// Create POST /api/materials.
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("INVALID_BODY", "cuerpo inválido"))
	}
	if err := validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("VALIDATION", err.Error()))
	}
	material, err := h.materialUC.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(material)
}

// GetByID GET /api/materials/:id.
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	material, err := h.materialUC.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if material == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.Err("NOT_FOUND", "material no encontrado"))
	}
	return c.JSON(material)
}

// Update PUT /api/materials/:id.
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("INVALID_BODY", "cuerpo inválido"))
	}
	material, err := h.materialUC.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	if material == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.Err("NOT_FOUND", "material no encontrado"))
	}
	return c.JSON(material)
}

// List GET /api/materials.
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("VALIDATION", "paginación inválida"))
	}
	page.DefaultPage()
	list, err := h.materialUC.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetDependencies GET /api/materials/:id/dependencies.
// Informe efímero: se recalcula en cada llamada, nunca se cachea.
func (h *MaterialHandler) GetDependencies(c *fiber.Ctx) error {
	materialID := c.Params("id")
	var report *entity.DependencyReport
	err := retry.Do(c.Context(), h.retryOpts, domain.IsTransient, func(ctx context.Context) error {
		var e error
		report, e = h.orchestrator.Evaluate(ctx, materialID)
		return e
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDependencyReportResponse(report))
}

// Delete DELETE /api/materials/:id. Eliminación directa, solo válida sin
// dependencias bloqueantes ni historial vivo de movimientos.
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	if err := h.orchestrator.DeleteDirect(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// CascadeDelete POST /api/materials/:id/cascade-delete.
// Ejecuta los pasos seleccionados y el borrado en una sola transacción: si un
// paso falla no queda ningún efecto parcial, y el retry es seguro.
func (h *MaterialHandler) CascadeDelete(c *fiber.Ctx) error {
	var in dto.CascadeDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Err("INVALID_BODY", "cuerpo inválido"))
	}
	userID := GetUserID(c)
	materialID := c.Params("id")
	options := deletion.CascadeOptions{
		CancelEstimates:   in.CancelEstimates,
		ClearReservations: in.ClearReservations,
		ArchiveData:       in.ArchiveData,
	}
	err := retry.Do(c.Context(), h.retryOpts, func(err error) bool {
		if domain.IsTransient(err) {
			metrics.TransientRetries.Inc()
			return true
		}
		return false
	}, func(ctx context.Context) error {
		return h.orchestrator.ExecuteCascade(ctx, userID, materialID, options)
	})
	if err != nil {
		metrics.CascadeDeletions.WithLabelValues("failed").Inc()
		return respondError(c, err)
	}
	metrics.CascadeDeletions.WithLabelValues("ok").Inc()
	return c.JSON(fiber.Map{"ok": true})
}

func toDependencyReportResponse(r *entity.DependencyReport) dto.DependencyReportResponse {
	refs := func(list []*entity.Estimate) []dto.EstimateRefDTO {
		out := make([]dto.EstimateRefDTO, 0, len(list))
		for _, e := range list {
			out = append(out, dto.EstimateRefDTO{
				ID:        e.ID,
				OrderID:   e.OrderID,
				Status:    e.Status,
				TotalCost: e.TotalCost,
			})
		}
		return out
	}
	recent := make([]dto.MovementResponse, 0, len(r.RecentMovements))
	for _, m := range r.RecentMovements {
		recent = append(recent, toMovementResponse(m))
	}
	return dto.DependencyReportResponse{
		MaterialID:              r.MaterialID,
		MaterialName:            r.MaterialName,
		DraftEstimates:          refs(r.DraftEstimates),
		ApprovedEstimates:       refs(r.ApprovedEstimates),
		CancelledEstimates:      refs(r.CancelledEstimates),
		CommittedQuantity:       r.CommittedQuantity,
		RecentMovements:         recent,
		MovementCount:           r.MovementCount,
		HasBlockingDependencies: r.HasBlockingDependencies,
		CanDelete:               r.CanDelete,
		GeneratedAt:             r.GeneratedAt,
	}
}
