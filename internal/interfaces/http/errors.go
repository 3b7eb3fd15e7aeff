package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/deletion"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/dto"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
)

// respondError traduce la taxonomía de errores de dominio a HTTP en un solo
// punto. Los CascadeError exponen además el paso que falló para que la UI
// re-presente el informe de dependencias.
func respondError(c *fiber.Ctx, err error) error {
	var cascadeErr *deletion.CascadeError
	if errors.As(err, &cascadeErr) {
		status, body := statusFor(cascadeErr.Err)
		return c.Status(status).JSON(fiber.Map{
			"ok":      false,
			"code":    body.Code,
			"message": body.Message,
			"step":    cascadeErr.Step,
		})
	}
	status, body := statusFor(err)
	return c.Status(status).JSON(body)
}

func statusFor(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.Err("VALIDATION", "datos inválidos")
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.Err("UNAUTHORIZED", "sesión requerida")
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.Err("FORBIDDEN", "acceso denegado")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.Err("NOT_FOUND", "recurso no encontrado")
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.Err("DUPLICATE", "recurso duplicado")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.Err("EMAIL_EXISTS", "el email ya está registrado")
	case errors.Is(err, domain.ErrStateConflict):
		return fiber.StatusConflict, dto.Err("STATE_CONFLICT", "transición de estado no permitida")
	case errors.Is(err, domain.ErrPreconditionFailed):
		return fiber.StatusConflict, dto.Err("PRECONDITION", "precondición no satisfecha")
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.Err("INSUFFICIENT_STOCK", "stock insuficiente")
	case domain.IsTransient(err):
		return fiber.StatusServiceUnavailable, dto.Err("TRANSIENT", "almacén temporalmente no disponible")
	default:
		return fiber.StatusInternalServerError, dto.Err("INTERNAL", err.Error())
	}
}
