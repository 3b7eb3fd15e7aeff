package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Taxonomía: validación, estado, precondición, auth, transitorio y no encontrado.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrStateConflict      = errors.New("transición de estado no permitida")
	ErrPreconditionFailed = errors.New("precondición no satisfecha")
	ErrTransient          = errors.New("fallo transitorio del almacén")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)

// IsTransient indica si el error es transitorio (red/almacén caído) y por tanto
// candidato a reintento con backoff. Los errores de negocio nunca lo son.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
