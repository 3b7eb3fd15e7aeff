package entity

import "time"

// Roles de usuario para RBAC en rutas protegidas.
const (
	RoleAdmin       = "admin"
	RoleAlmacenista = "almacenista"
	RoleVendedor    = "vendedor"
)

// User representa un usuario autenticable del sistema (colaborador de sesión).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string // active, disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
