package entity

import "time"

// Location representa una ubicación física de almacén (bodega, taller, estantería).
type Location struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
