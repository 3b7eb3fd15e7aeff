package repository

import "github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"

// LocationRepository define el puerto de persistencia para ubicaciones de almacén.
type LocationRepository interface {
	Create(location *entity.Location) error
	GetByID(id string) (*entity.Location, error)
	List() ([]*entity.Location, error)
}
