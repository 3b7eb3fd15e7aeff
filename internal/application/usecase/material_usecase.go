package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/application/dto"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/entity"
	"github.com/TwinsMinsk/lomuebles-crm-blueprint-sub001/internal/domain/repository"
)

// MaterialUseCase casos de uso de catálogo para materiales. Las ediciones de
// catálogo nunca tocan movimientos ni reservas; la eliminación va siempre por
// el orquestador.
type MaterialUseCase struct {
	repo repository.MaterialRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo}
}

// Create da de alta un material en el catálogo.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if in.MinStock.LessThan(decimal.Zero) || in.CurrentCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.MaxStock != nil && in.MaxStock.LessThan(in.MinStock) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	material := &entity.Material{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Category:    in.Category,
		UnitMeasure: in.UnitMeasure,
		MinStock:    in.MinStock,
		MaxStock:    in.MaxStock,
		CurrentCost: in.CurrentCost,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// GetByID obtiene un material por ID.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, nil
	}
	return toMaterialResponse(material), nil
}

// Update edita atributos de catálogo (nombre, umbrales, costo vigente, activo).
// El cambio de costo no afecta snapshots de presupuestos existentes.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, nil
	}
	if in.Name != nil {
		material.Name = *in.Name
	}
	if in.Category != nil {
		material.Category = *in.Category
	}
	if in.UnitMeasure != nil {
		material.UnitMeasure = *in.UnitMeasure
	}
	if in.MinStock != nil {
		if in.MinStock.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		material.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		material.MaxStock = in.MaxStock
	}
	if in.CurrentCost != nil {
		if in.CurrentCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		material.CurrentCost = *in.CurrentCost
	}
	if in.Active != nil {
		material.Active = *in.Active
	}
	if material.MaxStock != nil && material.MaxStock.LessThan(material.MinStock) {
		return nil, domain.ErrInvalidInput
	}
	material.UpdatedAt = time.Now()
	if err := uc.repo.Update(material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// List lista materiales con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, limit, offset int) (*dto.MaterialListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		UnitMeasure: m.UnitMeasure,
		MinStock:    m.MinStock,
		MaxStock:    m.MaxStock,
		CurrentCost: m.CurrentCost,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
