package services

import (
	"context"
	"log/slog"
	"strings"

	"bouquetStore/entities"
	"bouquetStore/models"
	"bouquetStore/repository"

	"github.com/google/uuid"
)

type MaterialService struct {
	mr repository.MaterialRepository
}

func NewMaterialService(materialRepo repository.MaterialRepository) MaterialService {
	return MaterialService{
		mr: materialRepo,
	}
}

func validateMaterial(req models.MaterialRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		slog.Debug("validateMaterial: name is required")
		return models.ErrBadRequest
	}
	if req.Price == nil || *req.Price < 0 {
		slog.Debug("validateMaterial: price must be a non-negative integer")
		return models.ErrBadRequest
	}
	return nil
}

func (ms *MaterialService) CreateMaterial(ctx context.Context, req models.MaterialRequest) (m entities.Material, err error) {
	if err = validateMaterial(req); err != nil {
		return
	}
	m = entities.Material{
		Id:       uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		Category: req.Category,
		Price:    *req.Price,
	}
	err = ms.mr.CreateMaterial(ctx, m)
	return
}

// UpdateMaterial changes the catalog entry only. Product base prices, cart totals and
// orders keep the values computed earlier until they are repriced.
func (ms *MaterialService) UpdateMaterial(ctx context.Context, id string, req models.MaterialRequest) (m entities.Material, err error) {
	if err = validateMaterial(req); err != nil {
		return
	}
	m = entities.Material{
		Id:       id,
		Name:     strings.TrimSpace(req.Name),
		Category: req.Category,
		Price:    *req.Price,
	}
	err = ms.mr.UpdateMaterial(ctx, m)
	return
}

func (ms *MaterialService) GetMaterial(ctx context.Context, id string) (m entities.Material, err error) {
	var exists bool
	m, exists, err = ms.mr.GetMaterial(ctx, id)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrNotFoundError
	}
	return
}

func (ms *MaterialService) ListMaterials(ctx context.Context) ([]entities.Material, error) {
	return ms.mr.ListMaterials(ctx)
}

func (ms *MaterialService) DeleteMaterial(ctx context.Context, id string) error {
	return ms.mr.DeleteMaterial(ctx, id)
}
