package services

import (
	"context"
	"fmt"

	"bouquetStore/entities"
	"bouquetStore/models"
)

// MaterialCatalog is the read side of the material store.
type MaterialCatalog interface {
	GetMaterial(ctx context.Context, id string) (m entities.Material, exists bool, err error)
}

// PricingService prices bouquets from the material catalog. Nothing is cached: every
// call reads current material prices.
type PricingService struct {
	catalog MaterialCatalog
}

func NewPricingService(catalog MaterialCatalog) PricingService {
	return PricingService{
		catalog: catalog,
	}
}

// ComputeBasePriceBySize returns serviceFee + Σ price×quantity for every size. A missing
// material fails the whole computation with ErrNotFoundError; no partial map is returned.
func (ps *PricingService) ComputeBasePriceBySize(ctx context.Context, materialsBySize map[string][]entities.MaterialEntry, serviceFee int64) (map[string]int64, error) {
	prices := make(map[string]int64, len(materialsBySize))
	for size, entries := range materialsBySize {
		var sum int64
		for _, entry := range entries {
			m, exists, err := ps.catalog.GetMaterial(ctx, entry.MaterialId)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, fmt.Errorf("%w: material %q (size %q)", models.ErrNotFoundError, entry.MaterialId, size)
			}
			sum += m.Price * entry.Quantity
		}
		prices[size] = sum + serviceFee
	}
	return prices, nil
}

// RecomputeTotal re-derives a line total from today's catalog:
// (standard materials for size + custom materials + servicePrice) × quantity.
// Materials that no longer exist are skipped; a catalog read failure aborts.
func (ps *PricingService) RecomputeTotal(ctx context.Context, product entities.Product, size string, quantity int64, customMaterials []entities.MaterialEntry, servicePrice int64) (int64, error) {
	standard, err := ps.sumAvailable(ctx, product.MaterialsBySize[size])
	if err != nil {
		return 0, err
	}
	custom, err := ps.sumAvailable(ctx, customMaterials)
	if err != nil {
		return 0, err
	}
	return (standard + custom + servicePrice) * quantity, nil
}

func (ps *PricingService) sumAvailable(ctx context.Context, entries []entities.MaterialEntry) (int64, error) {
	var sum int64
	for _, entry := range entries {
		m, exists, err := ps.catalog.GetMaterial(ctx, entry.MaterialId)
		if err != nil {
			return 0, err
		}
		if !exists {
			continue
		}
		sum += m.Price * entry.Quantity
	}
	return sum, nil
}

// FrozenTotal is the total stored when the item was written. It never consults the catalog.
func FrozenTotal(item entities.CartItem) int64 {
	return item.TotalPrice
}
