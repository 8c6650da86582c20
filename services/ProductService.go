package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"bouquetStore/entities"
	"bouquetStore/models"
	"bouquetStore/repository"

	"github.com/google/uuid"
)

type ProductService struct {
	pr      repository.ProductRepository
	pricing PricingService
	now     func() time.Time
}

func NewProductService(pRepo repository.ProductRepository, pricing PricingService) ProductService {
	return ProductService{
		pr:      pRepo,
		pricing: pricing,
		now:     time.Now,
	}
}

func validateProduct(req models.ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", models.ErrBadRequest)
	}
	if req.Type != entities.ProductTypeTemplate && req.Type != entities.ProductTypeCustom {
		return fmt.Errorf("%w: type must be %q or %q", models.ErrBadRequest, entities.ProductTypeTemplate, entities.ProductTypeCustom)
	}
	if req.ServiceFee < 0 || req.ProcessingTimeDays < 0 {
		return fmt.Errorf("%w: service fee and processing time must be non-negative", models.ErrBadRequest)
	}
	if len(req.MaterialsBySize) == 0 {
		return fmt.Errorf("%w: at least one size is required", models.ErrBadRequest)
	}
	for size, entries := range req.MaterialsBySize {
		if strings.TrimSpace(size) == "" {
			return fmt.Errorf("%w: empty size name", models.ErrBadRequest)
		}
		for _, e := range entries {
			if e.MaterialId == "" || e.Quantity < 0 {
				return fmt.Errorf("%w: malformed material entry in size %q", models.ErrBadRequest, size)
			}
		}
	}
	return nil
}

func (ps *ProductService) CreateProduct(ctx context.Context, req models.ProductRequest) (p entities.Product, err error) {
	if req.Type == "" {
		req.Type = entities.ProductTypeTemplate
	}
	if err = validateProduct(req); err != nil {
		return
	}
	prices, err := ps.pricing.ComputeBasePriceBySize(ctx, req.MaterialsBySize, req.ServiceFee)
	if err != nil {
		return
	}
	now := ps.now().UTC()
	p = entities.Product{
		Id:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.Name),
		Category:           req.Category,
		Type:               req.Type,
		RequiresPhoto:      req.RequiresPhoto,
		IsCustomizable:     req.IsCustomizable,
		ProcessingTimeDays: req.ProcessingTimeDays,
		ServiceFee:         req.ServiceFee,
		ImageURL:           req.ImageURL,
		MaterialsBySize:    req.MaterialsBySize,
		BasePriceBySize:    prices,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err = ps.pr.CreateProduct(ctx, p)
	return
}

// UpdateProduct replaces the definition. Base prices are recomputed only when the bill
// of materials or the service fee changed.
func (ps *ProductService) UpdateProduct(ctx context.Context, id string, req models.ProductRequest) (p entities.Product, err error) {
	if req.Type == "" {
		req.Type = entities.ProductTypeTemplate
	}
	if err = validateProduct(req); err != nil {
		return
	}
	old, err := ps.GetProduct(ctx, id)
	if err != nil {
		return
	}

	p = old
	p.Name = strings.TrimSpace(req.Name)
	p.Category = req.Category
	p.Type = req.Type
	p.RequiresPhoto = req.RequiresPhoto
	p.IsCustomizable = req.IsCustomizable
	p.ProcessingTimeDays = req.ProcessingTimeDays
	p.ImageURL = req.ImageURL
	if req.ServiceFee != old.ServiceFee || !sameMaterials(req.MaterialsBySize, old.MaterialsBySize) {
		p.BasePriceBySize, err = ps.pricing.ComputeBasePriceBySize(ctx, req.MaterialsBySize, req.ServiceFee)
		if err != nil {
			return
		}
	}
	p.ServiceFee = req.ServiceFee
	p.MaterialsBySize = req.MaterialsBySize
	p.UpdatedAt = ps.now().UTC()
	err = ps.pr.UpdateProduct(ctx, p)
	return
}

// sameMaterials treats a nil and an empty entry list as equal.
func sameMaterials(a, b map[string][]entities.MaterialEntry) bool {
	return maps.EqualFunc(a, b, slices.Equal[[]entities.MaterialEntry])
}

func (ps *ProductService) GetProduct(ctx context.Context, id string) (p entities.Product, err error) {
	var exists bool
	p, exists, err = ps.pr.GetProductById(ctx, id)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrNotFoundError
	}
	return
}

func (ps *ProductService) ListProducts(ctx context.Context, category string) (previews []entities.ProductPreview, err error) {
	prods, err := ps.pr.ListProducts(ctx, category)
	if err != nil {
		return
	}
	previews = make([]entities.ProductPreview, 0, len(prods))
	for _, p := range prods {
		previews = append(previews, entities.ProductPreview{
			Id:              p.Id,
			Name:            p.Name,
			Category:        p.Category,
			Type:            p.Type,
			ImageURL:        p.ImageURL,
			BasePriceBySize: p.BasePriceBySize,
		})
	}
	return
}

func (ps *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return ps.pr.DeleteProduct(ctx, id)
}

// RepriceAll recomputes every product's base prices from today's catalog. Products
// that cannot be priced are left untouched and reported in failed.
func (ps *ProductService) RepriceAll(ctx context.Context) (updated int, failed map[string]error, err error) {
	prods, err := ps.pr.ListProducts(ctx, "")
	if err != nil {
		return
	}
	failed = map[string]error{}
	for _, p := range prods {
		prices, e := ps.pricing.ComputeBasePriceBySize(ctx, p.MaterialsBySize, p.ServiceFee)
		if e != nil {
			slog.Warn("RepriceAll: product skipped", "id", p.Id, "error", e)
			failed[p.Id] = e
			continue
		}
		if maps.Equal(prices, p.BasePriceBySize) {
			continue
		}
		p.BasePriceBySize = prices
		p.UpdatedAt = ps.now().UTC()
		if e = ps.pr.UpdateProduct(ctx, p); e != nil {
			failed[p.Id] = e
			continue
		}
		updated++
	}
	return
}
