package services

import (
	"context"
	"fmt"
	"time"

	"bouquetStore/entities"
	"bouquetStore/models"
	"bouquetStore/repository"

	"github.com/google/uuid"
)

type CartService struct {
	pr      repository.ProductRepository
	cr      repository.CartRepository
	pricing PricingService
	now     func() time.Time
}

func NewCartService(productRepo repository.ProductRepository, cartRepo repository.CartRepository, pricing PricingService) CartService {
	return CartService{
		pr:      productRepo,
		cr:      cartRepo,
		pricing: pricing,
		now:     time.Now,
	}
}

func validateCustomMaterials(p entities.Product, custom []entities.MaterialEntry) error {
	if len(custom) == 0 {
		return nil
	}
	if !p.IsCustomizable {
		return fmt.Errorf("%w: product %s is not customizable", models.ErrBadRequest, p.Id)
	}
	for _, e := range custom {
		if e.MaterialId == "" || e.Quantity < 1 {
			return fmt.Errorf("%w: malformed custom material entry", models.ErrBadRequest)
		}
	}
	return nil
}

func (cs *CartService) getProduct(ctx context.Context, productId string) (p entities.Product, err error) {
	var exists bool
	p, exists, err = cs.pr.GetProductById(ctx, productId)
	if err != nil {
		return
	}
	if !exists {
		err = fmt.Errorf("%w: product %s", models.ErrNotFoundError, productId)
	}
	return
}

// AddCartItem snapshots the product's service fee and today's price into a new cart item.
func (cs *CartService) AddCartItem(ctx context.Context, ownerId string, req models.CartRequest) (item entities.CartItem, err error) {
	if req.Quantity < 1 {
		err = fmt.Errorf("%w: quantity must be at least 1", models.ErrBadRequest)
		return
	}
	p, err := cs.getProduct(ctx, req.ProductId)
	if err != nil {
		return
	}
	if _, ok := p.MaterialsBySize[req.Size]; !ok {
		err = fmt.Errorf("%w: product %s has no size %q", models.ErrBadRequest, p.Id, req.Size)
		return
	}
	if err = validateCustomMaterials(p, req.CustomMaterials); err != nil {
		return
	}
	if p.RequiresPhoto && req.PhotoURL == "" {
		err = fmt.Errorf("%w: product %s requires a photo", models.ErrBadRequest, p.Id)
		return
	}

	total, err := cs.pricing.RecomputeTotal(ctx, p, req.Size, req.Quantity, req.CustomMaterials, p.ServiceFee)
	if err != nil {
		return
	}
	item = entities.CartItem{
		Id:              uuid.NewString(),
		OwnerId:         ownerId,
		ProductId:       p.Id,
		ProductName:     p.Name,
		Size:            req.Size,
		Quantity:        req.Quantity,
		CustomMaterials: req.CustomMaterials,
		ServicePrice:    p.ServiceFee,
		TotalPrice:      total,
		Note:            req.Note,
		PhotoURL:        req.PhotoURL,
		CreatedAt:       cs.now().UTC(),
	}
	err = cs.cr.SetCartItem(ctx, item)
	return
}

// UpdateCartItem changes quantity and customization and reprices the item. The service
// price captured when the item was added is kept.
func (cs *CartService) UpdateCartItem(ctx context.Context, ownerId, itemId string, req models.CartUpdateRequest) (item entities.CartItem, err error) {
	if req.Quantity < 1 {
		err = fmt.Errorf("%w: quantity must be at least 1", models.ErrBadRequest)
		return
	}
	item, err = cs.getItem(ctx, ownerId, itemId)
	if err != nil {
		return
	}
	p, err := cs.getProduct(ctx, item.ProductId)
	if err != nil {
		return
	}
	if err = validateCustomMaterials(p, req.CustomMaterials); err != nil {
		return
	}
	total, err := cs.pricing.RecomputeTotal(ctx, p, item.Size, req.Quantity, req.CustomMaterials, item.ServicePrice)
	if err != nil {
		return
	}
	item.Quantity = req.Quantity
	item.CustomMaterials = req.CustomMaterials
	item.TotalPrice = total
	err = cs.cr.SetCartItem(ctx, item)
	return
}

func (cs *CartService) getItem(ctx context.Context, ownerId, itemId string) (item entities.CartItem, err error) {
	var exists bool
	item, exists, err = cs.cr.GetCartItem(ctx, ownerId, itemId)
	if err != nil {
		return
	}
	if !exists {
		err = fmt.Errorf("%w: cart item %s", models.ErrNotFoundError, itemId)
	}
	return
}

// GetCart returns the stored totals; nothing is repriced.
func (cs *CartService) GetCart(ctx context.Context, ownerId string) (resp entities.CartResponse, err error) {
	items, err := cs.cr.GetCart(ctx, ownerId)
	if err != nil {
		return
	}
	var total int64
	for _, it := range items {
		total += FrozenTotal(it)
	}
	resp = entities.CartResponse{
		Items:      items,
		TotalPrice: total,
	}
	return
}

// GetCartItemDetail returns the stored item next to its price under today's catalog.
// A product deleted since the item was added contributes no standard materials.
func (cs *CartService) GetCartItemDetail(ctx context.Context, ownerId, itemId string) (detail entities.CartItemDetail, err error) {
	item, err := cs.getItem(ctx, ownerId, itemId)
	if err != nil {
		return
	}
	p, _, err := cs.pr.GetProductById(ctx, item.ProductId)
	if err != nil {
		return
	}
	current, err := cs.pricing.RecomputeTotal(ctx, p, item.Size, item.Quantity, item.CustomMaterials, item.ServicePrice)
	if err != nil {
		return
	}
	detail = entities.CartItemDetail{
		CartItem:     item,
		CurrentTotal: current,
	}
	return
}

func (cs *CartService) RemoveCartItem(ctx context.Context, ownerId, itemId string) (err error) {
	if _, err = cs.getItem(ctx, ownerId, itemId); err != nil {
		return
	}
	err = cs.cr.RemoveCartItems(ctx, ownerId, itemId)
	return
}
