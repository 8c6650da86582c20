package services

import (
	"context"
	"testing"

	"bouquetStore/entities"
	"bouquetStore/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roseProduct() entities.Product {
	return entities.Product{
		Id:             "p-rose",
		Name:           "Rose bouquet",
		Type:           entities.ProductTypeTemplate,
		IsCustomizable: true,
		ServiceFee:     2000,
		MaterialsBySize: map[string][]entities.MaterialEntry{
			"small": {{MaterialId: "rose", Quantity: 3}},
			"large": {{MaterialId: "rose", Quantity: 10}, {MaterialId: "wrap", Quantity: 1}},
		},
		BasePriceBySize: map[string]int64{"small": 17000, "large": 53500},
	}
}

func newTestCartService(catalog *fakeMaterialRepo, products ...entities.Product) (CartService, *fakeCartRepo) {
	cart := newFakeCartRepo()
	cs := NewCartService(newFakeProductRepo(products...), cart, NewPricingService(catalog))
	return cs, cart
}

func TestAddCartItem(t *testing.T) {
	cs, cart := newTestCartService(roseCatalog(), roseProduct())

	item, err := cs.AddCartItem(context.Background(), "u1", models.CartRequest{
		ProductId: "p-rose",
		Size:      "small",
		Quantity:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(34000), item.TotalPrice)
	assert.Equal(t, int64(2000), item.ServicePrice)
	assert.Equal(t, "Rose bouquet", item.ProductName)
	assert.Contains(t, cart.items["u1"], item.Id)
}

func TestAddCartItemValidation(t *testing.T) {
	plain := roseProduct()
	plain.Id = "p-plain"
	plain.IsCustomizable = false
	photo := roseProduct()
	photo.Id = "p-photo"
	photo.RequiresPhoto = true

	tests := []struct {
		name string
		req  models.CartRequest
		want error
	}{
		{name: "zero quantity", req: models.CartRequest{ProductId: "p-rose", Size: "small", Quantity: 0}, want: models.ErrBadRequest},
		{name: "unknown product", req: models.CartRequest{ProductId: "nope", Size: "small", Quantity: 1}, want: models.ErrNotFoundError},
		{name: "unknown size", req: models.CartRequest{ProductId: "p-rose", Size: "xl", Quantity: 1}, want: models.ErrBadRequest},
		{name: "custom on fixed product", req: models.CartRequest{ProductId: "p-plain", Size: "small", Quantity: 1,
			CustomMaterials: []entities.MaterialEntry{{MaterialId: "ribbon", Quantity: 1}}}, want: models.ErrBadRequest},
		{name: "photo missing", req: models.CartRequest{ProductId: "p-photo", Size: "small", Quantity: 1}, want: models.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, cart := newTestCartService(roseCatalog(), roseProduct(), plain, photo)
			_, err := cs.AddCartItem(context.Background(), "u1", tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, cart.items["u1"])
		})
	}
}

func TestCartSnapshotSurvivesPriceChange(t *testing.T) {
	catalog := roseCatalog()
	cs, _ := newTestCartService(catalog, roseProduct())
	ctx := context.Background()

	item, err := cs.AddCartItem(ctx, "u1", models.CartRequest{ProductId: "p-rose", Size: "small", Quantity: 1})
	require.NoError(t, err)

	rose := catalog.materials["rose"]
	rose.Price = 6000
	catalog.materials["rose"] = rose

	cart, err := cs.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(17000), cart.Items[0].TotalPrice)
	assert.Equal(t, int64(17000), cart.TotalPrice)

	detail, err := cs.GetCartItemDetail(ctx, "u1", item.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(17000), detail.TotalPrice)
	assert.Equal(t, int64(20000), detail.CurrentTotal)
}

func TestUpdateCartItemKeepsServicePrice(t *testing.T) {
	products := newFakeProductRepo(roseProduct())
	cart := newFakeCartRepo()
	cs := NewCartService(products, cart, NewPricingService(roseCatalog()))
	ctx := context.Background()

	item, err := cs.AddCartItem(ctx, "u1", models.CartRequest{ProductId: "p-rose", Size: "small", Quantity: 1})
	require.NoError(t, err)

	p := products.products["p-rose"]
	p.ServiceFee = 9000
	products.products["p-rose"] = p

	updated, err := cs.UpdateCartItem(ctx, "u1", item.Id, models.CartUpdateRequest{
		Quantity:        2,
		CustomMaterials: []entities.MaterialEntry{{MaterialId: "ribbon", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), updated.ServicePrice)
	assert.Equal(t, int64((15000+500+2000)*2), updated.TotalPrice)

	_, err = cs.UpdateCartItem(ctx, "u1", "missing", models.CartUpdateRequest{Quantity: 1})
	assert.ErrorIs(t, err, models.ErrNotFoundError)
}

func TestRemoveCartItem(t *testing.T) {
	cs, cart := newTestCartService(roseCatalog(), roseProduct())
	ctx := context.Background()

	item, err := cs.AddCartItem(ctx, "u1", models.CartRequest{ProductId: "p-rose", Size: "small", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, cs.RemoveCartItem(ctx, "u1", item.Id))
	assert.Empty(t, cart.items["u1"])
	assert.ErrorIs(t, cs.RemoveCartItem(ctx, "u1", item.Id), models.ErrNotFoundError)
}
