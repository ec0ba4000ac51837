package services

import (
	"context"
	"testing"
	"time"

	"vetra_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	cartFixture
	engine *CheckoutEngine
	orders *mockOrderStore
}

func newCheckoutFixture(products ...*models.Product) checkoutFixture {
	cf := newCartFixture(products...)
	orders := newMockOrderStore()
	engine := NewCheckoutEngine(cf.service, cf.catalog, orders)
	return checkoutFixture{cartFixture: cf, engine: engine, orders: orders}
}

func testInput() CheckoutInput {
	return CheckoutInput{
		CustomerName:  "Alice Dupont",
		Email:         "alice@example.com",
		Address:       "12 rue des Lilas, Bruxelles",
		PaymentMethod: "virement",
	}
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	bonnet := newTestProduct("bonnet", 50, 10)
	f := newCheckoutFixture(veste, bonnet)
	alice := Authenticated("user-1")

	require.NoError(t, f.service.AddToCart(ctx, alice, veste.ID.String(), 2))
	require.NoError(t, f.service.AddToCart(ctx, alice, bonnet.ID.String(), 1))

	order, err := f.engine.Checkout(ctx, alice, testInput())
	require.NoError(t, err)

	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "pending", order.StatusLabel)
	assert.Equal(t, 250.0, order.TotalAmount)
	assert.Len(t, order.Items, 2)
	assert.False(t, order.OrderDate.IsZero())
	assert.Nil(t, order.ApprovedAt)

	// Le stock a été décrémenté ligne par ligne
	assert.Equal(t, 8, f.catalog.stockOf(veste.ID.String()))
	assert.Equal(t, 9, f.catalog.stockOf(bonnet.ID.String()))

	// Le panier est vidé
	items, err := f.service.Lines(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCheckoutSnapshotsCartPricesNotCatalog(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCheckoutFixture(veste)
	alice := Authenticated("user-1")

	require.NoError(t, f.service.AddToCart(ctx, alice, veste.ID.String(), 2))

	// Le prix catalogue monte entre l'ajout et le checkout
	f.catalog.products[veste.ID.String()].Price = 300

	order, err := f.engine.Checkout(ctx, alice, testInput())
	require.NoError(t, err)

	assert.Equal(t, 200.0, order.TotalAmount, "le prix verrouillé à l'ajout fait foi")
	assert.Equal(t, 100.0, order.Items[0].Price)
}

func TestCheckoutRejectsAnonymous(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.engine.Checkout(context.Background(), Anonymous("tok-1"), testInput())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, f.orders.created)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.engine.Checkout(context.Background(), Authenticated("user-1"), testInput())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.orders.created)
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	bonnet := newTestProduct("bonnet", 50, 1)
	f := newCheckoutFixture(veste, bonnet)
	alice := Authenticated("user-1")

	require.NoError(t, f.service.AddToCart(ctx, alice, veste.ID.String(), 2))
	require.NoError(t, f.service.AddToCart(ctx, alice, bonnet.ID.String(), 5))

	_, err := f.engine.Checkout(ctx, alice, testInput())
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Le décrément déjà appliqué sur la veste a été rendu
	assert.Equal(t, 10, f.catalog.stockOf(veste.ID.String()))
	assert.Equal(t, 1, f.catalog.stockOf(bonnet.ID.String()))
	assert.Zero(t, f.orders.created)

	// Le panier est intact, le client peut corriger
	items, err := f.service.Lines(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCheckoutStoreFailureRestoresStock(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCheckoutFixture(veste)
	f.orders.failCreate = true
	alice := Authenticated("user-1")

	require.NoError(t, f.service.AddToCart(ctx, alice, veste.ID.String(), 3))

	_, err := f.engine.Checkout(ctx, alice, testInput())
	require.Error(t, err)

	assert.Equal(t, 10, f.catalog.stockOf(veste.ID.String()))
	assert.Len(t, f.catalog.restores, 1)

	items, _ := f.service.Lines(ctx, alice)
	assert.Len(t, items, 1, "le panier survit à un checkout échoué")
}

func TestCheckoutProductDeletedSinceAdd(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCheckoutFixture(veste)
	alice := Authenticated("user-1")

	require.NoError(t, f.service.AddToCart(ctx, alice, veste.ID.String(), 1))

	// Le produit disparaît du catalogue après l'ajout au panier
	delete(f.catalog.products, veste.ID.String())

	_, err := f.engine.Checkout(ctx, alice, testInput())
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Zero(t, f.orders.created)
}

func TestCheckoutStampsOrderDate(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCheckoutFixture(veste)
	alice := Authenticated("user-1")

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return fixed }

	require.NoError(t, f.service.AddToCart(ctx, alice, veste.ID.String(), 1))

	order, err := f.engine.Checkout(ctx, alice, testInput())
	require.NoError(t, err)
	assert.Equal(t, fixed, order.OrderDate)
}
