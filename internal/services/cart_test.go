package services

import (
	"context"
	"testing"

	"vetra_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(name string, price float64, stock int) *models.Product {
	return &models.Product{
		ID:        gocql.UUID(uuid.New()),
		Name:      name,
		Price:     price,
		Stock:     stock,
		ImageURLs: []string{"http://minio/products/" + name + ".jpg"},
		IsActive:  true,
	}
}

type cartFixture struct {
	service  *CartService
	catalog  *mockCatalog
	sessions *memoryCartBackend
	users    *memoryCartBackend
}

func newCartFixture(products ...*models.Product) cartFixture {
	catalog := newMockCatalog(products...)
	sessions := newMemoryCartBackend()
	users := newMemoryCartBackend()
	return cartFixture{
		service:  NewCartService(catalog, sessions, users),
		catalog:  catalog,
		sessions: sessions,
		users:    users,
	}
}

func TestAddToCartSnapshotsProduct(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)
	guest := Anonymous("tok-1")

	require.NoError(t, f.service.AddToCart(ctx, guest, veste.ID.String(), 2))

	items, err := f.service.Lines(ctx, guest)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "veste", items[0].Name)
	assert.Equal(t, 100.0, items[0].Price)
	assert.Equal(t, veste.MainImage(), items[0].ImageURL)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddToCartExistingLineSumsAndKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)
	guest := Anonymous("tok-1")

	require.NoError(t, f.service.AddToCart(ctx, guest, veste.ID.String(), 2))

	// Le prix catalogue change entre les deux ajouts
	f.catalog.products[veste.ID.String()].Price = 150

	require.NoError(t, f.service.AddToCart(ctx, guest, veste.ID.String(), 3))

	items, err := f.service.Lines(ctx, guest)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 100.0, items[0].Price, "le prix figé à l'ajout initial fait foi")
}

func TestAddToCartUnknownProduct(t *testing.T) {
	f := newCartFixture()
	guest := Anonymous("tok-1")

	err := f.service.AddToCart(context.Background(), guest, uuid.NewString(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	items, _ := f.service.Lines(context.Background(), guest)
	assert.Empty(t, items, "un ajout refusé ne laisse aucune trace")
}

func TestAddToCartRejectsInvalidQuantity(t *testing.T) {
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)
	guest := Anonymous("tok-1")

	assert.ErrorIs(t, f.service.AddToCart(context.Background(), guest, veste.ID.String(), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, f.service.AddToCart(context.Background(), guest, veste.ID.String(), -3), ErrInvalidQuantity)
}

func TestCartTotalIsSumOfSnapshots(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	bonnet := newTestProduct("bonnet", 50, 10)
	f := newCartFixture(veste, bonnet)
	guest := Anonymous("tok-1")

	require.NoError(t, f.service.AddToCart(ctx, guest, veste.ID.String(), 2))
	require.NoError(t, f.service.AddToCart(ctx, guest, bonnet.ID.String(), 1))

	total, err := f.service.Total(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, 250.0, total)
}

func TestDecreaseRemovesLineAtZero(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)
	guest := Anonymous("tok-1")

	require.NoError(t, f.service.AddToCart(ctx, guest, veste.ID.String(), 1))
	require.NoError(t, f.service.Decrease(ctx, guest, veste.ID.String()))

	items, err := f.service.Lines(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, items, "le panier ne contient jamais de quantité nulle")
}

func TestRemoveAbsentLineIsNoOp(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)
	guest := Anonymous("tok-1")

	require.NoError(t, f.service.AddToCart(ctx, guest, veste.ID.String(), 1))
	require.NoError(t, f.service.RemoveFromCart(ctx, guest, uuid.NewString()))

	items, err := f.service.Lines(ctx, guest)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestBackendSelectionByIdentity(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)

	require.NoError(t, f.service.AddToCart(ctx, Anonymous("tok-1"), veste.ID.String(), 1))
	require.NoError(t, f.service.AddToCart(ctx, Authenticated("user-1"), veste.ID.String(), 2))

	assert.Len(t, f.sessions.carts["tok-1"], 1)
	assert.Len(t, f.users.carts["user-1"], 1)
	assert.Equal(t, 2, f.users.carts["user-1"][0].Quantity)
}

func TestCartWithoutIdentityRejected(t *testing.T) {
	f := newCartFixture()

	_, err := f.service.Lines(context.Background(), Identity{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

// --- Fusion au login ---

func TestMergeCopiesDisjointLines(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	bonnet := newTestProduct("bonnet", 50, 10)
	f := newCartFixture(veste, bonnet)

	require.NoError(t, f.service.AddToCart(ctx, Anonymous("tok-1"), veste.ID.String(), 2))
	require.NoError(t, f.service.AddToCart(ctx, Authenticated("user-1"), bonnet.ID.String(), 1))

	require.NoError(t, f.service.MergeSessionCart(ctx, "tok-1", "user-1"))

	items, err := f.service.Lines(ctx, Authenticated("user-1"))
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 250.0, models.CartTotal(items))
}

func TestMergeSumsQuantitiesAndKeepsPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)

	// Le panier persisté a été rempli quand la veste coûtait 80€
	require.NoError(t, f.users.Save(ctx, "user-1", []models.CartItem{
		{ProductID: veste.ID.String(), Name: "veste", Price: 80, Quantity: 1},
	}))
	require.NoError(t, f.service.AddToCart(ctx, Anonymous("tok-1"), veste.ID.String(), 2))

	require.NoError(t, f.service.MergeSessionCart(ctx, "tok-1", "user-1"))

	items, err := f.service.Lines(ctx, Authenticated("user-1"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 80.0, items[0].Price, "l'instantané persisté gagne sur celui de la session")
}

func TestMergeClearsSessionAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)

	require.NoError(t, f.service.AddToCart(ctx, Anonymous("tok-1"), veste.ID.String(), 2))

	require.NoError(t, f.service.MergeSessionCart(ctx, "tok-1", "user-1"))
	// Rejouer la fusion avec la même session ne compte rien en double
	require.NoError(t, f.service.MergeSessionCart(ctx, "tok-1", "user-1"))

	sessionItems, err := f.service.Lines(ctx, Anonymous("tok-1"))
	require.NoError(t, err)
	assert.Empty(t, sessionItems)

	items, err := f.service.Lines(ctx, Authenticated("user-1"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestMergeWithoutUserFailsAndKeepsSession(t *testing.T) {
	ctx := context.Background()
	veste := newTestProduct("veste", 100, 10)
	f := newCartFixture(veste)

	require.NoError(t, f.service.AddToCart(ctx, Anonymous("tok-1"), veste.ID.String(), 2))

	err := f.service.MergeSessionCart(ctx, "tok-1", "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	items, _ := f.service.Lines(ctx, Anonymous("tok-1"))
	assert.Len(t, items, 1, "la session survit à une fusion refusée")
}

func TestMergeEmptySessionIsNoOp(t *testing.T) {
	ctx := context.Background()
	bonnet := newTestProduct("bonnet", 50, 10)
	f := newCartFixture(bonnet)

	require.NoError(t, f.service.AddToCart(ctx, Authenticated("user-1"), bonnet.ID.String(), 1))
	require.NoError(t, f.service.MergeSessionCart(ctx, "tok-vide", "user-1"))

	items, err := f.service.Lines(ctx, Authenticated("user-1"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}
