package services

import (
	"context"
	"testing"
	"time"

	"vetra_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, store *mockOrderStore, status models.OrderStatus) string {
	t.Helper()
	order := &models.Order{
		ID:           gocql.UUID(uuid.New()),
		UserID:       "user-1",
		CustomerName: "Alice Dupont",
		Email:        "alice@example.com",
		OrderDate:    time.Now(),
		TotalAmount:  250,
		Status:       status,
		StatusLabel:  status.String(),
	}
	require.NoError(t, store.Create(context.Background(), order))
	return order.ID.String()
}

func TestStatusOrdinalsAreFrozen(t *testing.T) {
	// Ces valeurs sont stockées en base et lues par le front: elles ne
	// doivent jamais bouger, même si l'ordre paraît étrange.
	assert.Equal(t, 0, int(models.StatusPending))
	assert.Equal(t, 1, int(models.StatusApproved))
	assert.Equal(t, 2, int(models.StatusShipped))
	assert.Equal(t, 3, int(models.StatusCancelled))
	assert.Equal(t, 4, int(models.StatusDelivered))
}

func TestTransitionMatrix(t *testing.T) {
	cases := []struct {
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{models.StatusPending, models.StatusApproved, true},
		{models.StatusPending, models.StatusShipped, false},
		{models.StatusPending, models.StatusDelivered, false},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusApproved, models.StatusShipped, true},
		{models.StatusApproved, models.StatusApproved, false},
		{models.StatusApproved, models.StatusDelivered, false},
		{models.StatusApproved, models.StatusCancelled, true},
		{models.StatusShipped, models.StatusDelivered, true},
		{models.StatusShipped, models.StatusApproved, false},
		{models.StatusShipped, models.StatusCancelled, true},
		// États terminaux: plus aucune sortie
		{models.StatusDelivered, models.StatusCancelled, false},
		{models.StatusDelivered, models.StatusApproved, false},
		{models.StatusCancelled, models.StatusApproved, false},
		{models.StatusCancelled, models.StatusShipped, false},
		{models.StatusCancelled, models.StatusDelivered, false},
	}

	for _, tc := range cases {
		store := newMockOrderStore()
		lifecycle := NewLifecycle(store)
		orderID := seedOrder(t, store, tc.from)

		_, err := lifecycle.Transition(context.Background(), orderID, tc.to)
		if tc.allowed {
			assert.NoError(t, err, "%s → %s devrait passer", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s → %s devrait être refusé", tc.from, tc.to)
		}
	}
}

func TestApproveStampsTimestamp(t *testing.T) {
	store := newMockOrderStore()
	lifecycle := NewLifecycle(store)
	fixed := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	lifecycle.now = func() time.Time { return fixed }

	orderID := seedOrder(t, store, models.StatusPending)

	order, err := lifecycle.Approve(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, order.Status)
	assert.Equal(t, "approved", order.StatusLabel)
	require.NotNil(t, order.ApprovedAt)
	assert.Equal(t, fixed, *order.ApprovedAt)
	assert.Nil(t, order.ShippedAt)
	assert.Nil(t, order.DeliveredAt)
	assert.Nil(t, order.CancelledAt)
}

func TestFullHappyPathStampsEachStep(t *testing.T) {
	store := newMockOrderStore()
	lifecycle := NewLifecycle(store)
	orderID := seedOrder(t, store, models.StatusPending)
	ctx := context.Background()

	_, err := lifecycle.Approve(ctx, orderID)
	require.NoError(t, err)
	_, err = lifecycle.Ship(ctx, orderID)
	require.NoError(t, err)
	order, err := lifecycle.Deliver(ctx, orderID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDelivered, order.Status)
	assert.NotNil(t, order.ApprovedAt)
	assert.NotNil(t, order.ShippedAt)
	assert.NotNil(t, order.DeliveredAt)
	assert.Nil(t, order.CancelledAt)
}

func TestDoubleApproveKeepsFirstTimestamp(t *testing.T) {
	store := newMockOrderStore()
	lifecycle := NewLifecycle(store)
	orderID := seedOrder(t, store, models.StatusPending)
	ctx := context.Background()

	first, err := lifecycle.Approve(ctx, orderID)
	require.NoError(t, err)

	_, err = lifecycle.Approve(ctx, orderID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := store.GetByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, stored.ApprovedAt)
	assert.Equal(t, *first.ApprovedAt, *stored.ApprovedAt, "le premier horodatage est conservé")
}

func TestCancelFromEachActiveState(t *testing.T) {
	for _, from := range []models.OrderStatus{models.StatusPending, models.StatusApproved, models.StatusShipped} {
		store := newMockOrderStore()
		lifecycle := NewLifecycle(store)
		orderID := seedOrder(t, store, from)

		order, err := lifecycle.Cancel(context.Background(), orderID)
		require.NoError(t, err, "annulation depuis %s", from)
		assert.Equal(t, models.StatusCancelled, order.Status)
		assert.NotNil(t, order.CancelledAt)
	}
}

func TestTransitionUnknownOrder(t *testing.T) {
	lifecycle := NewLifecycle(newMockOrderStore())

	_, err := lifecycle.Approve(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestNotifierCalledAfterTransition(t *testing.T) {
	store := newMockOrderStore()
	var notified *models.Order
	lifecycle := NewLifecycle(store).WithNotifier(func(order *models.Order) {
		notified = order
	})
	orderID := seedOrder(t, store, models.StatusPending)

	_, err := lifecycle.Approve(context.Background(), orderID)
	require.NoError(t, err)

	require.NotNil(t, notified)
	assert.Equal(t, models.StatusApproved, notified.Status)
}

func TestNotifierNotCalledOnRefusedTransition(t *testing.T) {
	store := newMockOrderStore()
	called := false
	lifecycle := NewLifecycle(store).WithNotifier(func(*models.Order) { called = true })
	orderID := seedOrder(t, store, models.StatusDelivered)

	_, err := lifecycle.Cancel(context.Background(), orderID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, called)
}

func TestConcurrentTransitionLosesCompareAndSet(t *testing.T) {
	store := newMockOrderStore()
	orderID := seedOrder(t, store, models.StatusPending)
	ctx := context.Background()

	// Un autre opérateur passe la commande en approved entre notre lecture
	// et notre écriture
	require.NoError(t, store.UpdateStatus(ctx, orderID, models.StatusPending, models.StatusApproved, time.Now()))

	err := store.UpdateStatus(ctx, orderID, models.StatusPending, models.StatusApproved, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestListByUserNewestFirst(t *testing.T) {
	store := newMockOrderStore()
	ctx := context.Background()

	old := &models.Order{ID: gocql.UUID(uuid.New()), UserID: "user-1", OrderDate: time.Now().Add(-48 * time.Hour)}
	recent := &models.Order{ID: gocql.UUID(uuid.New()), UserID: "user-1", OrderDate: time.Now()}
	other := &models.Order{ID: gocql.UUID(uuid.New()), UserID: "user-2", OrderDate: time.Now()}
	require.NoError(t, store.Create(ctx, old))
	require.NoError(t, store.Create(ctx, recent))
	require.NoError(t, store.Create(ctx, other))

	orders, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, recent.ID, orders[0].ID)
	assert.Equal(t, old.ID, orders[1].ID)
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []models.OrderStatus{models.StatusPending, models.StatusApproved,
		models.StatusShipped, models.StatusCancelled, models.StatusDelivered} {
		parsed, ok := models.ParseOrderStatus(s.String())
		require.True(t, ok)
		assert.Equal(t, s, parsed)
	}

	_, ok := models.ParseOrderStatus("expédiée")
	assert.False(t, ok)
}
