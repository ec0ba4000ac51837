package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"vetra_back_end/internal/models"
)

// memoryCartBackend remplace Redis/Scylla dans les tests: un map protégé,
// mêmes contrats que les vrais backends (clé absente = panier vide).
type memoryCartBackend struct {
	mu    sync.RWMutex
	carts map[string][]models.CartItem
}

func newMemoryCartBackend() *memoryCartBackend {
	return &memoryCartBackend{carts: make(map[string][]models.CartItem)}
}

func (m *memoryCartBackend) Lines(_ context.Context, key string) ([]models.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]models.CartItem, len(m.carts[key]))
	copy(items, m.carts[key])
	return items, nil
}

func (m *memoryCartBackend) Save(_ context.Context, key string, items []models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make([]models.CartItem, len(items))
	copy(saved, items)
	m.carts[key] = saved
	return nil
}

func (m *memoryCartBackend) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, key)
	return nil
}

// mockCatalog sert des produits en mémoire et trace les mouvements de stock
// pour vérifier décréments et compensations.
type mockCatalog struct {
	mu       sync.RWMutex
	products map[string]*models.Product

	decrements []stockMove
	restores   []stockMove
}

type stockMove struct {
	productID string
	quantity  int
}

func newMockCatalog(products ...*models.Product) *mockCatalog {
	c := &mockCatalog{products: make(map[string]*models.Product)}
	for _, p := range products {
		c.products[p.ID.String()] = p
	}
	return c
}

func (c *mockCatalog) GetByID(_ context.Context, productID string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (c *mockCatalog) DecrementStock(_ context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	c.decrements = append(c.decrements, stockMove{productID, quantity})
	return nil
}

func (c *mockCatalog) RestoreStock(_ context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += quantity
	c.restores = append(c.restores, stockMove{productID, quantity})
	return nil
}

func (c *mockCatalog) stockOf(productID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products[productID].Stock
}

// mockOrderStore garde les commandes en mémoire et applique le même
// compare-and-set sur le statut que l'implémentation Scylla.
type mockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*models.Order

	failCreate bool
	created    int
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: make(map[string]*models.Order)}
}

func (s *mockOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return errors.New("écriture refusée")
	}
	clone := *order
	s.orders[order.ID.String()] = &clone
	s.created++
	return nil
}

func (s *mockOrderStore) GetByID(_ context.Context, orderID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (s *mockOrderStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	sortOrdersByDateDesc(orders)
	return orders, nil
}

func (s *mockOrderStore) ListAll(_ context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []models.Order
	for _, o := range s.orders {
		orders = append(orders, *o)
	}
	sortOrdersByDateDesc(orders)
	return orders, nil
}

func (s *mockOrderStore) UpdateStatus(_ context.Context, orderID string, from, to models.OrderStatus, stampedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	if order.Status != from {
		return ErrInvalidTransition
	}
	order.Status = to
	order.StatusLabel = to.String()
	switch to {
	case models.StatusApproved:
		order.ApprovedAt = &stampedAt
	case models.StatusShipped:
		order.ShippedAt = &stampedAt
	case models.StatusDelivered:
		order.DeliveredAt = &stampedAt
	case models.StatusCancelled:
		order.CancelledAt = &stampedAt
	}
	return nil
}
