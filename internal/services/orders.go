package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/models"

	"github.com/gocql/gocql"
)

// OrderStore persiste les commandes. Une commande est écrite une fois pour
// toutes; seuls le statut et son horodatage bougent ensuite.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus, stampedAt time.Time) error
}

// =============================================
// IMPLÉMENTATION SCYLLA
// =============================================

type ScyllaOrderStore struct{}

func NewScyllaOrderStore() *ScyllaOrderStore {
	return &ScyllaOrderStore{}
}

// Create écrit la commande, ses lignes et l'index par utilisateur dans un
// seul batch logged: soit tout est appliqué, soit rien — pas de commande
// visible sans lignes.
func (s *ScyllaOrderStore) Create(ctx context.Context, order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO orders (order_id, user_id, customer_name, email, address, payment_method, order_date, total_amount, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.CustomerName, order.Email, order.Address,
		order.PaymentMethod, order.OrderDate, order.TotalAmount, int(order.Status))

	for _, item := range order.Items {
		batch.Query(`INSERT INTO order_items (order_id, product_id, product_name, image_url, price, quantity)
			VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID, item.ProductID, item.ProductName, item.ImageURL, item.Price, item.Quantity)
	}

	batch.Query(`INSERT INTO orders_by_user (user_id, order_id, order_date, total_amount, status)
		VALUES (?, ?, ?, ?, ?)`,
		order.UserID, order.ID, order.OrderDate, order.TotalAmount, int(order.Status))

	if err := session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("création commande %s: %v", order.ID, err)
	}
	return nil
}

func (s *ScyllaOrderStore) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	orderUUID, err := gocql.ParseUUID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var order models.Order
	var status int
	err = session.Query(`SELECT order_id, user_id, customer_name, email, address, payment_method, order_date, total_amount, status, approved_at, shipped_at, delivered_at, cancelled_at
		FROM orders WHERE order_id = ?`, orderUUID).WithContext(ctx).Scan(
		&order.ID, &order.UserID, &order.CustomerName, &order.Email, &order.Address,
		&order.PaymentMethod, &order.OrderDate, &order.TotalAmount, &status,
		&order.ApprovedAt, &order.ShippedAt, &order.DeliveredAt, &order.CancelledAt)
	if err == gocql.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture commande %s: %v", orderID, err)
	}
	order.Status = models.OrderStatus(status)
	order.StatusLabel = order.Status.String()

	iter := session.Query(`SELECT order_id, product_id, product_name, image_url, price, quantity
		FROM order_items WHERE order_id = ?`, orderUUID).WithContext(ctx).Iter()
	var item models.OrderItem
	for iter.Scan(&item.OrderID, &item.ProductID, &item.ProductName, &item.ImageURL, &item.Price, &item.Quantity) {
		order.Items = append(order.Items, item)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture lignes commande %s: %v", orderID, err)
	}

	return &order, nil
}

// ListByUser retourne les commandes d'un utilisateur, les plus récentes en
// premier, via l'index orders_by_user puis une lecture par commande.
func (s *ScyllaOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT order_id FROM orders_by_user WHERE user_id = ?", userID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing commandes de %s: %v", userID, err)
	}

	orders := []models.Order{}
	for _, oid := range ids {
		order, err := s.GetByID(ctx, oid.String())
		if err != nil {
			log.Printf("⚠️ Commande %s référencée mais illisible: %v", oid, err)
			continue
		}
		orders = append(orders, *order)
	}
	sortOrdersByDateDesc(orders)
	return orders, nil
}

// ListAll retourne toutes les commandes (vue admin).
func (s *ScyllaOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id, user_id, customer_name, email, address, payment_method, order_date, total_amount, status, approved_at, shipped_at, delivered_at, cancelled_at
		FROM orders`).WithContext(ctx).Iter()

	orders := []models.Order{}
	var order models.Order
	var status int
	for iter.Scan(&order.ID, &order.UserID, &order.CustomerName, &order.Email, &order.Address,
		&order.PaymentMethod, &order.OrderDate, &order.TotalAmount, &status,
		&order.ApprovedAt, &order.ShippedAt, &order.DeliveredAt, &order.CancelledAt) {
		order.Status = models.OrderStatus(status)
		order.StatusLabel = order.Status.String()
		orders = append(orders, order)
		order = models.Order{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing commandes: %v", err)
	}
	sortOrdersByDateDesc(orders)
	return orders, nil
}

// UpdateStatus applique la transition en compare-and-set: si le statut a
// changé entre la lecture et l'écriture (deux opérateurs en même temps), le
// LWT refuse et on renvoie ErrInvalidTransition.
func (s *ScyllaOrderStore) UpdateStatus(ctx context.Context, orderID string, from, to models.OrderStatus, stampedAt time.Time) error {
	orderUUID, err := gocql.ParseUUID(orderID)
	if err != nil {
		return ErrOrderNotFound
	}

	column, ok := statusTimestampColumn(to)
	if !ok {
		return ErrInvalidTransition
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	cql := fmt.Sprintf("UPDATE orders SET status = ?, %s = ? WHERE order_id = ? IF status = ?", column)
	var previous int
	applied, err := session.Query(cql, int(to), stampedAt, orderUUID, int(from)).
		WithContext(ctx).ScanCAS(&previous)
	if err != nil {
		return fmt.Errorf("mise à jour statut %s: %v", orderID, err)
	}
	if !applied {
		return ErrInvalidTransition
	}

	// Index secondaire: best effort, la table orders fait foi
	var userID string
	if err := session.Query("SELECT user_id FROM orders WHERE order_id = ?", orderUUID).
		WithContext(ctx).Scan(&userID); err == nil {
		if err := session.Query("UPDATE orders_by_user SET status = ? WHERE user_id = ? AND order_id = ?",
			int(to), userID, orderUUID).WithContext(ctx).Exec(); err != nil {
			log.Printf("⚠️ Statut non propagé dans orders_by_user pour %s: %v", orderID, err)
		}
	}

	return nil
}

func statusTimestampColumn(to models.OrderStatus) (string, bool) {
	switch to {
	case models.StatusApproved:
		return "approved_at", true
	case models.StatusShipped:
		return "shipped_at", true
	case models.StatusDelivered:
		return "delivered_at", true
	case models.StatusCancelled:
		return "cancelled_at", true
	}
	return "", false
}

func sortOrdersByDateDesc(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
}

// =============================================
// CYCLE DE VIE DES COMMANDES
// =============================================

// allowedFrom liste, pour chaque statut cible, les statuts de départ
// acceptés. Delivered et Cancelled sont terminaux: aucune transition n'en
// sort. L'ancienne version du back acceptait n'importe quel saut (y compris
// Cancelled → Shipped), c'était un bug, pas une feature.
var allowedFrom = map[models.OrderStatus][]models.OrderStatus{
	models.StatusApproved:  {models.StatusPending},
	models.StatusShipped:   {models.StatusApproved},
	models.StatusDelivered: {models.StatusShipped},
	models.StatusCancelled: {models.StatusPending, models.StatusApproved, models.StatusShipped},
}

// Lifecycle fait avancer le statut d'une commande sous les règles de
// transition strictes et horodate chaque passage.
type Lifecycle struct {
	store OrderStore
	now   func() time.Time
	// notify est appelé après une transition réussie (e-mail client).
	// Un échec de notification n'annule jamais la transition.
	notify func(order *models.Order)
}

func NewLifecycle(store OrderStore) *Lifecycle {
	return &Lifecycle{store: store, now: time.Now}
}

// WithNotifier branche l'envoi d'e-mails de suivi.
func (l *Lifecycle) WithNotifier(notify func(order *models.Order)) *Lifecycle {
	l.notify = notify
	return l
}

func (l *Lifecycle) Approve(ctx context.Context, orderID string) (*models.Order, error) {
	return l.Transition(ctx, orderID, models.StatusApproved)
}

func (l *Lifecycle) Ship(ctx context.Context, orderID string) (*models.Order, error) {
	return l.Transition(ctx, orderID, models.StatusShipped)
}

func (l *Lifecycle) Deliver(ctx context.Context, orderID string) (*models.Order, error) {
	return l.Transition(ctx, orderID, models.StatusDelivered)
}

// Cancel annule la commande. Le stock n'est volontairement pas restitué:
// même comportement que la boutique d'origine, la remise en rayon est une
// décision manuelle.
func (l *Lifecycle) Cancel(ctx context.Context, orderID string) (*models.Order, error) {
	return l.Transition(ctx, orderID, models.StatusCancelled)
}

// Transition vérifie la légalité du passage, l'applique en CAS et stampe
// l'horodatage du nouveau statut. Un ré-appel sur un statut déjà atteint
// (double Approve) est refusé, le premier horodatage est conservé.
func (l *Lifecycle) Transition(ctx context.Context, orderID string, to models.OrderStatus) (*models.Order, error) {
	order, err := l.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(order.Status, to) {
		return nil, ErrInvalidTransition
	}

	from := order.Status
	stampedAt := l.now()
	if err := l.store.UpdateStatus(ctx, orderID, from, to, stampedAt); err != nil {
		return nil, err
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

	log.Printf("✅ Commande %s: %s → %s", orderID, from.String(), to.String())
	if l.notify != nil {
		l.notify(order)
	}
	return order, nil
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, allowed := range allowedFrom[to] {
		if from == allowed {
			return true
		}
	}
	return false
}
