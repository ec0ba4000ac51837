package models

import (
	"time"

	"github.com/gocql/gocql"
)

// OrderStatus est stocké tel quel en base (ordinal). Ne JAMAIS réordonner :
// le front et les exports comptables dépendent de ces valeurs.
type OrderStatus int

const (
	StatusPending   OrderStatus = 0
	StatusApproved  OrderStatus = 1
	StatusShipped   OrderStatus = 2
	StatusCancelled OrderStatus = 3
	StatusDelivered OrderStatus = 4
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusShipped:
		return "shipped"
	case StatusCancelled:
		return "cancelled"
	case StatusDelivered:
		return "delivered"
	}
	return "unknown"
}

// ParseOrderStatus convertit un libellé d'API en statut.
func ParseOrderStatus(label string) (OrderStatus, bool) {
	switch label {
	case "pending":
		return StatusPending, true
	case "approved":
		return StatusApproved, true
	case "shipped":
		return StatusShipped, true
	case "cancelled":
		return StatusCancelled, true
	case "delivered":
		return StatusDelivered, true
	}
	return 0, false
}

// Order est immuable après création, à l'exception du statut et de
// l'horodatage correspondant.
type Order struct {
	ID            gocql.UUID  `json:"id"`
	UserID        string      `json:"user_id"`
	CustomerName  string      `json:"customer_name"`
	Email         string      `json:"email"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method"`
	OrderDate     time.Time   `json:"order_date"`
	TotalAmount   float64     `json:"total_amount"`
	Status        OrderStatus `json:"status"`
	StatusLabel   string      `json:"status_label"`
	ApprovedAt    *time.Time  `json:"approved_at,omitempty"`
	ShippedAt     *time.Time  `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time  `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time  `json:"cancelled_at,omitempty"`
	Items         []OrderItem `json:"items"`
}

// OrderItem fige le nom, le prix et l'image du produit au moment de la
// commande. ProductID n'est qu'une référence informative : le produit peut
// être supprimé du catalogue sans toucher aux commandes passées.
type OrderItem struct {
	OrderID     gocql.UUID `json:"order_id"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	ImageURL    string     `json:"image_url"`
	Price       float64    `json:"price"`
	Quantity    int        `json:"quantity"`
}

// Subtotal retourne quantité × prix figé.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}
