package services

import (
	"context"
	"log"
	"time"

	"vetra_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// CheckoutInput porte les coordonnées saisies sur la page de paiement. Elles
// sont copiées telles quelles dans la commande, jamais relues depuis le
// compte utilisateur.
type CheckoutInput struct {
	CustomerName  string
	Email         string
	Address       string
	PaymentMethod string
}

// CheckoutEngine transforme un panier non vide en commande immuable,
// décrémente le stock et vide le panier source.
type CheckoutEngine struct {
	cart    *CartService
	catalog Catalog
	orders  OrderStore
	now     func() time.Time
	newID   func() gocql.UUID
}

func NewCheckoutEngine(cart *CartService, catalog Catalog, orders OrderStore) *CheckoutEngine {
	return &CheckoutEngine{
		cart:    cart,
		catalog: catalog,
		orders:  orders,
		now:     time.Now,
		newID:   func() gocql.UUID { return gocql.UUID(uuid.New()) },
	}
}

// Checkout déroule la commande:
//  1. refus si anonyme (le front renvoie vers le login en gardant la
//     destination) ou si le panier est vide;
//  2. total calculé sur les prix figés du panier — jamais re-lus depuis le
//     catalogue, c'est le prix verrouillé à l'ajout qui fait foi;
//  3. stock décrémenté produit par produit en compare-and-set; au premier
//     refus, les décréments déjà appliqués sont rendus;
//  4. commande + lignes écrites en un seul batch — pas de commande partielle
//     visible; en cas d'échec, le stock est rendu aussi;
//  5. panier vidé, commande retournée pour la page de confirmation.
func (e *CheckoutEngine) Checkout(ctx context.Context, id Identity, input CheckoutInput) (*models.Order, error) {
	if !id.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	items, err := e.cart.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := models.CartTotal(items)

	// Décrément du stock, avec compensation si un produit est refusé
	decremented := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if err := e.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			e.rollbackStock(ctx, decremented)
			return nil, err
		}
		decremented = append(decremented, item)
	}

	order := &models.Order{
		ID:            e.newID(),
		UserID:        id.UserID,
		CustomerName:  input.CustomerName,
		Email:         input.Email,
		Address:       input.Address,
		PaymentMethod: input.PaymentMethod,
		OrderDate:     e.now(),
		TotalAmount:   total,
		Status:        models.StatusPending,
		StatusLabel:   models.StatusPending.String(),
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.Name,
			ImageURL:    item.ImageURL,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}

	if err := e.orders.Create(ctx, order); err != nil {
		e.rollbackStock(ctx, decremented)
		return nil, err
	}

	if err := e.cart.ClearCart(ctx, id); err != nil {
		// La commande existe, le panier fantôme est gênant mais pas grave
		log.Printf("⚠️ Panier de %s non vidé après la commande %s: %v", id.UserID, order.ID, err)
	}

	log.Printf("🛒 Commande %s créée pour %s (%.2f€, %d lignes)", order.ID, input.Email, total, len(order.Items))
	return order, nil
}

func (e *CheckoutEngine) rollbackStock(ctx context.Context, items []models.CartItem) {
	for _, item := range items {
		if err := e.catalog.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("❌ Stock non restitué pour %s (x%d): %v", item.ProductID, item.Quantity, err)
		}
	}
}
