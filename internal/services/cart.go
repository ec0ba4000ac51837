package services

import (
	"context"
	"fmt"

	"vetra_back_end/internal/models"
)

// CartBackend est le contrat commun aux deux représentations du panier
// (session Redis pour les invités, ScyllaDB pour les utilisateurs connectés).
// Les règles métier ne sont écrites qu'une seule fois, dans CartService,
// au-dessus de cette interface.
type CartBackend interface {
	Lines(ctx context.Context, key string) ([]models.CartItem, error)
	Save(ctx context.Context, key string, items []models.CartItem) error
	Clear(ctx context.Context, key string) error
}

type CartService struct {
	catalog  Catalog
	sessions CartBackend // paniers invités
	users    CartBackend // paniers persistés
}

func NewCartService(catalog Catalog, sessions, users CartBackend) *CartService {
	return &CartService{catalog: catalog, sessions: sessions, users: users}
}

// backendFor choisit la représentation selon l'identité: le backend persisté
// pour un utilisateur connecté, le backend session sinon.
func (s *CartService) backendFor(id Identity) (CartBackend, string, error) {
	if id.Authenticated() {
		return s.users, id.UserID, nil
	}
	if id.SessionToken != "" {
		return s.sessions, id.SessionToken, nil
	}
	return nil, "", ErrNotAuthenticated
}

// Lines retourne les lignes du panier courant (une seule représentation à la
// fois, jamais la fusion des deux).
func (s *CartService) Lines(ctx context.Context, id Identity) ([]models.CartItem, error) {
	backend, key, err := s.backendFor(id)
	if err != nil {
		return nil, err
	}
	return backend.Lines(ctx, key)
}

// Total retourne Σ quantité × prix instantané.
func (s *CartService) Total(ctx context.Context, id Identity) (float64, error) {
	items, err := s.Lines(ctx, id)
	if err != nil {
		return 0, err
	}
	return models.CartTotal(items), nil
}

// AddToCart ajoute quantity unités d'un produit. Si une ligne existe déjà
// pour ce produit, les quantités s'additionnent et les champs figés (nom,
// prix, image) de la ligne existante sont conservés. Sinon une nouvelle
// ligne est créée avec un instantané du produit au moment de l'ajout.
func (s *CartService) AddToCart(ctx context.Context, id Identity, productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	backend, key, err := s.backendFor(id)
	if err != nil {
		return err
	}

	items, err := backend.Lines(ctx, key)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			return backend.Save(ctx, key, items)
		}
	}

	// Nouvelle ligne: on fige nom, prix et image maintenant
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	items = append(items, models.CartItem{
		ProductID: productID,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.MainImage(),
		Quantity:  quantity,
	})
	return backend.Save(ctx, key, items)
}

// RemoveFromCart supprime la ligne du produit. Ligne absente = no-op.
func (s *CartService) RemoveFromCart(ctx context.Context, id Identity, productID string) error {
	backend, key, err := s.backendFor(id)
	if err != nil {
		return err
	}

	items, err := backend.Lines(ctx, key)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ProductID == productID {
			items = append(items[:i], items[i+1:]...)
			return backend.Save(ctx, key, items)
		}
	}
	return nil
}

// Increase ajoute une unité à la ligne du produit. Ligne absente = no-op.
func (s *CartService) Increase(ctx context.Context, id Identity, productID string) error {
	return s.adjustQuantity(ctx, id, productID, +1)
}

// Decrease retire une unité. À zéro ou moins, la ligne est supprimée — le
// panier ne contient jamais de quantité nulle ou négative.
func (s *CartService) Decrease(ctx context.Context, id Identity, productID string) error {
	return s.adjustQuantity(ctx, id, productID, -1)
}

func (s *CartService) adjustQuantity(ctx context.Context, id Identity, productID string, delta int) error {
	backend, key, err := s.backendFor(id)
	if err != nil {
		return err
	}

	items, err := backend.Lines(ctx, key)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ProductID != productID {
			continue
		}
		items[i].Quantity += delta
		if items[i].Quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		}
		return backend.Save(ctx, key, items)
	}
	return nil
}

// ClearCart vide le panier de l'identité courante.
func (s *CartService) ClearCart(ctx context.Context, id Identity) error {
	backend, key, err := s.backendFor(id)
	if err != nil {
		return err
	}
	return backend.Clear(ctx, key)
}

// MergeSessionCart verse le panier invité dans le panier persisté au moment
// du login. Ligne absente côté persisté: copiée telle quelle (instantanés
// compris). Ligne présente: les quantités s'additionnent et les champs figés
// du panier persisté gagnent. Le panier session est vidé après la fusion,
// donc un second appel avec la même session ne compte rien en double.
// Sans identifiant utilisateur la fusion échoue et la session reste intacte.
func (s *CartService) MergeSessionCart(ctx context.Context, sessionToken, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if sessionToken == "" {
		return nil
	}

	sessionItems, err := s.sessions.Lines(ctx, sessionToken)
	if err != nil {
		return err
	}
	if len(sessionItems) == 0 {
		return nil
	}

	persisted, err := s.users.Lines(ctx, userID)
	if err != nil {
		return err
	}

	for _, si := range sessionItems {
		merged := false
		for i := range persisted {
			if persisted[i].ProductID == si.ProductID {
				persisted[i].Quantity += si.Quantity
				merged = true
				break
			}
		}
		if !merged {
			persisted = append(persisted, si)
		}
	}

	if err := s.users.Save(ctx, userID, persisted); err != nil {
		return fmt.Errorf("fusion panier de %s: %w", userID, err)
	}
	return s.sessions.Clear(ctx, sessionToken)
}
