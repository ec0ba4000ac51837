package services

import "errors"

// Erreurs métier exposées telles quelles aux handlers. Les messages sont
// affichés côté client, ne pas y mettre de détail technique.
var (
	ErrProductNotFound   = errors.New("produit introuvable")
	ErrEmptyCart         = errors.New("le panier est vide")
	ErrInvalidTransition = errors.New("transition de statut invalide")
	ErrNotAuthenticated  = errors.New("utilisateur non authentifié")
	ErrInsufficientStock = errors.New("stock insuffisant")
	ErrInvalidQuantity   = errors.New("quantité invalide")
	ErrOrderNotFound     = errors.New("commande introuvable")
)
