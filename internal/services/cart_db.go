package services

import (
	"context"
	"fmt"
	"time"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Le panier d'un utilisateur connecté est persisté dans ScyllaDB: une
// partition par utilisateur dans carts_by_user, une ligne par produit.
// La réécriture du panier part dans un batch logged sur une seule partition,
// donc appliquée atomiquement et commitée avant de rendre la main.
type DBCartBackend struct{}

func NewDBCartBackend() *DBCartBackend {
	return &DBCartBackend{}
}

func (b *DBCartBackend) Lines(ctx context.Context, userID string) ([]models.CartItem, error) {
	query, err := database.QueryCartLines(userID)
	if err != nil {
		return nil, err
	}

	iter := query.WithContext(ctx).Iter()

	items := []models.CartItem{}
	var item models.CartItem
	for iter.Scan(&item.ProductID, &item.Name, &item.Price, &item.ImageURL, &item.Quantity) {
		items = append(items, item)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture panier de %s: %v", userID, err)
	}
	return items, nil
}

// Save réécrit le panier: upsert de chaque ligne, et DELETE ligne à ligne
// uniquement pour les produits retirés. Jamais de DELETE sur une ligne
// réinsérée dans le même batch: le batch porte un seul timestamp et, à
// timestamp égal, le tombstone gagne sur l'écriture — un DELETE de partition
// suivi des INSERT effacerait tout le panier qu'on vient d'écrire.
func (b *DBCartBackend) Save(ctx context.Context, userID string, items []models.CartItem) error {
	session, err := database.GetCartsSession()
	if err != nil {
		return err
	}

	existing, err := b.Lines(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, item := range items {
		batch.Query(`INSERT INTO carts_by_user (user_id, product_id, name, price, image_url, quantity, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, item.ProductID, item.Name, item.Price, item.ImageURL, item.Quantity, now)
	}
	for _, productID := range removedProductIDs(existing, items) {
		batch.Query("DELETE FROM carts_by_user WHERE user_id = ? AND product_id = ?", userID, productID)
	}

	if err := session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("écriture panier de %s: %v", userID, err)
	}
	return nil
}

// removedProductIDs liste les produits présents en base mais absents du
// nouveau panier: les seules lignes que Save a le droit de supprimer.
func removedProductIDs(existing, next []models.CartItem) []string {
	kept := make(map[string]struct{}, len(next))
	for _, item := range next {
		kept[item.ProductID] = struct{}{}
	}

	var removed []string
	for _, item := range existing {
		if _, ok := kept[item.ProductID]; !ok {
			removed = append(removed, item.ProductID)
		}
	}
	return removed
}

func (b *DBCartBackend) Clear(ctx context.Context, userID string) error {
	session, err := database.GetCartsSession()
	if err != nil {
		return err
	}
	return session.Query("DELETE FROM carts_by_user WHERE user_id = ?", userID).WithContext(ctx).Exec()
}
