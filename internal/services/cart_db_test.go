package services

import (
	"testing"

	"vetra_back_end/internal/models"

	"github.com/stretchr/testify/assert"
)

// Le batch de Save ne doit jamais contenir un DELETE et un INSERT pour le
// même produit: à timestamp de batch égal, le tombstone gagnerait sur
// l'écriture et la ligne disparaîtrait. Seuls les produits retirés du panier
// ont droit à un DELETE.

func TestRemovedProductIDsOnlyListsDroppedLines(t *testing.T) {
	existing := []models.CartItem{
		{ProductID: "p-veste", Quantity: 2},
		{ProductID: "p-bonnet", Quantity: 1},
		{ProductID: "p-echarpe", Quantity: 1},
	}
	next := []models.CartItem{
		{ProductID: "p-veste", Quantity: 5}, // quantité modifiée, ligne conservée
		{ProductID: "p-echarpe", Quantity: 1},
		{ProductID: "p-gants", Quantity: 1}, // nouvelle ligne
	}

	removed := removedProductIDs(existing, next)

	assert.Equal(t, []string{"p-bonnet"}, removed)
	for _, item := range next {
		assert.NotContains(t, removed, item.ProductID,
			"une ligne réinsérée ne doit jamais être supprimée dans le même batch")
	}
}

func TestRemovedProductIDsEmptyNextDropsEverything(t *testing.T) {
	existing := []models.CartItem{
		{ProductID: "p-veste", Quantity: 2},
		{ProductID: "p-bonnet", Quantity: 1},
	}

	removed := removedProductIDs(existing, nil)

	assert.ElementsMatch(t, []string{"p-veste", "p-bonnet"}, removed)
}

func TestRemovedProductIDsFirstSaveDeletesNothing(t *testing.T) {
	next := []models.CartItem{{ProductID: "p-veste", Quantity: 1}}

	assert.Empty(t, removedProductIDs(nil, next))
	assert.Empty(t, removedProductIDs(nil, nil))
}
