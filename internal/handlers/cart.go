package handlers

import (
	"errors"
	"net/http"

	"vetra_back_end/internal/models"
	"vetra_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

var cartService = services.NewCartService(
	services.NewScyllaCatalog(),
	services.NewSessionCartBackend(),
	services.NewDBCartBackend(),
)

//
// 🟢 GET /api/cart
//
func GetCart(c *gin.Context) {
	id := IdentityFromContext(c)

	items, err := cartService.Lines(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": models.CartTotal(items),
		"count": len(items),
	})
}

//
// 🟢 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	id := IdentityFromContext(c)
	err := cartService.AddToCart(c.Request.Context(), id, input.ProductID, input.Quantity)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	case errors.Is(err, services.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	PublishCartUpdate(c.Request.Context(), id, "updated")
	GetCart(c)
}

//
// 🟢 POST /api/cart/remove
//
func RemoveFromCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	id := IdentityFromContext(c)
	if err := cartService.RemoveFromCart(c.Request.Context(), id, input.ProductID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	PublishCartUpdate(c.Request.Context(), id, "updated")
	GetCart(c)
}

//
// 🟢 POST /api/cart/increase  /api/cart/decrease
//
func IncreaseQuantity(c *gin.Context) { adjustQuantity(c, +1) }
func DecreaseQuantity(c *gin.Context) { adjustQuantity(c, -1) }

func adjustQuantity(c *gin.Context, delta int) {
	var input struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	id := IdentityFromContext(c)
	var err error
	if delta > 0 {
		err = cartService.Increase(c.Request.Context(), id, input.ProductID)
	} else {
		err = cartService.Decrease(c.Request.Context(), id, input.ProductID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	PublishCartUpdate(c.Request.Context(), id, "updated")
	GetCart(c)
}

//
// 🟢 POST /api/cart/clear
//
func ClearCart(c *gin.Context) {
	id := IdentityFromContext(c)
	if err := cartService.ClearCart(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}

	PublishCartUpdate(c.Request.Context(), id, "cleared")
	c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}, "total": 0, "count": 0})
}
