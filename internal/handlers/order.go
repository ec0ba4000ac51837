package handlers

import (
	"errors"
	"net/http"

	"vetra_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

var orderStore services.OrderStore = services.NewScyllaOrderStore()

//
// 🟢 GET /api/orders
//
// Historique des commandes de l'utilisateur connecté, les plus récentes
// en premier.
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	orders, err := orderStore.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

//
// 🟢 GET /api/orders/:id
//
// Détail d'une commande. Un client ne voit que les siennes, un admin voit tout.
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	order, err := orderStore.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	if order.UserID != userID && c.GetString("role") != "admin" {
		// On ne révèle pas l'existence de la commande d'un autre client
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	c.JSON(http.StatusOK, order)
}
