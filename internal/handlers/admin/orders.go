package admin

import (
	"errors"
	"log"
	"net/http"

	"vetra_back_end/internal/models"
	"vetra_back_end/internal/services"
	"vetra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	orderStore services.OrderStore = services.NewScyllaOrderStore()

	// Chaque transition réussie déclenche un e-mail de suivi au client.
	// L'e-mail est best effort: un SMTP en panne ne bloque pas l'opérateur.
	lifecycle = services.NewLifecycle(orderStore).WithNotifier(func(order *models.Order) {
		go func(o models.Order) {
			html := utils.GenerateStatusUpdateHTML(o)
			if err := utils.SendOrderEmail(o.Email, "Mise à jour de votre commande Vetra", html, nil); err != nil {
				log.Printf("⚠️ E-mail de suivi non envoyé pour %s: %v", o.ID, err)
			}
		}(*order)
	})
)

//
// 🟢 GET /api/admin/orders
//
// Toutes les commandes de la boutique, les plus récentes en premier.
func ListOrders(c *gin.Context) {
	orders, err := orderStore.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

//
// 🟢 GET /api/admin/orders/stats
//
// Compteurs par statut pour le tableau de bord.
func OrderStats(c *gin.Context) {
	orders, err := orderStore.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	stats := gin.H{
		"total":     len(orders),
		"pending":   0,
		"approved":  0,
		"shipped":   0,
		"delivered": 0,
		"cancelled": 0,
	}
	var revenue float64
	for _, o := range orders {
		label := o.Status.String()
		if n, ok := stats[label].(int); ok {
			stats[label] = n + 1
		}
		if o.Status != models.StatusCancelled {
			revenue += o.TotalAmount
		}
	}
	stats["revenue"] = revenue

	c.JSON(http.StatusOK, stats)
}

//
// 🟢 POST /api/admin/orders/:id/approve  /ship  /deliver  /cancel
//
func ApproveOrder(c *gin.Context) { transition(c, models.StatusApproved) }
func ShipOrder(c *gin.Context)    { transition(c, models.StatusShipped) }
func DeliverOrder(c *gin.Context) { transition(c, models.StatusDelivered) }
func CancelOrder(c *gin.Context)  { transition(c, models.StatusCancelled) }

func transition(c *gin.Context, to models.OrderStatus) {
	order, err := lifecycle.Transition(c.Request.Context(), c.Param("id"), to)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Transition de statut interdite vers " + to.String(),
		})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": order.ID,
		"status":   order.StatusLabel,
	})
}
