package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"vetra_back_end/internal/models"
	"vetra_back_end/internal/services"
	"vetra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

var checkoutEngine = services.NewCheckoutEngine(
	cartService,
	services.NewScyllaCatalog(),
	services.NewScyllaOrderStore(),
)

//
// 🟢 POST /api/checkout
//
// Crée la commande depuis le panier persisté de l'utilisateur connecté.
// Un anonyme est renvoyé vers le login avec sa destination d'origine.
func Checkout(c *gin.Context) {
	var req struct {
		CustomerName  string `json:"customer_name" binding:"required"`
		Email         string `json:"email" binding:"required,email"`
		Address       string `json:"address" binding:"required"`
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	id := IdentityFromContext(c)
	order, err := checkoutEngine.Checkout(c.Request.Context(), id, services.CheckoutInput{
		CustomerName:  req.CustomerName,
		Email:         req.Email,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
	})

	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    "Connectez-vous pour finaliser votre commande",
			"redirect": "/login?returnUrl=/checkout",
		})
		return
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide", "redirect": "/cart"})
		return
	case errors.Is(err, services.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant pour un des articles"})
		return
	case errors.Is(err, services.ErrProductNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": "Un article du panier n'existe plus"})
		return
	case err != nil:
		log.Printf("❌ Checkout échoué pour %s: %v", id.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	PublishCartUpdate(c.Request.Context(), id, "cleared")

	// Confirmation par e-mail, hors du chemin de la réponse. La facture PDF
	// est jointe si le rendu passe, l'e-mail part quand même sinon.
	go func(o models.Order) {
		var pdf []byte
		qr, err := utils.GenerateSepaQR(os.Getenv("SHOP_IBAN"), os.Getenv("SHOP_BIC"),
			"Vetra", "Commande "+o.ID.String(), o.TotalAmount)
		if err == nil {
			if buf, err := utils.RenderInvoicePDF(utils.GetFrontendInvoiceBaseURL(), o.ID.String(), qr); err == nil {
				pdf = buf
			} else {
				log.Printf("⚠️ Facture PDF non jointe pour %s: %v", o.ID, err)
			}
		}

		html := utils.GenerateOrderConfirmationHTML(o)
		if err := utils.SendOrderEmail(o.Email, "Confirmation de votre commande Vetra", html, pdf); err != nil {
			log.Printf("⚠️ E-mail de confirmation non envoyé pour %s: %v", o.ID, err)
		}
	}(*order)

	c.JSON(http.StatusCreated, gin.H{
		"order_id": order.ID,
		"total":    order.TotalAmount,
		"status":   order.StatusLabel,
		"redirect": "/orders/" + order.ID.String() + "/confirmation",
	})
}
