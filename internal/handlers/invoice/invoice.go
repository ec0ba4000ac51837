package invoice

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"vetra_back_end/internal/services"
	"vetra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

var orderStore services.OrderStore = services.NewScyllaOrderStore()

//
// 🟢 GET /api/orders/:id/invoice
//
// Génère la facture PDF de la commande: QR SEPA + rendu de la page facture
// du front par Chrome headless.
func DownloadInvoice(c *gin.Context) {
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
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	qr, err := utils.GenerateSepaQR(
		os.Getenv("SHOP_IBAN"),
		os.Getenv("SHOP_BIC"),
		"Vetra",
		"Commande "+order.ID.String(),
		order.TotalAmount,
	)
	if err != nil {
		log.Printf("❌ QR SEPA non généré pour %s: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	pdf, err := utils.RenderInvoicePDF(utils.GetFrontendInvoiceBaseURL(), order.ID.String(), qr)
	if err != nil {
		log.Printf("❌ Rendu PDF échoué pour %s: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="facture_vetra_%s.pdf"`, order.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

//
// 🟢 POST /api/orders/:id/invoice/send
//
// Envoie la facture par e-mail au client, en pièce jointe.
func EmailInvoice(c *gin.Context) {
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
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	qr, err := utils.GenerateSepaQR(
		os.Getenv("SHOP_IBAN"),
		os.Getenv("SHOP_BIC"),
		"Vetra",
		"Commande "+order.ID.String(),
		order.TotalAmount,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	pdf, err := utils.RenderInvoicePDF(utils.GetFrontendInvoiceBaseURL(), order.ID.String(), qr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	html := utils.GenerateOrderConfirmationHTML(*order)
	if err := utils.SendOrderEmail(order.Email, "Votre facture Vetra", html, pdf); err != nil {
		log.Printf("❌ Facture non envoyée pour %s: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur envoi e-mail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent_to": order.Email})
}
