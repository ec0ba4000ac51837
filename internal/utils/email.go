package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"vetra_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// SendOrderEmail envoie un e-mail HTML au client, avec la facture PDF en
// pièce jointe si fournie.
func SendOrderEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From("noreply@vetra.shop"); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_vetra.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, item.ProductName, item.Quantity, item.Price, item.Subtotal())
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Confirmation de commande</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Merci pour votre commande !</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande <strong>%s</strong> a bien été enregistrée le %s.</p>
		<table style="width: 100%%; border-collapse: collapse;">
			<tr><th align="left">Article</th><th>Qté</th><th>Prix</th><th>Total</th></tr>
			%s
		</table>
		<p style="font-size: 18px;"><strong>Total : %.2f€</strong></p>
		<p>Adresse de livraison : %s</p>
		<p>Mode de paiement : %s</p>
		<p style="color: #888; font-size: 12px;">Vetra — merci de votre confiance.</p>
	</div>
</body>
</html>`,
		order.CustomerName, order.ID, order.OrderDate.Format("02/01/2006"),
		itemsHTML, order.TotalAmount, order.Address, order.PaymentMethod)
}

// GenerateStatusUpdateHTML génère le HTML d'un e-mail de suivi de commande
func GenerateStatusUpdateHTML(order models.Order) string {
	message := map[string]string{
		"approved":  "Votre commande a été validée et part en préparation.",
		"shipped":   "Votre commande a été expédiée !",
		"delivered": "Votre commande a été livrée. Bonne journée !",
		"cancelled": "Votre commande a été annulée.",
	}[order.StatusLabel]

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Suivi de commande</title></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<div style="max-width: 600px; margin: auto;">
		<h2>Mise à jour de votre commande %s</h2>
		<p>Bonjour %s,</p>
		<p>%s</p>
		<p>Statut actuel : <strong>%s</strong></p>
	</div>
</body>
</html>`, order.ID, order.CustomerName, message, order.StatusLabel)
}
