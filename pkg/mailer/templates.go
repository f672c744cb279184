package mailer

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderConfirmation builds the email sent right after checkout.
func OrderConfirmation(to, customerName, orderNumber string, total decimal.Decimal, currency string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Confirmation de commande %s", orderNumber),
		Body: fmt.Sprintf(
			"Bonjour %s,\n\nVotre commande %s a bien été enregistrée.\nMontant total: %s %s\n\nMerci de votre confiance.",
			customerName, orderNumber, total.StringFixed(2), currency,
		),
	}
}

// PaymentReceipt builds the email sent once a payment is confirmed.
func PaymentReceipt(to, customerName, orderNumber string, amount decimal.Decimal, currency, method string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Paiement reçu pour la commande %s", orderNumber),
		Body: fmt.Sprintf(
			"Bonjour %s,\n\nNous avons bien reçu votre paiement de %s %s (%s) pour la commande %s.\nVotre commande est en cours de préparation.",
			customerName, amount.StringFixed(2), currency, method, orderNumber,
		),
	}
}

// OrderShipped builds the email sent when an order leaves the warehouse.
func OrderShipped(to, customerName, orderNumber string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Commande %s expédiée", orderNumber),
		Body: fmt.Sprintf(
			"Bonjour %s,\n\nVotre commande %s a été expédiée et sera livrée prochainement.",
			customerName, orderNumber,
		),
	}
}

// OrderDelivered builds the email sent when delivery is confirmed.
func OrderDelivered(to, customerName, orderNumber string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Commande %s livrée", orderNumber),
		Body: fmt.Sprintf(
			"Bonjour %s,\n\nVotre commande %s a été livrée. Merci pour votre achat.",
			customerName, orderNumber,
		),
	}
}

// RefundRequested builds the acknowledgement sent when a refund is opened.
func RefundRequested(to, customerName, orderNumber string, amount decimal.Decimal, currency string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Demande de remboursement reçue pour la commande %s", orderNumber),
		Body: fmt.Sprintf(
			"Bonjour %s,\n\nNous avons bien reçu votre demande de remboursement de %s %s pour la commande %s. Elle sera traitée sous peu.",
			customerName, amount.StringFixed(2), currency, orderNumber,
		),
	}
}

// RefundProcessed builds the email sent when a refund request is settled.
func RefundProcessed(to, customerName, orderNumber string, amount decimal.Decimal, currency string, approved bool) Message {
	outcome := "approuvée"
	if !approved {
		outcome = "refusée"
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Demande de remboursement %s", outcome),
		Body: fmt.Sprintf(
			"Bonjour %s,\n\nVotre demande de remboursement de %s %s pour la commande %s a été %s.",
			customerName, amount.StringFixed(2), currency, orderNumber, outcome,
		),
	}
}

// SupportReply builds the email notifying a customer of a new ticket reply.
func SupportReply(to, customerName, subject string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Réponse à votre ticket: %s", subject),
		Body: fmt.Sprintf(
			"Bonjour %s,\n\nUne réponse a été ajoutée à votre ticket \"%s\". Connectez-vous pour la consulter.",
			customerName, subject,
		),
	}
}

// LowStockAlert builds the email sent to managers when a product runs low.
func LowStockAlert(to, productName, sku string, available, minQty int) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Alerte stock bas: %s", productName),
		Body: fmt.Sprintf(
			"Le produit %s (SKU %s) est en stock bas: %d unités disponibles pour un seuil de %d.",
			productName, sku, available, minQty,
		),
	}
}
