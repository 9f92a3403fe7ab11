package notification

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/smallbiznis/zoonova/internal/contact/domain"
	"github.com/smallbiznis/zoonova/internal/invoice/format"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	"github.com/smallbiznis/zoonova/internal/providers/email"
	"github.com/smallbiznis/zoonova/internal/shipping"
)

const signature = "Merci pour votre confiance !\nL'équipe zoonova"

func orderRef(id int64) string {
	return snowflake.ID(id).String()
}

func orderConfirmation(detail orderdomain.Detail) email.Message {
	o := detail.Order
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\n", o.FullName())
	fmt.Fprintf(&b, "Votre commande #%s a été confirmée !\n\n", orderRef(o.ID))
	b.WriteString("Récapitulatif :\n")
	fmt.Fprintf(&b, "- Sous-total: %s\n", format.Cents(o.Subtotal))
	fmt.Fprintf(&b, "- Frais de port: %s\n", format.Cents(o.ShippingCost))
	fmt.Fprintf(&b, "- Total: %s\n\n", format.Cents(o.Total))
	b.WriteString("Articles commandés:\n")
	for _, item := range detail.Items {
		fmt.Fprintf(&b, "- %s x%d = %s\n", item.BookTitle, item.Quantity, format.Cents(item.Subtotal()))
	}
	fmt.Fprintf(&b, "\nAdresse de livraison:\n%s\n\n", detail.FullAddress())
	b.WriteString("Vous recevrez un email avec le numéro de suivi dès l'expédition de votre commande.\n\n")
	b.WriteString(signature)

	return email.Message{
		To:      []string{o.Email},
		Subject: fmt.Sprintf("Confirmation de commande #%s", orderRef(o.ID)),
		Body:    b.String(),
	}
}

func adminNewOrder(detail orderdomain.Detail, admins []string) email.Message {
	o := detail.Order
	var b strings.Builder
	b.WriteString("Nouvelle commande reçue !\n\n")
	fmt.Fprintf(&b, "Commande #%s\n", orderRef(o.ID))
	fmt.Fprintf(&b, "Client: %s (%s)\n", o.FullName(), o.Email)
	fmt.Fprintf(&b, "Montant total: %s\n\n", format.Cents(o.Total))
	b.WriteString("Articles:\n")
	for _, item := range detail.Items {
		fmt.Fprintf(&b, "- %s x%d\n", item.BookTitle, item.Quantity)
	}
	fmt.Fprintf(&b, "\nAdresse de livraison:\n%s\n\n", detail.FullAddress())
	b.WriteString("Consultez le backoffice pour plus de détails.")

	return email.Message{
		To:      admins,
		Subject: fmt.Sprintf("Nouvelle commande #%s", orderRef(o.ID)),
		Body:    b.String(),
	}
}

// statusUpdate returns false when the change triggers no customer email.
func statusUpdate(detail orderdomain.Detail, kind orderdomain.StatusEmail) (email.Message, bool) {
	o := detail.Order
	ref := orderRef(o.ID)
	switch kind {
	case orderdomain.StatusEmailDelivered:
		return email.Message{
			To:      []string{o.Email},
			Subject: fmt.Sprintf("Votre commande #%s a été livrée", ref),
			Body: fmt.Sprintf("Bonjour %s,\n\nVotre commande #%s a été livrée !\n\n"+
				"Nous espérons que vous êtes satisfait de votre achat.\n\n%s",
				o.FullName(), ref, signature),
		}, true
	case orderdomain.StatusEmailShipped:
		tracking := ""
		if o.TrackingNumber != nil {
			tracking = *o.TrackingNumber
		}
		return email.Message{
			To:      []string{o.Email},
			Subject: fmt.Sprintf("Votre commande #%s a été expédiée", ref),
			Body: fmt.Sprintf("Bonjour %s,\n\nVotre commande #%s a été expédiée !\n\n"+
				"Numéro de suivi: %s\n\nVous pouvez suivre votre colis en utilisant ce numéro.\n\n%s",
				o.FullName(), ref, tracking, signature),
		}, true
	default:
		return email.Message{}, false
	}
}

func invoiceEmail(detail orderdomain.Detail) email.Message {
	ref := orderRef(detail.Order.ID)
	return email.Message{
		To:      []string{detail.Order.Email},
		Subject: fmt.Sprintf("Facture de votre commande #%s", ref),
		Body:    fmt.Sprintf("Veuillez trouver ci-joint la facture de votre commande #%s", ref),
	}
}

func contactSubject(msg contactdomain.Message, fallback string) string {
	if s := strings.TrimSpace(msg.Subject); s != "" {
		return s
	}
	return fallback
}

func adminContact(msg contactdomain.Message, admins []string) email.Message {
	subject := contactSubject(msg, "Sans sujet")
	return email.Message{
		To:      admins,
		Subject: "Nouveau message de contact - " + subject,
		Body: fmt.Sprintf("Nouveau message de contact reçu :\n\nDe: %s (%s)\nSujet: %s\n\n"+
			"Message:\n%s\n\n---\nConnectez-vous au backoffice pour répondre.",
			msg.FullName(), msg.Email, subject, msg.Body),
	}
}

func contactAcknowledgement(msg contactdomain.Message) email.Message {
	return email.Message{
		To:      []string{msg.Email},
		Subject: "Nous avons bien reçu votre message",
		Body: fmt.Sprintf("Bonjour %s,\n\nNous avons bien reçu votre message concernant : %s.\n\n"+
			"Notre équipe vous répondra dans les plus brefs délais.\n\n"+
			"Merci de nous avoir contactés !\n\nL'équipe zoonova",
			msg.FirstName, contactSubject(msg, "votre demande")),
	}
}

func slackNewOrder(detail orderdomain.Detail) string {
	o := detail.Order
	return fmt.Sprintf(":books: Nouvelle commande #%s de %s (%s), %d livre(s), total %s",
		orderRef(o.ID), o.FullName(), detail.Country.Name, shipping.CountBooks(detail.Items), format.Cents(o.Total))
}
