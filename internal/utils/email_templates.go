package utils

import (
	"fmt"

	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

// De transactionele e-mails van de retourflow. Bewust simpele inline-HTML:
// dit zijn berichten, geen pagina's.

func wrapEmailHTML(title, inner string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="nl">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>%s</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px; margin: 0;">
	<div style="max-width: 600px; margin: auto; background-color: #ffffff; padding: 24px; border-radius: 10px;">
		<h2 style="color: #1a1a1a; margin-top: 0;">MOSE</h2>
		%s
		<p style="margin-top: 32px; color: #555;">
			Met vriendelijke groet,<br>
			<strong>Team MOSE</strong>
		</p>
	</div>
</body>
</html>`, title, inner)
}

func returnItemsTableHTML(items []models.ReturnItem) string {
	rows := ""
	for _, item := range items {
		rows += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">€%.2f</td>
			</tr>`, item.ProductName, item.Quantity, item.PriceAtPurchase*float64(item.Quantity))
	}

	return fmt.Sprintf(`
		<table style="width: 100%%; border-collapse: collapse; margin: 16px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Artikel</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Aantal</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Waarde</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>`, rows)
}

// GenerateLabelEmailHTML: het retourlabel is klaar.
func GenerateLabelEmailHTML(ret *models.Return) string {
	inner := fmt.Sprintf(`
		<p>Je retourlabel is klaar!</p>
		<p>Print het label, plak het op het pakket en lever het in bij een afhaalpunt.
		Het label zit ook als bijlage bij deze e-mail.</p>
		<p style="margin: 24px 0;">
			<a href="%s" style="background-color: #1a1a1a; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Download retourlabel</a>
		</p>
		<p>Volg je pakket: <a href="%s">%s</a></p>
		%s`,
		ret.ReturnLabelURL, ret.ReturnTrackingURL, ret.ReturnTrackingCode,
		returnItemsTableHTML(ret.ReturnItems))
	return wrapEmailHTML("Je retourlabel", inner)
}

// GenerateApprovedEmailHTML: de retour is goedgekeurd.
func GenerateApprovedEmailHTML(ret *models.Return) string {
	inner := fmt.Sprintf(`
		<p>Goed nieuws: je retour is ontvangen en goedgekeurd.</p>
		<p>We maken de terugbetaling van <strong>€%.2f</strong> zo snel mogelijk in orde.
		Je ontvangt een bevestiging zodra het bedrag is overgemaakt.</p>
		%s`,
		ret.RefundAmount, returnItemsTableHTML(ret.ReturnItems))
	return wrapEmailHTML("Retour goedgekeurd", inner)
}

// GenerateRefundEmailHTML: de terugbetaling is uitgevoerd.
func GenerateRefundEmailHTML(ret *models.Return) string {
	inner := fmt.Sprintf(`
		<p>Je terugbetaling van <strong>€%.2f</strong> is verwerkt.</p>
		<p>Afhankelijk van je bank kan het 1 tot 3 werkdagen duren voordat het
		bedrag op je rekening staat. De labelkosten (€%.2f) vallen buiten de
		terugbetaling.</p>
		%s`,
		ret.RefundAmount, ret.ReturnLabelCostInclVAT, returnItemsTableHTML(ret.ReturnItems))
	return wrapEmailHTML("Terugbetaling verwerkt", inner)
}

// GenerateReminderEmailHTML: herinnering aan een onbetaald retourlabel.
func GenerateReminderEmailHTML(ret *models.Return) string {
	inner := fmt.Sprintf(`
		<p>Je bent een retour gestart, maar de labelkosten (€%.2f) zijn nog
		niet betaald. Zonder betaling kunnen we geen retourlabel aanmaken.</p>
		<p>Rond de betaling af via je retourpagina om het label te ontvangen.</p>
		%s`,
		ret.ReturnLabelCostInclVAT, returnItemsTableHTML(ret.ReturnItems))
	return wrapEmailHTML("Herinnering: retourlabel", inner)
}
