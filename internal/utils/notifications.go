package utils

import (
	"context"
	"log"
	"time"

	"github.com/gocql/gocql"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

// E-mailsoorten in het e-maillog.
const (
	EmailKindReturnLabel     = "return_label"
	EmailKindReturnApproved  = "return_approved"
	EmailKindRefundCompleted = "refund_completed"
	EmailKindPaymentReminder = "label_payment_reminder"
)

// ReturnNotifier implementeert returns.Notifier. Elke verzendpoging wordt
// gelogd, geslaagd of niet; een e-mailfout rolt nooit een statuswijziging
// terug.
type ReturnNotifier struct {
	// LogEmail schrijft de logregel (ScyllaDB in productie).
	LogEmail func(ctx context.Context, entry models.EmailLog) error

	// FetchLabel haalt de label-PDF op voor de bijlage (optioneel).
	FetchLabel func(ctx context.Context, labelURL string) ([]byte, error)

	// ArchiveLabel bewaart de PDF in het labelarchief (optioneel).
	ArchiveLabel func(ctx context.Context, returnID string, pdf []byte) (string, error)

	// Send is vervangbaar in tests; standaard de SMTP-verzender.
	Send func(to, subject, htmlBody string, attachments []Attachment) error
}

func (n *ReturnNotifier) send(ctx context.Context, ret *models.Return, kind, subject, html string, attachments []Attachment) {
	sendFn := n.Send
	if sendFn == nil {
		sendFn = SendTransactionalEmail
	}

	entry := models.EmailLog{
		ID:        gocql.TimeUUID(),
		Recipient: ret.Email,
		Subject:   subject,
		Kind:      kind,
		Status:    models.EmailStatusSent,
		CreatedAt: time.Now(),
	}
	retID := ret.ID
	entry.ReturnID = &retID

	if err := sendFn(ret.Email, subject, html, attachments); err != nil {
		log.Printf("❌ E-mail '%s' naar %s mislukt: %v", kind, ret.Email, err)
		entry.Status = models.EmailStatusFailed
		entry.Error = err.Error()
	} else {
		log.Printf("📧 E-mail '%s' verstuurd naar %s", kind, ret.Email)
	}

	if n.LogEmail != nil {
		if err := n.LogEmail(ctx, entry); err != nil {
			log.Printf("⚠️ E-maillog schrijven mislukt: %v", err)
		}
	}
}

func (n *ReturnNotifier) SendLabelGenerated(ctx context.Context, ret *models.Return) {
	var attachments []Attachment

	// QR-code met de trackinglink, handig op mobiel.
	if ret.ReturnTrackingURL != "" {
		if png, err := qrcode.Encode(ret.ReturnTrackingURL, qrcode.Medium, 256); err == nil {
			attachments = append(attachments, Attachment{Filename: "track-en-trace.png", Data: png})
		} else {
			log.Printf("⚠️ QR-code genereren mislukt: %v", err)
		}
	}

	// Label-PDF als bijlage + kopie in het archief, beide best effort.
	if n.FetchLabel != nil && ret.ReturnLabelURL != "" {
		pdf, err := n.FetchLabel(ctx, ret.ReturnLabelURL)
		if err != nil {
			log.Printf("⚠️ Label-PDF ophalen mislukt: %v", err)
		} else {
			attachments = append(attachments, Attachment{Filename: "retourlabel.pdf", Data: pdf})
			if n.ArchiveLabel != nil {
				if url, err := n.ArchiveLabel(ctx, ret.ID.String(), pdf); err != nil {
					log.Printf("⚠️ Label archiveren mislukt: %v", err)
				} else {
					log.Printf("🗄️ Retourlabel gearchiveerd: %s", url)
				}
			}
		}
	}

	n.send(ctx, ret, EmailKindReturnLabel, "📦 Je retourlabel staat klaar - MOSE",
		GenerateLabelEmailHTML(ret), attachments)
}

func (n *ReturnNotifier) SendReturnApproved(ctx context.Context, ret *models.Return) {
	n.send(ctx, ret, EmailKindReturnApproved, "✅ Je retour is goedgekeurd - MOSE",
		GenerateApprovedEmailHTML(ret), nil)
}

func (n *ReturnNotifier) SendRefundCompleted(ctx context.Context, ret *models.Return) {
	n.send(ctx, ret, EmailKindRefundCompleted, "💰 Je terugbetaling is verwerkt - MOSE",
		GenerateRefundEmailHTML(ret), nil)
}

func (n *ReturnNotifier) SendAbandonedPaymentReminder(ctx context.Context, ret *models.Return) {
	n.send(ctx, ret, EmailKindPaymentReminder, "⏰ Je retourlabel wacht op betaling - MOSE",
		GenerateReminderEmailHTML(ret), nil)
}
