package utils

import (
	"bytes"
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"
)

// Attachment is een bestandsbijlage voor een transactionele e-mail.
type Attachment struct {
	Filename string
	Data     []byte
}

// SendTransactionalEmail verstuurt een HTML-e-mail via de SMTP-relay.
func SendTransactionalEmail(to, subject, htmlBody string, attachments []Attachment) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@mosewear.nl"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	for _, att := range attachments {
		msg.AttachReader(att.Filename, bytes.NewReader(att.Data))
	}

	host := os.Getenv("SMTP_HOST")
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 E-mail versturen naar", to)
	return client.DialAndSend(msg)
}
