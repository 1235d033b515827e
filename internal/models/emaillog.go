package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Uitkomst van een e-mailpoging. Er wordt altijd gelogd,
// ook wanneer de verzending mislukt.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

type EmailLog struct {
	ID        gocql.UUID `json:"id" db:"email_log_id"`
	ReturnID  *gocql.UUID `json:"return_id,omitempty" db:"return_id"`
	Recipient string     `json:"recipient" db:"recipient"`
	Subject   string     `json:"subject" db:"subject"`
	Kind      string     `json:"kind" db:"kind"` // bv. "return_label", "return_approved", "refund_completed"
	Status    string     `json:"status" db:"status"`
	Error     string     `json:"error,omitempty" db:"error"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
