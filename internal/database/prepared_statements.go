package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements voor de meest bevraagde retourpaden.
	stmtGetReturnByID       *gocql.Query
	stmtGetReturnByTracking *gocql.Query
	stmtGetOrderByID        *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialiseert de prepared statements.
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		session, err := GetOrdersSession()
		if err != nil {
			log.Printf("⚠️ Prepared statements konden niet worden geïnitialiseerd: %v", err)
			return
		}

		stmtGetReturnByID = session.Query(`SELECT order_id, email, status, return_items,
			return_label_cost_incl_vat, return_label_payment_intent_id, return_label_payment_status,
			return_label_url, return_tracking_code, return_tracking_url,
			refund_amount, stripe_refund_id, stripe_refund_status,
			label_payment_pending_at, label_generated_at, approved_at, refunded_at,
			admin_notes, created_at, updated_at
			FROM returns WHERE return_id = ?`)

		stmtGetReturnByTracking = session.Query("SELECT return_id FROM returns_by_tracking WHERE tracking_code = ?")

		stmtGetOrderByID = session.Query(`SELECT order_number, email, stripe_payment_intent_id,
			total_price, status, shipping_address, items, created_at
			FROM orders WHERE order_id = ?`)

		log.Println("✅ Prepared statements geïnitialiseerd")
	})
}

func PreparedGetReturnByID() *gocql.Query       { return stmtGetReturnByID }
func PreparedGetReturnByTracking() *gocql.Query { return stmtGetReturnByTracking }
func PreparedGetOrderByID() *gocql.Query        { return stmtGetOrderByID }
