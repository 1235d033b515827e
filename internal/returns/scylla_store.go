package returns

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/mosewear/mose-webshop-sub004/internal/database"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

// ScyllaStore is de productie-implementatie van Store op de orders-keyspace.
// Transities gebruiken lightweight transactions (UPDATE ... IF status = ?):
// de statuscontrole en de schrijfactie zitten zo in één rondgang, wat het
// race-venster tussen twee gelijktijdige webhooks sluit.
type ScyllaStore struct{}

func NewScyllaStore() *ScyllaStore {
	return &ScyllaStore{}
}

func (s *ScyllaStore) session() (*gocql.Session, error) {
	return database.GetOrdersSession()
}

func (s *ScyllaStore) GetReturn(ctx context.Context, returnID string) (*models.Return, error) {
	id, err := uuid.Parse(returnID)
	if err != nil {
		return nil, ErrReturnNotFound
	}

	ret := models.Return{ID: gocql.UUID(id)}
	var (
		itemsJSON                                                  string
		labelPaymentPendingAt, labelGeneratedAt, approvedAt, refundedAt time.Time
	)

	err = database.PreparedGetReturnByID().WithContext(ctx).Bind(gocql.UUID(id)).Scan(
		&ret.OrderID, &ret.Email, &ret.Status, &itemsJSON,
		&ret.ReturnLabelCostInclVAT, &ret.ReturnLabelPaymentIntentID, &ret.ReturnLabelPaymentStatus,
		&ret.ReturnLabelURL, &ret.ReturnTrackingCode, &ret.ReturnTrackingURL,
		&ret.RefundAmount, &ret.StripeRefundID, &ret.StripeRefundStatus,
		&labelPaymentPendingAt, &labelGeneratedAt, &approvedAt, &refundedAt,
		&ret.AdminNotes, &ret.CreatedAt, &ret.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrReturnNotFound
	}
	if err != nil {
		return nil, err
	}

	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &ret.ReturnItems); err != nil {
			return nil, err
		}
	}
	ret.LabelPaymentPendingAt = timePtr(labelPaymentPendingAt)
	ret.LabelGeneratedAt = timePtr(labelGeneratedAt)
	ret.ApprovedAt = timePtr(approvedAt)
	ret.RefundedAt = timePtr(refundedAt)

	return &ret, nil
}

func (s *ScyllaStore) GetReturnIDByTracking(ctx context.Context, trackingCode string) (string, error) {
	var returnID gocql.UUID
	err := database.PreparedGetReturnByTracking().WithContext(ctx).Bind(trackingCode).Scan(&returnID)
	if err == gocql.ErrNotFound {
		return "", ErrReturnNotFound
	}
	if err != nil {
		return "", err
	}
	return returnID.String(), nil
}

func (s *ScyllaStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order := models.Order{ID: gocql.UUID(id)}
	var addressJSON, itemsJSON string

	err = database.PreparedGetOrderByID().WithContext(ctx).Bind(gocql.UUID(id)).Scan(
		&order.OrderNumber, &order.Email, &order.StripePaymentIntentID,
		&order.TotalPrice, &order.Status, &addressJSON, &itemsJSON, &order.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if addressJSON != "" {
		if err := json.Unmarshal([]byte(addressJSON), &order.ShippingAddress); err != nil {
			return nil, err
		}
	}
	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
			return nil, err
		}
	}

	return &order, nil
}

func (s *ScyllaStore) CreateReturn(ctx context.Context, ret *models.Return) error {
	session, err := s.session()
	if err != nil {
		return err
	}

	itemsJSON, err := json.Marshal(ret.ReturnItems)
	if err != nil {
		return err
	}

	return session.Query(`
		INSERT INTO returns (return_id, order_id, email, status, return_items,
			return_label_cost_incl_vat, return_label_payment_status, refund_amount,
			label_payment_pending_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ret.ID, ret.OrderID, ret.Email, ret.Status, string(itemsJSON),
		ret.ReturnLabelCostInclVAT, ret.ReturnLabelPaymentStatus, ret.RefundAmount,
		ret.LabelPaymentPendingAt, ret.CreatedAt, ret.UpdatedAt).WithContext(ctx).Exec()
}

func (s *ScyllaStore) ListReturns(ctx context.Context, status string) ([]models.Return, error) {
	session, err := s.session()
	if err != nil {
		return nil, err
	}

	cql := `SELECT return_id FROM returns`
	var iter *gocql.Iter
	if status != "" {
		iter = session.Query(cql+" WHERE status = ? ALLOW FILTERING", status).WithContext(ctx).Iter()
	} else {
		iter = session.Query(cql).WithContext(ctx).Iter()
	}

	var ids []string
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id.String())
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	out := make([]models.Return, 0, len(ids))
	for _, rid := range ids {
		ret, err := s.GetReturn(ctx, rid)
		if err != nil {
			return nil, err
		}
		out = append(out, *ret)
	}

	return out, nil
}

func (s *ScyllaStore) FindAbandonedLabelPayments(ctx context.Context, before time.Time) ([]models.Return, error) {
	all, err := s.ListReturns(ctx, models.ReturnStatusLabelPaymentPending)
	if err != nil {
		return nil, err
	}

	var out []models.Return
	for _, ret := range all {
		if ret.LabelPaymentPendingAt != nil && ret.LabelPaymentPendingAt.Before(before) {
			out = append(out, ret)
		}
	}
	return out, nil
}

func (s *ScyllaStore) FindPendingLabels(ctx context.Context, before time.Time) ([]models.Return, error) {
	all, err := s.ListReturns(ctx, models.ReturnStatusLabelPaymentCompleted)
	if err != nil {
		return nil, err
	}

	var out []models.Return
	for _, ret := range all {
		if !ret.HasLabel() && ret.UpdatedAt.Before(before) {
			out = append(out, ret)
		}
	}
	return out, nil
}

func (s *ScyllaStore) SetPaymentIntent(ctx context.Context, returnID, intentID string) (bool, error) {
	return s.cas(ctx, `
		UPDATE returns SET return_label_payment_intent_id = ?, updated_at = ?
		WHERE return_id = ? IF status = ?
	`, intentID, time.Now(), mustUUID(returnID), models.ReturnStatusLabelPaymentPending)
}

func (s *ScyllaStore) MarkLabelPaymentCompleted(ctx context.Context, returnID string) (bool, error) {
	return s.cas(ctx, `
		UPDATE returns SET status = ?, return_label_payment_status = ?, updated_at = ?
		WHERE return_id = ? IF status = ?
	`, models.ReturnStatusLabelPaymentCompleted, models.LabelPaymentCompleted, time.Now(),
		mustUUID(returnID), models.ReturnStatusLabelPaymentPending)
}

func (s *ScyllaStore) SetLabel(ctx context.Context, returnID string, info LabelInfo) (bool, error) {
	applied, err := s.cas(ctx, `
		UPDATE returns SET status = ?, return_label_url = ?, return_tracking_code = ?,
			return_tracking_url = ?, label_generated_at = ?, updated_at = ?
		WHERE return_id = ? IF return_label_url = null
	`, models.ReturnStatusLabelGenerated, info.LabelURL, info.TrackingCode,
		info.TrackingURL, info.GeneratedAt, time.Now(), mustUUID(returnID))
	if err != nil || !applied {
		return applied, err
	}

	// Opzoektabel voor de tracking-webhook.
	session, err := s.session()
	if err != nil {
		return true, err
	}
	err = session.Query(`INSERT INTO returns_by_tracking (tracking_code, return_id) VALUES (?, ?)`,
		info.TrackingCode, mustUUID(returnID)).WithContext(ctx).Exec()
	return true, err
}

func (s *ScyllaStore) MarkInTransit(ctx context.Context, returnID string) (bool, error) {
	return s.cas(ctx, `
		UPDATE returns SET status = ?, updated_at = ?
		WHERE return_id = ? IF status = ?
	`, models.ReturnStatusInTransit, time.Now(), mustUUID(returnID), models.ReturnStatusLabelGenerated)
}

func (s *ScyllaStore) MarkReceived(ctx context.Context, returnID, fromStatus string) (bool, error) {
	return s.cas(ctx, `
		UPDATE returns SET status = ?, updated_at = ?
		WHERE return_id = ? IF status = ?
	`, models.ReturnStatusReceived, time.Now(), mustUUID(returnID), fromStatus)
}

func (s *ScyllaStore) Approve(ctx context.Context, returnID string, approvedAt time.Time) (bool, error) {
	return s.cas(ctx, `
		UPDATE returns SET status = ?, approved_at = ?, updated_at = ?
		WHERE return_id = ? IF status = ?
	`, models.ReturnStatusApproved, approvedAt, time.Now(), mustUUID(returnID), models.ReturnStatusReceived)
}

func (s *ScyllaStore) SetRefund(ctx context.Context, returnID, refundID, refundStatus, newStatus string, refundedAt *time.Time) (bool, error) {
	return s.cas(ctx, `
		UPDATE returns SET status = ?, stripe_refund_id = ?, stripe_refund_status = ?,
			refunded_at = ?, updated_at = ?
		WHERE return_id = ? IF stripe_refund_id = null
	`, newStatus, refundID, refundStatus, refundedAt, time.Now(), mustUUID(returnID))
}

func (s *ScyllaStore) UpdateAdminNotes(ctx context.Context, returnID, notes string) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	return session.Query(`UPDATE returns SET admin_notes = ?, updated_at = ? WHERE return_id = ?`,
		notes, time.Now(), mustUUID(returnID)).WithContext(ctx).Exec()
}

func (s *ScyllaStore) LogEmail(ctx context.Context, entry models.EmailLog) error {
	session, err := s.session()
	if err != nil {
		return err
	}
	return session.Query(`
		INSERT INTO email_logs (email_log_id, return_id, recipient, subject, kind, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.ReturnID, entry.Recipient, entry.Subject, entry.Kind,
		entry.Status, entry.Error, entry.CreatedAt).WithContext(ctx).Exec()
}

func (s *ScyllaStore) cas(ctx context.Context, cql string, values ...interface{}) (bool, error) {
	session, err := s.session()
	if err != nil {
		return false, err
	}

	applied, err := session.Query(cql, values...).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err == gocql.ErrNotFound {
		return false, ErrReturnNotFound
	}
	if err != nil {
		return false, err
	}
	return applied, nil
}

func mustUUID(id string) gocql.UUID {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return gocql.UUID{}
	}
	return gocql.UUID(parsed)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
