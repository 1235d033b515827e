package returns

import (
	"context"
	"errors"
	"time"

	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

var (
	ErrReturnNotFound = errors.New("retour niet gevonden")
	ErrOrderNotFound  = errors.New("bestelling niet gevonden")
)

// LabelInfo zijn de velden die bij een gekocht retourlabel horen.
type LabelInfo struct {
	LabelURL     string
	TrackingCode string
	TrackingURL  string
	GeneratedAt  time.Time
}

// Store persisteert de toestandsmachine van een retour. Alle transities
// zijn conditionele updates (compare-and-set op de huidige status): een
// false betekent dat een gelijktijdige handler de transitie al heeft
// uitgevoerd, en is dus geen fout maar een signaal om te stoppen.
type Store interface {
	GetReturn(ctx context.Context, returnID string) (*models.Return, error)
	GetReturnIDByTracking(ctx context.Context, trackingCode string) (string, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	CreateReturn(ctx context.Context, ret *models.Return) error
	ListReturns(ctx context.Context, status string) ([]models.Return, error)

	// FindAbandonedLabelPayments zoekt retouren die al sinds `before`
	// op betaling van het label wachten.
	FindAbandonedLabelPayments(ctx context.Context, before time.Time) ([]models.Return, error)

	// FindPendingLabels zoekt betaalde retouren waarvan de labelaankoop
	// is blijven liggen (bv. provider plat tijdens de webhook).
	FindPendingLabels(ctx context.Context, before time.Time) ([]models.Return, error)

	// SetPaymentIntent koppelt het PaymentIntent van de labelkosten.
	// Alleen geldig zolang de status return_label_payment_pending is.
	SetPaymentIntent(ctx context.Context, returnID, intentID string) (bool, error)

	// MarkLabelPaymentCompleted: pending → completed. Idempotent via CAS.
	MarkLabelPaymentCompleted(ctx context.Context, returnID string) (bool, error)

	// SetLabel schrijft de labelgegevens en zet de status op
	// return_label_generated, mits er nog geen label is.
	SetLabel(ctx context.Context, returnID string, info LabelInfo) (bool, error)

	// MarkInTransit: return_label_generated → return_in_transit.
	MarkInTransit(ctx context.Context, returnID string) (bool, error)

	// MarkReceived zet de status op return_received vanaf de opgegeven status.
	MarkReceived(ctx context.Context, returnID, fromStatus string) (bool, error)

	// Approve: return_received → return_approved.
	Approve(ctx context.Context, returnID string, approvedAt time.Time) (bool, error)

	// SetRefund schrijft refund-id/-status en de eindtoestand, mits er
	// nog geen refund geregistreerd is.
	SetRefund(ctx context.Context, returnID, refundID, refundStatus, newStatus string, refundedAt *time.Time) (bool, error)

	UpdateAdminNotes(ctx context.Context, returnID, notes string) error

	// LogEmail schrijft een e-maillogregel; wordt altijd aangeroepen,
	// ook bij een mislukte verzending.
	LogEmail(ctx context.Context, entry models.EmailLog) error
}
