package returns

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosewear/mose-webshop-sub004/internal/config"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
	"github.com/mosewear/mose-webshop-sub004/internal/payments"
	"github.com/mosewear/mose-webshop-sub004/internal/shipping"
)

// --- Fakes -----------------------------------------------------------------

// fakeStore is een in-memory Store met dezelfde CAS-semantiek als de
// ScyllaDB-variant: transities slagen alleen vanuit de verwachte status.
type fakeStore struct {
	mu         sync.Mutex
	returns    map[string]*models.Return
	orders     map[string]*models.Order
	byTracking map[string]string
	emailLogs  []models.EmailLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		returns:    make(map[string]*models.Return),
		orders:     make(map[string]*models.Order),
		byTracking: make(map[string]string),
	}
}

func (s *fakeStore) GetReturn(_ context.Context, id string) (*models.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok {
		return nil, ErrReturnNotFound
	}
	cp := *ret
	return &cp, nil
}

func (s *fakeStore) GetReturnIDByTracking(_ context.Context, trackingCode string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byTracking[trackingCode]
	if !ok {
		return "", ErrReturnNotFound
	}
	return id, nil
}

func (s *fakeStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *fakeStore) CreateReturn(_ context.Context, ret *models.Return) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ret
	s.returns[ret.ID.String()] = &cp
	return nil
}

func (s *fakeStore) ListReturns(_ context.Context, status string) ([]models.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Return
	for _, ret := range s.returns {
		if status == "" || ret.Status == status {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (s *fakeStore) FindAbandonedLabelPayments(_ context.Context, before time.Time) ([]models.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Return
	for _, ret := range s.returns {
		if ret.Status == models.ReturnStatusLabelPaymentPending &&
			ret.LabelPaymentPendingAt != nil && ret.LabelPaymentPendingAt.Before(before) {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (s *fakeStore) FindPendingLabels(_ context.Context, before time.Time) ([]models.Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Return
	for _, ret := range s.returns {
		if ret.Status == models.ReturnStatusLabelPaymentCompleted &&
			!ret.HasLabel() && ret.UpdatedAt.Before(before) {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (s *fakeStore) SetPaymentIntent(_ context.Context, id, intentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok || ret.Status != models.ReturnStatusLabelPaymentPending {
		return false, nil
	}
	ret.ReturnLabelPaymentIntentID = intentID
	return true, nil
}

func (s *fakeStore) MarkLabelPaymentCompleted(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok || ret.Status != models.ReturnStatusLabelPaymentPending {
		return false, nil
	}
	ret.Status = models.ReturnStatusLabelPaymentCompleted
	ret.ReturnLabelPaymentStatus = models.LabelPaymentCompleted
	return true, nil
}

func (s *fakeStore) SetLabel(_ context.Context, id string, info LabelInfo) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok || ret.ReturnLabelURL != "" {
		return false, nil
	}
	ret.ReturnLabelURL = info.LabelURL
	ret.ReturnTrackingCode = info.TrackingCode
	ret.ReturnTrackingURL = info.TrackingURL
	ret.Status = models.ReturnStatusLabelGenerated
	ret.LabelGeneratedAt = &info.GeneratedAt
	s.byTracking[info.TrackingCode] = id
	return true, nil
}

func (s *fakeStore) MarkInTransit(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok || ret.Status != models.ReturnStatusLabelGenerated {
		return false, nil
	}
	ret.Status = models.ReturnStatusInTransit
	return true, nil
}

func (s *fakeStore) MarkReceived(_ context.Context, id, fromStatus string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok || ret.Status != fromStatus {
		return false, nil
	}
	ret.Status = models.ReturnStatusReceived
	return true, nil
}

func (s *fakeStore) Approve(_ context.Context, id string, approvedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok || ret.Status != models.ReturnStatusReceived {
		return false, nil
	}
	ret.Status = models.ReturnStatusApproved
	ret.ApprovedAt = &approvedAt
	return true, nil
}

func (s *fakeStore) SetRefund(_ context.Context, id, refundID, refundStatus, newStatus string, refundedAt *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok || ret.StripeRefundID != "" {
		return false, nil
	}
	ret.StripeRefundID = refundID
	ret.StripeRefundStatus = refundStatus
	ret.Status = newStatus
	ret.RefundedAt = refundedAt
	return true, nil
}

func (s *fakeStore) UpdateAdminNotes(_ context.Context, id, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, ok := s.returns[id]
	if !ok {
		return ErrReturnNotFound
	}
	ret.AdminNotes = notes
	return nil
}

func (s *fakeStore) LogEmail(_ context.Context, entry models.EmailLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailLogs = append(s.emailLogs, entry)
	return nil
}

type fakeGateway struct {
	mu           sync.Mutex
	intents      map[string]*payments.Intent
	intentCalls  int
	refundCalls  int
	refundStatus  string // status van de volgende refund, default "succeeded"
	lastRefundPI  string
	lastRefundEUR float64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intents:      make(map[string]*payments.Intent),
		refundStatus: payments.RefundStatusSucceeded,
	}
}

func (g *fakeGateway) CreateReturnLabelIntent(_ context.Context, returnID, orderID, email string, amountEUR float64) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intentCalls++
	intent := &payments.Intent{
		ID:           "pi_label_test",
		ClientSecret: "pi_label_test_secret",
		Status:       "requires_payment_method",
		AmountCents:  payments.EuroToCents(amountEUR),
		Metadata: map[string]string{
			"purpose":   payments.MetadataPurposeReturnLabel,
			"return_id": returnID,
			"order_id":  orderID,
			"email":     email,
		},
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *fakeGateway) GetPaymentIntent(_ context.Context, intentID string) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[intentID]
	if !ok {
		return nil, errors.New("onbekend intent")
	}
	cp := *intent
	return &cp, nil
}

func (g *fakeGateway) markSucceeded(intentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[intentID].Status = payments.IntentStatusSucceeded
}

func (g *fakeGateway) CreateRefund(_ context.Context, paymentIntentID string, amountEUR float64, _ string) (*payments.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundCalls++
	g.lastRefundPI = paymentIntentID
	g.lastRefundEUR = amountEUR
	return &payments.Refund{ID: "re_test", Status: g.refundStatus}, nil
}

type fakeLabelClient struct {
	mu          sync.Mutex
	createCalls int
	failNext    bool
	lastReq     shipping.CreateParcelRequest
}

func (l *fakeLabelClient) CreateReturnParcel(_ context.Context, req shipping.CreateParcelRequest) (*shipping.Parcel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.createCalls++
	l.lastReq = req
	if l.failNext {
		l.failNext = false
		return nil, errors.New("verzendprovider gaf 500")
	}
	return &shipping.Parcel{
		ID:           42,
		TrackingCode: "3SMOSE000042",
		TrackingURL:  "https://track.example/3SMOSE000042",
		LabelURL:     "https://panel.sendcloud.sc/api/v2/labels/42",
	}, nil
}

func (l *fakeLabelClient) DownloadLabel(_ context.Context, _ string) ([]byte, error) {
	return []byte("%PDF"), nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	labels    int
	approved  int
	refunds   int
	reminders int
}

func (n *fakeNotifier) SendLabelGenerated(_ context.Context, _ *models.Return) {
	n.mu.Lock()
	n.labels++
	n.mu.Unlock()
}

func (n *fakeNotifier) SendReturnApproved(_ context.Context, _ *models.Return) {
	n.mu.Lock()
	n.approved++
	n.mu.Unlock()
}

func (n *fakeNotifier) SendRefundCompleted(_ context.Context, _ *models.Return) {
	n.mu.Lock()
	n.refunds++
	n.mu.Unlock()
}

func (n *fakeNotifier) SendAbandonedPaymentReminder(_ context.Context, _ *models.Return) {
	n.mu.Lock()
	n.reminders++
	n.mu.Unlock()
}

type fakeEvents struct {
	mu     sync.Mutex
	events []string
}

func (e *fakeEvents) PublishReturnEvent(_, status string) {
	e.mu.Lock()
	e.events = append(e.events, status)
	e.mu.Unlock()
}

type fakeDedup struct {
	mu     sync.Mutex
	claims map[string]bool
}

func newFakeDedup() *fakeDedup {
	return &fakeDedup{claims: make(map[string]bool)}
}

func (d *fakeDedup) ClaimOnce(_ context.Context, key string, _ time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.claims[key] {
		return false
	}
	d.claims[key] = true
	return true
}

func (d *fakeDedup) Release(_ context.Context, key string) {
	d.mu.Lock()
	delete(d.claims, key)
	d.mu.Unlock()
}

type staticSettingsLoader map[string]string

func (l staticSettingsLoader) LoadSettings() (map[string]string, error) { return l, nil }

// --- Testopbouw ------------------------------------------------------------

type fixture struct {
	orch     *Orchestrator
	store    *fakeStore
	gateway  *fakeGateway
	labels   *fakeLabelClient
	notifier *fakeNotifier
	events   *fakeEvents
	dedup    *fakeDedup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	gateway := newFakeGateway()
	labels := &fakeLabelClient{}
	notifier := &fakeNotifier{}
	events := &fakeEvents{}
	dedup := newFakeDedup()
	settings := config.NewSettingsStore(staticSettingsLoader{}, time.Hour)
	merchant := models.Address{
		Name: "MOSE Wear B.V.", CompanyName: "MOSE Wear B.V.",
		Street: "Industrieweg", HouseNumber: "14",
		PostalCode: "1043 AH", City: "Amsterdam", Country: "NL",
	}
	return &fixture{
		orch:     NewOrchestrator(store, gateway, labels, notifier, events, dedup, settings, merchant),
		store:    store,
		gateway:  gateway,
		labels:   labels,
		notifier: notifier,
		events:   events,
		dedup:    dedup,
	}
}

func (f *fixture) seedOrder(t *testing.T, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:                    gocql.TimeUUID(),
		OrderNumber:           "MOSE-2026-000123",
		Email:                 "jan@example.com",
		StripePaymentIntentID: "pi_order_original",
		TotalPrice:            59.90,
		Status:                "delivered",
		ShippingAddress: models.Address{
			Name: "Jan Jansen", Street: "Dorpsstraat", HouseNumber: "1",
			PostalCode: "1234 AB", City: "Utrecht", Country: "NL",
		},
		Items: []models.OrderItem{
			{OrderItemID: "item-1", Name: "MOSE Hoodie Zwart", Quantity: 1, Price: 49.95},
			{OrderItemID: "item-2", Name: "Sokken 3-pack", Quantity: 2, Price: 4.975},
		},
		CreatedAt: createdAt,
	}
	f.store.orders[order.ID.String()] = order
	return order
}

// seedReturn maakt via de orkestrator een retour aan voor de hele bestelling.
func (f *fixture) seedReturn(t *testing.T) *models.Return {
	t.Helper()
	order := f.seedOrder(t, time.Now().Add(-5*24*time.Hour))
	ret, err := f.orch.CreateReturn(context.Background(), order.ID.String(), []ReturnItemRequest{
		{OrderItemID: "item-1", Quantity: 1, Reason: "Te klein, verkeerde maat"},
	})
	require.NoError(t, err)
	return ret
}

// payAndLabel brengt een retour naar return_label_generated.
func (f *fixture) payAndLabel(t *testing.T, returnID string) *models.Return {
	t.Helper()
	ctx := context.Background()
	_, err := f.orch.CreateLabelPaymentIntent(ctx, returnID)
	require.NoError(t, err)
	advanced, err := f.orch.ConfirmLabelPayment(ctx, returnID)
	require.NoError(t, err)
	require.True(t, advanced)
	ret, err := f.orch.GenerateLabel(ctx, returnID, false)
	require.NoError(t, err)
	return ret
}

// --- Aanmaken --------------------------------------------------------------

func TestCreateReturnBevriestPrijzen(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)

	assert.Equal(t, models.ReturnStatusLabelPaymentPending, ret.Status)
	assert.Equal(t, 4.95, ret.ReturnLabelCostInclVAT)
	require.Len(t, ret.ReturnItems, 1)
	assert.Equal(t, "MOSE Hoodie Zwart", ret.ReturnItems[0].ProductName)
	assert.Equal(t, 49.95, ret.ReturnItems[0].PriceAtPurchase)
	assert.NotNil(t, ret.LabelPaymentPendingAt)
}

func TestCreateReturnBuitenRetourtermijn(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, time.Now().Add(-45*24*time.Hour)) // termijn is 30 dagen

	_, err := f.orch.CreateReturn(context.Background(), order.ID.String(), []ReturnItemRequest{
		{OrderItemID: "item-1", Quantity: 1, Reason: "Te klein"},
	})
	assert.ErrorIs(t, err, ErrReturnWindowExpired)
}

func TestCreateReturnValideertArtikelen(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, time.Now())
	ctx := context.Background()

	// Artikel dat niet bij de bestelling hoort.
	_, err := f.orch.CreateReturn(ctx, order.ID.String(), []ReturnItemRequest{
		{OrderItemID: "item-999", Quantity: 1, Reason: "Bevalt niet"},
	})
	assert.Error(t, err)

	// Meer stuks dan besteld.
	_, err = f.orch.CreateReturn(ctx, order.ID.String(), []ReturnItemRequest{
		{OrderItemID: "item-1", Quantity: 3, Reason: "Bevalt niet"},
	})
	assert.Error(t, err)
}

func TestCreateReturnOnbekendeBestelling(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.CreateReturn(context.Background(), gocql.TimeUUID().String(), []ReturnItemRequest{
		{OrderItemID: "item-1", Quantity: 1, Reason: "Bevalt niet"},
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// --- Betaling labelkosten ---------------------------------------------------

func TestCreateLabelPaymentIntentHergebruiktBestaandIntent(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()

	first, err := f.orch.CreateLabelPaymentIntent(ctx, ret.ID.String())
	require.NoError(t, err)

	// Tweede aanroep (klant klikte twee keer): zelfde intent, geen duplicaat.
	second, err := f.orch.CreateLabelPaymentIntent(ctx, ret.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.gateway.intentCalls)
}

func TestCreateLabelPaymentIntentNaBetaling(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()

	intent, err := f.orch.CreateLabelPaymentIntent(ctx, ret.ID.String())
	require.NoError(t, err)
	f.gateway.markSucceeded(intent.ID)

	_, err = f.orch.CreateLabelPaymentIntent(ctx, ret.ID.String())
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestCreateLabelPaymentIntentKostenInCenten(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)

	intent, err := f.orch.CreateLabelPaymentIntent(context.Background(), ret.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(495), intent.AmountCents)
	assert.Equal(t, payments.MetadataPurposeReturnLabel, intent.Metadata["purpose"])
	assert.Equal(t, ret.ID.String(), intent.Metadata["return_id"])
}

func TestConfirmLabelPaymentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()

	advanced, err := f.orch.ConfirmLabelPayment(ctx, ret.ID.String())
	require.NoError(t, err)
	assert.True(t, advanced)

	// Herlevering van hetzelfde Stripe-event.
	advanced, err = f.orch.ConfirmLabelPayment(ctx, ret.ID.String())
	require.NoError(t, err)
	assert.False(t, advanced)

	got, err := f.orch.GetReturn(ctx, ret.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusLabelPaymentCompleted, got.Status)
	assert.Equal(t, models.LabelPaymentCompleted, got.ReturnLabelPaymentStatus)
}

func TestConfirmPaymentFromGateway(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()

	intent, err := f.orch.CreateLabelPaymentIntent(ctx, ret.ID.String())
	require.NoError(t, err)

	// Nog niet betaald: geen transitie.
	confirmed, err := f.orch.ConfirmPaymentFromGateway(ctx, ret.ID.String(), intent.ID)
	require.NoError(t, err)
	assert.False(t, confirmed)

	f.gateway.markSucceeded(intent.ID)

	confirmed, err = f.orch.ConfirmPaymentFromGateway(ctx, ret.ID.String(), intent.ID)
	require.NoError(t, err)
	assert.True(t, confirmed)

	got, _ := f.orch.GetReturn(ctx, ret.ID.String())
	assert.Equal(t, models.ReturnStatusLabelPaymentCompleted, got.Status)
}

// --- Labelaankoop ------------------------------------------------------------

func TestGenerateLabelHappyPath(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	got := f.payAndLabel(t, ret.ID.String())

	assert.Equal(t, models.ReturnStatusLabelGenerated, got.Status)
	assert.Equal(t, "3SMOSE000042", got.ReturnTrackingCode)
	assert.NotEmpty(t, got.ReturnLabelURL)
	assert.NotNil(t, got.LabelGeneratedAt)
	assert.Equal(t, 1, f.notifier.labels)

	// De klant is afzender, het magazijn ontvanger.
	req := f.labels.lastReq
	assert.Equal(t, "Jan Jansen", req.Sender.Name)
	assert.Equal(t, "jan@example.com", req.Sender.Email)
	assert.Equal(t, "MOSE Wear B.V.", req.Recipient.Name)
	assert.Equal(t, 49.95, req.DeclaredValue)
	assert.Equal(t, 0.7, req.WeightKg) // 1 hoodie: 0,65 → afgerond 0,7
}

func TestGenerateLabelZonderBetalingGeweigerd(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)

	_, err := f.orch.GenerateLabel(context.Background(), ret.ID.String(), false)
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
	assert.Equal(t, 0, f.labels.createCalls)
}

func TestGenerateLabelAdminOverride(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)

	// Beheerder mag het label kopen zonder voltooide betaling.
	got, err := f.orch.GenerateLabel(context.Background(), ret.ID.String(), true)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusLabelGenerated, got.Status)
	assert.Equal(t, 1, f.labels.createCalls)
}

func TestGenerateLabelIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	first := f.payAndLabel(t, ret.ID.String())

	// Herlevering van de webhook: bestaand label terug, geen tweede aankoop.
	second, err := f.orch.GenerateLabel(context.Background(), ret.ID.String(), false)
	require.NoError(t, err)
	assert.Equal(t, first.ReturnTrackingCode, second.ReturnTrackingCode)
	assert.Equal(t, 1, f.labels.createCalls)
	assert.Equal(t, 1, f.notifier.labels)
}

func TestGenerateLabelProviderFoutLaatStatusStaan(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()

	_, err := f.orch.CreateLabelPaymentIntent(ctx, ret.ID.String())
	require.NoError(t, err)
	_, err = f.orch.ConfirmLabelPayment(ctx, ret.ID.String())
	require.NoError(t, err)

	f.labels.failNext = true
	_, err = f.orch.GenerateLabel(ctx, ret.ID.String(), false)
	require.Error(t, err)

	got, _ := f.orch.GetReturn(ctx, ret.ID.String())
	assert.Equal(t, models.ReturnStatusLabelPaymentCompleted, got.Status)
	assert.False(t, got.HasLabel())

	// De claim is vrijgegeven: een herlevering mag het opnieuw proberen.
	got, err = f.orch.GenerateLabel(ctx, ret.ID.String(), false)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusLabelGenerated, got.Status)
	assert.Equal(t, 2, f.labels.createCalls)
}

// --- Trackingupdates ----------------------------------------------------------

func TestHandleCarrierStatusInTransit(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	labeled := f.payAndLabel(t, ret.ID.String())
	ctx := context.Background()

	require.NoError(t, f.orch.HandleCarrierStatus(ctx, labeled.ReturnTrackingCode, 22))

	got, _ := f.orch.GetReturn(ctx, ret.ID.String())
	assert.Equal(t, models.ReturnStatusInTransit, got.Status)

	// Tweede in_transit-event: geen effect, geen fout.
	require.NoError(t, f.orch.HandleCarrierStatus(ctx, labeled.ReturnTrackingCode, 3))
	got, _ = f.orch.GetReturn(ctx, ret.ID.String())
	assert.Equal(t, models.ReturnStatusInTransit, got.Status)
}

func TestHandleCarrierStatusBezorgdWijzigtNiets(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	labeled := f.payAndLabel(t, ret.ID.String())
	ctx := context.Background()

	require.NoError(t, f.orch.HandleCarrierStatus(ctx, labeled.ReturnTrackingCode, 22))
	// Bezorgd (code 91): ontvangst wordt door een beheerder bevestigd.
	require.NoError(t, f.orch.HandleCarrierStatus(ctx, labeled.ReturnTrackingCode, 91))

	got, _ := f.orch.GetReturn(ctx, ret.ID.String())
	assert.Equal(t, models.ReturnStatusInTransit, got.Status)
}

func TestHandleCarrierStatusOnbekendeTracking(t *testing.T) {
	f := newFixture(t)
	// Trackingcode van een gewone verzending of vreemd pakket: loggen, 200.
	assert.NoError(t, f.orch.HandleCarrierStatus(context.Background(), "3SVREEMD999", 22))
}

func TestHandleCarrierStatusOnbekendeCode(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	labeled := f.payAndLabel(t, ret.ID.String())
	ctx := context.Background()

	require.NoError(t, f.orch.HandleCarrierStatus(ctx, labeled.ReturnTrackingCode, 4242))

	got, _ := f.orch.GetReturn(ctx, ret.ID.String())
	assert.Equal(t, models.ReturnStatusLabelGenerated, got.Status)
}

// --- Ontvangst en goedkeuring ---------------------------------------------------

func TestMarkReceivedVanuitInTransit(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	labeled := f.payAndLabel(t, ret.ID.String())
	ctx := context.Background()

	require.NoError(t, f.orch.HandleCarrierStatus(ctx, labeled.ReturnTrackingCode, 22))

	got, err := f.orch.MarkReceived(ctx, ret.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusReceived, got.Status)
}

func TestMarkReceivedZonderTrackingevents(t *testing.T) {
	// Pakket afgegeven zonder dat er ooit een trackingupdate binnenkwam.
	f := newFixture(t)
	ret := f.seedReturn(t)
	f.payAndLabel(t, ret.ID.String())

	got, err := f.orch.MarkReceived(context.Background(), ret.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusReceived, got.Status)
}

func TestMarkReceivedVerkeerdeStatus(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)

	_, err := f.orch.MarkReceived(context.Background(), ret.ID.String())
	assert.ErrorIs(t, err, ErrWrongStatus)
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	f.payAndLabel(t, ret.ID.String())
	ctx := context.Background()

	_, err := f.orch.MarkReceived(ctx, ret.ID.String())
	require.NoError(t, err)

	got, err := f.orch.Approve(ctx, ret.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusApproved, got.Status)
	assert.NotNil(t, got.ApprovedAt)
	assert.Equal(t, 1, f.notifier.approved)
}

func TestApproveVoorOntvangstGeweigerd(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	f.payAndLabel(t, ret.ID.String())

	_, err := f.orch.Approve(context.Background(), ret.ID.String())
	assert.ErrorIs(t, err, ErrWrongStatus)
}

// --- Terugbetaling ------------------------------------------------------------

// toReceived brengt een retour naar return_received.
func (f *fixture) toReceived(t *testing.T, returnID string) {
	t.Helper()
	f.payAndLabel(t, returnID)
	_, err := f.orch.MarkReceived(context.Background(), returnID)
	require.NoError(t, err)
}

func TestProcessRefundHappyPath(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	f.toReceived(t, ret.ID.String())
	ctx := context.Background()

	got, err := f.orch.ProcessRefund(ctx, ret.ID.String())
	require.NoError(t, err)

	assert.Equal(t, models.ReturnStatusRefunded, got.Status)
	assert.Equal(t, "re_test", got.StripeRefundID)
	assert.NotNil(t, got.RefundedAt)
	assert.Equal(t, 1, f.notifier.refunds)

	// Terugbetaald op het oorspronkelijke order-intent, niet het label-intent,
	// en alleen de artikelwaarde — nooit de labelkosten.
	assert.Equal(t, "pi_order_original", f.gateway.lastRefundPI)
	assert.Equal(t, 49.95, f.gateway.lastRefundEUR)
}

func TestProcessRefundNaGoedkeuring(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	f.toReceived(t, ret.ID.String())
	ctx := context.Background()

	_, err := f.orch.Approve(ctx, ret.ID.String())
	require.NoError(t, err)

	got, err := f.orch.ProcessRefund(ctx, ret.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusRefunded, got.Status)
}

func TestProcessRefundEenmalig(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	f.toReceived(t, ret.ID.String())
	ctx := context.Background()

	_, err := f.orch.ProcessRefund(ctx, ret.ID.String())
	require.NoError(t, err)

	// Tweede aanroep strandt vóór er ook maar een gateway-call plaatsvindt.
	_, err = f.orch.ProcessRefund(ctx, ret.ID.String())
	assert.ErrorIs(t, err, ErrRefundExists)
	assert.Equal(t, 1, f.gateway.refundCalls)
}

func TestProcessRefundVerkeerdeStatus(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)

	_, err := f.orch.ProcessRefund(context.Background(), ret.ID.String())
	assert.ErrorIs(t, err, ErrWrongStatus)
	assert.Equal(t, 0, f.gateway.refundCalls)
}

func TestProcessRefundZonderOrderIntent(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	f.toReceived(t, ret.ID.String())

	f.store.mu.Lock()
	f.store.orders[ret.OrderID.String()].StripePaymentIntentID = ""
	f.store.mu.Unlock()

	_, err := f.orch.ProcessRefund(context.Background(), ret.ID.String())
	assert.ErrorIs(t, err, ErrNoPaymentIntent)
}

func TestProcessRefundInBehandeling(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	f.toReceived(t, ret.ID.String())
	f.gateway.refundStatus = "pending"

	got, err := f.orch.ProcessRefund(context.Background(), ret.ID.String())
	require.NoError(t, err)

	// Refund nog niet afgerond: refund_processing, geen e-mail, geen tijdstempel.
	assert.Equal(t, models.ReturnStatusRefundProcessing, got.Status)
	assert.Nil(t, got.RefundedAt)
	assert.Equal(t, 0, f.notifier.refunds)
}

// --- Herinneringen ------------------------------------------------------------

func TestScanAbandonedLabelPayments(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()

	// Retour wacht al drie dagen op betaling (de drempel is 48 uur).
	old := time.Now().Add(-72 * time.Hour)
	f.store.mu.Lock()
	f.store.returns[ret.ID.String()].LabelPaymentPendingAt = &old
	f.store.mu.Unlock()

	sent, err := f.orch.ScanAbandonedLabelPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, f.notifier.reminders)

	// Volgende scan: dezelfde retour krijgt géén tweede herinnering.
	sent, err = f.orch.ScanAbandonedLabelPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, f.notifier.reminders)
}

func TestScanPendingLabelsKooptBlijvenLiggenLabel(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()

	// Betaling bevestigd, maar de labelaankoop bleef liggen
	// (provider plat tijdens de webhook).
	_, err := f.orch.ConfirmLabelPayment(ctx, ret.ID.String())
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	f.store.mu.Lock()
	f.store.returns[ret.ID.String()].UpdatedAt = old
	f.store.mu.Unlock()

	bought, err := f.orch.ScanPendingLabels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bought)
	assert.Equal(t, 1, f.labels.createCalls)

	got, _ := f.orch.GetReturn(ctx, ret.ID.String())
	assert.Equal(t, models.ReturnStatusLabelGenerated, got.Status)

	// Tweede ronde: het label bestaat al, geen tweede aankoop.
	bought, err = f.orch.ScanPendingLabels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, bought)
	assert.Equal(t, 1, f.labels.createCalls)
}

func TestScanPendingLabelsSlaatVerseBetalingenOver(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()

	_, err := f.orch.ConfirmLabelPayment(ctx, ret.ID.String())
	require.NoError(t, err)

	// Net betaald: de webhookflow krijgt eerst de kans.
	bought, err := f.orch.ScanPendingLabels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, bought)
	assert.Equal(t, 0, f.labels.createCalls)
}

func TestScanAbandonedSlaatVerseRetourenOver(t *testing.T) {
	f := newFixture(t)
	f.seedReturn(t) // zojuist aangemaakt, nog binnen de drempel

	sent, err := f.orch.ScanAbandonedLabelPayments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

// --- Volledige levenscyclus -----------------------------------------------------

func TestVolledigeLevenscyclus(t *testing.T) {
	f := newFixture(t)
	ret := f.seedReturn(t)
	ctx := context.Background()
	id := ret.ID.String()

	intent, err := f.orch.CreateLabelPaymentIntent(ctx, id)
	require.NoError(t, err)
	f.gateway.markSucceeded(intent.ID)

	advanced, err := f.orch.ConfirmLabelPayment(ctx, id)
	require.NoError(t, err)
	require.True(t, advanced)

	labeled, err := f.orch.GenerateLabel(ctx, id, false)
	require.NoError(t, err)

	require.NoError(t, f.orch.HandleCarrierStatus(ctx, labeled.ReturnTrackingCode, 22))
	require.NoError(t, f.orch.HandleCarrierStatus(ctx, labeled.ReturnTrackingCode, 91))

	_, err = f.orch.MarkReceived(ctx, id)
	require.NoError(t, err)
	_, err = f.orch.Approve(ctx, id)
	require.NoError(t, err)

	got, err := f.orch.ProcessRefund(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusRefunded, got.Status)

	// De live-feed heeft elke transitie gezien, in volgorde.
	assert.Equal(t, []string{
		models.ReturnStatusLabelPaymentPending,
		models.ReturnStatusLabelPaymentCompleted,
		models.ReturnStatusLabelGenerated,
		models.ReturnStatusInTransit,
		models.ReturnStatusReceived,
		models.ReturnStatusApproved,
		models.ReturnStatusRefunded,
	}, f.events.events)
}
