package retour

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosewear/mose-webshop-sub004/internal/config"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
	"github.com/mosewear/mose-webshop-sub004/internal/returns"
	"github.com/mosewear/mose-webshop-sub004/internal/ws"
)

// stubStore faalt de betalingsbevestiging een instelbaar aantal keren,
// zodat het herleveringsgedrag van de webhook te testen is.
type stubStore struct {
	mu           sync.Mutex
	confirmCalls int
	failConfirms int
}

func (s *stubStore) MarkLabelPaymentCompleted(_ context.Context, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmCalls++
	if s.failConfirms > 0 {
		s.failConfirms--
		return false, errors.New("scylla timeout")
	}
	return true, nil
}

func (s *stubStore) GetReturn(context.Context, string) (*models.Return, error) {
	return nil, returns.ErrReturnNotFound
}
func (s *stubStore) GetReturnIDByTracking(context.Context, string) (string, error) {
	return "", returns.ErrReturnNotFound
}
func (s *stubStore) GetOrder(context.Context, string) (*models.Order, error) {
	return nil, returns.ErrOrderNotFound
}
func (s *stubStore) CreateReturn(context.Context, *models.Return) error { return nil }
func (s *stubStore) ListReturns(context.Context, string) ([]models.Return, error) {
	return nil, nil
}
func (s *stubStore) FindAbandonedLabelPayments(context.Context, time.Time) ([]models.Return, error) {
	return nil, nil
}
func (s *stubStore) FindPendingLabels(context.Context, time.Time) ([]models.Return, error) {
	return nil, nil
}
func (s *stubStore) SetPaymentIntent(context.Context, string, string) (bool, error) {
	return false, nil
}
func (s *stubStore) SetLabel(context.Context, string, returns.LabelInfo) (bool, error) {
	return false, nil
}
func (s *stubStore) MarkInTransit(context.Context, string) (bool, error) { return false, nil }
func (s *stubStore) MarkReceived(context.Context, string, string) (bool, error) {
	return false, nil
}
func (s *stubStore) Approve(context.Context, string, time.Time) (bool, error) {
	return false, nil
}
func (s *stubStore) SetRefund(context.Context, string, string, string, string, *time.Time) (bool, error) {
	return false, nil
}
func (s *stubStore) UpdateAdminNotes(context.Context, string, string) error { return nil }
func (s *stubStore) LogEmail(context.Context, models.EmailLog) error        { return nil }

type mapDedup struct {
	mu     sync.Mutex
	claims map[string]bool
}

func newMapDedup() *mapDedup { return &mapDedup{claims: make(map[string]bool)} }

func (d *mapDedup) ClaimOnce(_ context.Context, key string, _ time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.claims[key] {
		return false
	}
	d.claims[key] = true
	return true
}

func (d *mapDedup) Release(_ context.Context, key string) {
	d.mu.Lock()
	delete(d.claims, key)
	d.mu.Unlock()
}

func (d *mapDedup) claimed(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.claims[key]
}

type emptySettingsLoader struct{}

func (emptySettingsLoader) LoadSettings() (map[string]string, error) {
	return map[string]string{}, nil
}

func newWebhookTestRouter(t *testing.T, store *stubStore, dedup *mapDedup) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Testmodus: geen handtekeningcontrole, geen echte labelaanroep.
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	labelSink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(labelSink.Close)
	t.Setenv("BASE_URL", labelSink.URL)

	settings := config.NewSettingsStore(emptySettingsLoader{}, time.Hour)
	hub := ws.NewHub()
	orch := returns.NewOrchestrator(store, nil, nil, nil, hub, dedup, settings, models.Address{})

	r := gin.New()
	h := NewHandler(orch, hub, dedup)
	r.POST("/api/webhooks/stripe", h.StripeWebhook)
	return r
}

func postStripeEvent(r *gin.Engine, payload string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

const labelPaidEvent = `{
	"id": "evt_test_herlevering",
	"type": "payment_intent.succeeded",
	"data": {
		"object": {
			"id": "pi_label_test",
			"metadata": {
				"purpose": "return_label",
				"return_id": "9f6a2c0e-1b7d-4f3a-8a21-0c9d4e5f6a7b",
				"order_id": "11111111-2222-3333-4444-555555555555",
				"email": "jan@example.com"
			}
		}
	}
}`

// Stripe levert at-least-once: een 500 moet betekenen dat de herlevering
// het event opnieuw mag verwerken, niet dat de dedupe hem inslikt.
func TestStripeWebhookHerleveringNaFout(t *testing.T) {
	store := &stubStore{failConfirms: 1}
	dedup := newMapDedup()
	r := newWebhookTestRouter(t, store, dedup)

	// Eerste levering: de database hapert, dus 500 — en de event-claim
	// moet weer vrijgegeven zijn.
	w := postStripeEvent(r, labelPaidEvent)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, store.confirmCalls)
	assert.False(t, dedup.claimed("stripe:event:evt_test_herlevering"))

	// Herlevering: nu slaagt de bevestiging.
	w = postStripeEvent(r, labelPaidEvent)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, store.confirmCalls)
	assert.True(t, dedup.claimed("stripe:event:evt_test_herlevering"))
}

func TestStripeWebhookDubbelEventGenegeerd(t *testing.T) {
	store := &stubStore{}
	dedup := newMapDedup()
	r := newWebhookTestRouter(t, store, dedup)

	w := postStripeEvent(r, labelPaidEvent)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, store.confirmCalls)

	// Exact hetzelfde event nog eens: 200, maar geen tweede verwerking.
	w = postStripeEvent(r, labelPaidEvent)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.confirmCalls)
}

func TestStripeWebhookNegeertAndereIntents(t *testing.T) {
	store := &stubStore{}
	dedup := newMapDedup()
	r := newWebhookTestRouter(t, store, dedup)

	// Een gewone bestelling (geen purpose return_label) raakt de retourflow niet.
	w := postStripeEvent(r, `{
		"id": "evt_gewone_bestelling",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_order", "metadata": {"order_id": "x"}}}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.confirmCalls)
}
