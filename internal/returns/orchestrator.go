package returns

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"
	"github.com/mosewear/mose-webshop-sub004/internal/config"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
	"github.com/mosewear/mose-webshop-sub004/internal/payments"
	"github.com/mosewear/mose-webshop-sub004/internal/shipping"
)

var (
	ErrAlreadyPaid         = errors.New("de labelkosten zijn al betaald")
	ErrWrongStatus         = errors.New("deze actie is niet mogelijk in de huidige status")
	ErrStatusConflict      = errors.New("de retour is intussen door een andere actie gewijzigd")
	ErrRefundExists        = errors.New("er is al een terugbetaling aangemaakt voor deze retour")
	ErrNoPaymentIntent     = errors.New("de bestelling heeft geen oorspronkelijke betaling")
	ErrZeroRefundAmount    = errors.New("het terug te betalen bedrag moet groter dan nul zijn")
	ErrReturnWindowExpired = errors.New("de retourtermijn voor deze bestelling is verstreken")
	ErrPaymentNotCompleted = errors.New("de labelkosten zijn nog niet betaald")
)

// RefundReason is de vaste Stripe-redencode voor retour-terugbetalingen.
const RefundReason = "requested_by_customer"

// Notifier verstuurt de klantgerichte e-mails per transitie. Fouten worden
// binnen de notifier gelogd en nooit teruggegeven: de statuswijziging is
// leidend, de e-mail is best effort.
type Notifier interface {
	SendLabelGenerated(ctx context.Context, ret *models.Return)
	SendReturnApproved(ctx context.Context, ret *models.Return)
	SendRefundCompleted(ctx context.Context, ret *models.Return)
	SendAbandonedPaymentReminder(ctx context.Context, ret *models.Return)
}

// EventPublisher voedt de live-feed van de back-office (websocket-hub).
type EventPublisher interface {
	PublishReturnEvent(returnID, status string)
}

// Dedup begrenst dubbele neveneffecten bij at-least-once webhooklevering
// (Redis SETNX in productie).
type Dedup interface {
	// ClaimOnce geeft true bij de eerste claim van een sleutel binnen de TTL.
	ClaimOnce(ctx context.Context, key string, ttl time.Duration) bool
	// Release geeft een claim vrij, zodat een mislukte aankoop opnieuw kan.
	Release(ctx context.Context, key string)
}

// ReturnItemRequest is één regel van een retourverzoek van de klant.
type ReturnItemRequest struct {
	OrderItemID string `json:"order_item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Reason      string `json:"reason" binding:"required,min=3,max=500"`
}

// Orchestrator stuurt de levenscyclus van een retour aan: betaling van de
// labelkosten, aankoop van het label, trackingupdates en de terugbetaling.
// Alle afhankelijkheden komen binnen via injectie.
type Orchestrator struct {
	store    Store
	gateway  payments.Gateway
	labels   shipping.LabelClient
	notifier Notifier
	events   EventPublisher
	dedup    Dedup
	settings *config.SettingsStore
	merchant models.Address
}

func NewOrchestrator(store Store, gateway payments.Gateway, labels shipping.LabelClient,
	notifier Notifier, events EventPublisher, dedup Dedup,
	settings *config.SettingsStore, merchant models.Address) *Orchestrator {
	return &Orchestrator{
		store:    store,
		gateway:  gateway,
		labels:   labels,
		notifier: notifier,
		events:   events,
		dedup:    dedup,
		settings: settings,
		merchant: merchant,
	}
}

// CreateReturn registreert een nieuw retourverzoek voor een bestelling,
// binnen de retourtermijn, met prijzen bevroren op het aankoopmoment.
func (o *Orchestrator) CreateReturn(ctx context.Context, orderID string, items []ReturnItemRequest) (*models.Return, error) {
	order, err := o.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	settings := o.settings.Get()
	window := time.Duration(settings.ReturnWindowDays) * 24 * time.Hour
	if time.Since(order.CreatedAt) > window {
		return nil, ErrReturnWindowExpired
	}

	orderItems := make(map[string]models.OrderItem, len(order.Items))
	for _, item := range order.Items {
		orderItems[item.OrderItemID] = item
	}

	returnItems := make([]models.ReturnItem, 0, len(items))
	for _, req := range items {
		orderItem, ok := orderItems[req.OrderItemID]
		if !ok {
			return nil, fmt.Errorf("artikel %s hoort niet bij deze bestelling", req.OrderItemID)
		}
		if req.Quantity > orderItem.Quantity {
			return nil, fmt.Errorf("aantal voor %s is groter dan besteld", orderItem.Name)
		}
		returnItems = append(returnItems, models.ReturnItem{
			OrderItemID:     req.OrderItemID,
			Quantity:        req.Quantity,
			ProductName:     orderItem.Name,
			PriceAtPurchase: orderItem.Price,
			WeightKg:        orderItem.WeightKg,
			Reason:          req.Reason,
		})
	}
	if len(returnItems) == 0 {
		return nil, fmt.Errorf("een retour moet minstens één artikel bevatten")
	}

	now := time.Now()
	ret := &models.Return{
		ID:                       gocql.TimeUUID(),
		OrderID:                  order.ID,
		Email:                    order.Email,
		Status:                   models.ReturnStatusLabelPaymentPending,
		ReturnItems:              returnItems,
		ReturnLabelCostInclVAT:   settings.ReturnLabelFeeInclVAT,
		ReturnLabelPaymentStatus: models.LabelPaymentPending,
		LabelPaymentPendingAt:    &now,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	ret.RefundAmount = ret.GoodsValue()

	if err := o.store.CreateReturn(ctx, ret); err != nil {
		return nil, err
	}

	log.Printf("🔄 Retour aangemaakt: %s voor bestelling %s (%d artikel(en), €%.2f)",
		ret.ID, order.ID, len(returnItems), ret.RefundAmount)
	o.events.PublishReturnEvent(ret.ID.String(), ret.Status)

	return ret, nil
}

// CreateLabelPaymentIntent maakt het PaymentIntent voor de labelkosten aan,
// of hergebruikt een bestaand intent dat nog niet geslaagd is. Een tweede
// aanroep levert dus hetzelfde intent-id op, nooit een duplicaat.
func (o *Orchestrator) CreateLabelPaymentIntent(ctx context.Context, returnID string) (*payments.Intent, error) {
	ret, err := o.store.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if ret.Status != models.ReturnStatusLabelPaymentPending {
		return nil, fmt.Errorf("%w (huidige status: %s)", ErrWrongStatus, ret.Status)
	}

	// Bestaand intent hergebruiken zolang het niet geslaagd is.
	if ret.ReturnLabelPaymentIntentID != "" {
		intent, err := o.gateway.GetPaymentIntent(ctx, ret.ReturnLabelPaymentIntentID)
		if err != nil {
			return nil, err
		}
		if intent.Status == payments.IntentStatusSucceeded {
			return nil, ErrAlreadyPaid
		}
		log.Printf("🔁 Bestaand PaymentIntent hergebruikt voor retour %s: %s", returnID, intent.ID)
		return intent, nil
	}

	intent, err := o.gateway.CreateReturnLabelIntent(ctx, returnID, ret.OrderID.String(), ret.Email, ret.ReturnLabelCostInclVAT)
	if err != nil {
		return nil, err
	}

	applied, err := o.store.SetPaymentIntent(ctx, returnID, intent.ID)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Een gelijktijdige transitie won; het zojuist aangemaakte intent
		// blijft ongebruikt bij Stripe staan en verloopt vanzelf.
		return nil, ErrStatusConflict
	}

	return intent, nil
}

// ConfirmLabelPayment zet pending → completed. Geeft terug of déze aanroep
// de transitie heeft uitgevoerd; bij herlevering van hetzelfde event is dat
// false en mag er stroomafwaarts géén tweede labelaankoop volgen.
func (o *Orchestrator) ConfirmLabelPayment(ctx context.Context, returnID string) (bool, error) {
	applied, err := o.store.MarkLabelPaymentCompleted(ctx, returnID)
	if err != nil {
		return false, err
	}
	if !applied {
		log.Printf("🔁 Betaling van retour %s was al bevestigd — event genegeerd", returnID)
		return false, nil
	}

	log.Printf("✅ Labelkosten betaald voor retour %s", returnID)
	o.events.PublishReturnEvent(returnID, models.ReturnStatusLabelPaymentCompleted)
	return true, nil
}

// ConfirmPaymentFromGateway is het fallback-pad voor als de webhook (nog)
// niet geleverd is: we vragen het intent rechtstreeks op bij de gateway en
// bevestigen langs hetzelfde idempotente pad. Geeft terug of de betaling
// (inmiddels) geslaagd is.
func (o *Orchestrator) ConfirmPaymentFromGateway(ctx context.Context, returnID, intentID string) (bool, error) {
	intent, err := o.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return false, err
	}
	if intent.Status != payments.IntentStatusSucceeded {
		return false, nil
	}

	if _, err := o.ConfirmLabelPayment(ctx, returnID); err != nil {
		return false, err
	}
	return true, nil
}

// GenerateLabel koopt het retourlabel bij de verzendprovider. Afzender en
// ontvanger zijn omgekeerd ten opzichte van een normale verzending: de klant
// verstuurt, het magazijn ontvangt. Bestaat er al een label, dan geven we
// dat idempotent terug zonder de provider opnieuw aan te roepen.
//
// adminOverride onderscheidt de twee aanroepers: het geautomatiseerde
// webhookpad eist een voltooide betaling, een beheerder mag handmatig
// overrulen.
func (o *Orchestrator) GenerateLabel(ctx context.Context, returnID string, adminOverride bool) (*models.Return, error) {
	ret, err := o.store.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if ret.HasLabel() {
		log.Printf("🔁 Retour %s heeft al een label — bestaand label teruggegeven", returnID)
		return ret, nil
	}

	if !adminOverride && ret.Status != models.ReturnStatusLabelPaymentCompleted {
		return nil, fmt.Errorf("%w (huidige status: %s)", ErrPaymentNotCompleted, ret.Status)
	}

	// Claim vóór de externe aankoop, zodat twee gelijktijdige leveringen
	// van hetzelfde webhook-event niet allebei een label kopen.
	claimKey := "retour:labelclaim:" + returnID
	if !o.dedup.ClaimOnce(ctx, claimKey, time.Minute) {
		log.Printf("🔁 Labelaankoop voor retour %s is al bezig — overgeslagen", returnID)
		return ret, nil
	}

	order, err := o.store.GetOrder(ctx, ret.OrderID.String())
	if err != nil {
		o.dedup.Release(ctx, claimKey)
		return nil, err
	}

	parcelItems := make([]shipping.ParcelItem, 0, len(ret.ReturnItems))
	for _, item := range ret.ReturnItems {
		parcelItems = append(parcelItems, shipping.ParcelItem{
			Description: item.ProductName,
			Quantity:    item.Quantity,
			WeightKg:    shipping.ItemWeight(item),
			ValueEUR:    item.PriceAtPurchase,
		})
	}

	sender := order.ShippingAddress
	if sender.Email == "" {
		sender.Email = order.Email
	}

	parcel, err := o.labels.CreateReturnParcel(ctx, shipping.CreateParcelRequest{
		ReturnID:      returnID,
		Sender:        sender,     // de klant
		Recipient:     o.merchant, // het magazijn
		WeightKg:      shipping.EstimateParcelWeight(ret.ReturnItems),
		DeclaredValue: ret.GoodsValue(),
		Items:         parcelItems,
	})
	if err != nil {
		// Status blijft ongewijzigd; de webhook-herlevering van de
		// provider of een beheerder probeert het later opnieuw.
		o.dedup.Release(ctx, claimKey)
		return nil, fmt.Errorf("labelaankoop mislukt: %w", err)
	}

	info := LabelInfo{
		LabelURL:     parcel.LabelURL,
		TrackingCode: parcel.TrackingCode,
		TrackingURL:  parcel.TrackingURL,
		GeneratedAt:  time.Now(),
	}
	applied, err := o.store.SetLabel(ctx, returnID, info)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Verloren race: een andere handler schreef net een label.
		log.Printf("⚠️ Retour %s kreeg gelijktijdig een label — dubbele aankoop bij provider, handmatig annuleren", returnID)
		return o.store.GetReturn(ctx, returnID)
	}

	ret, err = o.store.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}

	log.Printf("📦 Label gegenereerd voor retour %s: tracking %s", returnID, info.TrackingCode)
	o.events.PublishReturnEvent(returnID, models.ReturnStatusLabelGenerated)
	o.notifier.SendLabelGenerated(ctx, ret)

	return ret, nil
}

// HandleCarrierStatus verwerkt een trackingupdate van de verzendprovider.
// 'delivered' zet de status bewust NIET door naar return_received: fysieke
// ontvangst wordt altijd door een beheerder bevestigd.
func (o *Orchestrator) HandleCarrierStatus(ctx context.Context, trackingCode string, statusCode int) error {
	returnID, err := o.store.GetReturnIDByTracking(ctx, trackingCode)
	if errors.Is(err, ErrReturnNotFound) {
		log.Printf("⚠️ Trackingupdate voor onbekende code %s — genegeerd", trackingCode)
		return nil
	}
	if err != nil {
		return err
	}

	switch shipping.MapCarrierStatus(statusCode) {
	case shipping.StatusInTransit:
		applied, err := o.store.MarkInTransit(ctx, returnID)
		if err != nil {
			return err
		}
		if applied {
			log.Printf("🚚 Retour %s is onderweg", returnID)
			o.events.PublishReturnEvent(returnID, models.ReturnStatusInTransit)
		}
	case shipping.StatusDelivered:
		// Bezorgd bij het magazijn: wacht op bevestiging door een beheerder.
		log.Printf("📬 Retour %s is bezorgd volgens de vervoerder — wacht op bevestiging", returnID)
	case shipping.StatusException, shipping.StatusCancelled:
		log.Printf("⚠️ Vervoerder meldt probleem voor retour %s (code %d)", returnID, statusCode)
	default:
		// Aangemeld of onbekend: geen statuswijziging.
	}

	return nil
}

// MarkReceived bevestigt fysieke ontvangst van het pakket (beheerder).
func (o *Orchestrator) MarkReceived(ctx context.Context, returnID string) (*models.Return, error) {
	ret, err := o.store.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}

	// Toegestaan vanaf label_generated (pakket zonder trackingevents) of in_transit.
	if ret.Status != models.ReturnStatusLabelGenerated && ret.Status != models.ReturnStatusInTransit {
		return nil, fmt.Errorf("%w (huidige status: %s)", ErrWrongStatus, ret.Status)
	}

	applied, err := o.store.MarkReceived(ctx, returnID, ret.Status)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrStatusConflict
	}

	log.Printf("📥 Retour %s ontvangen in het magazijn", returnID)
	o.events.PublishReturnEvent(returnID, models.ReturnStatusReceived)

	return o.store.GetReturn(ctx, returnID)
}

// Approve keurt een ontvangen retour goed (beheerder).
func (o *Orchestrator) Approve(ctx context.Context, returnID string) (*models.Return, error) {
	ret, err := o.store.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if ret.Status != models.ReturnStatusReceived {
		return nil, fmt.Errorf("%w (huidige status: %s)", ErrWrongStatus, ret.Status)
	}

	applied, err := o.store.Approve(ctx, returnID, time.Now())
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrStatusConflict
	}

	ret, err = o.store.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Retour %s goedgekeurd", returnID)
	o.events.PublishReturnEvent(returnID, models.ReturnStatusApproved)
	o.notifier.SendReturnApproved(ctx, ret)

	return ret, nil
}

// ProcessRefund betaalt de artikelwaarde terug via het oorspronkelijke
// PaymentIntent van de bestelling (nooit het label-intent). De labelkosten
// worden niet terugbetaald. Eén refund per retour: een bestaand refund-id
// blokkeert een tweede aanroep vóór er ook maar een gateway-call plaatsvindt.
func (o *Orchestrator) ProcessRefund(ctx context.Context, returnID string) (*models.Return, error) {
	ret, err := o.store.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}

	if ret.HasRefund() {
		return nil, ErrRefundExists
	}
	if ret.Status != models.ReturnStatusReceived && ret.Status != models.ReturnStatusApproved {
		return nil, fmt.Errorf("%w (huidige status: %s)", ErrWrongStatus, ret.Status)
	}

	order, err := o.store.GetOrder(ctx, ret.OrderID.String())
	if err != nil {
		return nil, err
	}
	if order.StripePaymentIntentID == "" {
		return nil, ErrNoPaymentIntent
	}

	amount := ret.GoodsValue()
	if amount <= 0 {
		return nil, ErrZeroRefundAmount
	}

	refund, err := o.gateway.CreateRefund(ctx, order.StripePaymentIntentID, amount, RefundReason)
	if err != nil {
		return nil, err
	}

	newStatus := models.ReturnStatusRefundProcessing
	var refundedAt *time.Time
	if refund.Status == payments.RefundStatusSucceeded {
		newStatus = models.ReturnStatusRefunded
		now := time.Now()
		refundedAt = &now
	}

	applied, err := o.store.SetRefund(ctx, returnID, refund.ID, refund.Status, newStatus, refundedAt)
	if err != nil {
		return nil, err
	}
	if !applied {
		log.Printf("⚠️ Gelijktijdige refund voor retour %s — Stripe-refund %s handmatig controleren", returnID, refund.ID)
		return nil, ErrRefundExists
	}

	ret, err = o.store.GetReturn(ctx, returnID)
	if err != nil {
		return nil, err
	}

	log.Printf("💰 Terugbetaling voor retour %s: €%.2f (Stripe: %s, status %s)", returnID, amount, refund.ID, refund.Status)
	o.events.PublishReturnEvent(returnID, newStatus)
	if newStatus == models.ReturnStatusRefunded {
		o.notifier.SendRefundCompleted(ctx, ret)
	}

	return ret, nil
}

// UpdateAdminNotes zet de vrije notities van de beheerder.
func (o *Orchestrator) UpdateAdminNotes(ctx context.Context, returnID, notes string) error {
	if _, err := o.store.GetReturn(ctx, returnID); err != nil {
		return err
	}
	return o.store.UpdateAdminNotes(ctx, returnID, notes)
}

// GetReturn en ListReturns zijn doorgeefluiken voor de handlers.
func (o *Orchestrator) GetReturn(ctx context.Context, returnID string) (*models.Return, error) {
	return o.store.GetReturn(ctx, returnID)
}

func (o *Orchestrator) ListReturns(ctx context.Context, status string) ([]models.Return, error) {
	return o.store.ListReturns(ctx, status)
}

// pendingLabelGrace is hoe lang een betaalde retour zonder label mag blijven
// liggen voordat de veegronde hem oppakt. Ruim genoeg dat de webhookflow
// (inclusief herleveringen van Stripe) normaal eerst aan de beurt komt.
const pendingLabelGrace = 15 * time.Minute

// ScanPendingLabels koopt alsnog een label voor betaalde retouren waar de
// aankoop is blijven liggen, bv. doordat de verzendprovider plat lag tijdens
// de webhook en het Stripe-event al bevestigd was. GenerateLabel is
// idempotent, dus een race met een late herlevering is onschadelijk.
func (o *Orchestrator) ScanPendingLabels(ctx context.Context) (int, error) {
	pending, err := o.store.FindPendingLabels(ctx, time.Now().Add(-pendingLabelGrace))
	if err != nil {
		return 0, err
	}

	bought := 0
	for i := range pending {
		id := pending[i].ID.String()
		if _, err := o.GenerateLabel(ctx, id, false); err != nil {
			log.Printf("⚠️ Inhaalaankoop label voor retour %s mislukt: %v", id, err)
			continue
		}
		bought++
	}

	if bought > 0 {
		log.Printf("📦 %d blijven-liggen label(s) alsnog aangekocht", bought)
	}
	return bought, nil
}

// ScanAbandonedLabelPayments stuurt één herinnering per retour die te lang
// op betaling van het label wacht. Wordt extern getriggerd (cronjob of
// interne endpoint), nooit door de service zelf ingepland.
func (o *Orchestrator) ScanAbandonedLabelPayments(ctx context.Context) (int, error) {
	settings := o.settings.Get()
	cutoff := time.Now().Add(-time.Duration(settings.AbandonedReminderHours) * time.Hour)

	abandoned, err := o.store.FindAbandonedLabelPayments(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range abandoned {
		ret := &abandoned[i]
		// Eén herinnering per retour, ook over meerdere scans heen.
		if !o.dedup.ClaimOnce(ctx, "retour:herinnering:"+ret.ID.String(), 30*24*time.Hour) {
			continue
		}
		o.notifier.SendAbandonedPaymentReminder(ctx, ret)
		sent++
	}

	if sent > 0 {
		log.Printf("⏰ %d herinnering(en) verstuurd voor onbetaalde retourlabels", sent)
	}
	return sent, nil
}
