package shipping

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ReturnOrderNumberPrefix is het vaste voorvoegsel waarmee het order_number
// van een retourlabel wordt geprefixt. Zo kan de webhook een trackingevent
// van een retour onderscheiden van dat van een gewone verzending.
const ReturnOrderNumberPrefix = "RETOUR-"

// Soorten verzendingen waarnaar een webhook-payload kan verwijzen.
const (
	KindOrder  = "order"
	KindReturn = "return"
)

// OrderRef is het getagde resultaat van het geparste order_number-veld:
// meteen aan de rand ontleed, zodat verderop niet opnieuw op substrings
// gecontroleerd hoeft te worden.
type OrderRef struct {
	Kind string
	ID   string
}

// ParseOrderNumber ontleedt het overladen order_number-veld van de
// verzendprovider. "RETOUR-<id>" is een retourlabel, al het andere een
// gewone bestelling.
func ParseOrderNumber(orderNumber string) OrderRef {
	if id, ok := strings.CutPrefix(orderNumber, ReturnOrderNumberPrefix); ok {
		return OrderRef{Kind: KindReturn, ID: id}
	}
	return OrderRef{Kind: KindOrder, ID: orderNumber}
}

// ParcelStatusEvent is de payload van een parcel_status_changed-webhook.
type ParcelStatusEvent struct {
	Action string `json:"action"`
	Parcel struct {
		ID          int64  `json:"id"`
		OrderNumber string `json:"order_number"`
		TrackingNum string `json:"tracking_number"`
		Status      struct {
			ID      int    `json:"id"`
			Message string `json:"message"`
		} `json:"status"`
	} `json:"parcel"`
}

// VerifyWebhookSignature controleert de HMAC-SHA256-handtekening over de
// rauwe payload. Een lege secret betekent: verificatie uitgeschakeld
// (de aanroeper hoort dat te loggen).
func VerifyWebhookSignature(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
