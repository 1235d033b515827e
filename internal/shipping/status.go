package shipping

import "log"

// Interne vervoerstatussen.
const (
	StatusAnnounced = "announced"
	StatusInTransit = "in_transit"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
	StatusException = "exception"
	StatusUnknown   = "unknown"
)

// carrierStatusMap vertaalt de numerieke statuscodes van Sendcloud naar
// onze interne statussen. De tabel is bewust volledig en expliciet;
// onbekende codes worden gelogd en genegeerd, nooit een panic.
var carrierStatusMap = map[int]string{
	1:    StatusAnnounced,  // aangemeld
	3:    StatusInTransit,  // onderweg naar sorteercentrum
	5:    StatusInTransit,  // gesorteerd
	22:   StatusInTransit,  // opgehaald door chauffeur
	62:   StatusInTransit,  // bij afhaalpunt aangeboden
	80:   StatusAnnounced,  // klaar voor verzending
	91:   StatusDelivered,  // bezorgd
	93:   StatusDelivered,  // opgehaald bij afhaalpunt
	1002: StatusCancelled,  // geannuleerd
	1337: StatusException,  // uitzondering / onderzoek
	1999: StatusException,  // retour afzender door vervoerder
}

// MapCarrierStatus vertaalt een statuscode van de vervoerder.
// Voor een onbekende code geven we StatusUnknown terug: geen statuswijziging.
func MapCarrierStatus(code int) string {
	status, ok := carrierStatusMap[code]
	if !ok {
		log.Printf("⚠️ Onbekende vervoerstatuscode %d — genegeerd", code)
		return StatusUnknown
	}
	return status
}
