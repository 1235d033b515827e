package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReturnEvent is één regel in de live-feed van de back-office.
type ReturnEvent struct {
	ReturnID string    `json:"return_id"`
	Status   string    `json:"status"`
	At       time.Time `json:"at"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// De back-office draait op een ander domein; CORS wordt al door
	// de HTTP-laag afgedwongen.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub verdeelt retour-events over de verbonden back-office-clients.
// Een trage client wordt losgekoppeld in plaats van de rest op te houden.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan ReturnEvent
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan ReturnEvent)}
}

// PublishReturnEvent implementeert returns.EventPublisher.
func (h *Hub) PublishReturnEvent(returnID, status string) {
	event := ReturnEvent{ReturnID: returnID, Status: status, At: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// Buffer vol: client loopt te ver achter.
			close(ch)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Serve upgrade het verzoek naar een websocket en streamt events tot de
// client de verbinding sluit.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ Websocket-upgrade mislukt: %v", err)
		return
	}

	ch := make(chan ReturnEvent, 16)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	log.Println("🔔 Back-office verbonden met de retour-feed")

	// Leeslus alleen om een disconnect te detecteren.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()

	for event := range ch {
		if err := conn.WriteJSON(event); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	conn.Close()
}
