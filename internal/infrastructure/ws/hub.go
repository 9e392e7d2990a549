package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/jhoicas/negocio-erp/internal/application/insights"
)

var _ insights.Notifier = (*Hub)(nil)

// Conn es lo que el hub necesita de una conexión (*websocket.Conn lo cumple).
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type subscription struct {
	companyID string
	conn      Conn
}

type message struct {
	companyID string
	data      []byte
}

// Event es el sobre JSON enviado a los clientes.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub reparte eventos solo a las conexiones de la cuenta dueña del evento.
type Hub struct {
	clients    map[string]map[Conn]bool
	register   chan subscription
	unregister chan subscription
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.Mutex
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[Conn]bool),
		register:   make(chan subscription),
		unregister: make(chan subscription),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run procesa altas, bajas y envíos hasta Stop.
func (h *Hub) Run() {
	for {
		select {
		case s := <-h.register:
			h.mutex.Lock()
			if h.clients[s.companyID] == nil {
				h.clients[s.companyID] = make(map[Conn]bool)
			}
			h.clients[s.companyID][s.conn] = true
			h.mutex.Unlock()
			h.log.Debug().Str("company_id", s.companyID).Msg("cliente ws conectado")

		case s := <-h.unregister:
			h.mutex.Lock()
			h.drop(s.companyID, s.conn)
			h.mutex.Unlock()

		case m := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients[m.companyID] {
				if err := conn.WriteMessage(websocket.TextMessage, m.data); err != nil {
					h.drop(m.companyID, conn)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for companyID, conns := range h.clients {
				for conn := range conns {
					h.drop(companyID, conn)
				}
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop termina Run y cierra todas las conexiones. Es idempotente.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// drop requiere el mutex tomado.
func (h *Hub) drop(companyID string, conn Conn) {
	conns, ok := h.clients[companyID]
	if !ok || !conns[conn] {
		return
	}
	delete(conns, conn)
	_ = conn.Close()
	if len(conns) == 0 {
		delete(h.clients, companyID)
	}
}

// Register agrega la conexión a la cuenta. Con el hub detenido la cierra.
func (h *Hub) Register(companyID string, conn Conn) {
	select {
	case h.register <- subscription{companyID: companyID, conn: conn}:
	case <-h.done:
		_ = conn.Close()
	}
}

// Unregister quita y cierra la conexión. Tras Stop no hace nada: Run ya cerró todas.
func (h *Hub) Unregister(companyID string, conn Conn) {
	select {
	case h.unregister <- subscription{companyID: companyID, conn: conn}:
	case <-h.done:
	}
}

// Clients devuelve cuántas conexiones tiene la cuenta.
func (h *Hub) Clients(companyID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[companyID])
}

// Notify encola el evento. Nunca bloquea al caso de uso: con la cola llena el evento se descarta.
func (h *Hub) Notify(companyID, event string, payload any) {
	data, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("serializar evento ws")
		return
	}
	select {
	case h.broadcast <- message{companyID: companyID, data: data}:
	default:
		h.log.Warn().Str("company_id", companyID).Str("event", event).Msg("cola ws llena, evento descartado")
	}
}

// Serve atiende una conexión ya autenticada hasta que el cliente cierra.
func (h *Hub) Serve(companyID string, c *websocket.Conn) {
	h.Register(companyID, c)
	defer h.Unregister(companyID, c)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
