package insights

// Eventos emitidos a los clientes conectados.
const (
	EventInsightCreated = "insight_created"
	EventStockUpdate    = "stock_update"
)

// Notifier publica eventos de una cuenta (WebSocket). Las implementaciones no bloquean.
type Notifier interface {
	Notify(companyID, event string, payload any)
}

// NopNotifier descarta los eventos.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string, any) {}
