package entity

import "time"

// Estados de un mensaje del outbox.
const (
	OutboxStatusPending   = "PENDING"
	OutboxStatusDelivered = "DELIVERED"
)

// OutboxMessage intención de notificación escrita en la misma transacción que la
// mutación del libro. Un worker la publica después del commit (at-least-once):
// la fila permanece PENDING hasta que el broker confirme.
type OutboxMessage struct {
	ID          string
	Key         string // clave de partición (SKU)
	Payload     []byte // StockChangedEvent en JSON
	Status      string
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}
