package repository

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// OutboxRepository cola transaccional de notificaciones de cambio de stock.
type OutboxRepository interface {
	// Create inserta el mensaje; debe ejecutarse en la misma transacción que la
	// mutación del libro para garantizar at-least-once.
	Create(msg *entity.OutboxMessage) error
	// Pending mensajes sin entregar, más antiguos primero.
	Pending(limit int) ([]*entity.OutboxMessage, error)
	MarkDelivered(id string, at time.Time) error
	// MarkFailed registra el intento fallido; el mensaje sigue pendiente.
	MarkFailed(id string, attempts int, lastError string) error
}
