package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo cola transaccional de notificaciones sobre PostgreSQL.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Create inserta el mensaje; debe ir en la misma tx que la mutación del libro.
func (r *OutboxRepo) Create(msg *entity.OutboxMessage) error {
	query := `
		INSERT INTO stock_outbox (id, key, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		msg.ID, msg.Key, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create outbox message: %w", err)
	}
	return nil
}

// Pending mensajes sin entregar, más antiguos primero.
func (r *OutboxRepo) Pending(limit int) ([]*entity.OutboxMessage, error) {
	query := `
		SELECT id, key, payload, status, attempts, last_error, created_at, delivered_at
		FROM stock_outbox
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("pending outbox messages: %w", err)
	}
	defer rows.Close()

	var list []*entity.OutboxMessage
	for rows.Next() {
		var m entity.OutboxMessage
		var lastError *string
		if err := rows.Scan(&m.ID, &m.Key, &m.Payload, &m.Status, &m.Attempts,
			&lastError, &m.CreatedAt, &m.DeliveredAt); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		m.LastError = deref(lastError)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// MarkDelivered confirma la entrega al broker.
func (r *OutboxRepo) MarkDelivered(id string, at time.Time) error {
	query := `UPDATE stock_outbox SET status = 'DELIVERED', delivered_at = $2 WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, id, at); err != nil {
		return fmt.Errorf("mark outbox delivered: %w", err)
	}
	return nil
}

// MarkFailed registra el intento fallido; el mensaje sigue PENDING.
func (r *OutboxRepo) MarkFailed(id string, attempts int, lastError string) error {
	query := `UPDATE stock_outbox SET attempts = $2, last_error = $3 WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, id, attempts, lastError); err != nil {
		return fmt.Errorf("mark outbox failed: %w", err)
	}
	return nil
}
