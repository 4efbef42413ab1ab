package outbox

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Publisher destino de los eventos de cambio de stock (Kafka en producción).
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Worker entrega los mensajes pendientes del outbox al publicador. La fila de
// outbox se escribió en la misma transacción que el asiento, así que la entrega
// es at-least-once: un mensaje permanece pendiente hasta que el broker confirme
// y los fallos solo incrementan el contador de intentos.
type Worker struct {
	repo      repository.OutboxRepository
	pub       Publisher
	log       *logger.Logger
	interval  time.Duration
	batchSize int
	stop      chan struct{}
	done      chan struct{}
}

// NewWorker construye el worker. interval <= 0 usa 1s; batchSize <= 0 usa 50.
func NewWorker(repo repository.OutboxRepository, pub Publisher, log *logger.Logger, interval time.Duration, batchSize int) *Worker {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Worker{
		repo:      repo,
		pub:       pub,
		log:       log,
		interval:  interval,
		batchSize: batchSize,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start lanza el bucle de entrega en una goroutine. Llamar una sola vez.
func (w *Worker) Start() {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), w.interval)
				if _, err := w.DispatchPending(ctx); err != nil {
					w.log.Error().Err(err).Msg("despacho de outbox")
				}
				cancel()
			}
		}
	}()
}

// Stop detiene el bucle y espera a que termine el despacho en curso.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

// DispatchPending publica un lote de mensajes pendientes. Devuelve cuántos se
// entregaron. Un fallo de publicación se registra y no detiene el resto del
// lote: el mensaje queda pendiente para el siguiente ciclo.
func (w *Worker) DispatchPending(ctx context.Context) (int, error) {
	msgs, err := w.repo.Pending(w.batchSize)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for _, msg := range msgs {
		if err := w.pub.Publish(ctx, msg.Key, msg.Payload); err != nil {
			w.log.Warn().
				Str("outbox_id", msg.ID).
				Int("attempts", msg.Attempts+1).
				Err(err).
				Msg("fallo al publicar evento de stock, se reintentará")
			if markErr := w.repo.MarkFailed(msg.ID, msg.Attempts+1, err.Error()); markErr != nil {
				return delivered, markErr
			}
			continue
		}
		if err := w.repo.MarkDelivered(msg.ID, time.Now().UTC()); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
