package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxFn cuerpo de una unidad de trabajo: recibe los repositorios atados a la
// transacción en curso.
type TxFn func(
	stockRepo repository.StockRepository,
	batchRepo repository.BatchRepository,
	moveRepo repository.MovementRepository,
	lockRepo repository.LockRepository,
	outboxRepo repository.OutboxRepository,
) error

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del motor: recorrido de
// lotes, actualización del agregado, asiento de movimiento y fila de outbox
// comparten el mismo límite transaccional.
type TxRunner interface {
	Run(ctx context.Context, fn TxFn) error
}
