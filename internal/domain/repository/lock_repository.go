package repository

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LockRepository acceso a los registros de bloqueo de stock.
type LockRepository interface {
	Create(lock *entity.StockLock) error
	// ActiveByLockNos bloqueos en estado LOCKED con esos números de documento.
	ActiveByLockNos(lockNos []string) ([]*entity.StockLock, error)
	// ActiveBySource bloqueos en estado LOCKED del documento de origen (orden).
	ActiveBySource(sourceOrderNo string) ([]*entity.StockLock, error)
	// Close transiciona un bloqueo a estado terminal (UNLOCKED o CONSUMED).
	Close(id, status string, closedAt time.Time) error
}
