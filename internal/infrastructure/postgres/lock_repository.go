package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LockRepository = (*LockRepo)(nil)

// LockRepo implementación de LockRepository sobre PostgreSQL (usable con pool o tx).
type LockRepo struct {
	q Querier
}

// NewLockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLockRepository(q Querier) *LockRepo {
	return &LockRepo{q: q}
}

const lockColumns = `id, lock_no, sku_id, warehouse_id, locked_qty, status, source_type, source_order_no, operator, locked_at, unlocked_at`

// Create persiste un bloqueo nuevo (estado LOCKED).
func (r *LockRepo) Create(lock *entity.StockLock) error {
	query := `
		INSERT INTO stock_lock (id, lock_no, sku_id, warehouse_id, locked_qty, status, source_type, source_order_no, operator, locked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		lock.ID, lock.LockNo, lock.SkuID, lock.WarehouseID, lock.LockedQty,
		lock.Status, lock.SourceType, lock.SourceOrderNo, nullable(lock.Operator), lock.LockedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock lock: %w", err)
	}
	return nil
}

// ActiveByLockNos bloqueos LOCKED con esos números de documento.
// Bloquea las filas para serializar liberaciones concurrentes del mismo bloqueo.
func (r *LockRepo) ActiveByLockNos(lockNos []string) ([]*entity.StockLock, error) {
	query := `
		SELECT ` + lockColumns + `
		FROM stock_lock
		WHERE status = 'LOCKED' AND lock_no = ANY($1)
		ORDER BY locked_at ASC
		FOR UPDATE`
	return r.list(query, lockNos)
}

// ActiveBySource bloqueos LOCKED del documento de origen, con las filas bloqueadas.
func (r *LockRepo) ActiveBySource(sourceOrderNo string) ([]*entity.StockLock, error) {
	query := `
		SELECT ` + lockColumns + `
		FROM stock_lock
		WHERE status = 'LOCKED' AND source_order_no = $1
		ORDER BY locked_at ASC
		FOR UPDATE`
	return r.list(query, sourceOrderNo)
}

// Close transiciona un bloqueo a estado terminal. El predicado status='LOCKED'
// impide reabrir o recerrar un bloqueo ya terminado.
func (r *LockRepo) Close(id, status string, closedAt time.Time) error {
	query := `
		UPDATE stock_lock SET status = $2, unlocked_at = $3
		WHERE id = $1 AND status = 'LOCKED'`
	tag, err := r.q.Exec(context.Background(), query, id, status, closedAt)
	if err != nil {
		return fmt.Errorf("close stock lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("close stock lock %s: ya cerrado", id)
	}
	return nil
}

func (r *LockRepo) list(query string, args ...any) ([]*entity.StockLock, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock locks: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLock
	for rows.Next() {
		l, err := scanLock(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanLock(row pgx.Row) (*entity.StockLock, error) {
	var l entity.StockLock
	var operator *string
	err := row.Scan(&l.ID, &l.LockNo, &l.SkuID, &l.WarehouseID, &l.LockedQty,
		&l.Status, &l.SourceType, &l.SourceOrderNo, &operator, &l.LockedAt, &l.UnlockedAt)
	if err != nil {
		return nil, fmt.Errorf("scan stock lock: %w", err)
	}
	l.Operator = deref(operator)
	return &l, nil
}
