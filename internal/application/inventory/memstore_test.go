package inventory_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria para probar el motor sin PostgreSQL. El memTx simula
// la transacción: toma un snapshot del estado y lo restaura si la unidad de
// trabajo falla, de modo que los tests pueden verificar que una operación
// fallida no deja estado parcial.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	stocks  map[string]*entity.Stock
	batches []*entity.Batch
	moves   []*entity.StockMove
	locks   []*entity.StockLock
	outbox  []*entity.OutboxMessage
}

func newMemStore() *memStore {
	return &memStore{stocks: make(map[string]*entity.Stock)}
}

func stockKey(skuID, warehouseID string) string {
	return skuID + "|" + warehouseID
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.stocks {
		cp := *v
		c.stocks[k] = &cp
	}
	for _, b := range s.batches {
		cp := *b
		c.batches = append(c.batches, &cp)
	}
	for _, m := range s.moves {
		cp := *m
		c.moves = append(c.moves, &cp)
	}
	for _, l := range s.locks {
		cp := *l
		c.locks = append(c.locks, &cp)
	}
	for _, o := range s.outbox {
		cp := *o
		c.outbox = append(c.outbox, &cp)
	}
	return c
}

// memTx ejecuta la unidad de trabajo contra el store y restaura el snapshot si
// falla (rollback).
type memTx struct {
	st *memStore
}

var _ inventory.TxRunner = (*memTx)(nil)

func (t *memTx) Run(_ context.Context, fn inventory.TxFn) error {
	snap := t.st.clone()
	err := fn(
		&memStockRepo{st: t.st},
		&memBatchRepo{st: t.st},
		&memMoveRepo{st: t.st},
		&memLockRepo{st: t.st},
		&memOutboxRepo{st: t.st},
	)
	if err != nil {
		*t.st = *snap
	}
	return err
}

// flakyTx falla las primeras N ejecuciones con conflicto de serialización y
// luego delega. Para probar los reintentos internos del motor.
type flakyTx struct {
	inner    inventory.TxRunner
	failures int
}

func (f *flakyTx) Run(ctx context.Context, fn inventory.TxFn) error {
	if f.failures > 0 {
		f.failures--
		return fmt.Errorf("%w: could not serialize access", domain.ErrConcurrencyConflict)
	}
	return f.inner.Run(ctx, fn)
}

// ─── StockRepository ──────────────────────────────────────────────────────────

type memStockRepo struct{ st *memStore }

var _ repository.StockRepository = (*memStockRepo)(nil)

func (r *memStockRepo) Get(skuID, warehouseID string) (*entity.Stock, error) {
	if s, ok := r.st.stocks[stockKey(skuID, warehouseID)]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *memStockRepo) GetForUpdate(skuID, warehouseID string) (*entity.Stock, error) {
	return r.Get(skuID, warehouseID)
}

func (r *memStockRepo) GetOrCreateForUpdate(skuID, warehouseID string) (*entity.Stock, error) {
	if s, ok := r.st.stocks[stockKey(skuID, warehouseID)]; ok {
		cp := *s
		return &cp, nil
	}
	now := time.Now().UTC()
	s := &entity.Stock{
		ID:           uuid.New().String(),
		SkuID:        skuID,
		WarehouseID:  warehouseID,
		Qty:          decimal.Zero,
		LockedQty:    decimal.Zero,
		AvailableQty: decimal.Zero,
		AvgCost:      decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.st.stocks[stockKey(skuID, warehouseID)] = s
	cp := *s
	return &cp, nil
}

func (r *memStockRepo) Save(s *entity.Stock) error {
	cp := *s
	r.st.stocks[stockKey(s.SkuID, s.WarehouseID)] = &cp
	return nil
}

// ─── BatchRepository ──────────────────────────────────────────────────────────

type memBatchRepo struct{ st *memStore }

var _ repository.BatchRepository = (*memBatchRepo)(nil)

func (r *memBatchRepo) Create(b *entity.Batch) error {
	cp := *b
	r.st.batches = append(r.st.batches, &cp)
	return nil
}

func (r *memBatchRepo) Available(skuID, warehouseID, batchNo string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.st.batches {
		if b.SkuID != skuID || b.WarehouseID != warehouseID {
			continue
		}
		if !b.Qty.GreaterThan(decimal.Zero) {
			continue
		}
		if batchNo != "" && b.BatchNo != batchNo {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memBatchRepo) UpdateQty(id string, qty decimal.Decimal) error {
	for _, b := range r.st.batches {
		if b.ID == id {
			b.Qty = qty
			b.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("lote %s no encontrado", id)
}

// ─── MovementRepository ───────────────────────────────────────────────────────

type memMoveRepo struct{ st *memStore }

var _ repository.MovementRepository = (*memMoveRepo)(nil)

func (r *memMoveRepo) Create(m *entity.StockMove) error {
	cp := *m
	r.st.moves = append(r.st.moves, &cp)
	return nil
}

func (r *memMoveRepo) ExistsBySource(moveType, sourceType, sourceOrderNo, skuID, warehouseID string) (bool, error) {
	for _, m := range r.st.moves {
		if m.Type == moveType && m.SourceType == sourceType && m.SourceOrderNo == sourceOrderNo &&
			m.SkuID == skuID && m.WarehouseID == warehouseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memMoveRepo) Search(f repository.MovementFilter) ([]*entity.StockMove, int64, error) {
	var matched []*entity.StockMove
	for _, m := range r.st.moves {
		if f.SkuID != "" && m.SkuID != f.SkuID {
			continue
		}
		if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.MoveType != "" && m.Type != f.MoveType {
			continue
		}
		if f.SourceType != "" && m.SourceType != f.SourceType {
			continue
		}
		if f.SourceOrderNo != "" && m.SourceOrderNo != f.SourceOrderNo {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		cp := *m
		matched = append(matched, &cp)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	start := (f.Page - 1) * f.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// ─── LockRepository ───────────────────────────────────────────────────────────

type memLockRepo struct{ st *memStore }

var _ repository.LockRepository = (*memLockRepo)(nil)

func (r *memLockRepo) Create(l *entity.StockLock) error {
	cp := *l
	r.st.locks = append(r.st.locks, &cp)
	return nil
}

func (r *memLockRepo) ActiveByLockNos(lockNos []string) ([]*entity.StockLock, error) {
	wanted := make(map[string]bool, len(lockNos))
	for _, no := range lockNos {
		wanted[no] = true
	}
	var out []*entity.StockLock
	for _, l := range r.st.locks {
		if l.Status == entity.LockStatusLocked && wanted[l.LockNo] {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLockRepo) ActiveBySource(sourceOrderNo string) ([]*entity.StockLock, error) {
	var out []*entity.StockLock
	for _, l := range r.st.locks {
		if l.Status == entity.LockStatusLocked && l.SourceOrderNo == sourceOrderNo {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLockRepo) Close(id, status string, closedAt time.Time) error {
	for _, l := range r.st.locks {
		if l.ID == id && l.Status == entity.LockStatusLocked {
			l.Status = status
			at := closedAt
			l.UnlockedAt = &at
			return nil
		}
	}
	return fmt.Errorf("bloqueo %s no está activo", id)
}

// ─── OutboxRepository ─────────────────────────────────────────────────────────

type memOutboxRepo struct{ st *memStore }

var _ repository.OutboxRepository = (*memOutboxRepo)(nil)

func (r *memOutboxRepo) Create(msg *entity.OutboxMessage) error {
	cp := *msg
	r.st.outbox = append(r.st.outbox, &cp)
	return nil
}

func (r *memOutboxRepo) Pending(limit int) ([]*entity.OutboxMessage, error) {
	var out []*entity.OutboxMessage
	for _, m := range r.st.outbox {
		if m.Status != entity.OutboxStatusPending {
			continue
		}
		cp := *m
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memOutboxRepo) MarkDelivered(id string, at time.Time) error {
	for _, m := range r.st.outbox {
		if m.ID == id {
			m.Status = entity.OutboxStatusDelivered
			t := at
			m.DeliveredAt = &t
			return nil
		}
	}
	return fmt.Errorf("mensaje %s no encontrado", id)
}

func (r *memOutboxRepo) MarkFailed(id string, attempts int, lastError string) error {
	for _, m := range r.st.outbox {
		if m.ID == id {
			m.Attempts = attempts
			m.LastError = lastError
			return nil
		}
	}
	return fmt.Errorf("mensaje %s no encontrado", id)
}
