package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
)

// Gestión de bloqueos (reservas). Máquina de estados por bloqueo:
// LOCKED -> UNLOCKED o LOCKED -> CONSUMED; los estados terminales son finales.
// Solo se operan bloqueos LOCKED, por lo que liberar o consumir dos veces el
// mismo documento falla con LOCK_NOT_FOUND en la segunda llamada.

// LockStock bloquea cantidad disponible por línea: valida disponibilidad, crea
// el registro de bloqueo y el asiento LOCK. No toca los lotes: el descuento
// físico ocurre al consumir. Todo o nada: si una línea falla no queda ningún
// bloqueo persistido.
func (e *Engine) LockStock(ctx context.Context, req dto.LockStockRequest) (*dto.LockStockResponse, error) {
	if req.WarehouseID == "" || len(req.Items) == 0 || req.SourceOrderNo == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range req.Items {
		if it.SkuID == "" {
			return nil, domain.ErrInvalidInput
		}
		if !it.Qty.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: sku=%s", domain.ErrInvalidQuantity, it.SkuID)
		}
	}

	var lockNos []string
	err := e.runTx(ctx, func(
		stocks repository.StockRepository,
		_ repository.BatchRepository,
		moves repository.MovementRepository,
		locks repository.LockRepository,
		outbox repository.OutboxRepository,
	) error {
		lockNos = lockNos[:0]
		now := time.Now().UTC()
		for _, it := range req.Items {
			s, err := stocks.GetForUpdate(it.SkuID, req.WarehouseID)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("%w: sku=%s bodega=%s", domain.ErrStockNotFound, it.SkuID, req.WarehouseID)
			}
			beforeLocked := s.LockedQty
			if err := stock.Reserve(s, it.Qty, now); err != nil {
				return fmt.Errorf("%w: sku=%s disponible=%s solicitado=%s",
					err, it.SkuID, s.AvailableQty, it.Qty)
			}
			if err := stocks.Save(s); err != nil {
				return err
			}

			lock := &entity.StockLock{
				ID:            uuid.New().String(),
				LockNo:        stock.GenerateLockNo(),
				SkuID:         it.SkuID,
				WarehouseID:   req.WarehouseID,
				LockedQty:     it.Qty,
				Status:        entity.LockStatusLocked,
				SourceType:    req.SourceType,
				SourceOrderNo: req.SourceOrderNo,
				Operator:      req.Operator,
				LockedAt:      now,
			}
			if err := locks.Create(lock); err != nil {
				return err
			}

			// Para LOCK el asiento registra la cantidad bloqueada antes/después.
			move := &entity.StockMove{
				ID:            uuid.New().String(),
				MoveNo:        stock.GenerateMoveNo(),
				SkuID:         it.SkuID,
				WarehouseID:   req.WarehouseID,
				Type:          entity.MoveTypeLOCK,
				Qty:           it.Qty,
				BeforeQty:     beforeLocked,
				AfterQty:      s.LockedQty,
				UnitCost:      decimal.Zero,
				SourceType:    req.SourceType,
				SourceOrderNo: req.SourceOrderNo,
				Operator:      req.Operator,
				CreatedAt:     now,
			}
			if err := moves.Create(move); err != nil {
				return err
			}
			if err := emitStockChanged(outbox, move); err != nil {
				return err
			}
			lockNos = append(lockNos, lock.LockNo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.LockStockResponse{LockNos: lockNos}, nil
}

// UnlockStock libera bloqueos activos por números de documento o por documento
// de origen. Cada bloqueo pasa a UNLOCKED y la cantidad vuelve a estar
// disponible. Falla con LOCK_NOT_FOUND si no hay coincidencias activas.
func (e *Engine) UnlockStock(ctx context.Context, req dto.UnlockStockRequest) (*dto.UnlockStockResponse, error) {
	if len(req.LockNos) == 0 && req.SourceOrderNo == "" {
		return nil, domain.ErrInvalidInput
	}

	unlocked := 0
	err := e.runTx(ctx, func(
		stocks repository.StockRepository,
		_ repository.BatchRepository,
		moves repository.MovementRepository,
		locks repository.LockRepository,
		outbox repository.OutboxRepository,
	) error {
		unlocked = 0
		records, err := e.findActiveLocks(locks, req.LockNos, req.SourceOrderNo)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, lock := range records {
			s, err := stocks.GetForUpdate(lock.SkuID, lock.WarehouseID)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("%w: sku=%s bodega=%s", domain.ErrStockNotFound, lock.SkuID, lock.WarehouseID)
			}
			beforeLocked := s.LockedQty
			if err := stock.Release(s, lock.LockedQty, now); err != nil {
				return err
			}
			if err := stocks.Save(s); err != nil {
				return err
			}

			move := &entity.StockMove{
				ID:            uuid.New().String(),
				MoveNo:        stock.GenerateMoveNo(),
				SkuID:         lock.SkuID,
				WarehouseID:   lock.WarehouseID,
				Type:          entity.MoveTypeUNLOCK,
				Qty:           lock.LockedQty,
				BeforeQty:     beforeLocked,
				AfterQty:      s.LockedQty,
				UnitCost:      decimal.Zero,
				SourceType:    lock.SourceType,
				SourceOrderNo: lock.SourceOrderNo,
				Operator:      req.Operator,
				CreatedAt:     now,
			}
			if err := moves.Create(move); err != nil {
				return err
			}
			if err := emitStockChanged(outbox, move); err != nil {
				return err
			}
			if err := locks.Close(lock.ID, entity.LockStatusUnlocked, now); err != nil {
				return err
			}
			unlocked++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.UnlockStockResponse{UnlockedCount: unlocked}, nil
}

// ConsumeLocked consume todos los bloqueos activos de un documento de origen
// (salida tras el pago de la orden): descuenta lotes FIFO, baja cantidad física
// y bloqueada juntas (la disponibilidad no cambia) y marca cada bloqueo como
// CONSUMED. Una segunda llamada con el mismo documento no encuentra bloqueos
// activos y falla con LOCK_NOT_FOUND sin emitir nada dos veces.
func (e *Engine) ConsumeLocked(ctx context.Context, req dto.ConsumeLockedRequest) (*dto.StockOutResponse, error) {
	if req.SourceOrderNo == "" {
		return nil, domain.ErrInvalidInput
	}

	var moveNos []string
	totalCost := decimal.Zero
	err := e.runTx(ctx, func(
		stocks repository.StockRepository,
		batches repository.BatchRepository,
		moves repository.MovementRepository,
		locks repository.LockRepository,
		outbox repository.OutboxRepository,
	) error {
		moveNos = moveNos[:0]
		totalCost = decimal.Zero
		records, err := locks.ActiveBySource(req.SourceOrderNo)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("%w: origen=%s", domain.ErrLockNotFound, req.SourceOrderNo)
		}
		now := time.Now().UTC()
		for _, lock := range records {
			s, err := stocks.GetForUpdate(lock.SkuID, lock.WarehouseID)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("%w: sku=%s bodega=%s", domain.ErrStockNotFound, lock.SkuID, lock.WarehouseID)
			}

			outCost, err := e.depleteBatches(batches, lock.SkuID, lock.WarehouseID, "", lock.LockedQty, now)
			if err != nil {
				return err
			}
			before := s.Qty
			if err := stock.Fulfill(s, lock.LockedQty, now); err != nil {
				return err
			}
			if err := stocks.Save(s); err != nil {
				return err
			}

			move := &entity.StockMove{
				ID:            uuid.New().String(),
				MoveNo:        stock.GenerateMoveNo(),
				SkuID:         lock.SkuID,
				WarehouseID:   lock.WarehouseID,
				Type:          entity.MoveTypeOUT,
				Qty:           lock.LockedQty,
				BeforeQty:     before,
				AfterQty:      s.Qty,
				UnitCost:      outCost.Div(lock.LockedQty),
				SourceType:    entity.SourceTypeSale,
				SourceOrderNo: req.SourceOrderNo,
				Operator:      req.Operator,
				CreatedAt:     now,
			}
			if err := moves.Create(move); err != nil {
				return err
			}
			if err := emitStockChanged(outbox, move); err != nil {
				return err
			}
			if err := locks.Close(lock.ID, entity.LockStatusConsumed, now); err != nil {
				return err
			}
			moveNos = append(moveNos, move.MoveNo)
			totalCost = totalCost.Add(outCost)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.StockOutResponse{MoveNos: moveNos, TotalCost: totalCost}, nil
}

// findActiveLocks resuelve el conjunto de bloqueos activos por números de
// documento o por documento de origen. Conjunto vacío => LOCK_NOT_FOUND.
func (e *Engine) findActiveLocks(locks repository.LockRepository, lockNos []string, sourceOrderNo string) ([]*entity.StockLock, error) {
	var records []*entity.StockLock
	var err error
	if len(lockNos) > 0 {
		records, err = locks.ActiveByLockNos(lockNos)
	} else {
		records, err = locks.ActiveBySource(sourceOrderNo)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrLockNotFound
	}
	return records, nil
}
