package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Engine motor de inventario: fachada de las operaciones de entrada, salida,
// bloqueo, consumo y consulta. Cada operación mutante corre como una unidad de
// trabajo (TxRunner) con la fila de stock bloqueada (SELECT FOR UPDATE), escribe
// exactamente un asiento de movimiento por clave afectada y deja un mensaje de
// outbox por mutación confirmada.
type Engine struct {
	tx         TxRunner
	stocks     repository.StockRepository    // lecturas fuera de transacción
	batches    repository.BatchRepository    // lecturas fuera de transacción
	moves      repository.MovementRepository // lecturas fuera de transacción
	log        *logger.Logger
	maxRetries int
}

// NewEngine construye el motor. maxRetries acota los reintentos internos ante
// conflictos de serialización; con valores < 1 se ejecuta un solo intento.
func NewEngine(
	tx TxRunner,
	stocks repository.StockRepository,
	batches repository.BatchRepository,
	moves repository.MovementRepository,
	log *logger.Logger,
	maxRetries int,
) *Engine {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Engine{tx: tx, stocks: stocks, batches: batches, moves: moves, log: log, maxRetries: maxRetries}
}

// runTx ejecuta la unidad de trabajo reintentando solo ante conflictos de
// concurrencia (errores 40001/40P01 traducidos por el TxRunner). Los errores de
// negocio nunca se reintentan.
func (e *Engine) runTx(ctx context.Context, fn TxFn) error {
	var err error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		err = e.tx.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		e.log.Warn().Int("attempt", attempt).Err(err).Msg("conflicto de concurrencia, reintentando")
	}
	return err
}

// StockIn registra entradas: crea o actualiza el registro maestro, recalcula el
// costo promedio ponderado, crea el lote y el asiento IN. Rechaza duplicados por
// (tipo, documento de origen, SKU, bodega) cuando viene documento de origen.
func (e *Engine) StockIn(ctx context.Context, req dto.StockInRequest) (*dto.StockInResponse, error) {
	if req.WarehouseID == "" || len(req.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range req.Items {
		if it.SkuID == "" {
			return nil, domain.ErrInvalidInput
		}
		if !it.Qty.GreaterThan(decimal.Zero) || it.UnitCost.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: sku=%s", domain.ErrInvalidQuantity, it.SkuID)
		}
	}

	var moveNos []string
	err := e.runTx(ctx, func(
		stocks repository.StockRepository,
		batches repository.BatchRepository,
		moves repository.MovementRepository,
		_ repository.LockRepository,
		outbox repository.OutboxRepository,
	) error {
		moveNos = moveNos[:0]
		now := time.Now().UTC()
		for _, it := range req.Items {
			if req.SourceOrderNo != "" {
				dup, err := moves.ExistsBySource(entity.MoveTypeIN, req.SourceType, req.SourceOrderNo, it.SkuID, req.WarehouseID)
				if err != nil {
					return err
				}
				if dup {
					return fmt.Errorf("%w: %s sku=%s", domain.ErrDuplicateMovement, req.SourceOrderNo, it.SkuID)
				}
			}

			s, err := stocks.GetOrCreateForUpdate(it.SkuID, req.WarehouseID)
			if err != nil {
				return err
			}
			before := s.Qty
			if err := stock.Receive(s, it.Qty, it.UnitCost, now); err != nil {
				return err
			}
			if err := stocks.Save(s); err != nil {
				return err
			}

			batchNo := it.BatchNo
			if batchNo == "" {
				batchNo = stock.GenerateBatchNo()
			}
			batch := &entity.Batch{
				ID:             uuid.New().String(),
				StockID:        s.ID,
				SkuID:          it.SkuID,
				WarehouseID:    req.WarehouseID,
				BatchNo:        batchNo,
				ProductionDate: it.ProductionDate,
				ExpiryDate:     it.ExpiryDate,
				Qty:            it.Qty,
				UnitCost:       it.UnitCost,
				SourceType:     req.SourceType,
				SourceOrderNo:  req.SourceOrderNo,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := batches.Create(batch); err != nil {
				return err
			}

			move := &entity.StockMove{
				ID:            uuid.New().String(),
				MoveNo:        stock.GenerateMoveNo(),
				SkuID:         it.SkuID,
				WarehouseID:   req.WarehouseID,
				Type:          entity.MoveTypeIN,
				Qty:           it.Qty,
				BeforeQty:     before,
				AfterQty:      s.Qty,
				UnitCost:      it.UnitCost,
				SourceType:    req.SourceType,
				SourceOrderNo: req.SourceOrderNo,
				BatchNo:       batchNo,
				Remark:        req.Remark,
				Operator:      req.Operator,
				CreatedAt:     now,
			}
			if err := moves.Create(move); err != nil {
				return err
			}
			if err := emitStockChanged(outbox, move); err != nil {
				return err
			}
			moveNos = append(moveNos, move.MoveNo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.StockInResponse{MoveNos: moveNos}, nil
}

// StockOut registra salidas directas: valida disponibilidad, descuenta lotes en
// orden FIFO (o el lote indicado) y devuelve el costo total extraído. El costo
// promedio del agregado no cambia en salidas.
func (e *Engine) StockOut(ctx context.Context, req dto.StockOutRequest) (*dto.StockOutResponse, error) {
	if req.WarehouseID == "" || len(req.Items) == 0 {
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

	var moveNos []string
	totalCost := decimal.Zero
	err := e.runTx(ctx, func(
		stocks repository.StockRepository,
		batches repository.BatchRepository,
		moves repository.MovementRepository,
		_ repository.LockRepository,
		outbox repository.OutboxRepository,
	) error {
		moveNos = moveNos[:0]
		totalCost = decimal.Zero
		now := time.Now().UTC()
		for _, it := range req.Items {
			if req.SourceOrderNo != "" {
				dup, err := moves.ExistsBySource(entity.MoveTypeOUT, req.SourceType, req.SourceOrderNo, it.SkuID, req.WarehouseID)
				if err != nil {
					return err
				}
				if dup {
					return fmt.Errorf("%w: %s sku=%s", domain.ErrDuplicateMovement, req.SourceOrderNo, it.SkuID)
				}
			}

			s, err := stocks.GetForUpdate(it.SkuID, req.WarehouseID)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("%w: sku=%s bodega=%s", domain.ErrStockNotFound, it.SkuID, req.WarehouseID)
			}
			if s.AvailableQty.LessThan(it.Qty) {
				return fmt.Errorf("%w: sku=%s disponible=%s solicitado=%s",
					domain.ErrInsufficientStock, it.SkuID, s.AvailableQty, it.Qty)
			}

			outCost, err := e.depleteBatches(batches, it.SkuID, req.WarehouseID, it.BatchNo, it.Qty, now)
			if err != nil {
				return err
			}
			before := s.Qty
			if err := stock.Issue(s, it.Qty, now); err != nil {
				return err
			}
			if err := stocks.Save(s); err != nil {
				return err
			}

			move := &entity.StockMove{
				ID:            uuid.New().String(),
				MoveNo:        stock.GenerateMoveNo(),
				SkuID:         it.SkuID,
				WarehouseID:   req.WarehouseID,
				Type:          entity.MoveTypeOUT,
				Qty:           it.Qty,
				BeforeQty:     before,
				AfterQty:      s.Qty,
				UnitCost:      outCost.Div(it.Qty),
				SourceType:    req.SourceType,
				SourceOrderNo: req.SourceOrderNo,
				BatchNo:       it.BatchNo,
				Remark:        req.Remark,
				Operator:      req.Operator,
				CreatedAt:     now,
			}
			if err := moves.Create(move); err != nil {
				return err
			}
			if err := emitStockChanged(outbox, move); err != nil {
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

// depleteBatches planifica y aplica el descuento FIFO (o del lote indicado)
// dentro de la transacción en curso. Devuelve el costo extraído.
func (e *Engine) depleteBatches(
	batches repository.BatchRepository,
	skuID, warehouseID, batchNo string,
	qty decimal.Decimal,
	now time.Time,
) (decimal.Decimal, error) {
	candidates, err := batches.Available(skuID, warehouseID, batchNo)
	if err != nil {
		return decimal.Zero, err
	}
	plan, outCost, err := stock.PlanDepletion(candidates, qty)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBatchStock) {
			return decimal.Zero, fmt.Errorf("%w: sku=%s", domain.ErrInsufficientBatchStock, skuID)
		}
		return decimal.Zero, err
	}
	for _, d := range plan {
		d.Batch.Qty = d.Batch.Qty.Sub(d.Qty)
		d.Batch.UpdatedAt = now
		if err := batches.UpdateQty(d.Batch.ID, d.Batch.Qty); err != nil {
			return decimal.Zero, err
		}
	}
	return outCost, nil
}

// GetStock devuelve el estado actual de una clave con sus lotes activos.
func (e *Engine) GetStock(ctx context.Context, skuID, warehouseID string) (*dto.StockInfoResponse, error) {
	if skuID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := e.stocks.Get(skuID, warehouseID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: sku=%s bodega=%s", domain.ErrStockNotFound, skuID, warehouseID)
	}
	batches, err := e.batches.Available(skuID, warehouseID, "")
	if err != nil {
		return nil, err
	}
	resp := &dto.StockInfoResponse{
		SkuID:        s.SkuID,
		WarehouseID:  s.WarehouseID,
		Qty:          s.Qty,
		LockedQty:    s.LockedQty,
		AvailableQty: s.AvailableQty,
		AvgCost:      s.AvgCost,
		Batches:      make([]dto.BatchDTO, 0, len(batches)),
	}
	for _, b := range batches {
		resp.Batches = append(resp.Batches, dto.BatchDTO{
			BatchNo:        b.BatchNo,
			Qty:            b.Qty,
			UnitCost:       b.UnitCost,
			ProductionDate: b.ProductionDate,
			ExpiryDate:     b.ExpiryDate,
			SourceType:     b.SourceType,
			SourceOrderNo:  b.SourceOrderNo,
			ReceivedAt:     b.CreatedAt,
		})
	}
	return resp, nil
}

// QueryMovements consulta paginada del libro de movimientos. Solo lectura.
func (e *Engine) QueryMovements(ctx context.Context, q dto.MovementQuery) (*dto.MovementPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	filter := repository.MovementFilter{
		SkuID:         q.SkuID,
		WarehouseID:   q.WarehouseID,
		MoveType:      q.MoveType,
		SourceType:    q.SourceType,
		SourceOrderNo: q.SourceOrderNo,
		From:          q.StartTime,
		To:            q.EndTime,
		Page:          q.Page,
		PageSize:      q.PageSize,
	}
	moves, total, err := e.moves.Search(filter)
	if err != nil {
		return nil, err
	}
	page := &dto.MovementPage{Total: total, Movements: make([]dto.MovementDTO, 0, len(moves))}
	for _, m := range moves {
		page.Movements = append(page.Movements, dto.MovementDTO{
			MoveNo:        m.MoveNo,
			SkuID:         m.SkuID,
			WarehouseID:   m.WarehouseID,
			MoveType:      m.Type,
			Qty:           m.Qty,
			BeforeQty:     m.BeforeQty,
			AfterQty:      m.AfterQty,
			UnitCost:      m.UnitCost,
			SourceType:    m.SourceType,
			SourceOrderNo: m.SourceOrderNo,
			BatchNo:       m.BatchNo,
			Remark:        m.Remark,
			Operator:      m.Operator,
			CreatedAt:     m.CreatedAt,
		})
	}
	return page, nil
}

// emitStockChanged deja el mensaje de notificación en el outbox, dentro de la
// misma transacción que el asiento. El worker lo publica después del commit.
func emitStockChanged(outbox repository.OutboxRepository, m *entity.StockMove) error {
	ev := dto.StockChangedEvent{
		SkuID:         m.SkuID,
		WarehouseID:   m.WarehouseID,
		MoveType:      m.Type,
		Qty:           m.Qty,
		BeforeQty:     m.BeforeQty,
		AfterQty:      m.AfterQty,
		SourceType:    m.SourceType,
		SourceOrderNo: m.SourceOrderNo,
		OccurredAt:    m.CreatedAt,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento de stock: %w", err)
	}
	return outbox.Create(&entity.OutboxMessage{
		ID:        uuid.New().String(),
		Key:       m.SkuID,
		Payload:   payload,
		Status:    entity.OutboxStatusPending,
		CreatedAt: m.CreatedAt,
	})
}
