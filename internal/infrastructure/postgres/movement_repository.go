package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL: solo INSERT y SELECT,
// nunca UPDATE ni DELETE (los asientos son inmutables).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un asiento.
func (r *MovementRepo) Create(move *entity.StockMove) error {
	query := `
		INSERT INTO stock_move (id, move_no, sku_id, warehouse_id, move_type, qty, before_qty, after_qty,
			unit_cost, source_type, source_order_no, batch_no, remark, operator, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		move.ID, move.MoveNo, move.SkuID, move.WarehouseID, move.Type,
		move.Qty, move.BeforeQty, move.AfterQty, move.UnitCost,
		move.SourceType, nullable(move.SourceOrderNo), nullable(move.BatchNo),
		nullable(move.Remark), nullable(move.Operator), move.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock move: %w", err)
	}
	return nil
}

// ExistsBySource indica si ya hay un asiento para la combinación
// (tipo de movimiento, documento de origen, clave). Deduplicación de reintentos.
func (r *MovementRepo) ExistsBySource(moveType, sourceType, sourceOrderNo, skuID, warehouseID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM stock_move
			WHERE move_type = $1 AND source_type = $2 AND source_order_no = $3
				AND sku_id = $4 AND warehouse_id = $5
		)`
	var exists bool
	err := r.q.QueryRow(context.Background(), query, moveType, sourceType, sourceOrderNo, skuID, warehouseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by source: %w", err)
	}
	return exists, nil
}

// Search consulta paginada con filtros opcionales, más recientes primero.
func (r *MovementRepo) Search(f repository.MovementFilter) ([]*entity.StockMove, int64, error) {
	where := ` WHERE 1=1`
	var args []any
	pos := 1
	addFilter := func(cond, val string) {
		if val != "" {
			where += fmt.Sprintf(" AND %s = $%d", cond, pos)
			args = append(args, val)
			pos++
		}
	}
	addFilter("sku_id", f.SkuID)
	addFilter("warehouse_id", f.WarehouseID)
	addFilter("move_type", f.MoveType)
	addFilter("source_type", f.SourceType)
	addFilter("source_order_no", f.SourceOrderNo)
	if f.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}

	var total int64
	countQuery := `SELECT count(*) FROM stock_move` + where
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock moves: %w", err)
	}

	query := `
		SELECT id, move_no, sku_id, warehouse_id, move_type, qty, before_qty, after_qty,
			unit_cost, source_type, source_order_no, batch_no, remark, operator, created_at
		FROM stock_move` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search stock moves: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMove
	for rows.Next() {
		var m entity.StockMove
		var sourceOrderNo, batchNo, remark, operator *string
		if err := rows.Scan(&m.ID, &m.MoveNo, &m.SkuID, &m.WarehouseID, &m.Type,
			&m.Qty, &m.BeforeQty, &m.AfterQty, &m.UnitCost,
			&m.SourceType, &sourceOrderNo, &batchNo, &remark, &operator, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan stock move: %w", err)
		}
		m.SourceOrderNo = deref(sourceOrderNo)
		m.BatchNo = deref(batchNo)
		m.Remark = deref(remark)
		m.Operator = deref(operator)
		list = append(list, &m)
	}
	return list, total, rows.Err()
}
