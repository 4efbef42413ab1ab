package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	query := `
		INSERT INTO stock_batch (id, stock_id, sku_id, warehouse_id, batch_no, production_date, expiry_date,
			qty, unit_cost, source_type, source_order_no, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.StockID, batch.SkuID, batch.WarehouseID, batch.BatchNo,
		batch.ProductionDate, batch.ExpiryDate, batch.Qty, batch.UnitCost,
		batch.SourceType, nullable(batch.SourceOrderNo), batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// Available lotes con cantidad restante > 0 de la clave, FIFO por fecha de
// recepción. batchNo no vacío restringe a ese lote.
func (r *BatchRepo) Available(skuID, warehouseID, batchNo string) ([]*entity.Batch, error) {
	query := `
		SELECT id, stock_id, sku_id, warehouse_id, batch_no, production_date, expiry_date,
			qty, unit_cost, source_type, source_order_no, created_at, updated_at
		FROM stock_batch
		WHERE sku_id = $1 AND warehouse_id = $2 AND qty > 0`
	args := []any{skuID, warehouseID}
	if batchNo != "" {
		query += ` AND batch_no = $3`
		args = append(args, batchNo)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("available batches: %w", err)
	}
	defer rows.Close()

	var list []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		var sourceOrderNo *string
		if err := rows.Scan(&b.ID, &b.StockID, &b.SkuID, &b.WarehouseID, &b.BatchNo,
			&b.ProductionDate, &b.ExpiryDate, &b.Qty, &b.UnitCost,
			&b.SourceType, &sourceOrderNo, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if sourceOrderNo != nil {
			b.SourceOrderNo = *sourceOrderNo
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// UpdateQty fija la cantidad restante de un lote.
func (r *BatchRepo) UpdateQty(id string, qty decimal.Decimal) error {
	query := `UPDATE stock_batch SET qty = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, qty)
	if err != nil {
		return fmt.Errorf("update batch qty: %w", err)
	}
	return nil
}
