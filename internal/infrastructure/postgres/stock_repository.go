package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `id, sku_id, warehouse_id, qty, locked_qty, available_qty, avg_cost, created_at, updated_at`

// Get obtiene el registro de stock de una clave; nil si nunca ha recibido.
func (r *StockRepo) Get(skuID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE sku_id = $1 AND warehouse_id = $2`
	s, err := r.scanOne(r.q.QueryRow(context.Background(), query, skuID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
// Sección crítica por clave: serializa las mutaciones concurrentes sobre el
// mismo (SKU, bodega). nil si la clave no existe.
func (r *StockRepo) GetForUpdate(skuID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE sku_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	s, err := r.scanOne(r.q.QueryRow(context.Background(), query, skuID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// GetOrCreateForUpdate garantiza la fila y la devuelve bloqueada. El INSERT con
// ON CONFLICT DO NOTHING evita la carrera de dos primeras recepciones
// simultáneas: ambas terminan serializadas sobre la misma fila.
func (r *StockRepo) GetOrCreateForUpdate(skuID, warehouseID string) (*entity.Stock, error) {
	insert := `
		INSERT INTO stock (id, sku_id, warehouse_id, qty, locked_qty, available_qty, avg_cost, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, 0, now(), now())
		ON CONFLICT (sku_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), insert, uuid.New().String(), skuID, warehouseID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	s, err := r.GetForUpdate(skuID, warehouseID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("ensure stock row: fila no visible tras insert sku=%s", skuID)
	}
	return s, nil
}

// Save persiste cantidades y costo del registro.
func (r *StockRepo) Save(stock *entity.Stock) error {
	query := `
		UPDATE stock
		SET qty = $2, locked_qty = $3, available_qty = $4, avg_cost = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		stock.ID, stock.Qty, stock.LockedQty, stock.AvailableQty, stock.AvgCost, stock.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save stock: %w", err)
	}
	return nil
}

func (r *StockRepo) scanOne(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(
		&s.ID, &s.SkuID, &s.WarehouseID, &s.Qty, &s.LockedQty, &s.AvailableQty,
		&s.AvgCost, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
