package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BatchRepository acceso a los lotes de una clave de stock.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	// Available devuelve los lotes con cantidad restante > 0 de la clave,
	// ordenados por fecha de recepción ascendente (FIFO). Con batchNo no vacío
	// restringe a ese lote.
	Available(skuID, warehouseID, batchNo string) ([]*entity.Batch, error)
	// UpdateQty fija la cantidad restante de un lote tras un descuento.
	UpdateQty(id string, qty decimal.Decimal) error
}
