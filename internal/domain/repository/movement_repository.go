package repository

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros de consulta del libro de movimientos.
type MovementFilter struct {
	SkuID         string
	WarehouseID   string
	MoveType      string
	SourceType    string
	SourceOrderNo string
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}

// MovementRepository libro de movimientos: solo inserción y lectura,
// los asientos nunca se actualizan ni se borran.
type MovementRepository interface {
	Create(move *entity.StockMove) error
	// ExistsBySource indica si ya hay un asiento para la misma combinación
	// (tipo de movimiento, documento de origen, clave de stock). Base de la
	// deduplicación de reintentos de entrada/salida.
	ExistsBySource(moveType, sourceType, sourceOrderNo, skuID, warehouseID string) (bool, error)
	// Search devuelve la página solicitada (orden: más reciente primero) y el total.
	Search(filter MovementFilter) ([]*entity.StockMove, int64, error)
}
