package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch lote físico recibido en una bodega. Se consume en orden FIFO (CreatedAt).
// Qty es la cantidad restante; con Qty = 0 el lote queda inactivo pero no se borra.
type Batch struct {
	ID             string
	StockID        string
	SkuID          string
	WarehouseID    string
	BatchNo        string
	ProductionDate *time.Time
	ExpiryDate     *time.Time
	Qty            decimal.Decimal // cantidad restante del lote
	UnitCost       decimal.Decimal
	SourceType     string // PURCHASE / PRODUCTION / ADJUST
	SourceOrderNo  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
