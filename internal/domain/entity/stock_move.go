package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MoveTypeIN     = "IN"     // entrada (recepción)
	MoveTypeOUT    = "OUT"    // salida (emisión o consumo de bloqueo)
	MoveTypeLOCK   = "LOCK"   // bloqueo de disponibilidad
	MoveTypeUNLOCK = "UNLOCK" // liberación de bloqueo
)

// Tipos de documento de origen.
const (
	SourceTypePurchase   = "PURCHASE"
	SourceTypeSale       = "SALE"
	SourceTypeProduction = "PRODUCTION"
	SourceTypeAdjust     = "ADJUST"
	SourceTypeOrder      = "ORDER"
)

// StockMove asiento del libro de movimientos: inmutable una vez escrito, nunca se
// actualiza ni se borra. Para IN/OUT Before/After son cantidades físicas; para
// LOCK/UNLOCK son cantidades bloqueadas.
type StockMove struct {
	ID            string
	MoveNo        string // número de documento único (MV...)
	SkuID         string
	WarehouseID   string
	Type          string
	Qty           decimal.Decimal
	BeforeQty     decimal.Decimal
	AfterQty      decimal.Decimal
	UnitCost      decimal.Decimal // costo unitario aplicado al movimiento
	SourceType    string
	SourceOrderNo string
	BatchNo       string // vacío para LOCK/UNLOCK
	Remark        string
	Operator      string
	CreatedAt     time.Time
}
