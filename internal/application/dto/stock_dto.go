package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockInItem línea de entrada. Qty > 0 y UnitCost >= 0 se validan antes de
// iniciar la operación (fallo temprano, nunca a mitad del recorrido de lotes).
type StockInItem struct {
	SkuID          string          `json:"sku_id"`
	Qty            decimal.Decimal `json:"qty"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	BatchNo        string          `json:"batch_no,omitempty"`
	ProductionDate *time.Time      `json:"production_date,omitempty"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
}

// StockInRequest body para POST /api/stock/in.
type StockInRequest struct {
	WarehouseID   string        `json:"warehouse_id"`
	Items         []StockInItem `json:"items"`
	SourceType    string        `json:"source_type"`
	SourceOrderNo string        `json:"source_order_no,omitempty"`
	Remark        string        `json:"remark,omitempty"`
	Operator      string        `json:"operator,omitempty"`
}

// StockInResponse números de asiento generados, uno por línea.
type StockInResponse struct {
	MoveNos []string `json:"move_nos"`
}

// StockOutItem línea de salida. BatchNo no vacío fuerza la salida de ese lote.
type StockOutItem struct {
	SkuID   string          `json:"sku_id"`
	Qty     decimal.Decimal `json:"qty"`
	BatchNo string          `json:"batch_no,omitempty"`
}

// StockOutRequest body para POST /api/stock/out.
type StockOutRequest struct {
	WarehouseID   string         `json:"warehouse_id"`
	Items         []StockOutItem `json:"items"`
	SourceType    string         `json:"source_type"`
	SourceOrderNo string         `json:"source_order_no,omitempty"`
	Remark        string         `json:"remark,omitempty"`
	Operator      string         `json:"operator,omitempty"`
}

// StockOutResponse números de asiento y costo total extraído (para COGS).
type StockOutResponse struct {
	MoveNos   []string        `json:"move_nos"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// LockItem línea de bloqueo.
type LockItem struct {
	SkuID string          `json:"sku_id"`
	Qty   decimal.Decimal `json:"qty"`
}

// LockStockRequest body para POST /api/stock/lock.
type LockStockRequest struct {
	WarehouseID   string     `json:"warehouse_id"`
	Items         []LockItem `json:"items"`
	SourceType    string     `json:"source_type"`
	SourceOrderNo string     `json:"source_order_no"`
	Operator      string     `json:"operator,omitempty"`
}

// LockStockResponse números de documento de bloqueo, uno por línea.
type LockStockResponse struct {
	LockNos []string `json:"lock_nos"`
}

// UnlockStockRequest body para POST /api/stock/unlock.
// Debe traer números de bloqueo o un documento de origen, no ambos vacíos.
type UnlockStockRequest struct {
	LockNos       []string `json:"lock_nos,omitempty"`
	SourceOrderNo string   `json:"source_order_no,omitempty"`
	Operator      string   `json:"operator,omitempty"`
}

// UnlockStockResponse cantidad de bloqueos liberados.
type UnlockStockResponse struct {
	UnlockedCount int `json:"unlocked_count"`
}

// ConsumeLockedRequest body para POST /api/stock/consume.
type ConsumeLockedRequest struct {
	SourceOrderNo string `json:"source_order_no"`
	Operator      string `json:"operator,omitempty"`
}

// BatchDTO lote con cantidad restante, para la consulta de stock.
type BatchDTO struct {
	BatchNo        string          `json:"batch_no"`
	Qty            decimal.Decimal `json:"qty"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ProductionDate *time.Time      `json:"production_date,omitempty"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	SourceType     string          `json:"source_type"`
	SourceOrderNo  string          `json:"source_order_no,omitempty"`
	ReceivedAt     time.Time       `json:"received_at"`
}

// StockInfoResponse estado actual de una clave con sus lotes activos (FIFO).
type StockInfoResponse struct {
	SkuID        string          `json:"sku_id"`
	WarehouseID  string          `json:"warehouse_id"`
	Qty          decimal.Decimal `json:"qty"`
	LockedQty    decimal.Decimal `json:"locked_qty"`
	AvailableQty decimal.Decimal `json:"available_qty"`
	AvgCost      decimal.Decimal `json:"avg_cost"`
	Batches      []BatchDTO      `json:"batches"`
}

// MovementQuery filtros y paginación para la consulta del libro de movimientos.
type MovementQuery struct {
	SkuID         string     `json:"sku_id,omitempty"`
	WarehouseID   string     `json:"warehouse_id,omitempty"`
	MoveType      string     `json:"move_type,omitempty"`
	SourceType    string     `json:"source_type,omitempty"`
	SourceOrderNo string     `json:"source_order_no,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Page          int        `json:"page"`
	PageSize      int        `json:"page_size"`
}

// MovementDTO asiento del libro de movimientos.
type MovementDTO struct {
	MoveNo        string          `json:"move_no"`
	SkuID         string          `json:"sku_id"`
	WarehouseID   string          `json:"warehouse_id"`
	MoveType      string          `json:"move_type"`
	Qty           decimal.Decimal `json:"qty"`
	BeforeQty     decimal.Decimal `json:"before_qty"`
	AfterQty      decimal.Decimal `json:"after_qty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	SourceType    string          `json:"source_type"`
	SourceOrderNo string          `json:"source_order_no,omitempty"`
	BatchNo       string          `json:"batch_no,omitempty"`
	Remark        string          `json:"remark,omitempty"`
	Operator      string          `json:"operator,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementPage página de movimientos con el total de coincidencias.
type MovementPage struct {
	Movements []MovementDTO `json:"movements"`
	Total     int64         `json:"total"`
}

// StockChangedEvent evento publicado en el tópico stock-events tras cada
// mutación confirmada (vía outbox).
type StockChangedEvent struct {
	SkuID         string          `json:"sku_id"`
	WarehouseID   string          `json:"warehouse_id"`
	MoveType      string          `json:"move_type"`
	Qty           decimal.Decimal `json:"qty"`
	BeforeQty     decimal.Decimal `json:"before_qty"`
	AfterQty      decimal.Decimal `json:"after_qty"`
	SourceType    string          `json:"source_type"`
	SourceOrderNo string          `json:"source_order_no,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
