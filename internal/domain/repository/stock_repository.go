package repository

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// StockRepository acceso al registro maestro de stock por (SKU, bodega).
type StockRepository interface {
	// Get devuelve el registro o nil si la clave nunca ha recibido stock.
	Get(skuID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción
	// actual; nil si no existe. Sección crítica por clave del motor.
	GetForUpdate(skuID, warehouseID string) (*entity.Stock, error)
	// GetOrCreateForUpdate crea la fila en cero si no existe y la devuelve
	// bloqueada. Usado por las entradas, que crean la clave en la primera recepción.
	GetOrCreateForUpdate(skuID, warehouseID string) (*entity.Stock, error)
	// Save persiste cantidades y costo del registro.
	Save(stock *entity.Stock) error
}
