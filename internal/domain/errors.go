package domain

// BusinessError error de negocio con código estable para el cliente.
// El mensaje es legible; el código nunca cambia entre versiones.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

// Errores de dominio (sin dependencias externas). Comparar con errors.Is;
// los repos y casos de uso pueden envolverlos con fmt.Errorf("%w: ...").
var (
	ErrInvalidInput               = &BusinessError{Code: "INVALID_REQUEST", Message: "entrada inválida"}
	ErrInvalidQuantity            = &BusinessError{Code: "INVALID_QUANTITY", Message: "cantidad inválida: debe ser mayor que cero"}
	ErrStockNotFound              = &BusinessError{Code: "STOCK_NOT_FOUND", Message: "registro de stock no encontrado"}
	ErrInsufficientStock          = &BusinessError{Code: "INSUFFICIENT_STOCK", Message: "stock disponible insuficiente"}
	ErrInsufficientAvailableStock = &BusinessError{Code: "INSUFFICIENT_AVAILABLE_STOCK", Message: "stock disponible insuficiente para bloquear"}
	ErrInsufficientBatchStock     = &BusinessError{Code: "INSUFFICIENT_BATCH_STOCK", Message: "los lotes no alcanzan para cubrir la salida"}
	ErrLockNotFound               = &BusinessError{Code: "LOCK_NOT_FOUND", Message: "no se encontraron bloqueos activos"}
	ErrConcurrencyConflict        = &BusinessError{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente la operación"}
	ErrDuplicateMovement          = &BusinessError{Code: "DUPLICATE_MOVEMENT", Message: "movimiento duplicado para el mismo documento de origen"}
)
