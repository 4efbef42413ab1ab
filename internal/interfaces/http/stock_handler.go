package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// StockService operaciones del motor de inventario expuestas por HTTP.
type StockService interface {
	StockIn(ctx context.Context, req dto.StockInRequest) (*dto.StockInResponse, error)
	StockOut(ctx context.Context, req dto.StockOutRequest) (*dto.StockOutResponse, error)
	LockStock(ctx context.Context, req dto.LockStockRequest) (*dto.LockStockResponse, error)
	UnlockStock(ctx context.Context, req dto.UnlockStockRequest) (*dto.UnlockStockResponse, error)
	ConsumeLocked(ctx context.Context, req dto.ConsumeLockedRequest) (*dto.StockOutResponse, error)
	GetStock(ctx context.Context, skuID, warehouseID string) (*dto.StockInfoResponse, error)
	QueryMovements(ctx context.Context, q dto.MovementQuery) (*dto.MovementPage, error)
}

// StockHandler maneja las peticiones HTTP del motor de inventario.
type StockHandler struct {
	svc StockService
}

// NewStockHandler construye el handler.
func NewStockHandler(svc StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// StockIn POST /api/stock/in
func (h *StockHandler) StockIn(c *fiber.Ctx) error {
	var req dto.StockInRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.svc.StockIn(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// StockOut POST /api/stock/out
func (h *StockHandler) StockOut(c *fiber.Ctx) error {
	var req dto.StockOutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.svc.StockOut(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// LockStock POST /api/stock/lock
func (h *StockHandler) LockStock(c *fiber.Ctx) error {
	var req dto.LockStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.svc.LockStock(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UnlockStock POST /api/stock/unlock
func (h *StockHandler) UnlockStock(c *fiber.Ctx) error {
	var req dto.UnlockStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.svc.UnlockStock(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// ConsumeLocked POST /api/stock/consume
func (h *StockHandler) ConsumeLocked(c *fiber.Ctx) error {
	var req dto.ConsumeLockedRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.svc.ConsumeLocked(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// GetStock GET /api/stock/:warehouseId/:skuId
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	resp, err := h.svc.GetStock(c.Context(), c.Params("skuId"), c.Params("warehouseId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// QueryMovements GET /api/stock/movements
func (h *StockHandler) QueryMovements(c *fiber.Ctx) error {
	q := dto.MovementQuery{
		SkuID:         c.Query("sku_id"),
		WarehouseID:   c.Query("warehouse_id"),
		MoveType:      c.Query("move_type"),
		SourceType:    c.Query("source_type"),
		SourceOrderNo: c.Query("source_order_no"),
		Page:          c.QueryInt("page", 1),
		PageSize:      c.QueryInt("page_size", 20),
	}
	resp, err := h.svc.QueryMovements(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// writeError traduce errores de negocio a estados HTTP. Los errores de
// infraestructura nunca exponen su texto al cliente.
func writeError(c *fiber.Ctx, err error) error {
	var bizErr *domain.BusinessError
	if errors.As(err, &bizErr) {
		return c.Status(statusFor(bizErr.Code)).JSON(dto.ErrorResponse{Code: bizErr.Code, Message: bizErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code:    "INTERNAL",
		Message: "error interno, reintente la operación",
	})
}

func statusFor(code string) int {
	switch code {
	case "INVALID_REQUEST", "INVALID_QUANTITY":
		return fiber.StatusBadRequest
	case "STOCK_NOT_FOUND", "LOCK_NOT_FOUND":
		return fiber.StatusNotFound
	default:
		// Violaciones de regla de negocio: INSUFFICIENT_*, DUPLICATE_MOVEMENT,
		// CONCURRENCY_CONFLICT.
		return fiber.StatusConflict
	}
}
