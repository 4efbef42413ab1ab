package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// stubService implementación de StockService con respuestas programadas.
// err tiene prioridad sobre la respuesta.
type stubService struct {
	err       error
	inResp    *dto.StockInResponse
	outResp   *dto.StockOutResponse
	lockResp  *dto.LockStockResponse
	unlock    *dto.UnlockStockResponse
	info      *dto.StockInfoResponse
	page      *dto.MovementPage
	lastQuery dto.MovementQuery
}

var _ apphttp.StockService = (*stubService)(nil)

func (s *stubService) StockIn(context.Context, dto.StockInRequest) (*dto.StockInResponse, error) {
	return s.inResp, s.err
}

func (s *stubService) StockOut(context.Context, dto.StockOutRequest) (*dto.StockOutResponse, error) {
	return s.outResp, s.err
}

func (s *stubService) LockStock(context.Context, dto.LockStockRequest) (*dto.LockStockResponse, error) {
	return s.lockResp, s.err
}

func (s *stubService) UnlockStock(context.Context, dto.UnlockStockRequest) (*dto.UnlockStockResponse, error) {
	return s.unlock, s.err
}

func (s *stubService) ConsumeLocked(context.Context, dto.ConsumeLockedRequest) (*dto.StockOutResponse, error) {
	return s.outResp, s.err
}

func (s *stubService) GetStock(_ context.Context, skuID, warehouseID string) (*dto.StockInfoResponse, error) {
	return s.info, s.err
}

func (s *stubService) QueryMovements(_ context.Context, q dto.MovementQuery) (*dto.MovementPage, error) {
	s.lastQuery = q
	return s.page, s.err
}

func buildTestApp(svc apphttp.StockService) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, svc)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var errBody dto.ErrorResponse
	if resp.StatusCode >= 400 {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &errBody))
	}
	return resp, errBody
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas felices
// ──────────────────────────────────────────────────────────────────────────────

func TestStockIn_Creado(t *testing.T) {
	svc := &stubService{inResp: &dto.StockInResponse{MoveNos: []string{"MV1"}}}
	app := buildTestApp(svc)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/stock/in",
		`{"warehouse_id":"WH-1","items":[{"sku_id":"SKU-A","qty":"10","unit_cost":"5.00"}],"source_type":"PURCHASE"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.StockInResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"MV1"}, body.MoveNos)
}

func TestStockOut_DevuelveCostoTotal(t *testing.T) {
	svc := &stubService{outResp: &dto.StockOutResponse{MoveNos: []string{"MV2"}, TotalCost: decimal.RequireFromString("300")}}
	app := buildTestApp(svc)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/stock/out",
		`{"warehouse_id":"WH-1","items":[{"sku_id":"SKU-A","qty":"30"}],"source_type":"SALE"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.StockOutResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.TotalCost.Equal(decimal.RequireFromString("300")))
}

func TestLockUnlockConsume_Rutas(t *testing.T) {
	svc := &stubService{
		lockResp: &dto.LockStockResponse{LockNos: []string{"LK1"}},
		unlock:   &dto.UnlockStockResponse{UnlockedCount: 1},
		outResp:  &dto.StockOutResponse{MoveNos: []string{"MV3"}, TotalCost: decimal.Zero},
	}
	app := buildTestApp(svc)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/stock/lock",
		`{"warehouse_id":"WH-1","items":[{"sku_id":"SKU-A","qty":"5"}],"source_type":"ORDER","source_order_no":"O1"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/stock/unlock", `{"source_order_no":"O1"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/stock/consume", `{"source_order_no":"O1"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetStock_ParametrosDeRuta(t *testing.T) {
	svc := &stubService{info: &dto.StockInfoResponse{
		SkuID:       "SKU-A",
		WarehouseID: "WH-1",
		Qty:         decimal.RequireFromString("150"),
		Batches:     []dto.BatchDTO{},
	}}
	app := buildTestApp(svc)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/stock/WH-1/SKU-A", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.StockInfoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "SKU-A", body.SkuID)
	assert.Equal(t, "WH-1", body.WarehouseID)
}

func TestQueryMovements_ParseaFiltros(t *testing.T) {
	svc := &stubService{page: &dto.MovementPage{Movements: []dto.MovementDTO{}}}
	app := buildTestApp(svc)

	resp, _ := doJSON(t, app, http.MethodGet,
		"/api/stock/movements?sku_id=SKU-A&move_type=OUT&page=2&page_size=10", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "SKU-A", svc.lastQuery.SkuID)
	assert.Equal(t, "OUT", svc.lastQuery.MoveType)
	assert.Equal(t, 2, svc.lastQuery.Page)
	assert.Equal(t, 10, svc.lastQuery.PageSize)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores a estados HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestWriteError_MapeoDeEstados(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"cantidad inválida", domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
		{"entrada inválida", domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_REQUEST"},
		{"stock no encontrado", domain.ErrStockNotFound, fiber.StatusNotFound, "STOCK_NOT_FOUND"},
		{"bloqueo no encontrado", domain.ErrLockNotFound, fiber.StatusNotFound, "LOCK_NOT_FOUND"},
		{"stock insuficiente", domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
		{"disponibilidad insuficiente", domain.ErrInsufficientAvailableStock, fiber.StatusConflict, "INSUFFICIENT_AVAILABLE_STOCK"},
		{"lotes insuficientes", domain.ErrInsufficientBatchStock, fiber.StatusConflict, "INSUFFICIENT_BATCH_STOCK"},
		{"movimiento duplicado", domain.ErrDuplicateMovement, fiber.StatusConflict, "DUPLICATE_MOVEMENT"},
		{"conflicto de concurrencia", domain.ErrConcurrencyConflict, fiber.StatusConflict, "CONCURRENCY_CONFLICT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := buildTestApp(&stubService{err: tc.err})
			resp, errBody := doJSON(t, app, http.MethodPost, "/api/stock/out",
				`{"warehouse_id":"WH-1","items":[{"sku_id":"SKU-A","qty":"1"}],"source_type":"SALE"}`)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantCode, errBody.Code)
			assert.NotEmpty(t, errBody.Message)
		})
	}
}

func TestWriteError_ErrorEnvueltoConservaElCodigo(t *testing.T) {
	// Los casos de uso envuelven los errores de dominio con contexto; el
	// handler debe seguir resolviendo el código vía errors.As.
	wrapped := fmt.Errorf("%w: sku=SKU-A disponible=0 solicitado=1", domain.ErrInsufficientStock)
	app := buildTestApp(&stubService{err: wrapped})

	resp, errBody := doJSON(t, app, http.MethodPost, "/api/stock/out",
		`{"warehouse_id":"WH-1","items":[{"sku_id":"SKU-A","qty":"1"}],"source_type":"SALE"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
}

func TestWriteError_InternoNoExponeDetalle(t *testing.T) {
	app := buildTestApp(&stubService{err: errors.New("pq: connection refused")})

	resp, errBody := doJSON(t, app, http.MethodPost, "/api/stock/in",
		`{"warehouse_id":"WH-1","items":[{"sku_id":"SKU-A","qty":"1","unit_cost":"1"}],"source_type":"PURCHASE"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", errBody.Code)
	assert.NotContains(t, errBody.Message, "connection refused", "el texto de persistencia nunca llega al cliente")
}

func TestCuerpoInvalido(t *testing.T) {
	app := buildTestApp(&stubService{})

	resp, errBody := doJSON(t, app, http.MethodPost, "/api/stock/in", `{esto no es json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errBody.Code)
}
