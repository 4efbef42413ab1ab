package http

import "github.com/gofiber/fiber/v2"

// Router registra las rutas de la API de stock.
func Router(app *fiber.App, svc StockService) {
	api := app.Group("/api")

	stock := api.Group("/stock")
	handler := NewStockHandler(svc)
	stock.Post("/in", handler.StockIn)
	stock.Post("/out", handler.StockOut)
	stock.Post("/lock", handler.LockStock)
	stock.Post("/unlock", handler.UnlockStock)
	stock.Post("/consume", handler.ConsumeLocked)
	stock.Get("/movements", handler.QueryMovements)
	stock.Get("/:warehouseId/:skuId", handler.GetStock)
}
