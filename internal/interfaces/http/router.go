package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LotUC        *feedlot.LotUseCase
	SaleUC       *feedlot.SaleUseCase
	AllocationUC *feedlot.AllocationUseCase
	CostUC       *feedlot.CostEventUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Lotes
	lots := api.Group("/lots")
	lotHandler := NewLotHandler(deps.LotUC, deps.CostUC)
	lots.Post("/", lotHandler.Create)
	lots.Get("/", lotHandler.List)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Post("/:id/mortality", lotHandler.RegisterMortality)
	lots.Get("/:id/movements", lotHandler.Movements)
	lots.Get("/:id/costs", lotHandler.Costs)

	// Ventas
	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Patch("/:id/status", saleHandler.Transition)

	// Corrales y asignaciones
	allocationHandler := NewAllocationHandler(deps.AllocationUC)
	api.Get("/pens", allocationHandler.ListPens)
	allocations := api.Group("/allocations")
	allocations.Post("/suggest", allocationHandler.Suggest)
	allocations.Post("/", allocationHandler.Commit)

	// Costos
	costs := api.Group("/costs")
	costHandler := NewCostHandler(deps.CostUC)
	costs.Post("/", costHandler.Register)

	// Prometheus
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
