package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/feedlot-pro/feedlot-api/internal/application/dto"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
)

// SaleHandler maneja las peticiones HTTP de ventas y su máquina de estados.
type SaleHandler struct {
	uc *feedlot.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *feedlot.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create registra una venta en estado PENDING.
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	saleDate, ok := parseDate(in.SaleDate)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sale_date inválida (YYYY-MM-DD)"})
	}
	sale, err := h.uc.CreateSale(c.Context(), feedlot.CreateSaleInput{
		SaleNumber:     in.SaleNumber,
		SaleDate:       saleDate,
		Quantity:       in.Quantity,
		TotalWeight:    in.TotalWeight,
		PricePerArroba: in.PricePerArroba,
		GrossValue:     in.GrossValue,
		NetValue:       in.NetValue,
		PenNumber:      in.PenNumber,
		BuyerID:        in.BuyerID,
		Notes:          in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSaleResponse(sale))
}

// List ventas, con filtro opcional por estado (?status=PENDING).
func (h *SaleHandler) List(c *fiber.Ctx) error {
	sales, err := h.uc.ListSales(c.Context(), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, dto.NewSaleResponse(&sales[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "sales": out})
}

// GetByID venta con su traza de débitos.
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewSaleResponse(sale))
}

// Transition aplica una transición de estado. La respuesta incluye el
// resultado de cada efecto colateral best-effort.
func (h *SaleHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Transition(c.Context(), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.NewSaleResponse(result.Sale)
	for _, o := range result.SideEffects {
		effect := dto.SideEffectDTO{Kind: o.Kind, Success: o.Succeeded()}
		if o.Err != nil {
			effect.Error = o.Err.Error()
		}
		resp.SideEffects = append(resp.SideEffects, effect)
	}
	return c.JSON(resp)
}
