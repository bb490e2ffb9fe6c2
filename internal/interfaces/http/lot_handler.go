package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/feedlot-pro/feedlot-api/internal/application/dto"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
)

// LotHandler maneja las peticiones HTTP de lotes y mortalidad.
type LotHandler struct {
	lots  *feedlot.LotUseCase
	costs *feedlot.CostEventUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(lots *feedlot.LotUseCase, costs *feedlot.CostEventUseCase) *LotHandler {
	return &LotHandler{lots: lots, costs: costs}
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Create registra un lote nuevo.
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	purchaseDate, ok := parseDate(in.PurchaseDate)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "purchase_date inválida (YYYY-MM-DD)"})
	}
	entryDate, ok := parseDate(in.EntryDate)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entry_date inválida (YYYY-MM-DD)"})
	}
	lot, err := h.lots.CreateLot(c.Context(), feedlot.CreateLotInput{
		LotNumber:       in.LotNumber,
		PurchaseDate:    purchaseDate,
		EntryDate:       entryDate,
		Quantity:        in.Quantity,
		EntryWeight:     in.EntryWeight,
		GMD:             in.GMD,
		CarcassYield:    in.CarcassYield,
		AcquisitionCost: in.AcquisitionCost,
		FreightCost:     in.FreightCost,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotResponse(lot, time.Now()))
}

// List lotes activos con proyecciones a hoy.
func (h *LotHandler) List(c *fiber.Ctx) error {
	lots, err := h.lots.ListActiveLots(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now()
	out := make([]dto.LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, dto.NewLotResponse(&lots[i], now))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}

// GetByID lote con proyección de peso.
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	lot, err := h.lots.GetLot(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotResponse(lot, time.Now()))
}

// RegisterMortality debita muertes del lote.
func (h *LotHandler) RegisterMortality(c *fiber.Ctx) error {
	var in dto.MortalityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	newQty, err := h.lots.RegisterMortality(c.Context(), c.Params("id"), in.Quantity, in.Cause)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"current_quantity": newQty})
}

// Movements traza de auditoría del lote.
func (h *LotHandler) Movements(c *fiber.Ctx) error {
	movs, err := h.lots.Movements(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.NewMovementDTO(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Costs entradas de costo prorrateadas al lote.
func (h *LotHandler) Costs(c *fiber.Ctx) error {
	entries, err := h.costs.ListByLot(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CostEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewCostEntryDTO(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "costs": out})
}
