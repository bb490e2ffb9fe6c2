package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/feedlot-pro/feedlot-api/internal/application/dto"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
)

// CostHandler maneja las peticiones HTTP de eventos de costo por corral.
type CostHandler struct {
	uc *feedlot.CostEventUseCase
}

// NewCostHandler construye el handler.
func NewCostHandler(uc *feedlot.CostEventUseCase) *CostHandler {
	return &CostHandler{uc: uc}
}

// Register registra un evento de costo y lo prorratea entre los lotes del corral.
func (h *CostHandler) Register(c *fiber.Ctx) error {
	var in dto.CostEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entries, err := h.uc.RegisterCostEvent(c.Context(), feedlot.CostEventInput{
		PenNumber:   in.PenNumber,
		SourceType:  in.SourceType,
		TotalCost:   in.TotalCost,
		Description: in.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CostEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewCostEntryDTO(e))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"total": len(out), "allocations": out})
}
