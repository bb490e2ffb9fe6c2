package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/feedlot-pro/feedlot-api/internal/application/dto"
	appfeedlot "github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
	"github.com/feedlot-pro/feedlot-api/internal/domain/feedlot"
)

// AllocationHandler maneja las peticiones HTTP de corrales y asignaciones.
type AllocationHandler struct {
	uc *appfeedlot.AllocationUseCase
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(uc *appfeedlot.AllocationUseCase) *AllocationHandler {
	return &AllocationHandler{uc: uc}
}

// ListPens snapshot de ocupación de corrales.
func (h *AllocationHandler) ListPens(c *fiber.Ctx) error {
	pens, err := h.uc.ListPens(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PenResponse, 0, len(pens))
	for i := range pens {
		out = append(out, dto.NewPenResponse(&pens[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "pens": out})
}

// Suggest propone dónde ubicar los animales sin corral de un lote.
func (h *AllocationHandler) Suggest(c *fiber.Ctx) error {
	var in dto.SuggestAllocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.uc.Suggest(c.Context(), in.LotID)
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.AllocationSuggestionResponse{Quantity: s.Quantity}
	if s.SinglePen != nil {
		pen := dto.NewPenResponse(s.SinglePen)
		resp.SinglePen = &pen
	} else {
		resp.Shortfall = s.Split.Shortfall
		for _, a := range s.Split.Assignments {
			resp.Split = append(resp.Split, dto.PenAssignmentDTO{PenNumber: a.PenNumber, Quantity: a.Quantity})
		}
	}
	return c.JSON(resp)
}

// Commit valida y confirma un plan de asignación.
func (h *AllocationHandler) Commit(c *fiber.Ctx) error {
	var in dto.CommitAllocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	plan := make([]feedlot.PenAssignment, 0, len(in.Plan))
	for _, a := range in.Plan {
		plan = append(plan, feedlot.PenAssignment{PenNumber: a.PenNumber, Quantity: a.Quantity})
	}
	created, err := h.uc.Commit(c.Context(), in.LotID, plan, in.Manual)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PenAssignmentDTO, 0, len(created))
	for _, a := range created {
		out = append(out, dto.PenAssignmentDTO{PenNumber: a.PenNumber, Quantity: a.Quantity})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"allocations": out})
}
