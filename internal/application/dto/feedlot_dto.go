package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// ── Lotes ─────────────────────────────────────────────────────────────────────

// CreateLotRequest alta de un lote al confirmar la compra.
type CreateLotRequest struct {
	LotNumber       string          `json:"lot_number"`
	PurchaseDate    string          `json:"purchase_date"` // YYYY-MM-DD
	EntryDate       string          `json:"entry_date"`    // YYYY-MM-DD; por defecto la de compra
	Quantity        int             `json:"quantity"`
	EntryWeight     decimal.Decimal `json:"entry_weight"`  // kg vivos totales
	GMD             decimal.Decimal `json:"gmd"`           // kg/animal/día
	CarcassYield    decimal.Decimal `json:"carcass_yield"` // %
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	FreightCost     decimal.Decimal `json:"freight_cost"`
}

// LotResponse lote con proyecciones a hoy.
type LotResponse struct {
	ID                      string          `json:"id"`
	LotNumber               string          `json:"lot_number"`
	PurchaseDate            string          `json:"purchase_date"`
	EntryDate               string          `json:"entry_date"`
	InitialQuantity         int             `json:"initial_quantity"`
	CurrentQuantity         int             `json:"current_quantity"`
	Status                  string          `json:"status"`
	ProjectedWeight         decimal.Decimal `json:"projected_weight_kg"`
	ProjectedCarcassArrobas decimal.Decimal `json:"projected_carcass_arrobas"`
	TotalCost               decimal.Decimal `json:"total_cost"`
}

// NewLotResponse arma la respuesta proyectando pesos a la fecha dada.
func NewLotResponse(lot *entity.Lot, asOf time.Time) LotResponse {
	return LotResponse{
		ID:                      lot.ID,
		LotNumber:               lot.LotNumber,
		PurchaseDate:            lot.PurchaseDate.Format("2006-01-02"),
		EntryDate:               lot.EntryDate.Format("2006-01-02"),
		InitialQuantity:         lot.InitialQuantity,
		CurrentQuantity:         lot.CurrentQuantity,
		Status:                  lot.Status,
		ProjectedWeight:         lot.ProjectedWeight(asOf),
		ProjectedCarcassArrobas: lot.ProjectedCarcassArrobas(asOf),
		TotalCost:               lot.Costs.Total(),
	}
}

// MortalityRequest registro de muertes en un lote.
type MortalityRequest struct {
	Quantity int    `json:"quantity"`
	Cause    string `json:"cause"`
}

// ── Ventas ────────────────────────────────────────────────────────────────────

// CreateSaleRequest alta de una venta (queda PENDING).
type CreateSaleRequest struct {
	SaleNumber     string          `json:"sale_number"`
	SaleDate       string          `json:"sale_date"` // YYYY-MM-DD
	Quantity       int             `json:"quantity"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	PricePerArroba decimal.Decimal `json:"price_per_arroba"`
	GrossValue     decimal.Decimal `json:"gross_value"`
	NetValue       decimal.Decimal `json:"net_value"`
	PenNumber      string          `json:"pen_number"` // opcional: fija la venta a un corral
	BuyerID        string          `json:"buyer_id"`
	Notes          string          `json:"notes"`
}

// TransitionRequest cambio de estado de una venta.
type TransitionRequest struct {
	Status string `json:"status"`
}

// DepletionEntryDTO un débito de la traza.
type DepletionEntryDTO struct {
	LotID    string `json:"lot_id"`
	Quantity int    `json:"quantity"`
}

// SideEffectDTO resultado de un efecto colateral best-effort.
type SideEffectDTO struct {
	Kind    string `json:"kind"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SaleResponse venta con su traza.
type SaleResponse struct {
	ID             string              `json:"id"`
	SaleNumber     string              `json:"sale_number"`
	SaleDate       string              `json:"sale_date"`
	Quantity       int                 `json:"quantity"`
	NetValue       decimal.Decimal     `json:"net_value"`
	PenNumber      string              `json:"pen_number,omitempty"`
	Status         string              `json:"status"`
	DepletionTrace []DepletionEntryDTO `json:"depletion_trace"`
	SideEffects    []SideEffectDTO     `json:"side_effects,omitempty"`
}

// NewSaleResponse arma la respuesta de una venta.
func NewSaleResponse(sale *entity.SaleRecord) SaleResponse {
	trace := make([]DepletionEntryDTO, 0, len(sale.DepletionTrace))
	for _, e := range sale.DepletionTrace {
		trace = append(trace, DepletionEntryDTO{LotID: e.LotID, Quantity: e.Quantity})
	}
	return SaleResponse{
		ID:             sale.ID,
		SaleNumber:     sale.SaleNumber,
		SaleDate:       sale.SaleDate.Format("2006-01-02"),
		Quantity:       sale.Quantity,
		NetValue:       sale.NetValue,
		PenNumber:      sale.PenNumber,
		Status:         sale.Status,
		DepletionTrace: trace,
	}
}

// ── Corrales y asignaciones ───────────────────────────────────────────────────

// PenResponse ocupación de un corral.
type PenResponse struct {
	Number         string `json:"number"`
	Capacity       int    `json:"capacity"`
	CurrentAnimals int    `json:"current_animals"`
	FreeSpace      int    `json:"free_space"`
	Status         string `json:"status"`
}

// NewPenResponse arma la respuesta de un corral.
func NewPenResponse(pen *entity.Pen) PenResponse {
	return PenResponse{
		Number:         pen.Number,
		Capacity:       pen.Capacity,
		CurrentAnimals: pen.CurrentAnimals,
		FreeSpace:      pen.FreeSpace(),
		Status:         pen.Status,
	}
}

// SuggestAllocationRequest pedido de sugerencia de ubicación.
type SuggestAllocationRequest struct {
	LotID string `json:"lot_id"`
}

// PenAssignmentDTO una porción del plan (corral, cantidad).
type PenAssignmentDTO struct {
	PenNumber string `json:"pen_number"`
	Quantity  int    `json:"quantity"`
}

// AllocationSuggestionResponse propuesta del planificador.
type AllocationSuggestionResponse struct {
	Quantity  int                `json:"quantity"`
	SinglePen *PenResponse       `json:"single_pen,omitempty"`
	Split     []PenAssignmentDTO `json:"split,omitempty"`
	Shortfall int                `json:"shortfall"`
}

// CommitAllocationRequest confirmación de un plan de asignación.
type CommitAllocationRequest struct {
	LotID  string             `json:"lot_id"`
	Plan   []PenAssignmentDTO `json:"plan"`
	Manual bool               `json:"manual"`
}

// ── Costos ────────────────────────────────────────────────────────────────────

// CostEventRequest evento de costo a nivel corral.
type CostEventRequest struct {
	PenNumber   string          `json:"pen_number"`
	SourceType  string          `json:"source_type"` // health, feed, operational, other
	TotalCost   decimal.Decimal `json:"total_cost"`
	Description string          `json:"description"`
}

// CostEntryDTO porción prorrateada a un lote.
type CostEntryDTO struct {
	ID            string          `json:"id"`
	SourceEventID string          `json:"source_event_id"`
	SourceType    string          `json:"source_type"`
	LotID         string          `json:"lot_id"`
	PenNumber     string          `json:"pen_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewCostEntryDTO arma la respuesta de una entrada de costo.
func NewCostEntryDTO(e entity.CostAllocationEntry) CostEntryDTO {
	return CostEntryDTO{
		ID:            e.ID,
		SourceEventID: e.SourceEventID,
		SourceType:    e.SourceType,
		LotID:         e.LotID,
		PenNumber:     e.PenNumber,
		Amount:        e.Amount,
	}
}

// MovementDTO un movimiento de auditoría del lote.
type MovementDTO struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Quantity     int    `json:"quantity"`
	Reason       string `json:"reason"`
	RelatedID    string `json:"related_id,omitempty"`
	MovementDate string `json:"movement_date"`
}

// NewMovementDTO arma la respuesta de un movimiento.
func NewMovementDTO(m entity.LotMovement) MovementDTO {
	return MovementDTO{
		ID:           m.ID,
		Type:         m.Type,
		Quantity:     m.Quantity,
		Reason:       m.Reason,
		RelatedID:    m.RelatedID,
		MovementDate: m.MovementDate.Format(time.RFC3339),
	}
}
