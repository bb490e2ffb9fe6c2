package feedlot

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/feedlot"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

// AllocationSuggestion propuesta del planificador para ubicar un lote.
// SinglePen no nulo cuando un solo corral alcanza; si no, Split trae el plan
// voraz multi-corral (posiblemente parcial, con Shortfall).
type AllocationSuggestion struct {
	SinglePen *entity.Pen
	Split     feedlot.SplitPlan
	Quantity  int // animales del lote aún sin corral
}

// AllocationUseCase planifica y confirma la ubicación física de los lotes en
// corrales: mejor corral único, reparto multi-corral y validación de planes
// manuales. El commit es atómico sobre el plan completo.
type AllocationUseCase struct {
	txRunner TxRunner
	metrics  Metrics
	log      *logger.Logger
}

// NewAllocationUseCase construye el caso de uso.
func NewAllocationUseCase(txRunner TxRunner, metrics Metrics, log *logger.Logger) *AllocationUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &AllocationUseCase{txRunner: txRunner, metrics: metrics, log: log}
}

// unallocated cantidad del lote aún sin asignación activa.
func unallocated(ctx context.Context, r TxRepos, lot *entity.Lot) (int, error) {
	allocs, err := r.Allocations.ListActiveByLot(ctx, lot.ID)
	if err != nil {
		return 0, err
	}
	assigned := 0
	for _, a := range allocs {
		assigned += a.Quantity
	}
	return lot.CurrentQuantity - assigned, nil
}

// Suggest propone dónde ubicar los animales sin corral del lote: corral único
// si alguno alcanza, plan voraz multi-corral si no.
func (uc *AllocationUseCase) Suggest(ctx context.Context, lotID string) (*AllocationSuggestion, error) {
	var suggestion *AllocationSuggestion
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		lot, err := r.Lots.GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		pending, err := unallocated(ctx, r, lot)
		if err != nil {
			return err
		}
		if pending <= 0 {
			return domain.ErrInvalidInput
		}
		pens, err := r.Pens.List(ctx)
		if err != nil {
			return err
		}
		single, err := feedlot.FindBestSinglePen(pens, pending)
		if err != nil {
			return err
		}
		suggestion = &AllocationSuggestion{SinglePen: single, Quantity: pending}
		if single == nil {
			suggestion.Split, err = feedlot.SuggestMultiPenSplit(pens, pending)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return suggestion, err
}

// Commit aplica un plan de asignación. Atómico sobre el plan completo: la
// capacidad se revalida bajo lock de cada corral antes de escribir nada, y la
// falla en un corral no deja otros a medio confirmar.
//
// Con manual=true el plan debe cubrir exactamente los animales sin corral del
// lote (sin planes parciales); con manual=false se acepta un plan parcial
// (salida del plan voraz) siempre que no exceda lo disponible.
func (uc *AllocationUseCase) Commit(ctx context.Context, lotID string, plan []feedlot.PenAssignment, manual bool) ([]entity.PenAllocation, error) {
	if len(plan) == 0 {
		return nil, domain.ErrInvalidInput
	}
	var created []entity.PenAllocation
	err := runWithConflictRetry(ctx, uc.txRunner, uc.metrics, uc.log, func(r TxRepos) error {
		created = nil
		lot, err := r.Lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		pending, err := unallocated(ctx, r, lot)
		if err != nil {
			return err
		}
		if pending <= 0 {
			return domain.ErrInvalidInput
		}

		planTotal := 0
		for _, a := range plan {
			if a.Quantity <= 0 {
				return domain.ErrInvalidInput
			}
			planTotal += a.Quantity
		}
		if manual && planTotal != pending {
			return domain.ErrInvalidAllocationSum
		}
		if !manual && planTotal > pending {
			return domain.ErrInvalidAllocationSum
		}

		// Lock de corrales en orden de número, determinista, para evitar
		// interbloqueos entre commits concurrentes.
		ordered := make([]feedlot.PenAssignment, len(plan))
		copy(ordered, plan)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].PenNumber < ordered[j].PenNumber })

		seen := make(map[string]bool, len(ordered))
		now := time.Now()
		avgWeight := lot.AverageEntryWeight()
		for _, a := range ordered {
			if seen[a.PenNumber] {
				return domain.ErrInvalidInput
			}
			seen[a.PenNumber] = true
			pen, err := r.Pens.GetForUpdate(ctx, a.PenNumber)
			if err != nil {
				return err
			}
			if !pen.AcceptsAllocations() {
				return domain.ErrCapacityExceeded
			}
			if pen.FreeSpace() < a.Quantity {
				return domain.ErrCapacityExceeded
			}
			alloc := entity.PenAllocation{
				ID:          uuid.New().String(),
				LotID:       lot.ID,
				PenNumber:   pen.Number,
				Quantity:    a.Quantity,
				EntryWeight: avgWeight.Mul(decimal.NewFromInt(int64(a.Quantity))),
				EntryDate:   now,
				Status:      entity.AllocationStatusActive,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := r.Allocations.Create(ctx, &alloc); err != nil {
				return err
			}
			pen.CurrentAnimals += a.Quantity
			pen.Status = entity.PenStatusOccupied
			if err := r.Pens.UpdateOccupancy(ctx, pen); err != nil {
				return err
			}
			if err := r.Movements.Create(ctx, &entity.LotMovement{
				ID:           uuid.New().String(),
				LotID:        lot.ID,
				Type:         entity.MovementTypeAllocation,
				Quantity:     a.Quantity,
				Reason:       "asignación a corral " + pen.Number,
				RelatedID:    alloc.ID,
				MovementDate: now,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
			created = append(created, alloc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ValidateManual valida un plan manual contra el estado actual sin confirmarlo.
func (uc *AllocationUseCase) ValidateManual(ctx context.Context, lotID string, plan []feedlot.PenAssignment) error {
	return uc.txRunner.Run(ctx, func(r TxRepos) error {
		lot, err := r.Lots.GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		pending, err := unallocated(ctx, r, lot)
		if err != nil {
			return err
		}
		pens, err := r.Pens.List(ctx)
		if err != nil {
			return err
		}
		return feedlot.ValidateManualSplit(plan, pens, pending)
	})
}

// ListPens snapshot de ocupación de corrales.
func (uc *AllocationUseCase) ListPens(ctx context.Context) ([]entity.Pen, error) {
	var pens []entity.Pen
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		pens, err = r.Pens.List(ctx)
		return err
	})
	return pens, err
}
