package feedlot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/feedlot"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

// CostEventUseCase prorratea un costo incurrido a nivel de corral
// (tratamiento sanitario, pesaje, alimentación) entre los lotes que lo ocupan
// y acumula la porción de cada uno en su rubro de costo.
type CostEventUseCase struct {
	txRunner TxRunner
	metrics  Metrics
	log      *logger.Logger
}

// NewCostEventUseCase construye el caso de uso.
func NewCostEventUseCase(txRunner TxRunner, metrics Metrics, log *logger.Logger) *CostEventUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &CostEventUseCase{txRunner: txRunner, metrics: metrics, log: log}
}

// CostEventInput un evento de costo sobre un corral.
type CostEventInput struct {
	PenNumber   string
	SourceType  string // health, feed, operational, other
	TotalCost   decimal.Decimal
	Description string
}

// RegisterCostEvent calcula las porciones exactas por lote y las persiste en
// una sola transacción: o se escriben todas las entradas del evento, o ninguna.
func (uc *CostEventUseCase) RegisterCostEvent(ctx context.Context, in CostEventInput) ([]entity.CostAllocationEntry, error) {
	if in.PenNumber == "" || !entity.ValidCostType(in.SourceType) {
		return nil, domain.ErrInvalidInput
	}
	if !in.TotalCost.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	sourceEventID := uuid.New().String()
	var entries []entity.CostAllocationEntry
	err := runWithConflictRetry(ctx, uc.txRunner, uc.metrics, uc.log, func(r TxRepos) error {
		// Lock del corral: la membresía lote-corral no puede cambiar mientras
		// se calcula y escribe el prorrateo.
		if _, err := r.Pens.GetForUpdate(ctx, in.PenNumber); err != nil {
			return err
		}
		allocs, err := r.Allocations.ListActiveByPen(ctx, in.PenNumber)
		if err != nil {
			return err
		}
		heads := make([]feedlot.LotHeadcount, 0, len(allocs))
		for _, a := range allocs {
			heads = append(heads, feedlot.LotHeadcount{LotID: a.LotID, Quantity: a.Quantity})
		}
		entries, err = feedlot.Distribute(sourceEventID, in.SourceType, in.PenNumber, in.TotalCost, heads)
		if err != nil {
			return err
		}
		now := time.Now()
		for i := range entries {
			entries[i].ID = uuid.New().String()
			entries[i].CreatedAt = now
		}
		if err := r.Costs.CreateBatch(ctx, entries); err != nil {
			return err
		}
		for _, e := range entries {
			if err := r.Lots.AddCost(ctx, e.LotID, in.SourceType, e.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("pen", in.PenNumber).
		Str("source_event_id", sourceEventID).
		Str("total", in.TotalCost.String()).
		Int("lots", len(entries)).
		Msg("costo prorrateado por corral")
	return entries, nil
}

// ListByLot entradas de costo prorrateadas a un lote.
func (uc *CostEventUseCase) ListByLot(ctx context.Context, lotID string) ([]entity.CostAllocationEntry, error) {
	var entries []entity.CostAllocationEntry
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		entries, err = r.Costs.ListByLot(ctx, lotID)
		return err
	})
	return entries, err
}
