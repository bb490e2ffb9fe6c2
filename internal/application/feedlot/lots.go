package feedlot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

// LotUseCase alta y consulta de lotes, y registro de mortalidad.
type LotUseCase struct {
	txRunner TxRunner
	ledger   *LotLedger
	metrics  Metrics
	log      *logger.Logger
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(txRunner TxRunner, ledger *LotLedger, metrics Metrics, log *logger.Logger) *LotUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &LotUseCase{txRunner: txRunner, ledger: ledger, metrics: metrics, log: log}
}

// CreateLotInput entrada para el alta de un lote al confirmar la compra.
// Campos canónicos y obligatorios: la cantidad y el peso se validan acá, no
// se infieren de campos alternativos ni se aceptan por defecto.
type CreateLotInput struct {
	LotNumber       string
	PurchaseDate    time.Time
	EntryDate       time.Time
	Quantity        int
	EntryWeight     decimal.Decimal
	GMD             decimal.Decimal
	CarcassYield    decimal.Decimal
	AcquisitionCost decimal.Decimal
	FreightCost     decimal.Decimal
}

// CreateLot registra el lote en el ledger con su cantidad inicial.
func (uc *LotUseCase) CreateLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	if in.LotNumber == "" || in.Quantity <= 0 || in.PurchaseDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.EntryWeight.LessThanOrEqual(decimal.Zero) || in.GMD.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.CarcassYield.LessThan(decimal.Zero) || in.CarcassYield.GreaterThan(decimal.NewFromInt(100)) {
		return nil, domain.ErrInvalidInput
	}
	entryDate := in.EntryDate
	if entryDate.IsZero() {
		entryDate = in.PurchaseDate
	}
	now := time.Now()
	lot := &entity.Lot{
		ID:              uuid.New().String(),
		LotNumber:       in.LotNumber,
		PurchaseDate:    in.PurchaseDate,
		EntryDate:       entryDate,
		InitialQuantity: in.Quantity,
		CurrentQuantity: in.Quantity,
		EntryWeight:     in.EntryWeight,
		GMD:             in.GMD,
		CarcassYield:    in.CarcassYield,
		Costs: entity.LotCosts{
			Acquisition: in.AcquisitionCost,
			Freight:     in.FreightCost,
		},
		Status:    entity.LotStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		return r.Lots.Create(ctx, lot)
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// GetLot lee un lote.
func (uc *LotUseCase) GetLot(ctx context.Context, id string) (*entity.Lot, error) {
	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		lot, err = r.Lots.GetByID(ctx, id)
		return err
	})
	return lot, err
}

// ListActiveLots lotes activos ordenados por fecha de compra.
func (uc *LotUseCase) ListActiveLots(ctx context.Context) ([]entity.Lot, error) {
	var lots []entity.Lot
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		lots, err = r.Lots.ListActive(ctx)
		return err
	})
	return lots, err
}

// RegisterMortality debita muertes del lote con movimiento DEATH y desocupa
// los corrales correspondientes, en una sola transacción. Sin efecto
// financiero: la mortalidad es pérdida no-caja.
func (uc *LotUseCase) RegisterMortality(ctx context.Context, lotID string, quantity int, cause string) (int, error) {
	if quantity <= 0 || cause == "" {
		return 0, domain.ErrInvalidInput
	}
	var newQty int
	err := runWithConflictRetry(ctx, uc.txRunner, uc.metrics, uc.log, func(r TxRepos) error {
		var err error
		newQty, err = uc.ledger.DebitInTx(ctx, r, lotID, quantity, entity.MovementTypeDeath, cause, "")
		if err != nil {
			return err
		}
		return uc.vacateAfterDeath(ctx, r, lotID, quantity)
	})
	if err != nil {
		return 0, err
	}
	uc.log.Info().Str("lot_id", lotID).Int("deaths", quantity).Str("cause", cause).
		Msg("mortalidad registrada")
	return newQty, nil
}

// vacateAfterDeath descuenta los animales muertos de las asignaciones activas
// del lote, de la más antigua a la más nueva.
func (uc *LotUseCase) vacateAfterDeath(ctx context.Context, r TxRepos, lotID string, quantity int) error {
	allocs, err := r.Allocations.ListActiveByLot(ctx, lotID)
	if err != nil {
		return err
	}
	remaining := quantity
	for _, a := range allocs {
		if remaining == 0 {
			break
		}
		reduce := a.Quantity
		if remaining < reduce {
			reduce = remaining
		}
		pen, err := r.Pens.GetForUpdate(ctx, a.PenNumber)
		if err != nil {
			return err
		}
		if err := r.Allocations.ReduceQuantity(ctx, a.ID, reduce); err != nil {
			return err
		}
		pen.CurrentAnimals -= reduce
		if pen.CurrentAnimals <= 0 {
			pen.CurrentAnimals = 0
			pen.Status = entity.PenStatusAvailable
		}
		if err := r.Pens.UpdateOccupancy(ctx, pen); err != nil {
			return err
		}
		remaining -= reduce
	}
	return nil
}

// Movements traza de auditoría de un lote.
func (uc *LotUseCase) Movements(ctx context.Context, lotID string) ([]entity.LotMovement, error) {
	var movs []entity.LotMovement
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		movs, err = r.Movements.ListByLot(ctx, lotID)
		return err
	})
	return movs, err
}
