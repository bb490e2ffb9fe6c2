package feedlot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

// SideEffectOutcome resultado de un efecto colateral best-effort. La falla
// queda capturada acá y en el log; nunca se propaga ni revierte el ledger.
type SideEffectOutcome struct {
	Kind string // "financial" o "calendar"
	Err  error
}

// Succeeded indica si el efecto colateral se aplicó.
func (o SideEffectOutcome) Succeeded() bool { return o.Err == nil }

// TransitionResult venta resultante más el reporte de efectos colaterales.
type TransitionResult struct {
	Sale        *entity.SaleRecord
	SideEffects []SideEffectOutcome
}

// SaleUseCase ciclo de vida de las ventas: creación, máquina de transición de
// estados y efectos colaterales posteriores al commit.
type SaleUseCase struct {
	txRunner  TxRunner
	engine    *SaleDepletionEngine
	ledger    *LotLedger
	financial FinancialLedger
	calendar  CalendarService
	metrics   Metrics
	log       *logger.Logger
}

// NewSaleUseCase construye el caso de uso. financial y calendar pueden ser nil
// (integración deshabilitada); el efecto correspondiente se omite.
func NewSaleUseCase(
	txRunner TxRunner,
	engine *SaleDepletionEngine,
	ledger *LotLedger,
	financial FinancialLedger,
	calendar CalendarService,
	metrics Metrics,
	log *logger.Logger,
) *SaleUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &SaleUseCase{
		txRunner:  txRunner,
		engine:    engine,
		ledger:    ledger,
		financial: financial,
		calendar:  calendar,
		metrics:   metrics,
		log:       log,
	}
}

// CreateSaleInput entrada para registrar una venta. Un solo campo canónico por
// concepto: la cantidad y el valor neto son obligatorios y explícitos, nunca
// se infieren de campos alternativos.
type CreateSaleInput struct {
	SaleNumber     string
	SaleDate       time.Time
	Quantity       int
	TotalWeight    decimal.Decimal
	PricePerArroba decimal.Decimal
	GrossValue     decimal.Decimal
	NetValue       decimal.Decimal
	PenNumber      string // opcional: fija la venta a un corral
	BuyerID        string
	Notes          string
}

// CreateSale registra la venta en estado PENDING. No toca el ledger.
func (uc *SaleUseCase) CreateSale(ctx context.Context, in CreateSaleInput) (*entity.SaleRecord, error) {
	if in.Quantity <= 0 || in.SaleNumber == "" || in.SaleDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.NetValue.LessThan(decimal.Zero) || in.GrossValue.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	sale := &entity.SaleRecord{
		ID:             uuid.New().String(),
		SaleNumber:     in.SaleNumber,
		SaleDate:       in.SaleDate,
		Quantity:       in.Quantity,
		TotalWeight:    in.TotalWeight,
		PricePerArroba: in.PricePerArroba,
		GrossValue:     in.GrossValue,
		NetValue:       in.NetValue,
		PenNumber:      in.PenNumber,
		BuyerID:        in.BuyerID,
		Status:         entity.SaleStatusPending,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		return r.Sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSale lee una venta con su traza de débitos.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*entity.SaleRecord, error) {
	var sale *entity.SaleRecord
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		sale, err = r.Sales.GetByID(ctx, id)
		return err
	})
	return sale, err
}

// ListSales lista ventas, opcionalmente filtradas por estado.
func (uc *SaleUseCase) ListSales(ctx context.Context, status string) ([]entity.SaleRecord, error) {
	var sales []entity.SaleRecord
	err := uc.txRunner.Run(ctx, func(r TxRepos) error {
		var err error
		sales, err = r.Sales.List(ctx, status)
		return err
	})
	return sales, err
}

// Transition aplica una transición de estado de la venta. La mutación del
// ledger (si corresponde) se aplica primero; los efectos colaterales se
// intentan recién después del commit y su falla no revierte nada.
func (uc *SaleUseCase) Transition(ctx context.Context, saleID, target string) (*TransitionResult, error) {
	sale, err := uc.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(sale.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, sale.Status, target)
	}

	switch target {
	case entity.SaleStatusConfirmed:
		sale, err = uc.confirm(ctx, sale)
	case entity.SaleStatusCancelled:
		sale, err = uc.cancel(ctx, sale)
	default:
		sale, err = uc.writeStatus(ctx, sale.ID, target, nil)
	}
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Sale: sale}
	result.SideEffects = uc.fireSideEffects(ctx, sale, target)
	return result, nil
}

// confirm ejecuta la depleción FIFO y recién si completa escribe CONFIRMED y
// la traza. Ante faltante, los débitos parciales permanecen (política
// explícita): se persiste la traza parcial con la venta aún PENDING para que
// quien llama pueda compensar o aceptar la venta corta.
func (uc *SaleUseCase) confirm(ctx context.Context, sale *entity.SaleRecord) (*entity.SaleRecord, error) {
	trace, depErr := uc.engine.DepleteFIFO(ctx, sale.Quantity, sale.PenNumber, sale.ID)
	if depErr != nil {
		if len(trace) > 0 {
			if _, err := uc.writeStatus(ctx, sale.ID, sale.Status, trace); err != nil {
				uc.log.Error().Err(err).Str("sale_id", sale.ID).
					Msg("no se pudo persistir la traza parcial de la venta")
			}
		}
		return nil, depErr
	}
	updated, err := uc.writeStatus(ctx, sale.ID, entity.SaleStatusConfirmed, trace)
	if err != nil {
		// La venta cambió de estado en forma concurrente después de debitar:
		// compensación explícita de la traza completa.
		uc.compensate(ctx, sale.ID, trace)
		return nil, err
	}
	return updated, nil
}

// cancel acredita los lotes de la traza y escribe CANCELLED, todo en una
// transacción. Decisión de producto: la cancelación posterior a la depleción
// restaura las cantidades de los lotes de origen.
func (uc *SaleUseCase) cancel(ctx context.Context, sale *entity.SaleRecord) (*entity.SaleRecord, error) {
	var updated *entity.SaleRecord
	err := runWithConflictRetry(ctx, uc.txRunner, uc.metrics, uc.log, func(r TxRepos) error {
		current, err := r.Sales.GetForUpdate(ctx, sale.ID)
		if err != nil {
			return err
		}
		if !entity.CanTransition(current.Status, entity.SaleStatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, current.Status, entity.SaleStatusCancelled)
		}
		for _, e := range current.DepletionTrace {
			if _, err := uc.ledger.CreditInTx(ctx, r, e.LotID, e.Quantity, "cancelación de venta", current.ID); err != nil {
				return err
			}
		}
		current.Status = entity.SaleStatusCancelled
		if err := r.Sales.UpdateStatus(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	return updated, err
}

// writeStatus escribe estado (y traza si se pasa) revalidando bajo lock.
func (uc *SaleUseCase) writeStatus(ctx context.Context, saleID, target string, trace []entity.DepletionEntry) (*entity.SaleRecord, error) {
	var updated *entity.SaleRecord
	err := runWithConflictRetry(ctx, uc.txRunner, uc.metrics, uc.log, func(r TxRepos) error {
		current, err := r.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if current.Status != target && !entity.CanTransition(current.Status, target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, current.Status, target)
		}
		current.Status = target
		if trace != nil {
			current.DepletionTrace = trace
		}
		if err := r.Sales.UpdateStatus(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	return updated, err
}

// compensate acredita una traza completa (débitos que no pudieron quedar
// asociados a una confirmación).
func (uc *SaleUseCase) compensate(ctx context.Context, saleID string, trace []entity.DepletionEntry) {
	for _, e := range trace {
		if _, err := uc.ledger.Credit(ctx, e.LotID, e.Quantity, "compensación de confirmación fallida", saleID); err != nil {
			uc.log.Error().Err(err).Str("sale_id", saleID).Str("lot_id", e.LotID).
				Int("quantity", e.Quantity).Msg("crédito compensatorio falló; requiere intervención manual")
		}
	}
}

// fireSideEffects dispara los efectos colaterales del estado alcanzado.
// Cada llamada es best-effort: la falla se loguea, se cuenta y se devuelve en
// el reporte, pero jamás se propaga.
func (uc *SaleUseCase) fireSideEffects(ctx context.Context, sale *entity.SaleRecord, target string) []SideEffectOutcome {
	var outcomes []SideEffectOutcome

	record := func(kind string, err error) {
		if err != nil {
			uc.metrics.SideEffectFailure(kind)
			uc.log.Warn().Err(err).Str("sale_id", sale.ID).Str("kind", kind).
				Msg("efecto colateral falló; el ledger ya confirmó y no se revierte")
		}
		outcomes = append(outcomes, SideEffectOutcome{Kind: kind, Err: err})
	}

	switch target {
	case entity.SaleStatusConfirmed:
		if uc.financial != nil {
			desc := fmt.Sprintf("Venta %s confirmada", sale.SaleNumber)
			record("financial", uc.financial.RecordIncome(ctx, desc, sale.NetValue, sale.SaleDate, sale.ID))
		}
		if uc.calendar != nil {
			title := fmt.Sprintf("Embarque venta %s", sale.SaleNumber)
			record("calendar", uc.calendar.CreateEvent(ctx, title, sale.SaleDate, sale.ID))
		}
	case entity.SaleStatusDelivered:
		if uc.calendar != nil {
			title := fmt.Sprintf("Entrega venta %s", sale.SaleNumber)
			record("calendar", uc.calendar.CreateEvent(ctx, title, time.Now(), sale.ID))
		}
	case entity.SaleStatusPaid:
		if uc.financial != nil {
			desc := fmt.Sprintf("Pago recibido venta %s", sale.SaleNumber)
			record("financial", uc.financial.RecordIncome(ctx, desc, sale.NetValue, time.Now(), sale.ID))
		}
	}
	return outcomes
}
