package feedlot

import (
	"context"
	"sort"

	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/feedlot"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

// SaleDepletionEngine consume lotes en orden FIFO por fecha de compra para
// satisfacer la cantidad de una venta.
//
// Política de falla parcial, explícita y documentada: cada débito confirma en
// su propia transacción. Si los lotes se agotan antes de completar la cantidad,
// la operación falla con ErrInsufficientStock pero los débitos ya aplicados NO
// se revierten automáticamente; la traza parcial se devuelve y quien llama
// decide entre aceptar la venta corta o emitir créditos compensatorios.
type SaleDepletionEngine struct {
	txRunner TxRunner
	ledger   *LotLedger
	metrics  Metrics
	log      *logger.Logger
}

// NewSaleDepletionEngine construye el motor.
func NewSaleDepletionEngine(txRunner TxRunner, ledger *LotLedger, metrics Metrics, log *logger.Logger) *SaleDepletionEngine {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &SaleDepletionEngine{txRunner: txRunner, ledger: ledger, metrics: metrics, log: log}
}

// DepleteFIFO debita hasta requested animales de los lotes elegibles, del más
// antiguo al más nuevo (empates por LotID más bajo). Si penNumber no es vacío,
// la venta está fijada a ese corral y solo son elegibles los lotes con una
// asignación activa ahí; la misma regla FIFO aplica dentro del subconjunto.
func (e *SaleDepletionEngine) DepleteFIFO(ctx context.Context, requested int, penNumber, saleID string) ([]entity.DepletionEntry, error) {
	if requested <= 0 {
		return nil, domain.ErrInvalidInput
	}

	lots, err := e.eligibleLots(ctx, penNumber)
	if err != nil {
		return nil, err
	}
	ordered := feedlot.OrderFIFO(lots)

	trace := make([]entity.DepletionEntry, 0, len(ordered))
	remaining := requested
	for _, lot := range ordered {
		if remaining == 0 {
			break
		}
		lotID := lot.ID
		var taken int
		err := runWithConflictRetry(ctx, e.txRunner, e.metrics, e.log, func(r TxRepos) error {
			taken = 0
			// El take se decide dentro de la sección crítica del lote: la
			// disponibilidad leída para ordenar puede haber cambiado.
			limit := remaining
			if penNumber != "" {
				// Con venta fijada, el stock disponible del lote es lo
				// asignado en ese corral: los animales del lote en otros
				// corrales no se tocan aunque el lote tenga cabezas de sobra.
				allocated, err := e.allocatedInPen(ctx, r, lotID, penNumber)
				if err != nil {
					return err
				}
				if allocated < limit {
					limit = allocated
				}
				if limit == 0 {
					return nil
				}
			}
			var err error
			taken, err = e.ledger.DebitUpToInTx(ctx, r, lotID, limit, entity.MovementTypeSale, "venta", saleID)
			if err != nil {
				return err
			}
			if taken == 0 {
				return nil
			}
			return e.vacateAllocations(ctx, r, lotID, penNumber, taken)
		})
		if err != nil {
			// El débito de este lote no confirmó; los anteriores permanecen.
			return trace, err
		}
		if taken == 0 {
			continue
		}
		trace = append(trace, entity.DepletionEntry{LotID: lotID, Quantity: taken})
		remaining -= taken
	}

	if remaining > 0 {
		e.log.Warn().
			Str("sale_id", saleID).
			Int("requested", requested).
			Int("missing", remaining).
			Msg("lotes agotados antes de completar la venta; la traza parcial permanece aplicada")
		return trace, domain.ErrInsufficientStock
	}
	return trace, nil
}

// eligibleLots lee el snapshot de lotes elegibles: todos los activos, o los
// presentes en el corral fijado.
func (e *SaleDepletionEngine) eligibleLots(ctx context.Context, penNumber string) ([]entity.Lot, error) {
	var lots []entity.Lot
	err := e.txRunner.Run(ctx, func(r TxRepos) error {
		if penNumber == "" {
			var err error
			lots, err = r.Lots.ListActive(ctx)
			return err
		}
		allocs, err := r.Allocations.ListActiveByPen(ctx, penNumber)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(allocs))
		for _, a := range allocs {
			if seen[a.LotID] {
				continue
			}
			seen[a.LotID] = true
			lot, err := r.Lots.GetByID(ctx, a.LotID)
			if err != nil {
				return err
			}
			lots = append(lots, *lot)
		}
		return nil
	})
	return lots, err
}

// allocatedInPen suma la asignación activa del lote en el corral fijado,
// dentro de la misma transacción que decidirá el débito.
func (e *SaleDepletionEngine) allocatedInPen(ctx context.Context, r TxRepos, lotID, penNumber string) (int, error) {
	allocs, err := r.Allocations.ListActiveByLot(ctx, lotID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, a := range allocs {
		if a.PenNumber == penNumber {
			total += a.Quantity
		}
	}
	return total, nil
}

// vacateAllocations descuenta los animales vendidos de las asignaciones del
// lote y de la ocupación de sus corrales, dentro de la misma transacción que
// el débito. Con venta fijada se desocupa solo ese corral; si no, se desocupa
// de las asignaciones más antiguas primero.
func (e *SaleDepletionEngine) vacateAllocations(ctx context.Context, r TxRepos, lotID, penNumber string, taken int) error {
	allocs, err := r.Allocations.ListActiveByLot(ctx, lotID)
	if err != nil {
		return err
	}
	if penNumber != "" {
		filtered := allocs[:0]
		for _, a := range allocs {
			if a.PenNumber == penNumber {
				filtered = append(filtered, a)
			}
		}
		allocs = filtered
	}
	sort.Slice(allocs, func(i, j int) bool {
		if !allocs[i].EntryDate.Equal(allocs[j].EntryDate) {
			return allocs[i].EntryDate.Before(allocs[j].EntryDate)
		}
		return allocs[i].PenNumber < allocs[j].PenNumber
	})

	remaining := taken
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
	// remaining > 0 significa que se vendieron animales aún no asignados a
	// ningún corral; no hay ocupación que descontar.
	return nil
}
