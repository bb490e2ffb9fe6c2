package feedlot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

// maxConflictRetries reintentos ante ErrPersistenceConflict: la operación es
// pura dada su entrada, así que se relee, recalcula y reintenta acotadamente.
const maxConflictRetries = 3

// LotLedger dueño de la cantidad restante de cada lote. Débitos y créditos
// con garantía de conservación: 0 <= cantidad <= cantidad inicial. No sabe
// de corrales, ventas ni dinero.
type LotLedger struct {
	txRunner TxRunner
	metrics  Metrics
	log      *logger.Logger
}

// NewLotLedger construye el ledger.
func NewLotLedger(txRunner TxRunner, metrics Metrics, log *logger.Logger) *LotLedger {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &LotLedger{txRunner: txRunner, metrics: metrics, log: log}
}

// runWithRetry ejecuta fn reintentando solo ante conflicto de escritura concurrente.
func (l *LotLedger) runWithRetry(ctx context.Context, fn func(r TxRepos) error) error {
	return runWithConflictRetry(ctx, l.txRunner, l.metrics, l.log, fn)
}

// Debit descuenta quantity del lote en su propia transacción.
// Falla con ErrInsufficientStock si quantity supera la cantidad actual.
func (l *LotLedger) Debit(ctx context.Context, lotID string, quantity int, movementType, reason, relatedID string) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}
	var newQty int
	err := l.runWithRetry(ctx, func(r TxRepos) error {
		var err error
		newQty, err = l.DebitInTx(ctx, r, lotID, quantity, movementType, reason, relatedID)
		return err
	})
	return newQty, err
}

// DebitInTx descuenta quantity usando los repositorios de la transacción del
// caller. Bloquea la fila del lote (SELECT FOR UPDATE): ningún débito o
// lectura concurrente puede intercalarse y producir sobreasignación.
func (l *LotLedger) DebitInTx(ctx context.Context, r TxRepos, lotID string, quantity int, movementType, reason, relatedID string) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}
	lot, err := r.Lots.GetForUpdate(ctx, lotID)
	if err != nil {
		return 0, err
	}
	if quantity > lot.CurrentQuantity {
		return 0, domain.ErrInsufficientStock
	}
	lot.CurrentQuantity -= quantity
	if lot.CurrentQuantity == 0 {
		// El lote se cierra, nunca se borra.
		lot.Status = entity.LotStatusSold
	}
	if err := r.Lots.UpdateQuantity(ctx, lot); err != nil {
		return 0, err
	}
	if err := l.writeMovement(ctx, r, lotID, movementType, quantity, reason, relatedID); err != nil {
		return 0, err
	}
	l.metrics.LedgerOp("debit")
	return lot.CurrentQuantity, nil
}

// DebitUpToInTx descuenta min(disponible, max) de forma atómica y devuelve lo
// tomado. Es la primitiva del motor de ventas FIFO: calcula el take dentro de
// la sección crítica para que la disponibilidad leída no pueda quedar vieja.
func (l *LotLedger) DebitUpToInTx(ctx context.Context, r TxRepos, lotID string, max int, movementType, reason, relatedID string) (int, error) {
	if max <= 0 {
		return 0, domain.ErrInvalidInput
	}
	lot, err := r.Lots.GetForUpdate(ctx, lotID)
	if err != nil {
		return 0, err
	}
	take := lot.CurrentQuantity
	if max < take {
		take = max
	}
	if take == 0 {
		return 0, nil
	}
	lot.CurrentQuantity -= take
	if lot.CurrentQuantity == 0 {
		lot.Status = entity.LotStatusSold
	}
	if err := r.Lots.UpdateQuantity(ctx, lot); err != nil {
		return 0, err
	}
	if err := l.writeMovement(ctx, r, lotID, movementType, take, reason, relatedID); err != nil {
		return 0, err
	}
	l.metrics.LedgerOp("debit")
	return take, nil
}

// Credit devuelve quantity al lote (cancelaciones y retornos) en su propia
// transacción. Falla con ErrQuantityOverflow si superaría la cantidad inicial.
func (l *LotLedger) Credit(ctx context.Context, lotID string, quantity int, reason, relatedID string) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}
	var newQty int
	err := l.runWithRetry(ctx, func(r TxRepos) error {
		var err error
		newQty, err = l.CreditInTx(ctx, r, lotID, quantity, reason, relatedID)
		return err
	})
	return newQty, err
}

// CreditInTx como Credit pero dentro de la transacción del caller.
func (l *LotLedger) CreditInTx(ctx context.Context, r TxRepos, lotID string, quantity int, reason, relatedID string) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}
	lot, err := r.Lots.GetForUpdate(ctx, lotID)
	if err != nil {
		return 0, err
	}
	if lot.CurrentQuantity+quantity > lot.InitialQuantity {
		return 0, domain.ErrQuantityOverflow
	}
	lot.CurrentQuantity += quantity
	if lot.Status == entity.LotStatusSold && lot.CurrentQuantity > 0 {
		lot.Status = entity.LotStatusActive
	}
	if err := r.Lots.UpdateQuantity(ctx, lot); err != nil {
		return 0, err
	}
	if err := l.writeMovement(ctx, r, lotID, entity.MovementTypeReturn, quantity, reason, relatedID); err != nil {
		return 0, err
	}
	l.metrics.LedgerOp("credit")
	return lot.CurrentQuantity, nil
}

// AvailableQuantity lectura pura de la cantidad disponible del lote.
func (l *LotLedger) AvailableQuantity(ctx context.Context, lotID string) (int, error) {
	var qty int
	err := l.txRunner.Run(ctx, func(r TxRepos) error {
		lot, err := r.Lots.GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		qty = lot.CurrentQuantity
		return nil
	})
	return qty, err
}

func (l *LotLedger) writeMovement(ctx context.Context, r TxRepos, lotID, movementType string, quantity int, reason, relatedID string) error {
	now := time.Now()
	return r.Movements.Create(ctx, &entity.LotMovement{
		ID:           uuid.New().String(),
		LotID:        lotID,
		Type:         movementType,
		Quantity:     quantity,
		Reason:       reason,
		RelatedID:    relatedID,
		MovementDate: now,
		CreatedAt:    now,
	})
}
