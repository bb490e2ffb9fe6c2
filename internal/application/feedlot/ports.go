package feedlot

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Lots        repository.LotRepository
	Pens        repository.PenRepository
	Allocations repository.PenAllocationRepository
	Sales       repository.SaleRecordRepository
	Costs       repository.CostAllocationRepository
	Movements   repository.LotMovementRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el ledger: o se
// aplica todo lo hecho dentro de fn, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}

// FinancialLedger puerto del servicio financiero externo. Best-effort:
// se invoca después del commit del ledger y su falla nunca lo revierte.
type FinancialLedger interface {
	RecordIncome(ctx context.Context, description string, amount decimal.Decimal, date time.Time, relatedID string) error
}

// CalendarService puerto del servicio de calendario/notificaciones. Best-effort.
type CalendarService interface {
	CreateEvent(ctx context.Context, title string, date time.Time, relatedID string) error
}

// Metrics contadores de operación (implementación prometheus en infraestructura).
type Metrics interface {
	LedgerOp(op string)
	SideEffectFailure(kind string)
	ConflictRetry()
}

// NopMetrics implementación vacía para tests y wiring opcional.
type NopMetrics struct{}

func (NopMetrics) LedgerOp(string)          {}
func (NopMetrics) SideEffectFailure(string) {}
func (NopMetrics) ConflictRetry()           {}
