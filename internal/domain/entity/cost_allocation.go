package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de costo que se prorratean por corral.
const (
	CostTypeHealth      = "health"
	CostTypeFeed        = "feed"
	CostTypeOperational = "operational"
	CostTypeOther       = "other"
)

// ValidCostType indica si el tipo de costo es conocido.
func ValidCostType(t string) bool {
	switch t {
	case CostTypeHealth, CostTypeFeed, CostTypeOperational, CostTypeOther:
		return true
	}
	return false
}

// CostAllocationEntry la porción de un evento de costo asignada a un lote.
// Invariante: la suma de Amount sobre las entradas de un mismo SourceEventID
// es exactamente igual al total del evento.
type CostAllocationEntry struct {
	ID            string
	SourceEventID string
	SourceType    string
	LotID         string
	PenNumber     string
	Amount        decimal.Decimal
	CreatedAt     time.Time
}
