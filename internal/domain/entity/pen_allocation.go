package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una asignación lote-corral.
const (
	AllocationStatusActive = "ACTIVE"
	AllocationStatusClosed = "CLOSED" // el lote desocupó el corral
)

// PenAllocation vincula una cantidad de un lote con un corral físico.
// Invariante: para un lote fijo, la suma de las cantidades activas
// no supera lot.CurrentQuantity.
type PenAllocation struct {
	ID          string
	LotID       string
	PenNumber   string
	Quantity    int
	EntryWeight decimal.Decimal // porción proporcional del peso del lote
	EntryDate   time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
