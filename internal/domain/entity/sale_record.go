package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. PAID y CANCELLED son terminales.
const (
	SaleStatusPending   = "PENDING"
	SaleStatusConfirmed = "CONFIRMED"
	SaleStatusDelivered = "DELIVERED"
	SaleStatusPaid      = "PAID"
	SaleStatusCancelled = "CANCELLED"
)

// saleTransitions transiciones permitidas del ciclo de vida de una venta.
var saleTransitions = map[string][]string{
	SaleStatusPending:   {SaleStatusConfirmed, SaleStatusCancelled},
	SaleStatusConfirmed: {SaleStatusDelivered, SaleStatusCancelled},
	SaleStatusDelivered: {SaleStatusPaid, SaleStatusCancelled},
	SaleStatusPaid:      {},
	SaleStatusCancelled: {},
}

// CanTransition indica si el cambio de estado from -> to está permitido.
func CanTransition(from, to string) bool {
	for _, allowed := range saleTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// DepletionEntry un débito (lote, cantidad) dentro de la traza de una venta.
type DepletionEntry struct {
	LotID    string
	Quantity int
}

// SaleRecord una transacción de venta. La traza de débitos (DepletionTrace)
// es inmutable una vez confirmada; la cancelación acredita los lotes de la
// traza pero nunca la modifica.
type SaleRecord struct {
	ID             string
	SaleNumber     string
	SaleDate       time.Time
	Quantity       int
	TotalWeight    decimal.Decimal
	PricePerArroba decimal.Decimal
	GrossValue     decimal.Decimal
	NetValue       decimal.Decimal
	PenNumber      string // opcional: venta fijada a un corral
	BuyerID        string
	Status         string
	DepletionTrace []DepletionEntry
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsTerminal indica si la venta está en un estado final.
func (s *SaleRecord) IsTerminal() bool {
	return s.Status == SaleStatusPaid || s.Status == SaleStatusCancelled
}
