package entity

import "time"

// Tipos de movimiento sobre un lote (traza de auditoría).
const (
	MovementTypeSale       = "SALE"
	MovementTypeDeath      = "DEATH"
	MovementTypeAllocation = "ALLOCATION"
	MovementTypeReturn     = "RETURN" // crédito por cancelación de venta
)

// LotMovement registro de auditoría de cada mutación del ledger.
// Se escribe en la misma transacción que la mutación.
type LotMovement struct {
	ID           string
	LotID        string
	Type         string
	Quantity     int
	Reason       string
	RelatedID    string // venta, evento de costo o asignación que originó el movimiento
	MovementDate time.Time
	CreatedAt    time.Time
}
