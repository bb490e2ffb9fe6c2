package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un lote.
const (
	LotStatusActive = "ACTIVE"
	LotStatusSold   = "SOLD" // cantidad agotada; el lote se cierra, nunca se borra
)

// KgPerArroba factor de conversión: una arroba son 15 kg de peso vivo.
var KgPerArroba = decimal.NewFromInt(15)

// Lot representa una partida de animales comprada en una misma fecha.
// CurrentQuantity solo se muta a través del ledger (débito/crédito);
// invariante: 0 <= CurrentQuantity <= InitialQuantity.
type Lot struct {
	ID              string
	LotNumber       string
	PurchaseDate    time.Time
	EntryDate       time.Time
	InitialQuantity int
	CurrentQuantity int
	EntryWeight     decimal.Decimal // kg vivos totales al ingreso
	GMD             decimal.Decimal // ganancia media diaria esperada, kg/animal/día
	CarcassYield    decimal.Decimal // rendimiento de carcasa en % (ej. 54)
	Costs           LotCosts
	Status          string
	Version         int64 // concurrencia optimista; lo incrementa el repositorio
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LotCosts costos acumulados del lote por rubro.
type LotCosts struct {
	Acquisition decimal.Decimal
	Health      decimal.Decimal
	Feed        decimal.Decimal
	Operational decimal.Decimal
	Freight     decimal.Decimal
	Other       decimal.Decimal
}

// Total suma de todos los rubros.
func (c LotCosts) Total() decimal.Decimal {
	return c.Acquisition.Add(c.Health).Add(c.Feed).Add(c.Operational).Add(c.Freight).Add(c.Other)
}

// IsClosed indica si el lote ya no tiene animales disponibles.
func (l *Lot) IsClosed() bool {
	return l.CurrentQuantity == 0
}

// AverageEntryWeight peso de ingreso por animal (kg). Cero si el lote entró vacío.
func (l *Lot) AverageEntryWeight() decimal.Decimal {
	if l.InitialQuantity == 0 {
		return decimal.Zero
	}
	return l.EntryWeight.Div(decimal.NewFromInt(int64(l.InitialQuantity)))
}

// ProjectedWeight proyecta el peso vivo total de los animales restantes a la fecha dada:
// (peso promedio de ingreso + GMD * días transcurridos) * cantidad actual.
func (l *Lot) ProjectedWeight(asOf time.Time) decimal.Decimal {
	if l.CurrentQuantity == 0 {
		return decimal.Zero
	}
	days := int64(asOf.Sub(l.EntryDate).Hours() / 24)
	if days < 0 {
		days = 0
	}
	perHead := l.AverageEntryWeight().Add(l.GMD.Mul(decimal.NewFromInt(days)))
	return perHead.Mul(decimal.NewFromInt(int64(l.CurrentQuantity)))
}

// ProjectedCarcassArrobas arrobas de carcasa proyectadas a la fecha dada,
// aplicando el rendimiento de carcasa sobre el peso vivo proyectado.
func (l *Lot) ProjectedCarcassArrobas(asOf time.Time) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	carcassKg := l.ProjectedWeight(asOf).Mul(l.CarcassYield).Div(hundred)
	return carcassKg.Div(KgPerArroba)
}
