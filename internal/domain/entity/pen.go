package entity

import "time"

// Estados de un corral.
const (
	PenStatusAvailable   = "available"
	PenStatusOccupied    = "occupied"
	PenStatusMaintenance = "maintenance"
	PenStatusQuarantine  = "quarantine"
)

// Pen representa un corral físico con capacidad finita.
// CurrentAnimals es derivado (suma de sus asignaciones activas);
// invariante: CurrentAnimals <= Capacity.
type Pen struct {
	Number         string
	Capacity       int
	CurrentAnimals int
	Status         string
	UpdatedAt      time.Time
}

// FreeSpace espacio libre del corral.
func (p *Pen) FreeSpace() int {
	return p.Capacity - p.CurrentAnimals
}

// IsEmpty indica si el corral no tiene animales.
func (p *Pen) IsEmpty() bool {
	return p.CurrentAnimals == 0
}

// AcceptsAllocations indica si el corral puede recibir animales:
// capacidad positiva y no en mantenimiento ni cuarentena.
func (p *Pen) AcceptsAllocations() bool {
	if p.Capacity == 0 {
		return false
	}
	return p.Status == PenStatusAvailable || p.Status == PenStatusOccupied
}
