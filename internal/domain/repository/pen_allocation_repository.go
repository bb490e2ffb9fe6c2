package repository

import (
	"context"

	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// PenAllocationRepository puerto de persistencia de asignaciones lote-corral.
type PenAllocationRepository interface {
	Create(ctx context.Context, alloc *entity.PenAllocation) error
	// ListActiveByPen asignaciones activas de un corral (membresía para prorrateo).
	ListActiveByPen(ctx context.Context, penNumber string) ([]entity.PenAllocation, error)
	// ListActiveByLot asignaciones activas de un lote.
	ListActiveByLot(ctx context.Context, lotID string) ([]entity.PenAllocation, error)
	// ReduceQuantity descuenta animales de la asignación; al llegar a cero la cierra.
	ReduceQuantity(ctx context.Context, allocationID string, quantity int) error
}
