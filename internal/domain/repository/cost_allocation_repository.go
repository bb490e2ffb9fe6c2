package repository

import (
	"context"

	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// CostAllocationRepository puerto de persistencia de prorrateos de costos.
type CostAllocationRepository interface {
	// CreateBatch inserta todas las entradas de un evento de costo; el caller
	// garantiza la atomicidad ejecutándolo dentro de la transacción.
	CreateBatch(ctx context.Context, entries []entity.CostAllocationEntry) error
	ListBySourceEvent(ctx context.Context, sourceEventID string) ([]entity.CostAllocationEntry, error)
	ListByLot(ctx context.Context, lotID string) ([]entity.CostAllocationEntry, error)
}
