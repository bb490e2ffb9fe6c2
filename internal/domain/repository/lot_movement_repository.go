package repository

import (
	"context"

	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// LotMovementRepository puerto de la traza de auditoría de movimientos.
type LotMovementRepository interface {
	Create(ctx context.Context, mov *entity.LotMovement) error
	ListByLot(ctx context.Context, lotID string) ([]entity.LotMovement, error)
}
