package repository

import (
	"context"

	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// PenRepository puerto de persistencia de corrales.
type PenRepository interface {
	GetByNumber(ctx context.Context, number string) (*entity.Pen, error)
	// GetForUpdate bloquea la fila del corral dentro de la tx (sección crítica por corral).
	GetForUpdate(ctx context.Context, number string) (*entity.Pen, error)
	List(ctx context.Context) ([]entity.Pen, error)
	// UpdateOccupancy escribe ocupación y estado del corral.
	UpdateOccupancy(ctx context.Context, pen *entity.Pen) error
}
