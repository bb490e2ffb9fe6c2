package repository

import (
	"context"

	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// SaleRecordRepository puerto de persistencia de ventas.
type SaleRecordRepository interface {
	GetByID(ctx context.Context, id string) (*entity.SaleRecord, error)
	// GetForUpdate bloquea la fila de la venta durante la transición de estado.
	GetForUpdate(ctx context.Context, id string) (*entity.SaleRecord, error)
	List(ctx context.Context, status string) ([]entity.SaleRecord, error)
	Create(ctx context.Context, sale *entity.SaleRecord) error
	// UpdateStatus escribe el nuevo estado y, en la confirmación, la traza de débitos.
	UpdateStatus(ctx context.Context, sale *entity.SaleRecord) error
}
