package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// LotRepository puerto de persistencia de lotes.
// Las mutaciones de cantidad pasan siempre por el ledger, que dentro de una
// transacción usa GetForUpdate para la sección crítica por lote.
type LotRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) dentro de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	// ListActive lotes con estado ACTIVE, orden estable por fecha de compra e id.
	ListActive(ctx context.Context) ([]entity.Lot, error)
	Create(ctx context.Context, lot *entity.Lot) error
	// UpdateQuantity escribe cantidad y estado comparando la versión leída;
	// si otra transacción ganó la carrera devuelve domain.ErrPersistenceConflict.
	UpdateQuantity(ctx context.Context, lot *entity.Lot) error
	// AddCost acumula un monto en el rubro de costo indicado.
	AddCost(ctx context.Context, lotID, costType string, amount decimal.Decimal) error
}
