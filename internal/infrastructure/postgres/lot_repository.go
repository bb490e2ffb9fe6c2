package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `
	id, lot_number, purchase_date, entry_date, initial_quantity, current_quantity,
	entry_weight, gmd, carcass_yield,
	cost_acquisition, cost_health, cost_feed, cost_operational, cost_freight, cost_other,
	status, version, created_at, updated_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.LotNumber, &l.PurchaseDate, &l.EntryDate, &l.InitialQuantity, &l.CurrentQuantity,
		&l.EntryWeight, &l.GMD, &l.CarcassYield,
		&l.Costs.Acquisition, &l.Costs.Health, &l.Costs.Feed, &l.Costs.Operational, &l.Costs.Freight, &l.Costs.Other,
		&l.Status, &l.Version, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT` + lotColumns + ` FROM lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// GetForUpdate obtiene el lote y bloquea la fila para update (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT` + lotColumns + ` FROM lots WHERE id = $1 FOR UPDATE`
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return lot, nil
}

// ListActive lotes activos, orden estable por fecha de compra e id.
func (r *LotRepo) ListActive(ctx context.Context) ([]entity.Lot, error) {
	query := `SELECT` + lotColumns + ` FROM lots WHERE status = $1 ORDER BY purchase_date, id`
	rows, err := r.q.Query(ctx, query, entity.LotStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active lots: %w", err)
	}
	defer rows.Close()

	var lots []entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, *lot)
	}
	return lots, rows.Err()
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.LotNumber, lot.PurchaseDate, lot.EntryDate, lot.InitialQuantity, lot.CurrentQuantity,
		lot.EntryWeight, lot.GMD, lot.CarcassYield,
		lot.Costs.Acquisition, lot.Costs.Health, lot.Costs.Feed, lot.Costs.Operational, lot.Costs.Freight, lot.Costs.Other,
		lot.Status, lot.Version, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

// UpdateQuantity escribe cantidad y estado comparando la versión leída.
// Si ninguna fila coincide, otra transacción ganó la carrera.
func (r *LotRepo) UpdateQuantity(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE lots
		SET current_quantity = $1, status = $2, version = version + 1, updated_at = now()
		WHERE id = $3 AND version = $4`
	tag, err := r.q.Exec(ctx, query, lot.CurrentQuantity, lot.Status, lot.ID, lot.Version)
	if err != nil {
		if isSerializationFailure(err) {
			return domain.ErrPersistenceConflict
		}
		return fmt.Errorf("update lot quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPersistenceConflict
	}
	return nil
}

// AddCost acumula un monto en el rubro de costo indicado.
func (r *LotRepo) AddCost(ctx context.Context, lotID, costType string, amount decimal.Decimal) error {
	var column string
	switch costType {
	case entity.CostTypeHealth:
		column = "cost_health"
	case entity.CostTypeFeed:
		column = "cost_feed"
	case entity.CostTypeOperational:
		column = "cost_operational"
	case entity.CostTypeOther:
		column = "cost_other"
	default:
		return domain.ErrInvalidInput
	}
	// column sale del switch de arriba, nunca del caller.
	query := fmt.Sprintf(`UPDATE lots SET %s = %s + $1, updated_at = now() WHERE id = $2`, column, column)
	tag, err := r.q.Exec(ctx, query, amount, lotID)
	if err != nil {
		return fmt.Errorf("add lot cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
