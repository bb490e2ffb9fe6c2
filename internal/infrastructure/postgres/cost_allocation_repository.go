package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/repository"
)

var _ repository.CostAllocationRepository = (*CostAllocationRepo)(nil)

// CostAllocationRepo implementación sobre PostgreSQL (usable con pool o tx).
type CostAllocationRepo struct {
	q Querier
}

// NewCostAllocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCostAllocationRepository(q Querier) *CostAllocationRepo {
	return &CostAllocationRepo{q: q}
}

const costColumns = `
	id, source_event_id, source_type, lot_id, pen_number, amount, created_at`

// CreateBatch inserta todas las entradas de un evento de costo. El caller lo
// ejecuta dentro de la transacción del evento.
func (r *CostAllocationRepo) CreateBatch(ctx context.Context, entries []entity.CostAllocationEntry) error {
	query := `
		INSERT INTO cost_allocations (` + costColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, e := range entries {
		_, err := r.q.Exec(ctx, query,
			e.ID, e.SourceEventID, e.SourceType, e.LotID, e.PenNumber, e.Amount, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("create cost allocation: %w", err)
		}
	}
	return nil
}

func (r *CostAllocationRepo) list(ctx context.Context, where string, arg any) ([]entity.CostAllocationEntry, error) {
	query := `SELECT` + costColumns + ` FROM cost_allocations WHERE ` + where + ` ORDER BY created_at, lot_id`
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list cost allocations: %w", err)
	}
	defer rows.Close()
	return scanCostEntries(rows)
}

func scanCostEntries(rows pgx.Rows) ([]entity.CostAllocationEntry, error) {
	var entries []entity.CostAllocationEntry
	for rows.Next() {
		var e entity.CostAllocationEntry
		err := rows.Scan(&e.ID, &e.SourceEventID, &e.SourceType, &e.LotID, &e.PenNumber, &e.Amount, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan cost allocation: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListBySourceEvent entradas de un mismo evento de costo.
func (r *CostAllocationRepo) ListBySourceEvent(ctx context.Context, sourceEventID string) ([]entity.CostAllocationEntry, error) {
	return r.list(ctx, "source_event_id = $1", sourceEventID)
}

// ListByLot entradas prorrateadas a un lote.
func (r *CostAllocationRepo) ListByLot(ctx context.Context, lotID string) ([]entity.CostAllocationEntry, error) {
	return r.list(ctx, "lot_id = $1", lotID)
}
