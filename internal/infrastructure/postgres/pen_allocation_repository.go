package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/repository"
)

var _ repository.PenAllocationRepository = (*PenAllocationRepo)(nil)

// PenAllocationRepo implementación sobre PostgreSQL (usable con pool o tx).
type PenAllocationRepo struct {
	q Querier
}

// NewPenAllocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPenAllocationRepository(q Querier) *PenAllocationRepo {
	return &PenAllocationRepo{q: q}
}

const allocationColumns = `
	id, lot_id, pen_number, quantity, entry_weight, entry_date, status, created_at, updated_at`

// Create persiste una asignación lote-corral.
func (r *PenAllocationRepo) Create(ctx context.Context, alloc *entity.PenAllocation) error {
	query := `
		INSERT INTO pen_allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		alloc.ID, alloc.LotID, alloc.PenNumber, alloc.Quantity,
		alloc.EntryWeight, alloc.EntryDate, alloc.Status, alloc.CreatedAt, alloc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create pen allocation: %w", err)
	}
	return nil
}

func (r *PenAllocationRepo) listActive(ctx context.Context, where string, arg any) ([]entity.PenAllocation, error) {
	query := `SELECT` + allocationColumns + ` FROM pen_allocations WHERE ` + where +
		` AND status = $2 ORDER BY entry_date, id`
	rows, err := r.q.Query(ctx, query, arg, entity.AllocationStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list pen allocations: %w", err)
	}
	defer rows.Close()
	return scanAllocations(rows)
}

func scanAllocations(rows pgx.Rows) ([]entity.PenAllocation, error) {
	var allocs []entity.PenAllocation
	for rows.Next() {
		var a entity.PenAllocation
		err := rows.Scan(
			&a.ID, &a.LotID, &a.PenNumber, &a.Quantity,
			&a.EntryWeight, &a.EntryDate, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pen allocation: %w", err)
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// ListActiveByPen asignaciones activas de un corral (membresía para prorrateo).
func (r *PenAllocationRepo) ListActiveByPen(ctx context.Context, penNumber string) ([]entity.PenAllocation, error) {
	return r.listActive(ctx, "pen_number = $1", penNumber)
}

// ListActiveByLot asignaciones activas de un lote.
func (r *PenAllocationRepo) ListActiveByLot(ctx context.Context, lotID string) ([]entity.PenAllocation, error) {
	return r.listActive(ctx, "lot_id = $1", lotID)
}

// ReduceQuantity descuenta animales de la asignación; al llegar a cero la cierra.
func (r *PenAllocationRepo) ReduceQuantity(ctx context.Context, allocationID string, quantity int) error {
	query := `
		UPDATE pen_allocations
		SET quantity = quantity - $1,
		    status = CASE WHEN quantity - $1 = 0 THEN $2 ELSE status END,
		    updated_at = now()
		WHERE id = $3 AND quantity >= $1`
	tag, err := r.q.Exec(ctx, query, quantity, entity.AllocationStatusClosed, allocationID)
	if err != nil {
		return fmt.Errorf("reduce pen allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidInput
	}
	return nil
}
