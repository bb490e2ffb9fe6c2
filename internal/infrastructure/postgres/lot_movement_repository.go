package postgres

import (
	"context"
	"fmt"

	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/repository"
)

var _ repository.LotMovementRepository = (*LotMovementRepo)(nil)

// LotMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type LotMovementRepo struct {
	q Querier
}

// NewLotMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotMovementRepository(q Querier) *LotMovementRepo {
	return &LotMovementRepo{q: q}
}

// Create persiste un movimiento de auditoría del lote.
func (r *LotMovementRepo) Create(ctx context.Context, mov *entity.LotMovement) error {
	query := `
		INSERT INTO lot_movements (id, lot_id, type, quantity, reason, related_id, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		mov.ID, mov.LotID, mov.Type, mov.Quantity, mov.Reason,
		nullIfEmpty(mov.RelatedID), mov.MovementDate, mov.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lot movement: %w", err)
	}
	return nil
}

// ListByLot movimientos de un lote en orden cronológico.
func (r *LotMovementRepo) ListByLot(ctx context.Context, lotID string) ([]entity.LotMovement, error) {
	query := `
		SELECT id, lot_id, type, quantity, reason, related_id, movement_date, created_at
		FROM lot_movements WHERE lot_id = $1
		ORDER BY movement_date, created_at`
	rows, err := r.q.Query(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("list lot movements: %w", err)
	}
	defer rows.Close()

	var movs []entity.LotMovement
	for rows.Next() {
		var m entity.LotMovement
		var relatedID *string
		err := rows.Scan(&m.ID, &m.LotID, &m.Type, &m.Quantity, &m.Reason, &relatedID, &m.MovementDate, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan lot movement: %w", err)
		}
		if relatedID != nil {
			m.RelatedID = *relatedID
		}
		movs = append(movs, m)
	}
	return movs, rows.Err()
}
