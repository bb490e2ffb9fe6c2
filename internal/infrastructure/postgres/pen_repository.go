package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/repository"
)

var _ repository.PenRepository = (*PenRepo)(nil)

// PenRepo implementación de PenRepository sobre PostgreSQL (usable con pool o tx).
type PenRepo struct {
	q Querier
}

// NewPenRepository construye el adaptador de corrales. Pasar pool o tx (Querier).
func NewPenRepository(q Querier) *PenRepo {
	return &PenRepo{q: q}
}

// GetByNumber obtiene un corral por número.
func (r *PenRepo) GetByNumber(ctx context.Context, number string) (*entity.Pen, error) {
	query := `
		SELECT number, capacity, current_animals, status, updated_at
		FROM pens WHERE number = $1`
	var p entity.Pen
	err := r.q.QueryRow(ctx, query, number).Scan(
		&p.Number, &p.Capacity, &p.CurrentAnimals, &p.Status, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get pen: %w", err)
	}
	return &p, nil
}

// GetForUpdate obtiene el corral y bloquea la fila para update (SELECT FOR UPDATE).
func (r *PenRepo) GetForUpdate(ctx context.Context, number string) (*entity.Pen, error) {
	query := `
		SELECT number, capacity, current_animals, status, updated_at
		FROM pens WHERE number = $1
		FOR UPDATE`
	var p entity.Pen
	err := r.q.QueryRow(ctx, query, number).Scan(
		&p.Number, &p.Capacity, &p.CurrentAnimals, &p.Status, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get pen for update: %w", err)
	}
	return &p, nil
}

// List corrales ordenados por número.
func (r *PenRepo) List(ctx context.Context) ([]entity.Pen, error) {
	query := `
		SELECT number, capacity, current_animals, status, updated_at
		FROM pens ORDER BY number`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pens: %w", err)
	}
	defer rows.Close()

	var pens []entity.Pen
	for rows.Next() {
		var p entity.Pen
		if err := rows.Scan(&p.Number, &p.Capacity, &p.CurrentAnimals, &p.Status, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pen: %w", err)
		}
		pens = append(pens, p)
	}
	return pens, rows.Err()
}

// UpdateOccupancy escribe ocupación y estado del corral.
func (r *PenRepo) UpdateOccupancy(ctx context.Context, pen *entity.Pen) error {
	query := `
		UPDATE pens SET current_animals = $1, status = $2, updated_at = now()
		WHERE number = $3`
	tag, err := r.q.Exec(ctx, query, pen.CurrentAnimals, pen.Status, pen.Number)
	if err != nil {
		return fmt.Errorf("update pen occupancy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
