package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/repository"
)

var _ repository.SaleRecordRepository = (*SaleRecordRepo)(nil)

// SaleRecordRepo implementación sobre PostgreSQL (usable con pool o tx).
// La traza de débitos se guarda como JSONB junto a la venta: se escribe una
// vez en la confirmación y a partir de ahí solo se lee.
type SaleRecordRepo struct {
	q Querier
}

// NewSaleRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRecordRepository(q Querier) *SaleRecordRepo {
	return &SaleRecordRepo{q: q}
}

const saleColumns = `
	id, sale_number, sale_date, quantity, total_weight, price_per_arroba,
	gross_value, net_value, pen_number, buyer_id, status, depletion_trace,
	notes, created_at, updated_at`

type traceEntry struct {
	LotID    string `json:"lot_id"`
	Quantity int    `json:"quantity"`
}

func marshalTrace(trace []entity.DepletionEntry) ([]byte, error) {
	if len(trace) == 0 {
		return []byte("[]"), nil
	}
	out := make([]traceEntry, len(trace))
	for i, e := range trace {
		out[i] = traceEntry{LotID: e.LotID, Quantity: e.Quantity}
	}
	return json.Marshal(out)
}

func unmarshalTrace(raw []byte) ([]entity.DepletionEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var in []traceEntry
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, nil
	}
	trace := make([]entity.DepletionEntry, len(in))
	for i, e := range in {
		trace[i] = entity.DepletionEntry{LotID: e.LotID, Quantity: e.Quantity}
	}
	return trace, nil
}

func scanSale(row pgx.Row) (*entity.SaleRecord, error) {
	var s entity.SaleRecord
	var penNumber, buyerID, notes *string
	var rawTrace []byte
	err := row.Scan(
		&s.ID, &s.SaleNumber, &s.SaleDate, &s.Quantity, &s.TotalWeight, &s.PricePerArroba,
		&s.GrossValue, &s.NetValue, &penNumber, &buyerID, &s.Status, &rawTrace,
		&notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if penNumber != nil {
		s.PenNumber = *penNumber
	}
	if buyerID != nil {
		s.BuyerID = *buyerID
	}
	if notes != nil {
		s.Notes = *notes
	}
	s.DepletionTrace, err = unmarshalTrace(rawTrace)
	if err != nil {
		return nil, fmt.Errorf("unmarshal depletion trace: %w", err)
	}
	return &s, nil
}

// GetByID obtiene una venta con su traza.
func (r *SaleRecordRepo) GetByID(ctx context.Context, id string) (*entity.SaleRecord, error) {
	query := `SELECT` + saleColumns + ` FROM sale_records WHERE id = $1`
	sale, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale record: %w", err)
	}
	return sale, nil
}

// GetForUpdate obtiene la venta y bloquea la fila durante la transición de estado.
func (r *SaleRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.SaleRecord, error) {
	query := `SELECT` + saleColumns + ` FROM sale_records WHERE id = $1 FOR UPDATE`
	sale, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale record for update: %w", err)
	}
	return sale, nil
}

// List ventas, opcionalmente filtradas por estado, más recientes primero.
func (r *SaleRecordRepo) List(ctx context.Context, status string) ([]entity.SaleRecord, error) {
	query := `SELECT` + saleColumns + ` FROM sale_records`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY sale_date DESC, id`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sale records: %w", err)
	}
	defer rows.Close()

	var sales []entity.SaleRecord
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale record: %w", err)
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

// Create persiste una venta nueva.
func (r *SaleRecordRepo) Create(ctx context.Context, sale *entity.SaleRecord) error {
	rawTrace, err := marshalTrace(sale.DepletionTrace)
	if err != nil {
		return fmt.Errorf("marshal depletion trace: %w", err)
	}
	query := `
		INSERT INTO sale_records (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = r.q.Exec(ctx, query,
		sale.ID, sale.SaleNumber, sale.SaleDate, sale.Quantity, sale.TotalWeight, sale.PricePerArroba,
		sale.GrossValue, sale.NetValue, nullIfEmpty(sale.PenNumber), nullIfEmpty(sale.BuyerID),
		sale.Status, rawTrace, nullIfEmpty(sale.Notes), sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create sale record: %w", err)
	}
	return nil
}

// UpdateStatus escribe el nuevo estado y la traza de débitos.
func (r *SaleRecordRepo) UpdateStatus(ctx context.Context, sale *entity.SaleRecord) error {
	rawTrace, err := marshalTrace(sale.DepletionTrace)
	if err != nil {
		return fmt.Errorf("marshal depletion trace: %w", err)
	}
	query := `
		UPDATE sale_records
		SET status = $1, depletion_trace = $2, updated_at = now()
		WHERE id = $3`
	tag, err := r.q.Exec(ctx, query, sale.Status, rawTrace, sale.ID)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
