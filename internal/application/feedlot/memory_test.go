package feedlot_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/repository"
)

// memState estado compartido de los fakes en memoria.
type memState struct {
	lots      map[string]*entity.Lot
	pens      map[string]*entity.Pen
	allocs    map[string]*entity.PenAllocation
	sales     map[string]*entity.SaleRecord
	costs     []entity.CostAllocationEntry
	movements []entity.LotMovement
}

func newMemState() *memState {
	return &memState{
		lots:   map[string]*entity.Lot{},
		pens:   map[string]*entity.Pen{},
		allocs: map[string]*entity.PenAllocation{},
		sales:  map[string]*entity.SaleRecord{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.lots {
		lot := *v
		c.lots[k] = &lot
	}
	for k, v := range s.pens {
		pen := *v
		c.pens[k] = &pen
	}
	for k, v := range s.allocs {
		a := *v
		c.allocs[k] = &a
	}
	for k, v := range s.sales {
		sale := *v
		sale.DepletionTrace = append([]entity.DepletionEntry(nil), v.DepletionTrace...)
		c.sales[k] = &sale
	}
	c.costs = append([]entity.CostAllocationEntry(nil), s.costs...)
	c.movements = append([]entity.LotMovement(nil), s.movements...)
	return c
}

// memStore TxRunner en memoria con semántica transaccional real: fn trabaja
// sobre un clon y solo en caso de éxito el clon reemplaza al estado. Así los
// tests verifican atomicidad de commits multi-corral.
type memStore struct {
	mu    sync.Mutex
	state *memState

	// conflictsLeft fuerza ErrPersistenceConflict en los próximos N
	// UpdateQuantity, para probar el reintento acotado.
	conflictsLeft int
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (s *memStore) Run(_ context.Context, fn func(r feedlot.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := s.state.clone()
	repos := feedlot.TxRepos{
		Lots:        &memLotRepo{store: s, state: clone},
		Pens:        &memPenRepo{state: clone},
		Allocations: &memAllocRepo{state: clone},
		Sales:       &memSaleRepo{state: clone},
		Costs:       &memCostRepo{state: clone},
		Movements:   &memMovementRepo{state: clone},
	}
	if err := fn(repos); err != nil {
		return err
	}
	s.state = clone
	return nil
}

// Helpers de lectura directa para asserts.
func (s *memStore) lot(id string) entity.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state.lots[id]
}

func (s *memStore) pen(number string) entity.Pen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state.pens[number]
}

func (s *memStore) sale(id string) entity.SaleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale := *s.state.sales[id]
	sale.DepletionTrace = append([]entity.DepletionEntry(nil), sale.DepletionTrace...)
	return sale
}

func (s *memStore) activeAllocCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.state.allocs {
		if a.Status == entity.AllocationStatusActive {
			n++
		}
	}
	return n
}

func (s *memStore) activeAllocQuantity(lotID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, a := range s.state.allocs {
		if a.LotID == lotID && a.Status == entity.AllocationStatusActive {
			total += a.Quantity
		}
	}
	return total
}

func (s *memStore) seedLot(l entity.Lot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot := l
	s.state.lots[l.ID] = &lot
}

func (s *memStore) seedPen(p entity.Pen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pen := p
	s.state.pens[p.Number] = &pen
}

func (s *memStore) seedAlloc(a entity.PenAllocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alloc := a
	s.state.allocs[a.ID] = &alloc
}

func (s *memStore) seedSale(sale entity.SaleRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sale
	s.state.sales[sale.ID] = &cp
}

type memLotRepo struct {
	store *memStore
	state *memState
}

var _ repository.LotRepository = (*memLotRepo)(nil)

func (r *memLotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	lot, ok := r.state.lots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *lot
	return &cp, nil
}

func (r *memLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *memLotRepo) ListActive(_ context.Context) ([]entity.Lot, error) {
	var out []entity.Lot
	for _, l := range r.state.lots {
		if l.Status == entity.LotStatusActive {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if _, ok := r.state.lots[lot.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *lot
	r.state.lots[lot.ID] = &cp
	return nil
}

func (r *memLotRepo) UpdateQuantity(_ context.Context, lot *entity.Lot) error {
	if r.store.conflictsLeft > 0 {
		r.store.conflictsLeft--
		return domain.ErrPersistenceConflict
	}
	stored, ok := r.state.lots[lot.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != lot.Version {
		return domain.ErrPersistenceConflict
	}
	cp := *lot
	cp.Version++
	r.state.lots[lot.ID] = &cp
	return nil
}

func (r *memLotRepo) AddCost(_ context.Context, lotID, costType string, amount decimal.Decimal) error {
	lot, ok := r.state.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	switch costType {
	case entity.CostTypeHealth:
		lot.Costs.Health = lot.Costs.Health.Add(amount)
	case entity.CostTypeFeed:
		lot.Costs.Feed = lot.Costs.Feed.Add(amount)
	case entity.CostTypeOperational:
		lot.Costs.Operational = lot.Costs.Operational.Add(amount)
	default:
		lot.Costs.Other = lot.Costs.Other.Add(amount)
	}
	return nil
}

type memPenRepo struct{ state *memState }

var _ repository.PenRepository = (*memPenRepo)(nil)

func (r *memPenRepo) GetByNumber(_ context.Context, number string) (*entity.Pen, error) {
	pen, ok := r.state.pens[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pen
	return &cp, nil
}

func (r *memPenRepo) GetForUpdate(ctx context.Context, number string) (*entity.Pen, error) {
	return r.GetByNumber(ctx, number)
}

func (r *memPenRepo) List(_ context.Context) ([]entity.Pen, error) {
	var out []entity.Pen
	for _, p := range r.state.pens {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *memPenRepo) UpdateOccupancy(_ context.Context, pen *entity.Pen) error {
	if _, ok := r.state.pens[pen.Number]; !ok {
		return domain.ErrNotFound
	}
	cp := *pen
	r.state.pens[pen.Number] = &cp
	return nil
}

type memAllocRepo struct{ state *memState }

var _ repository.PenAllocationRepository = (*memAllocRepo)(nil)

func (r *memAllocRepo) Create(_ context.Context, alloc *entity.PenAllocation) error {
	cp := *alloc
	r.state.allocs[alloc.ID] = &cp
	return nil
}

func (r *memAllocRepo) ListActiveByPen(_ context.Context, penNumber string) ([]entity.PenAllocation, error) {
	var out []entity.PenAllocation
	for _, a := range r.state.allocs {
		if a.PenNumber == penNumber && a.Status == entity.AllocationStatusActive {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAllocRepo) ListActiveByLot(_ context.Context, lotID string) ([]entity.PenAllocation, error) {
	var out []entity.PenAllocation
	for _, a := range r.state.allocs {
		if a.LotID == lotID && a.Status == entity.AllocationStatusActive {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAllocRepo) ReduceQuantity(_ context.Context, allocationID string, quantity int) error {
	a, ok := r.state.allocs[allocationID]
	if !ok {
		return domain.ErrNotFound
	}
	if quantity > a.Quantity {
		return domain.ErrInvalidInput
	}
	a.Quantity -= quantity
	if a.Quantity == 0 {
		a.Status = entity.AllocationStatusClosed
	}
	return nil
}

type memSaleRepo struct{ state *memState }

var _ repository.SaleRecordRepository = (*memSaleRepo)(nil)

func (r *memSaleRepo) GetByID(_ context.Context, id string) (*entity.SaleRecord, error) {
	sale, ok := r.state.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sale
	cp.DepletionTrace = append([]entity.DepletionEntry(nil), sale.DepletionTrace...)
	return &cp, nil
}

func (r *memSaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.SaleRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *memSaleRepo) List(_ context.Context, status string) ([]entity.SaleRecord, error) {
	var out []entity.SaleRecord
	for _, s := range r.state.sales {
		if status == "" || s.Status == status {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memSaleRepo) Create(_ context.Context, sale *entity.SaleRecord) error {
	if _, ok := r.state.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *sale
	r.state.sales[sale.ID] = &cp
	return nil
}

func (r *memSaleRepo) UpdateStatus(_ context.Context, sale *entity.SaleRecord) error {
	if _, ok := r.state.sales[sale.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *sale
	cp.DepletionTrace = append([]entity.DepletionEntry(nil), sale.DepletionTrace...)
	r.state.sales[sale.ID] = &cp
	return nil
}

type memCostRepo struct{ state *memState }

var _ repository.CostAllocationRepository = (*memCostRepo)(nil)

func (r *memCostRepo) CreateBatch(_ context.Context, entries []entity.CostAllocationEntry) error {
	r.state.costs = append(r.state.costs, entries...)
	return nil
}

func (r *memCostRepo) ListBySourceEvent(_ context.Context, sourceEventID string) ([]entity.CostAllocationEntry, error) {
	var out []entity.CostAllocationEntry
	for _, e := range r.state.costs {
		if e.SourceEventID == sourceEventID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memCostRepo) ListByLot(_ context.Context, lotID string) ([]entity.CostAllocationEntry, error) {
	var out []entity.CostAllocationEntry
	for _, e := range r.state.costs {
		if e.LotID == lotID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memMovementRepo struct{ state *memState }

var _ repository.LotMovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) Create(_ context.Context, mov *entity.LotMovement) error {
	r.state.movements = append(r.state.movements, *mov)
	return nil
}

func (r *memMovementRepo) ListByLot(_ context.Context, lotID string) ([]entity.LotMovement, error) {
	var out []entity.LotMovement
	for _, m := range r.state.movements {
		if m.LotID == lotID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeFinancial y fakeCalendar capturan llamadas best-effort y pueden fallar a pedido.
type fakeFinancial struct {
	calls []string
	fail  error
}

func (f *fakeFinancial) RecordIncome(_ context.Context, description string, _ decimal.Decimal, _ time.Time, _ string) error {
	f.calls = append(f.calls, description)
	return f.fail
}

type fakeCalendar struct {
	calls []string
	fail  error
}

func (f *fakeCalendar) CreateEvent(_ context.Context, title string, _ time.Time, _ string) error {
	f.calls = append(f.calls, title)
	return f.fail
}
