package feedlot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

type saleFixture struct {
	store     *memStore
	uc        *feedlot.SaleUseCase
	financial *fakeFinancial
	calendar  *fakeCalendar
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	store := newMemStore()
	ledger := feedlot.NewLotLedger(store, nil, logger.Nop())
	engine := feedlot.NewSaleDepletionEngine(store, ledger, nil, logger.Nop())
	financial := &fakeFinancial{}
	calendar := &fakeCalendar{}
	uc := feedlot.NewSaleUseCase(store, engine, ledger, financial, calendar, nil, logger.Nop())
	return &saleFixture{store: store, uc: uc, financial: financial, calendar: calendar}
}

func (f *saleFixture) seedPendingSale(id string, quantity int) {
	f.store.seedSale(entity.SaleRecord{
		ID:         id,
		SaleNumber: "V-" + id,
		SaleDate:   time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Quantity:   quantity,
		NetValue:   decimal.NewFromInt(int64(quantity) * 1000),
		Status:     entity.SaleStatusPending,
	})
}

func TestTransition_ConfirmacionDebitaYDisparaEfectos(t *testing.T) {
	f := newSaleFixture(t)
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedActiveLot(f.store, "L1", d, 50, 50)
	seedActiveLot(f.store, "L2", d.AddDate(0, 0, 2), 30, 30)
	f.seedPendingSale("S1", 60)

	res, err := f.uc.Transition(context.Background(), "S1", entity.SaleStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusConfirmed, res.Sale.Status)
	assert.Equal(t, []entity.DepletionEntry{
		{LotID: "L1", Quantity: 50},
		{LotID: "L2", Quantity: 10},
	}, res.Sale.DepletionTrace)

	require.Len(t, res.SideEffects, 2)
	assert.True(t, res.SideEffects[0].Succeeded())
	assert.True(t, res.SideEffects[1].Succeeded())
	assert.Len(t, f.financial.calls, 1)
	assert.Len(t, f.calendar.calls, 1)
}

func TestTransition_FallaDeEfectoColateralNoRevierte(t *testing.T) {
	f := newSaleFixture(t)
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedActiveLot(f.store, "L1", d, 50, 50)
	f.seedPendingSale("S1", 20)
	f.financial.fail = errors.New("servicio financiero caído")

	res, err := f.uc.Transition(context.Background(), "S1", entity.SaleStatusConfirmed)
	require.NoError(t, err, "la falla best-effort no se propaga")

	// El estado y el ledger quedan confirmados; la falla queda capturada.
	assert.Equal(t, entity.SaleStatusConfirmed, f.store.sale("S1").Status)
	assert.Equal(t, 30, f.store.lot("L1").CurrentQuantity)
	require.Len(t, res.SideEffects, 2)
	assert.False(t, res.SideEffects[0].Succeeded())
	assert.Equal(t, "financial", res.SideEffects[0].Kind)
	assert.True(t, res.SideEffects[1].Succeeded(), "cada efecto es independiente")
}

func TestTransition_EstadosTerminalesInmutables(t *testing.T) {
	f := newSaleFixture(t)
	f.store.seedSale(entity.SaleRecord{ID: "S1", Status: entity.SaleStatusPaid, Quantity: 10})

	for _, target := range []string{
		entity.SaleStatusConfirmed,
		entity.SaleStatusPending,
		entity.SaleStatusDelivered,
		entity.SaleStatusCancelled,
	} {
		_, err := f.uc.Transition(context.Background(), "S1", target)
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, "PAID -> %s", target)
	}
	assert.Equal(t, entity.SaleStatusPaid, f.store.sale("S1").Status, "el registro queda intacto")
}

func TestTransition_SaltoDeEstadoRechazado(t *testing.T) {
	f := newSaleFixture(t)
	f.seedPendingSale("S1", 10)

	_, err := f.uc.Transition(context.Background(), "S1", entity.SaleStatusPaid)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	_, err = f.uc.Transition(context.Background(), "S1", entity.SaleStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestTransition_ConfirmacionConFaltantePersisteTrazaParcial(t *testing.T) {
	f := newSaleFixture(t)
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedActiveLot(f.store, "L1", d, 10, 10)
	f.seedPendingSale("S1", 15)

	_, err := f.uc.Transition(context.Background(), "S1", entity.SaleStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	sale := f.store.sale("S1")
	assert.Equal(t, entity.SaleStatusPending, sale.Status, "sin stock la venta sigue PENDING")
	assert.Equal(t, []entity.DepletionEntry{{LotID: "L1", Quantity: 10}}, sale.DepletionTrace,
		"la traza parcial queda persistida para compensar o aceptar venta corta")
	assert.Equal(t, 0, f.store.lot("L1").CurrentQuantity, "los débitos aplicados permanecen")
	assert.Empty(t, f.financial.calls, "sin transición exitosa no hay efectos colaterales")
}

func TestTransition_CancelacionRestauraLotes(t *testing.T) {
	f := newSaleFixture(t)
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedActiveLot(f.store, "L1", d, 50, 50)
	seedActiveLot(f.store, "L2", d.AddDate(0, 0, 2), 30, 30)
	f.seedPendingSale("S1", 60)

	_, err := f.uc.Transition(context.Background(), "S1", entity.SaleStatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, 0, f.store.lot("L1").CurrentQuantity)

	// Decisión de producto: cancelar después de la depleción acredita los
	// lotes de origen según la traza.
	res, err := f.uc.Transition(context.Background(), "S1", entity.SaleStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, res.Sale.Status)
	assert.Equal(t, 50, f.store.lot("L1").CurrentQuantity)
	assert.Equal(t, 30, f.store.lot("L2").CurrentQuantity)
	assert.Equal(t, entity.LotStatusActive, f.store.lot("L1").Status)
}

func TestTransition_CicloCompletoHastaPago(t *testing.T) {
	f := newSaleFixture(t)
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedActiveLot(f.store, "L1", d, 40, 40)
	f.seedPendingSale("S1", 25)

	for _, target := range []string{
		entity.SaleStatusConfirmed,
		entity.SaleStatusDelivered,
		entity.SaleStatusPaid,
	} {
		_, err := f.uc.Transition(context.Background(), "S1", target)
		require.NoError(t, err, "transición a %s", target)
	}
	assert.Equal(t, entity.SaleStatusPaid, f.store.sale("S1").Status)
	assert.Equal(t, 15, f.store.lot("L1").CurrentQuantity)
	// CONFIRMED y PAID registraron ingreso; CONFIRMED y DELIVERED, evento.
	assert.Len(t, f.financial.calls, 2)
	assert.Len(t, f.calendar.calls, 2)
}

func TestCreateSale_ValidaCamposCanonicos(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.uc.CreateSale(context.Background(), feedlot.CreateSaleInput{
		SaleNumber: "V-1", Quantity: 0, SaleDate: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad ausente se rechaza, no se infiere")

	sale, err := f.uc.CreateSale(context.Background(), feedlot.CreateSaleInput{
		SaleNumber: "V-1",
		SaleDate:   time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Quantity:   12,
		NetValue:   decimal.NewFromInt(36_000),
		GrossValue: decimal.NewFromInt(40_000),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusPending, sale.Status)
	assert.Empty(t, sale.DepletionTrace)
}
