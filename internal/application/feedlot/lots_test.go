package feedlot_test

import (
	"context"
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

func newLotUC(store *memStore) *feedlot.LotUseCase {
	ledger := feedlot.NewLotLedger(store, nil, logger.Nop())
	return feedlot.NewLotUseCase(store, ledger, nil, logger.Nop())
}

func TestCreateLot_AltaYValidaciones(t *testing.T) {
	store := newMemStore()
	uc := newLotUC(store)
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	lot, err := uc.CreateLot(context.Background(), feedlot.CreateLotInput{
		LotNumber:    "LOTE-2025-07",
		PurchaseDate: d,
		Quantity:     80,
		EntryWeight:  decimal.NewFromInt(24_000),
		GMD:          decimal.RequireFromString("1.4"),
		CarcassYield: decimal.NewFromInt(54),
	})
	require.NoError(t, err)
	assert.Equal(t, 80, lot.InitialQuantity)
	assert.Equal(t, 80, lot.CurrentQuantity)
	assert.Equal(t, entity.LotStatusActive, lot.Status)
	assert.Equal(t, d, lot.EntryDate, "sin fecha de ingreso usa la de compra")

	bad := []feedlot.CreateLotInput{
		{LotNumber: "", PurchaseDate: d, Quantity: 10, EntryWeight: decimal.NewFromInt(3000)},
		{LotNumber: "L", PurchaseDate: d, Quantity: 0, EntryWeight: decimal.NewFromInt(3000)},
		{LotNumber: "L", PurchaseDate: d, Quantity: 10, EntryWeight: decimal.Zero},
		{LotNumber: "L", PurchaseDate: d, Quantity: 10, EntryWeight: decimal.NewFromInt(3000),
			CarcassYield: decimal.NewFromInt(120)},
	}
	for _, in := range bad {
		_, err := uc.CreateLot(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestRegisterMortality_DebitaYDesocupa(t *testing.T) {
	store := newMemStore()
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedActiveLot(store, "L1", d, 50, 50)
	seedAvailablePen(store, "C-01", 60, 50)
	store.seedAlloc(entity.PenAllocation{
		ID: "A1", LotID: "L1", PenNumber: "C-01", Quantity: 50,
		Status: entity.AllocationStatusActive,
	})
	uc := newLotUC(store)

	newQty, err := uc.RegisterMortality(context.Background(), "L1", 3, "timpanismo")
	require.NoError(t, err)
	assert.Equal(t, 47, newQty)
	assert.Equal(t, 47, store.lot("L1").CurrentQuantity)
	assert.Equal(t, 47, store.pen("C-01").CurrentAnimals, "el corral se desocupa con la muerte")

	movs, err := uc.Movements(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeDeath, movs[0].Type)
	assert.Equal(t, 3, movs[0].Quantity)
	assert.Equal(t, "timpanismo", movs[0].Reason)
}

func TestRegisterMortality_MasQueElStockDisponible(t *testing.T) {
	store := newMemStore()
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedActiveLot(store, "L1", d, 10, 4)
	uc := newLotUC(store)

	_, err := uc.RegisterMortality(context.Background(), "L1", 5, "accidente")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 4, store.lot("L1").CurrentQuantity, "el débito no se aplica parcialmente")

	_, err = uc.RegisterMortality(context.Background(), "L1", 0, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.RegisterMortality(context.Background(), "L1", 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterMortality_CierraElLoteEnCero(t *testing.T) {
	store := newMemStore()
	d := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedActiveLot(store, "L1", d, 2, 2)
	uc := newLotUC(store)

	newQty, err := uc.RegisterMortality(context.Background(), "L1", 2, "intoxicación")
	require.NoError(t, err)
	assert.Equal(t, 0, newQty)
	lot := store.lot("L1")
	assert.Equal(t, entity.LotStatusSold, lot.Status, "en cero el lote se cierra, no se borra")
	assert.Equal(t, 2, lot.InitialQuantity, "la cantidad inicial es inmutable")
}
