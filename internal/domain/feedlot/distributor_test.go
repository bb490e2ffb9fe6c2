package feedlot_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/feedlot"
)

func TestDistribute_ProporcionExacta(t *testing.T) {
	entries, err := feedlot.Distribute("evt-1", "health", "C-01", decimal.NewFromFloat(100.00), []feedlot.LotHeadcount{
		{LotID: "A", Quantity: 3},
		{LotID: "B", Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Amount.Equal(decimal.NewFromFloat(60.00)),
		"el lote A con 3 de 5 animales recibe 60.00, obtuvo %s", entries[0].Amount)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromFloat(40.00)),
		"el lote B con 2 de 5 animales recibe 40.00, obtuvo %s", entries[1].Amount)
}

func TestDistribute_ResiduoDeterminista(t *testing.T) {
	// 100.00 entre tres lotes iguales: 33.33 + 33.33 + 33.33 deja 0.01 de residuo.
	entries, err := feedlot.Distribute("evt-2", "feed", "C-02", decimal.NewFromFloat(100.00), []feedlot.LotHeadcount{
		{LotID: "L3", Quantity: 1},
		{LotID: "L1", Quantity: 1},
		{LotID: "L2", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromFloat(100.00)),
		"la suma de las porciones debe reproducir el total exacto, obtuvo %s", total)

	// Empate de animales: el residuo va al LotID más bajo (L1), que queda primero.
	assert.Equal(t, "L1", entries[0].LotID)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromFloat(33.34)),
		"L1 debe recibir el centavo de residuo, obtuvo %s", entries[0].Amount)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromFloat(33.33)))
	assert.True(t, entries[2].Amount.Equal(decimal.NewFromFloat(33.33)))
}

func TestDistribute_ResiduoAlMayor(t *testing.T) {
	// 10.00 entre 3 y 4 animales: 4.28 + 5.71 = 9.99; el 0.01 va al de 4 animales.
	entries, err := feedlot.Distribute("evt-3", "health", "C-03", decimal.NewFromFloat(10.00), []feedlot.LotHeadcount{
		{LotID: "A", Quantity: 3},
		{LotID: "B", Quantity: 4},
	})
	require.NoError(t, err)

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	require.True(t, total.Equal(decimal.NewFromFloat(10.00)))

	assert.True(t, entries[1].Amount.Equal(decimal.NewFromFloat(5.72)),
		"B tiene más animales y absorbe el residuo, obtuvo %s", entries[1].Amount)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromFloat(4.28)))
}

func TestDistribute_Determinista(t *testing.T) {
	in := []feedlot.LotHeadcount{
		{LotID: "B", Quantity: 7},
		{LotID: "A", Quantity: 7},
		{LotID: "C", Quantity: 11},
	}
	first, err := feedlot.Distribute("evt-4", "other", "C-04", decimal.NewFromFloat(250.37), in)
	require.NoError(t, err)

	// Mismo input en otro orden produce exactamente el mismo resultado.
	reordered := []feedlot.LotHeadcount{in[2], in[0], in[1]}
	second, err := feedlot.Distribute("evt-4", "other", "C-04", decimal.NewFromFloat(250.37), reordered)
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].LotID, second[i].LotID)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
}

func TestDistribute_CorralVacio(t *testing.T) {
	_, err := feedlot.Distribute("evt-5", "health", "C-05", decimal.NewFromFloat(50.00), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyPen)

	_, err = feedlot.Distribute("evt-5", "health", "C-05", decimal.NewFromFloat(50.00), []feedlot.LotHeadcount{
		{LotID: "A", Quantity: 0},
	})
	assert.ErrorIs(t, err, domain.ErrEmptyPen, "cero animales en total también es corral vacío")
}
