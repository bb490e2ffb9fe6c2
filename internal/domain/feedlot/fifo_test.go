package feedlot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
	"github.com/feedlot-pro/feedlot-api/internal/domain/feedlot"
)

func lot(id string, purchase time.Time, current int) entity.Lot {
	return entity.Lot{ID: id, PurchaseDate: purchase, InitialQuantity: current, CurrentQuantity: current}
}

func TestOrderFIFO_MasAntiguoPrimero(t *testing.T) {
	d1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 2)
	d3 := d1.AddDate(0, 0, 5)

	ordered := feedlot.OrderFIFO([]entity.Lot{
		lot("L3", d3, 5),
		lot("L1", d1, 5),
		lot("L2", d2, 5),
	})
	require.Len(t, ordered, 3)
	assert.Equal(t, "L1", ordered[0].ID)
	assert.Equal(t, "L2", ordered[1].ID)
	assert.Equal(t, "L3", ordered[2].ID)
}

func TestOrderFIFO_DesempatePorLotID(t *testing.T) {
	d := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ordered := feedlot.OrderFIFO([]entity.Lot{
		lot("L9", d, 10),
		lot("L2", d, 10),
	})
	require.Len(t, ordered, 2)
	assert.Equal(t, "L2", ordered[0].ID, "misma fecha de compra: gana el LotID más bajo")
}

func TestOrderFIFO_ExcluyeAgotados(t *testing.T) {
	d := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ordered := feedlot.OrderFIFO([]entity.Lot{
		lot("L1", d, 0),
		lot("L2", d.AddDate(0, 0, 1), 7),
	})
	require.Len(t, ordered, 1)
	assert.Equal(t, "L2", ordered[0].ID)
}
