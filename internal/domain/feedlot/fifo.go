package feedlot

import (
	"sort"

	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// OrderFIFO devuelve los lotes con disponibilidad ordenados para consumo FIFO:
// fecha de compra ascendente (el más antiguo primero) y, ante la misma fecha,
// el LotID más bajo. El orden es determinista, nunca el orden de memoria.
func OrderFIFO(lots []entity.Lot) []entity.Lot {
	eligible := make([]entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.CurrentQuantity > 0 {
			eligible = append(eligible, l)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].PurchaseDate.Equal(eligible[j].PurchaseDate) {
			return eligible[i].PurchaseDate.Before(eligible[j].PurchaseDate)
		}
		return eligible[i].ID < eligible[j].ID
	})
	return eligible
}
