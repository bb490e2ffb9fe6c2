package feedlot

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// LotHeadcount un lote y cuántos de sus animales ocupan el corral afectado.
type LotHeadcount struct {
	LotID    string
	Quantity int
}

// Distribute prorratea un costo incurrido a nivel de corral entre los lotes
// que lo ocupan, proporcional a la cantidad de animales de cada lote.
//
// Cada porción se calcula con precisión completa y se trunca al centavo;
// el residuo (totalCost - suma de porciones truncadas) se asigna al lote con
// más animales, desempatando por el LotID más bajo. Así la suma de las
// entradas reproduce el total exacto y el resultado es determinista.
func Distribute(sourceEventID, sourceType, penNumber string, totalCost decimal.Decimal, lotsInPen []LotHeadcount) ([]entity.CostAllocationEntry, error) {
	if len(lotsInPen) == 0 {
		return nil, domain.ErrEmptyPen
	}

	totalHeads := 0
	for _, l := range lotsInPen {
		if l.Quantity < 0 {
			return nil, domain.ErrInvalidInput
		}
		totalHeads += l.Quantity
	}
	if totalHeads == 0 {
		return nil, domain.ErrEmptyPen
	}

	// Orden estable por LotID para que el resultado no dependa del orden de entrada.
	lots := make([]LotHeadcount, len(lotsInPen))
	copy(lots, lotsInPen)
	sort.Slice(lots, func(i, j int) bool { return lots[i].LotID < lots[j].LotID })

	totalHeadsDec := decimal.NewFromInt(int64(totalHeads))
	entries := make([]entity.CostAllocationEntry, 0, len(lots))
	assigned := decimal.Zero
	residualIdx := 0
	for i, l := range lots {
		share := totalCost.Mul(decimal.NewFromInt(int64(l.Quantity))).Div(totalHeadsDec)
		rounded := share.RoundDown(2)
		assigned = assigned.Add(rounded)
		entries = append(entries, entity.CostAllocationEntry{
			SourceEventID: sourceEventID,
			SourceType:    sourceType,
			LotID:         l.LotID,
			PenNumber:     penNumber,
			Amount:        rounded,
		})
		// El lote con más animales recibe el residuo; ante empate gana el LotID
		// más bajo, que por el orden previo es el primero que alcanza el máximo.
		if l.Quantity > lots[residualIdx].Quantity {
			residualIdx = i
		}
	}

	residual := totalCost.Sub(assigned)
	if !residual.IsZero() {
		entries[residualIdx].Amount = entries[residualIdx].Amount.Add(residual)
	}
	return entries, nil
}
