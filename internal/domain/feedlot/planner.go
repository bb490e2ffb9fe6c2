package feedlot

import (
	"sort"

	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/internal/domain/entity"
)

// PenAssignment una entrada de un plan de asignación: cantidad destinada a un corral.
type PenAssignment struct {
	PenNumber string
	Quantity  int
}

// SplitPlan plan de reparto de un lote entre corrales. Shortfall > 0 indica
// que los corrales se agotaron antes de ubicar todo el lote; quien llama
// decide si acepta el plan parcial o lo rechaza.
type SplitPlan struct {
	Assignments []PenAssignment
	Shortfall   int
}

// candidatePens filtra corrales que pueden recibir animales (capacidad positiva,
// ni mantenimiento ni cuarentena).
func candidatePens(pens []entity.Pen) []entity.Pen {
	out := make([]entity.Pen, 0, len(pens))
	for _, p := range pens {
		if p.AcceptsAllocations() {
			out = append(out, p)
		}
	}
	return out
}

// FindBestSinglePen elige el mejor corral único para la cantidad requerida.
//
// Primero prefiere corrales vacíos, tomando el de mayor capacidad para
// reservar los vacíos chicos a lotes futuros más chicos. Si ningún corral
// vacío alcanza, cae a los parcialmente ocupados con espacio suficiente,
// eligiendo el de menor excedente (ajuste más justo, evita fragmentar
// corrales grandes). Empates se resuelven por número de corral más bajo.
// Devuelve nil si ningún corral tiene espacio suficiente.
func FindBestSinglePen(pens []entity.Pen, required int) (*entity.Pen, error) {
	if required <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var bestEmpty *entity.Pen
	var bestPartial *entity.Pen
	for _, p := range candidatePens(pens) {
		p := p
		if p.FreeSpace() < required {
			continue
		}
		if p.IsEmpty() {
			if bestEmpty == nil ||
				p.Capacity > bestEmpty.Capacity ||
				(p.Capacity == bestEmpty.Capacity && p.Number < bestEmpty.Number) {
				bestEmpty = &p
			}
			continue
		}
		surplus := p.FreeSpace() - required
		if bestPartial == nil ||
			surplus < bestPartial.FreeSpace()-required ||
			(surplus == bestPartial.FreeSpace()-required && p.Number < bestPartial.Number) {
			bestPartial = &p
		}
	}
	if bestEmpty != nil {
		return bestEmpty, nil
	}
	return bestPartial, nil
}

// SuggestMultiPenSplit propone un reparto voraz del lote entre varios corrales:
// ordena los candidatos por espacio libre descendente (número de corral como
// desempate) y asigna min(espacio libre, restante) hasta agotar el lote o los
// corrales. Si queda restante, se devuelve como Shortfall junto al plan parcial.
func SuggestMultiPenSplit(pens []entity.Pen, totalQuantity int) (SplitPlan, error) {
	if totalQuantity <= 0 {
		return SplitPlan{}, domain.ErrInvalidInput
	}

	candidates := candidatePens(pens)
	sort.Slice(candidates, func(i, j int) bool {
		fi, fj := candidates[i].FreeSpace(), candidates[j].FreeSpace()
		if fi != fj {
			return fi > fj
		}
		return candidates[i].Number < candidates[j].Number
	})

	plan := SplitPlan{}
	remaining := totalQuantity
	for _, p := range candidates {
		if remaining == 0 {
			break
		}
		free := p.FreeSpace()
		if free <= 0 {
			continue
		}
		take := free
		if remaining < take {
			take = remaining
		}
		plan.Assignments = append(plan.Assignments, PenAssignment{PenNumber: p.Number, Quantity: take})
		remaining -= take
	}
	plan.Shortfall = remaining
	return plan, nil
}

// ValidateManualSplit valida un plan armado por el usuario contra el snapshot
// de corrales y la cantidad del lote. A diferencia del plan sugerido, aquí la
// suma debe igualar exactamente la cantidad del lote: no se aceptan planes
// manuales parciales.
func ValidateManualSplit(plan []PenAssignment, pens []entity.Pen, lotQuantity int) error {
	if lotQuantity <= 0 || len(plan) == 0 {
		return domain.ErrInvalidInput
	}

	byNumber := make(map[string]entity.Pen, len(pens))
	for _, p := range pens {
		byNumber[p.Number] = p
	}

	seen := make(map[string]bool, len(plan))
	sum := 0
	for _, a := range plan {
		if a.Quantity <= 0 || seen[a.PenNumber] {
			return domain.ErrInvalidInput
		}
		seen[a.PenNumber] = true
		pen, ok := byNumber[a.PenNumber]
		if !ok {
			return domain.ErrNotFound
		}
		if !pen.AcceptsAllocations() || pen.FreeSpace() < a.Quantity {
			return domain.ErrCapacityExceeded
		}
		sum += a.Quantity
	}
	if sum != lotQuantity {
		return domain.ErrInvalidAllocationSum
	}
	return nil
}
