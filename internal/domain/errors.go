package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrInsufficientStock       = errors.New("ganado insuficiente en los lotes elegibles")
	ErrQuantityOverflow        = errors.New("el crédito excede la cantidad inicial del lote")
	ErrCapacityExceeded        = errors.New("la asignación excede la capacidad del corral")
	ErrInvalidAllocationSum    = errors.New("la suma del plan no coincide con la cantidad del lote")
	ErrInvalidStatusTransition = errors.New("transición de estado no permitida")
	ErrEmptyPen                = errors.New("el corral no tiene lotes activos")
	ErrPersistenceConflict     = errors.New("conflicto de escritura concurrente")
)
