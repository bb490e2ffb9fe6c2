package feedlot

import (
	"context"
	"errors"

	"github.com/feedlot-pro/feedlot-api/internal/domain"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

// runWithConflictRetry ejecuta fn en una transacción, reintentando acotadamente
// solo ante ErrPersistenceConflict: la operación se relee y recalcula completa
// en cada intento, así que reintentar es seguro.
func runWithConflictRetry(ctx context.Context, runner TxRunner, metrics Metrics, log *logger.Logger, fn func(r TxRepos) error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if attempt > 0 {
			metrics.ConflictRetry()
			log.Warn().Int("attempt", attempt).Msg("reintentando por conflicto de escritura")
		}
		err = runner.Run(ctx, fn)
		if !errors.Is(err, domain.ErrPersistenceConflict) {
			return err
		}
	}
	return err
}
