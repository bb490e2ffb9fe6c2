package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/feedlot-pro/feedlot-api/internal/application/feedlot"
	"github.com/feedlot-pro/feedlot-api/pkg/config"
	"github.com/feedlot-pro/feedlot-api/pkg/logger"
)

// Scheduler corre el resumen diario del rodeo: proyección de peso y arrobas
// de carcasa por lote, publicado en el log para el reporte de la mañana.
type Scheduler struct {
	cron *cron.Cron
	lots *feedlot.LotUseCase
	cfg  config.SchedulerConfig
	log  *logger.Logger
}

// New construye el scheduler con el caso de uso de lotes.
func New(lots *feedlot.LotUseCase, cfg config.SchedulerConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		lots: lots,
		cfg:  cfg,
		log:  log,
	}
}

// Start programa y arranca el job diario según WeightCronSpec (default 05:00).
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("scheduler deshabilitado por configuración")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.WeightCronSpec, s.runHerdSummary); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.cfg.WeightCronSpec).Msg("scheduler iniciado")
	return nil
}

// Stop detiene el scheduler y espera los jobs en curso.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler detenido")
}

// runHerdSummary proyecta el peso de cada lote activo a hoy y loguea el
// agregado del rodeo.
func (s *Scheduler) runHerdSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lots, err := s.lots.ListActiveLots(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("resumen diario del rodeo falló")
		return
	}

	now := time.Now()
	totalHeads := 0
	totalWeight := decimal.Zero
	totalArrobas := decimal.Zero
	for i := range lots {
		lot := &lots[i]
		weight := lot.ProjectedWeight(now)
		arrobas := lot.ProjectedCarcassArrobas(now)
		totalHeads += lot.CurrentQuantity
		totalWeight = totalWeight.Add(weight)
		totalArrobas = totalArrobas.Add(arrobas)
		s.log.Info().
			Str("lot", lot.LotNumber).
			Int("heads", lot.CurrentQuantity).
			Str("projected_kg", weight.StringFixed(1)).
			Str("projected_arrobas", arrobas.StringFixed(2)).
			Msg("proyección de lote")
	}
	s.log.Info().
		Int("lots", len(lots)).
		Int("heads", totalHeads).
		Str("projected_kg", totalWeight.StringFixed(1)).
		Str("projected_arrobas", totalArrobas.StringFixed(2)).
		Msg("resumen diario del rodeo")
}
