package worker

// cron.go
// Two background tickers:
//   - retention: purges inventory history older than the retention window
//   - cierre: once per day enqueues the mail report of the previous day,
//     deduplicated across instances with SETNX cierre:<fecha>

import (
	"context"
	"time"

	"cajapos/internal/infra"
	"cajapos/internal/tiempo"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Purgador deletes expired history rows and returns how many went.
type Purgador interface {
	PurgarHistorial(ctx context.Context) (int64, error)
}

// StartRetencionCron purges once at start and then every interval.
// It respects the context for graceful shutdown.
func StartRetencionCron(ctx context.Context, p Purgador, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("retencion_cron: started")
		purgar(ctx, p)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retencion_cron: shutting down")
				return
			case <-ticker.C:
				purgar(ctx, p)
			}
		}
	}()
}

func purgar(ctx context.Context, p Purgador) {
	if _, err := p.PurgarHistorial(ctx); err != nil {
		log.Error().Err(err).Msg("retencion_cron: purge failed")
	}
}

const (
	cierreTickInterval = 10 * time.Minute
	cierreKeyTTL       = 48 * time.Hour
)

// CierreCronConfig holds all dependencies for the daily close goroutine.
type CierreCronConfig struct {
	RDB        *redis.Client
	Dispatcher *Dispatcher
	Clock      *tiempo.Clock
	Email      string

	// Breaker is the SMTP breaker; ticks are skipped while it is open.
	Breaker interface{ CircuitState() infra.CBState }
}

// StartCierreCron ticks every 10 minutes and enqueues yesterday's report the
// first time it runs on a new day.
func StartCierreCron(ctx context.Context, cfg CierreCronConfig) {
	if cfg.Email == "" || cfg.RDB == nil {
		log.Info().Msg("cierre_cron: REPORTE_EMAIL o Redis ausente, deshabilitado")
		return
	}
	go func() {
		ticker := time.NewTicker(cierreTickInterval)
		defer ticker.Stop()

		log.Info().Msg("cierre_cron: started")
		cerrarDia(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("cierre_cron: shutting down")
				return
			case <-ticker.C:
				cerrarDia(ctx, cfg)
			}
		}
	}()
}

func cerrarDia(ctx context.Context, cfg CierreCronConfig) {
	// If CB is open, skip entirely: the mail would only bounce into the DLQ.
	if cfg.Breaker != nil && cfg.Breaker.CircuitState() == infra.CBOpen {
		log.Debug().Msg("cierre_cron: circuit breaker is open, skipping tick")
		return
	}

	hoy := cfg.Clock.Hoy()
	ayer := time.Date(hoy.Year(), hoy.Month(), hoy.Day()-1, 0, 0, 0, 0, cfg.Clock.Location())
	key := "cierre:" + tiempo.Civil(ayer)

	primero, err := cfg.RDB.SetNX(ctx, key, 1, cierreKeyTTL).Result()
	if err != nil {
		log.Error().Err(err).Msg("cierre_cron: SETNX failed")
		return
	}
	if !primero {
		return
	}

	if err := cfg.Dispatcher.EncolarReporte(ctx, ayer, cfg.Email); err != nil {
		// Release the marker so the next tick tries again.
		_ = cfg.RDB.Del(ctx, key).Err()
		log.Error().Err(err).Msg("cierre_cron: enqueue failed")
		return
	}
	log.Info().Str("fecha", tiempo.Civil(ayer)).Msg("cierre_cron: reporte encolado")
}
