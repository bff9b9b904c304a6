package main

// @title        cajapos API
// @version      1.0
// @description  Punto de venta de un solo local: catalogo, ventas, caja y liquidacion diaria.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cajapos/internal/config"
	"cajapos/internal/infra"
	"cajapos/internal/router"
	"cajapos/internal/tiempo"
	"cajapos/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	clock, err := tiempo.New(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid TIMEZONE")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis is optional: without it settlement refreshes run inline and
	// locks, cache, logout revocation and the daily mail are disabled.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			if cfg.IsProduction() {
				log.Fatal().Err(err).Msg("failed to connect to redis")
			}
			log.Warn().Err(err).Msg("redis unavailable, running degraded")
			rdb = nil
		}
	}

	// Canceled on SIGINT / SIGTERM; workers, crons and the server all stop on it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer := infra.NewMailer(cfg)
	svcs := router.NewServices(cfg, db, rdb, clock)

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	if rdb != nil {
		pool := worker.NewPool(rdb, map[string]worker.Handler{
			worker.QueueLiquidacion: worker.NewLiquidacionWorker(svcs.Liquidacion, clock),
			worker.QueueReporte:     worker.NewReporteWorker(svcs.Liquidacion, mailer, clock, cfg.NegocioNombre),
		})
		pool.Start(ctx, cfg.WorkerPoolSize)
	}
	worker.StartRetencionCron(ctx, svcs.Inventario, cfg.RetencionIntervalo)
	worker.StartCierreCron(ctx, worker.CierreCronConfig{
		RDB:        rdb,
		Dispatcher: svcs.Dispatcher,
		Clock:      clock,
		Email:      cfg.ReporteEmail,
		Breaker:    mailer,
	})

	r := router.New(ctx, cfg, db, rdb, clock, svcs, mailer)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("timezone", cfg.Timezone).Msgf("cajapos listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	stop()

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
