// Command reparar-cajas recomputes every stored daily settlement in date
// order so each caja_anterior chains from the corrected previous day.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"cajapos/internal/config"
	"cajapos/internal/infra"
	"cajapos/internal/router"
	"cajapos/internal/tiempo"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	desdeFlag := flag.String("desde", "", "primer dia a reparar (YYYY-MM-DD)")
	hastaFlag := flag.String("hasta", "", "ultimo dia a reparar (YYYY-MM-DD)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	clock, err := tiempo.New(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TIMEZONE")
	}

	desde, err := parseOpcional(clock, *desdeFlag)
	if err != nil {
		log.Fatal().Err(err).Str("desde", *desdeFlag).Msg("fecha invalida")
	}
	hasta, err := parseOpcional(clock, *hastaFlag)
	if err != nil {
		log.Fatal().Err(err).Str("hasta", *hastaFlag).Msg("fecha invalida")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// No Redis: the tool runs alone and recomputes inline.
	svcs := router.NewServices(cfg, db, nil, clock)

	dias, err := svcs.Liquidacion.Reparar(context.Background(), desde, hasta)
	for _, d := range dias {
		log.Info().
			Str("fecha", d.Fecha).
			Str("caja_anterior", d.CajaAnterior.StringFixed(2)).
			Str("ventas", d.Ventas.StringFixed(2)).
			Str("entradas", d.Entradas.StringFixed(2)).
			Str("salidas", d.Salidas.StringFixed(2)).
			Str("gastos", d.Gastos.StringFixed(2)).
			Str("caja", d.Caja.StringFixed(2)).
			Msg("liquidacion")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("reparacion interrumpida")
	}
	log.Info().Int("dias", len(dias)).Msg("reparacion completa")
}

func parseOpcional(clock *tiempo.Clock, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := clock.ParseFecha(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
