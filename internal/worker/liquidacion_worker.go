package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"cajapos/internal/service"
	"cajapos/internal/tiempo"

	"github.com/rs/zerolog/log"
)

// LiquidacionWorker recomputes settlements queued by the write paths.
type LiquidacionWorker struct {
	svc   service.LiquidacionService
	clock *tiempo.Clock
}

func NewLiquidacionWorker(svc service.LiquidacionService, clock *tiempo.Clock) *LiquidacionWorker {
	return &LiquidacionWorker{svc: svc, clock: clock}
}

func (w *LiquidacionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload LiquidacionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("liquidacion_worker: payload invalido: %w", err)
	}
	fecha, err := w.clock.ParseFecha(payload.Fecha)
	if err != nil {
		return fmt.Errorf("liquidacion_worker: %w", err)
	}
	if err := w.svc.Recalcular(ctx, fecha); err != nil {
		return err
	}
	log.Debug().Str("fecha", payload.Fecha).Msg("liquidacion_worker: liquidacion recalculada")
	return nil
}
