package worker

// reporte_worker.go
// Processes jobs from QueueReporte: renders the daily settlement PDF and
// mails it to the shop owner through the circuit-breaker-guarded SMTP relay.

import (
	"context"
	"encoding/json"
	"fmt"

	"cajapos/internal/service"
	"cajapos/internal/tiempo"

	"github.com/rs/zerolog/log"
)

// Mailer sends a report with an optional PDF attachment.
type Mailer interface {
	Configured() bool
	SendReporte(to, subject, body, fileName string, pdf []byte) error
}

type ReporteWorker struct {
	liq     service.LiquidacionService
	mailer  Mailer
	clock   *tiempo.Clock
	negocio string
}

func NewReporteWorker(liq service.LiquidacionService, mailer Mailer, clock *tiempo.Clock, negocio string) *ReporteWorker {
	return &ReporteWorker{liq: liq, mailer: mailer, clock: clock, negocio: negocio}
}

func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReportePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("reporte_worker: payload invalido: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("reporte_worker: empty to_email, skipping")
		return nil
	}
	if !w.mailer.Configured() {
		log.Warn().Msg("reporte_worker: SMTP no configurado, skipping")
		return nil
	}

	fecha, err := w.clock.ParseFecha(payload.Fecha)
	if err != nil {
		return fmt.Errorf("reporte_worker: %w", err)
	}
	pdf, err := w.liq.ReportePDF(ctx, fecha)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s: liquidacion del %s", w.negocio, fecha.Format("02/01/2006"))
	body := fmt.Sprintf("Adjunto el cierre de caja del %s.", fecha.Format("02/01/2006"))
	if err := w.mailer.SendReporte(payload.ToEmail, subject, body, "liquidacion_"+payload.Fecha+".pdf", pdf); err != nil {
		return fmt.Errorf("reporte_worker: envio fallido: %w", err)
	}
	log.Info().Str("to", payload.ToEmail).Str("fecha", payload.Fecha).Msg("reporte_worker: reporte enviado")
	return nil
}
