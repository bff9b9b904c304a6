package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cajapos/internal/metrics"
	"cajapos/internal/tiempo"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueLiquidacion = "jobs:liquidacion"
	QueueReporte     = "jobs:reporte"

	// MaxAttempts is how many times a job runs before it lands in the DLQ.
	MaxAttempts = 3
)

var ErrSinCola = errors.New("cola de trabajos no disponible")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// LiquidacionPayload asks for the settlement of Fecha (and the stored days
// after it) to be recomputed.
type LiquidacionPayload struct {
	Fecha string `json:"fecha"`
}

// ReportePayload asks for the PDF close report of Fecha to be mailed.
type ReportePayload struct {
	Fecha   string `json:"fecha"`
	ToEmail string `json:"to_email"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarLiquidacion pushes a settlement refresh. Callers fall back to an
// inline recomputation when it fails.
func (d *Dispatcher) EncolarLiquidacion(ctx context.Context, fecha time.Time) error {
	return d.enqueue(ctx, QueueLiquidacion, "liquidacion", LiquidacionPayload{Fecha: tiempo.Civil(fecha)})
}

// EncolarReporte pushes a close-report mail job.
func (d *Dispatcher) EncolarReporte(ctx context.Context, fecha time.Time, to string) error {
	return d.enqueue(ctx, QueueReporte, "reporte", ReportePayload{Fecha: tiempo.Civil(fecha), ToEmail: to})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return ErrSinCola
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handler processes the payload of one job. A returned error triggers a retry.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	backoff  time.Duration
}

func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	return &Pool{rdb: rdb, handlers: handlers, backoff: time.Second}
}

// Start launches numWorkers goroutines consuming every registered queue.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i, queues)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
}

func (p *Pool) runWorker(ctx context.Context, id int, queues []string) {
	espera := time.Duration(0)
	for {
		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		switch {
		case ctx.Err() != nil:
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if espera == 0 {
				log.Warn().Err(err).Int("worker", id).Msg("redis no disponible, pausando worker")
			}
			espera = siguienteEspera(espera, p.backoff)
			select {
			case <-ctx.Done():
				log.Info().Int("worker", id).Msg("worker shutting down")
				return
			case <-time.After(espera):
			}
			continue
		}
		if espera > 0 {
			log.Info().Int("worker", id).Msg("redis disponible, worker reanudado")
			espera = 0
		}
		if len(result) < 2 {
			continue
		}
		p.processJob(ctx, result[0], result[1])
	}
}

// maxEsperaRedis caps the pause between BRPOP attempts while Redis is down.
const maxEsperaRedis = 30 * time.Second

// siguienteEspera doubles the previous pause, starting at base.
func siguienteEspera(previa, base time.Duration) time.Duration {
	if previa <= 0 {
		if base <= 0 {
			return time.Second
		}
		return base
	}
	if previa >= maxEsperaRedis/2 {
		return maxEsperaRedis
	}
	return previa * 2
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		metrics.JobsProcesados.WithLabelValues(queue, "invalido").Inc()
		return
	}
	h, ok := p.handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Msg("no handler for queue")
		return
	}

	attempts := 0
	err := withRetry(ctx, MaxAttempts, p.backoff, func(attempt int) error {
		attempts = attempt + 1
		err := h.Process(ctx, job.Payload)
		if err != nil {
			log.Warn().Err(err).Str("queue", queue).Int("attempt", attempts).Msg("job failed")
		}
		return err
	})
	if err != nil {
		metrics.JobsProcesados.WithLabelValues(queue, "dlq").Inc()
		SendToDLQ(ctx, p.rdb, nuevoTrabajoFallido(queue, job,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxAttempts, err), attempts, time.Now()))
		return
	}
	metrics.JobsProcesados.WithLabelValues(queue, "ok").Inc()
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// starting at base: attempt 1 = immediate, 2 = base, 3 = 2×base.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
