package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Jobs that exhaust MaxAttempts are parked in dlq:<queue>. A parked settlement
// refresh is rebuilt by the next write on that day or by cmd/reparar-cajas.
const DLQPrefix = "dlq:"

// TrabajoFallido is the record kept in the dead letter list.
type TrabajoFallido struct {
	Cola      string          `json:"cola"`
	Tipo      string          `json:"tipo"`
	Fecha     string          `json:"fecha,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Motivo    string          `json:"motivo"`
	Intentos  int             `json:"intentos"`
	FallidoEn time.Time       `json:"fallido_en"`
}

func nuevoTrabajoFallido(queue string, job Job, motivo string, intentos int, ahora time.Time) TrabajoFallido {
	t := TrabajoFallido{
		Cola:      queue,
		Tipo:      job.Type,
		Payload:   job.Payload,
		Motivo:    motivo,
		Intentos:  intentos,
		FallidoEn: ahora.UTC(),
	}
	// Both payload kinds carry the day.
	var conFecha struct {
		Fecha string `json:"fecha"`
	}
	if json.Unmarshal(job.Payload, &conFecha) == nil {
		t.Fecha = conFecha.Fecha
	}
	return t
}

// SendToDLQ parks a job that ran out of attempts. Without Redis the job is
// only logged.
func SendToDLQ(ctx context.Context, rdb *redis.Client, fallido TrabajoFallido) {
	ev := log.Warn().
		Str("queue", fallido.Cola).
		Str("job_type", fallido.Tipo).
		Str("fecha", fallido.Fecha).
		Int("attempts", fallido.Intentos).
		Str("reason", fallido.Motivo)

	if rdb == nil {
		ev.Msg("dlq: sin redis, trabajo descartado")
		return
	}
	data, err := json.Marshal(fallido)
	if err != nil {
		log.Error().Err(err).Str("queue", fallido.Cola).Msg("dlq: marshal")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+fallido.Cola, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", fallido.Cola).Msg("dlq: push")
		return
	}
	ev.Msg("dlq: trabajo aparcado")
}

// DLQLength reports how many jobs are parked for queue; /health shows it.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
