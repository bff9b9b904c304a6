package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"cajapos/internal/dto"
	"cajapos/internal/infra"
	"cajapos/internal/tiempo"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var relojTest = tiempo.NewFijo(time.FixedZone("ART", -3*60*60), time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubLiquidacion struct {
	recalculadas []string
	err          error
}

func (s *stubLiquidacion) Calcular(context.Context, time.Time) (*dto.LiquidacionResponse, error) {
	return nil, s.err
}
func (s *stubLiquidacion) Hoy(context.Context) (*dto.LiquidacionResponse, error)    { return nil, s.err }
func (s *stubLiquidacion) Ultima(context.Context) (*dto.LiquidacionResponse, error) { return nil, s.err }
func (s *stubLiquidacion) Rango(context.Context, time.Time, time.Time) (*dto.LiquidacionRangoResponse, error) {
	return nil, s.err
}

func (s *stubLiquidacion) Recalcular(_ context.Context, desde time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.recalculadas = append(s.recalculadas, tiempo.Civil(desde))
	return nil
}

func (s *stubLiquidacion) Reparar(context.Context, *time.Time, *time.Time) ([]dto.LiquidacionResponse, error) {
	return nil, s.err
}

func (s *stubLiquidacion) ExportarXLSX(context.Context, time.Time, time.Time) ([]byte, error) {
	return nil, s.err
}

func (s *stubLiquidacion) ReportePDF(context.Context, time.Time) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.3"), nil
}

type stubMailer struct {
	configurado bool
	err         error
	enviados    []string
	adjunto     string
}

func (m *stubMailer) Configured() bool { return m.configurado }

func (m *stubMailer) SendReporte(to, _, _, fileName string, _ []byte) error {
	if m.err != nil {
		return m.err
	}
	m.enviados = append(m.enviados, to)
	m.adjunto = fileName
	return nil
}

type handlerFunc func(ctx context.Context, raw json.RawMessage) error

func (f handlerFunc) Process(ctx context.Context, raw json.RawMessage) error { return f(ctx, raw) }

func jobJSON(t *testing.T, jobType string, payload any) string {
	t.Helper()
	p, err := json.Marshal(payload)
	require.NoError(t, err)
	b, err := json.Marshal(Job{Type: jobType, Payload: p})
	require.NoError(t, err)
	return string(b)
}

// ── withRetry ─────────────────────────────────────────────────────────────────

func TestWithRetry_ExitoEnTercerIntento(t *testing.T) {
	llamadas := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(attempt int) error {
		llamadas++
		if attempt < 2 {
			return errors.New("todavia no")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, llamadas)
}

func TestWithRetry_DevuelveUltimoError(t *testing.T) {
	err := withRetry(context.Background(), 2, time.Millisecond, func(attempt int) error {
		return errors.New("fallo " + string(rune('a'+attempt)))
	})
	assert.EqualError(t, err, "fallo b")
}

func TestWithRetry_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withRetry(ctx, 3, time.Hour, func(int) error { return errors.New("x") })
	assert.ErrorIs(t, err, context.Canceled)
}

// ── Dispatcher ────────────────────────────────────────────────────────────────

func TestDispatcher_SinRedis(t *testing.T) {
	d := NewDispatcher(nil)
	assert.ErrorIs(t, d.EncolarLiquidacion(context.Background(), relojTest.Hoy()), ErrSinCola)
	assert.ErrorIs(t, d.EncolarReporte(context.Background(), relojTest.Hoy(), "a@b.c"), ErrSinCola)

	var nulo *Dispatcher
	assert.ErrorIs(t, nulo.EncolarLiquidacion(context.Background(), relojTest.Hoy()), ErrSinCola)
}

// ── Pool ──────────────────────────────────────────────────────────────────────

func TestProcessJob_ReintentaHastaElExito(t *testing.T) {
	intentos := 0
	p := NewPool(nil, map[string]Handler{
		QueueLiquidacion: handlerFunc(func(context.Context, json.RawMessage) error {
			intentos++
			if intentos < 2 {
				return errors.New("db ocupada")
			}
			return nil
		}),
	})
	p.backoff = time.Millisecond

	p.processJob(context.Background(), QueueLiquidacion, jobJSON(t, "liquidacion", LiquidacionPayload{Fecha: "2024-03-15"}))
	assert.Equal(t, 2, intentos)
}

func TestProcessJob_AgotaIntentos(t *testing.T) {
	intentos := 0
	p := NewPool(nil, map[string]Handler{
		QueueLiquidacion: handlerFunc(func(context.Context, json.RawMessage) error {
			intentos++
			return errors.New("siempre falla")
		}),
	})
	p.backoff = time.Millisecond

	p.processJob(context.Background(), QueueLiquidacion, jobJSON(t, "liquidacion", LiquidacionPayload{Fecha: "2024-03-15"}))
	assert.Equal(t, MaxAttempts, intentos)
}

func TestNuevoTrabajoFallido_ExtraeFecha(t *testing.T) {
	job := Job{Type: "reporte", Payload: json.RawMessage(`{"fecha":"2024-03-14","to_email":"a@b.c"}`)}
	f := nuevoTrabajoFallido(QueueReporte, job, "smtp caido", MaxAttempts, relojTest.Now())

	assert.Equal(t, "2024-03-14", f.Fecha)
	assert.Equal(t, QueueReporte, f.Cola)
	assert.Equal(t, time.UTC, f.FallidoEn.Location())

	sinFecha := nuevoTrabajoFallido(QueueReporte, Job{Payload: json.RawMessage(`[]`)}, "x", 1, relojTest.Now())
	assert.Empty(t, sinFecha.Fecha)
}

func TestProcessJob_JSONInvalidoNoLlamaAlHandler(t *testing.T) {
	llamado := false
	p := NewPool(nil, map[string]Handler{
		QueueLiquidacion: handlerFunc(func(context.Context, json.RawMessage) error { llamado = true; return nil }),
	})
	p.processJob(context.Background(), QueueLiquidacion, "{no es json")
	assert.False(t, llamado)
}

// contadorBRPop counts commands sent through the client.
type contadorBRPop struct{ n atomic.Int64 }

func (h *contadorBRPop) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *contadorBRPop) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.n.Add(1)
		return next(ctx, cmd)
	}
}

func (h *contadorBRPop) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRunWorker_RedisCaidoNoGiraEnVacio(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	rdb := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()
	contador := &contadorBRPop{}
	rdb.AddHook(contador)

	p := NewPool(rdb, map[string]Handler{
		QueueLiquidacion: handlerFunc(func(context.Context, json.RawMessage) error { return nil }),
	})
	p.backoff = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	fin := make(chan struct{})
	go func() {
		p.runWorker(ctx, 0, []string{QueueLiquidacion})
		close(fin)
	}()

	select {
	case <-fin:
	case <-time.After(3 * time.Second):
		t.Fatal("the worker should stop when the context ends")
	}
	// 50ms, 100ms, 200ms, 400ms of pause fit at most 5 attempts in 500ms.
	assert.LessOrEqual(t, contador.n.Load(), int64(6))
	assert.GreaterOrEqual(t, contador.n.Load(), int64(1))
}

func TestSiguienteEspera(t *testing.T) {
	assert.Equal(t, time.Second, siguienteEspera(0, time.Second))
	assert.Equal(t, 2*time.Second, siguienteEspera(time.Second, time.Second))
	assert.Equal(t, maxEsperaRedis, siguienteEspera(20*time.Second, time.Second))
	assert.Equal(t, maxEsperaRedis, siguienteEspera(maxEsperaRedis, time.Second))
	assert.Equal(t, time.Second, siguienteEspera(0, 0))
}

// ── Workers ───────────────────────────────────────────────────────────────────

func TestLiquidacionWorker(t *testing.T) {
	svc := &stubLiquidacion{}
	w := NewLiquidacionWorker(svc, relojTest)

	require.NoError(t, w.Process(context.Background(), json.RawMessage(`{"fecha":"2024-03-14"}`)))
	assert.Equal(t, []string{"2024-03-14"}, svc.recalculadas)

	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"fecha":"14/03/2024"}`)))
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`[]`)))

	svc.err = errors.New("db caida")
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"fecha":"2024-03-14"}`)))
}

func TestReporteWorker_Envia(t *testing.T) {
	mailer := &stubMailer{configurado: true}
	w := NewReporteWorker(&stubLiquidacion{}, mailer, relojTest, "Kiosco")

	err := w.Process(context.Background(), json.RawMessage(`{"fecha":"2024-03-14","to_email":"duenio@example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"duenio@example.com"}, mailer.enviados)
	assert.Equal(t, "liquidacion_2024-03-14.pdf", mailer.adjunto)
}

func TestReporteWorker_SinDestinoOSinSMTP(t *testing.T) {
	mailer := &stubMailer{configurado: false}
	w := NewReporteWorker(&stubLiquidacion{}, mailer, relojTest, "Kiosco")

	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"fecha":"2024-03-14","to_email":"a@b.c"}`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"fecha":"2024-03-14"}`)))
	assert.Empty(t, mailer.enviados)
}

func TestReporteWorker_ErrorDeEnvioReintenta(t *testing.T) {
	mailer := &stubMailer{configurado: true, err: infra.ErrCircuitOpen}
	w := NewReporteWorker(&stubLiquidacion{}, mailer, relojTest, "Kiosco")

	err := w.Process(context.Background(), json.RawMessage(`{"fecha":"2024-03-14","to_email":"a@b.c"}`))
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
}

// ── Crons ─────────────────────────────────────────────────────────────────────

type stubPurgador struct{ llamadas chan struct{} }

func (p *stubPurgador) PurgarHistorial(context.Context) (int64, error) {
	p.llamadas <- struct{}{}
	return 0, nil
}

func TestRetencionCron_PurgaAlIniciar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := &stubPurgador{llamadas: make(chan struct{}, 4)}

	StartRetencionCron(ctx, p, time.Hour)

	select {
	case <-p.llamadas:
	case <-time.After(2 * time.Second):
		t.Fatal("the first purge should run immediately")
	}
}

func TestCierreCron_DeshabilitadoSinRedis(t *testing.T) {
	assert.NotPanics(t, func() {
		StartCierreCron(context.Background(), CierreCronConfig{Email: "a@b.c", Clock: relojTest})
	})
}
