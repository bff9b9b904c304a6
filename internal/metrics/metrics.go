// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cajapos",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cajapos",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	VentasRegistradas = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cajapos",
		Name:      "ventas_registradas_total",
		Help:      "Sales recorded.",
	})

	VentasEliminadas = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cajapos",
		Name:      "ventas_eliminadas_total",
		Help:      "Sales deleted.",
	})

	MovimientosCaja = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cajapos",
		Name:      "movimientos_caja_total",
		Help:      "Manual cash movements recorded by kind.",
	}, []string{"tipo"})

	LiquidacionesCalculadas = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cajapos",
		Name:      "liquidaciones_calculadas_total",
		Help:      "Settlement recomputations.",
	})

	HistorialPurgado = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cajapos",
		Name:      "historial_inventario_purgado_total",
		Help:      "Inventory history rows deleted by the retention job.",
	})

	JobsProcesados = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cajapos",
		Name:      "jobs_procesados_total",
		Help:      "Background jobs by queue and outcome.",
	}, []string{"queue", "resultado"})
)
