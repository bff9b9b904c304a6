package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cajapos/internal/dto"
	"cajapos/internal/metrics"
	"cajapos/internal/model"
	"cajapos/internal/repository"
	"cajapos/internal/tiempo"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CajaService handles the manual cash movements of the till.
type CajaService interface {
	Registrar(ctx context.Context, req dto.MovimientoCajaRequest) (*dto.MovimientoCajaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	ListarPorDia(ctx context.Context, fecha time.Time) (*dto.MovimientosDelDiaResponse, error)
	ListarSalidasPorDia(ctx context.Context, fecha time.Time) (*dto.MovimientosDelDiaResponse, error)
}

type cajaService struct {
	repo    repository.CajaRepository
	clock   *tiempo.Clock
	efectos *Efectos
}

func NewCajaService(repo repository.CajaRepository, clock *tiempo.Clock, efectos *Efectos) CajaService {
	return &cajaService{repo: repo, clock: clock, efectos: efectos}
}

var descripcionPorDefecto = map[string]string{
	model.MovimientoEntrada: "Entrada manual de caja",
	model.MovimientoSalida:  "Salida manual de caja",
	model.MovimientoGasto:   "Gasto",
}

func tipoValido(tipo string) bool {
	switch tipo {
	case model.MovimientoEntrada, model.MovimientoSalida, model.MovimientoGasto:
		return true
	}
	return false
}

// ── Registrar ─────────────────────────────────────────────────────────────────

func (s *cajaService) Registrar(ctx context.Context, req dto.MovimientoCajaRequest) (*dto.MovimientoCajaResponse, error) {
	tipo := strings.ToLower(strings.TrimSpace(req.Tipo))
	if !tipoValido(tipo) {
		return nil, fmt.Errorf("%w: tipo de movimiento desconocido %q", ErrValidacion, req.Tipo)
	}
	if !req.Monto.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser mayor a cero", ErrValidacion)
	}

	descripcion := strings.TrimSpace(req.Descripcion)
	if descripcion == "" {
		descripcion = descripcionPorDefecto[tipo]
	}

	ahora := s.clock.Now()
	m := model.MovimientoCaja{
		Tipo:        tipo,
		Monto:       req.Monto.Round(2),
		Descripcion: descripcion,
		Fecha:       ahora,
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		return nil, err
	}

	metrics.MovimientosCaja.WithLabelValues(tipo).Inc()
	log.Info().Str("tipo", tipo).Str("monto", m.Monto.StringFixed(2)).Msg("movimiento de caja registrado")

	s.efectos.Aplicar(ctx, s.clock.Fecha(ahora))
	r := movimientoToResponse(&m)
	return &r, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────
// Only salida movements are reversible; entradas and gastos stay on the ledger.

func (s *cajaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "movimiento")
	}
	if m.Tipo != model.MovimientoSalida {
		return ErrNoEliminable
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Str("movimiento_id", id.String()).Msg("salida eliminada")
	s.efectos.Aplicar(ctx, s.clock.Fecha(m.Fecha))
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) ListarPorDia(ctx context.Context, fecha time.Time) (*dto.MovimientosDelDiaResponse, error) {
	return s.listar(ctx, fecha)
}

// ListarSalidasPorDia lists the cash that left the till: salidas and gastos.
func (s *cajaService) ListarSalidasPorDia(ctx context.Context, fecha time.Time) (*dto.MovimientosDelDiaResponse, error) {
	return s.listar(ctx, fecha, model.MovimientoSalida, model.MovimientoGasto)
}

func (s *cajaService) listar(ctx context.Context, fecha time.Time, tipos ...string) (*dto.MovimientosDelDiaResponse, error) {
	desde, hasta := s.clock.DayRange(fecha)
	movs, err := s.repo.ListEntre(ctx, desde, hasta, tipos...)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovimientosDelDiaResponse{
		Fecha:       tiempo.Civil(fecha),
		Movimientos: make([]dto.MovimientoCajaResponse, 0, len(movs)),
		Total:       decimal.Zero,
	}
	for i := range movs {
		resp.Movimientos = append(resp.Movimientos, movimientoToResponse(&movs[i]))
		resp.Total = resp.Total.Add(movs[i].Monto)
	}
	return resp, nil
}

func movimientoToResponse(m *model.MovimientoCaja) dto.MovimientoCajaResponse {
	return dto.MovimientoCajaResponse{
		ID:          m.ID.String(),
		Tipo:        m.Tipo,
		Monto:       m.Monto,
		Descripcion: m.Descripcion,
		Fecha:       m.Fecha.Format(time.RFC3339),
	}
}
