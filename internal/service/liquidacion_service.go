package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cajapos/internal/dto"
	"cajapos/internal/infra"
	"cajapos/internal/metrics"
	"cajapos/internal/model"
	"cajapos/internal/repository"
	"cajapos/internal/tiempo"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LiquidacionService computes the daily settlement. A settlement is a pure
// projection of the ventas and movimientos_caja ledgers:
//
//	caja = caja_anterior + ventas + entradas - salidas - gastos
//
// where caja_anterior is the caja of the most recent settlement strictly
// before the day, or zero. Each computation overwrites the day's snapshot.
type LiquidacionService interface {
	Calcular(ctx context.Context, fecha time.Time) (*dto.LiquidacionResponse, error)
	Hoy(ctx context.Context) (*dto.LiquidacionResponse, error)
	Ultima(ctx context.Context) (*dto.LiquidacionResponse, error)
	Rango(ctx context.Context, desde, hasta time.Time) (*dto.LiquidacionRangoResponse, error)
	// Recalcular refreshes desde and every later stored snapshot, in order.
	Recalcular(ctx context.Context, desde time.Time) error
	// Reparar recomputes every stored snapshot inside the optional bounds.
	Reparar(ctx context.Context, desde, hasta *time.Time) ([]dto.LiquidacionResponse, error)
	ExportarXLSX(ctx context.Context, desde, hasta time.Time) ([]byte, error)
	ReportePDF(ctx context.Context, fecha time.Time) ([]byte, error)
}

type liquidacionService struct {
	repo         repository.LiquidacionRepository
	ventaRepo    repository.VentaRepository
	cajaRepo     repository.CajaRepository
	productoRepo repository.ProductoRepository
	locker       Locker
	clock        *tiempo.Clock
	maxDias      int
	negocio      string
}

func NewLiquidacionService(
	repo repository.LiquidacionRepository,
	ventaRepo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	productoRepo repository.ProductoRepository,
	locker Locker,
	clock *tiempo.Clock,
	maxDias int,
	negocio string,
) LiquidacionService {
	if maxDias <= 0 {
		maxDias = 366
	}
	return &liquidacionService{
		repo:         repo,
		ventaRepo:    ventaRepo,
		cajaRepo:     cajaRepo,
		productoRepo: productoRepo,
		locker:       locker,
		clock:        clock,
		maxDias:      maxDias,
		negocio:      negocio,
	}
}

// ── Calcular ──────────────────────────────────────────────────────────────────

func (s *liquidacionService) Calcular(ctx context.Context, fecha time.Time) (*dto.LiquidacionResponse, error) {
	liq, err := s.calcular(ctx, fecha)
	if err != nil {
		return nil, err
	}
	r := liquidacionToResponse(liq)
	return &r, nil
}

func (s *liquidacionService) Hoy(ctx context.Context) (*dto.LiquidacionResponse, error) {
	return s.Calcular(ctx, s.clock.Hoy())
}

// Ultima recomputes the most recent stored snapshot, or today when none exists.
func (s *liquidacionService) Ultima(ctx context.Context) (*dto.LiquidacionResponse, error) {
	fecha := s.clock.Hoy()
	ultima, err := s.repo.FindUltima(ctx)
	switch {
	case err == nil:
		fecha = s.clock.DesdeCivil(ultima.Fecha)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return s.Calcular(ctx, fecha)
}

// calcular projects fecha from the ledgers and upserts the snapshot while
// holding the day's lock. A lock backend failure degrades to the upsert alone.
func (s *liquidacionService) calcular(ctx context.Context, fecha time.Time) (*model.Liquidacion, error) {
	fecha = s.clock.Fecha(fecha)
	if fecha.After(s.clock.Hoy()) {
		return nil, fmt.Errorf("%w: la fecha %s es futura", ErrValidacion, tiempo.Civil(fecha))
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, "liquidacion:"+tiempo.Civil(fecha))
		switch {
		case errors.Is(err, infra.ErrLockOcupado):
			return nil, fmt.Errorf("%w: liquidacion %s", ErrOcupado, tiempo.Civil(fecha))
		case err != nil:
			log.Warn().Err(err).Str("fecha", tiempo.Civil(fecha)).Msg("liquidacion: lock no disponible, continuando sin lock")
		default:
			defer unlock()
		}
	}

	liq, err := s.proyectar(ctx, fecha)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, liq); err != nil {
		return nil, fmt.Errorf("guardando liquidacion %s: %w", tiempo.Civil(fecha), err)
	}
	metrics.LiquidacionesCalculadas.Inc()
	return liq, nil
}

func (s *liquidacionService) proyectar(ctx context.Context, fecha time.Time) (*model.Liquidacion, error) {
	desde, hasta := s.clock.DayRange(fecha)

	ventas, err := s.ventaRepo.SumIngresoEntre(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	porTipo, err := s.cajaRepo.SumPorTipoEntre(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}

	cajaAnterior := decimal.Zero
	anterior, err := s.repo.FindAnterior(ctx, fecha)
	switch {
	case err == nil:
		cajaAnterior = anterior.Caja
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	inventario, err := s.inventarioPara(ctx, fecha)
	if err != nil {
		return nil, err
	}

	liq := &model.Liquidacion{
		Fecha:           fecha,
		CajaAnterior:    cajaAnterior.Round(2),
		Ventas:          ventas.Round(2),
		Entradas:        porTipo[model.MovimientoEntrada].Round(2),
		Salidas:         porTipo[model.MovimientoSalida].Round(2),
		Gastos:          porTipo[model.MovimientoGasto].Round(2),
		InventarioValor: inventario,
	}
	liq.Caja = liq.CajaAnterior.
		Add(liq.Ventas).
		Add(liq.Entradas).
		Sub(liq.Salidas).
		Sub(liq.Gastos)
	return liq, nil
}

// inventarioPara returns the current valuation for today. A past day keeps the
// valuation captured in its snapshot; only a past day without one gets the
// current figure.
func (s *liquidacionService) inventarioPara(ctx context.Context, fecha time.Time) (decimal.Decimal, error) {
	if !fecha.Before(s.clock.Hoy()) {
		return valorInventario(ctx, s.productoRepo)
	}
	previo, err := s.repo.FindByFecha(ctx, fecha)
	switch {
	case err == nil:
		return previo.InventarioValor, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return valorInventario(ctx, s.productoRepo)
	default:
		return decimal.Zero, err
	}
}

// ── Rango ─────────────────────────────────────────────────────────────────────

func (s *liquidacionService) Rango(ctx context.Context, desde, hasta time.Time) (*dto.LiquidacionRangoResponse, error) {
	dias, err := s.rango(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}

	resp := &dto.LiquidacionRangoResponse{
		Desde:         tiempo.Civil(desde),
		Hasta:         tiempo.Civil(hasta),
		Dias:          make([]dto.LiquidacionResponse, 0, len(dias)),
		TotalVentas:   decimal.Zero,
		TotalEntradas: decimal.Zero,
		TotalSalidas:  decimal.Zero,
		TotalGastos:   decimal.Zero,
		CajaFinal:     decimal.Zero,
	}
	for i := range dias {
		resp.Dias = append(resp.Dias, liquidacionToResponse(&dias[i]))
		resp.TotalVentas = resp.TotalVentas.Add(dias[i].Ventas)
		resp.TotalEntradas = resp.TotalEntradas.Add(dias[i].Entradas)
		resp.TotalSalidas = resp.TotalSalidas.Add(dias[i].Salidas)
		resp.TotalGastos = resp.TotalGastos.Add(dias[i].Gastos)
		resp.CajaFinal = dias[i].Caja
	}

	resp.InventarioTotal, err = valorInventario(ctx, s.productoRepo)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// rango walks desde..hasta day by day so every day's caja_anterior is the
// caja just computed for the day before.
func (s *liquidacionService) rango(ctx context.Context, desde, hasta time.Time) ([]model.Liquidacion, error) {
	desde, hasta = s.clock.Fecha(desde), s.clock.Fecha(hasta)
	if desde.After(hasta) {
		return nil, fmt.Errorf("%w: desde es posterior a hasta", ErrValidacion)
	}
	if hasta.After(s.clock.Hoy()) {
		return nil, fmt.Errorf("%w: hasta no puede ser una fecha futura", ErrValidacion)
	}

	n := 0
	for d := desde; !d.After(hasta); d = s.clock.SiguienteDia(d) {
		if n++; n > s.maxDias {
			return nil, fmt.Errorf("%w: el rango excede %d dias", ErrValidacion, s.maxDias)
		}
	}

	dias := make([]model.Liquidacion, 0, n)
	for d := desde; !d.After(hasta); d = s.clock.SiguienteDia(d) {
		liq, err := s.calcular(ctx, d)
		if err != nil {
			return nil, err
		}
		dias = append(dias, *liq)
	}
	return dias, nil
}

// ── Recalculo ─────────────────────────────────────────────────────────────────

func (s *liquidacionService) Recalcular(ctx context.Context, desde time.Time) error {
	desde = s.clock.Fecha(desde)
	hoy := s.clock.Hoy()
	if desde.After(hoy) {
		return nil
	}

	posteriores, err := s.repo.ListEntre(ctx, s.clock.SiguienteDia(desde), hoy)
	if err != nil {
		return err
	}
	if _, err := s.calcular(ctx, desde); err != nil {
		return err
	}
	for i := range posteriores {
		if _, err := s.calcular(ctx, s.clock.DesdeCivil(posteriores[i].Fecha)); err != nil {
			return err
		}
	}
	return nil
}

func (s *liquidacionService) Reparar(ctx context.Context, desde, hasta *time.Time) ([]dto.LiquidacionResponse, error) {
	inicio := time.Date(1, 1, 1, 0, 0, 0, 0, s.clock.Location())
	fin := s.clock.Hoy()
	if desde != nil {
		inicio = s.clock.Fecha(*desde)
	}
	if hasta != nil {
		fin = s.clock.Fecha(*hasta)
	}
	if inicio.After(fin) {
		return nil, fmt.Errorf("%w: desde es posterior a hasta", ErrValidacion)
	}

	guardadas, err := s.repo.ListEntre(ctx, inicio, fin)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LiquidacionResponse, 0, len(guardadas))
	for i := range guardadas {
		liq, err := s.calcular(ctx, s.clock.DesdeCivil(guardadas[i].Fecha))
		if err != nil {
			return out, err
		}
		if !liq.Caja.Equal(guardadas[i].Caja) {
			log.Info().
				Str("fecha", tiempo.Civil(liq.Fecha)).
				Str("antes", guardadas[i].Caja.StringFixed(2)).
				Str("despues", liq.Caja.StringFixed(2)).
				Msg("liquidacion corregida")
		}
		out = append(out, liquidacionToResponse(liq))
	}
	return out, nil
}

// ── Exportacion ───────────────────────────────────────────────────────────────

func (s *liquidacionService) ExportarXLSX(ctx context.Context, desde, hasta time.Time) ([]byte, error) {
	dias, err := s.rango(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	return infra.GenerateLiquidacionXLSX(dias)
}

func (s *liquidacionService) ReportePDF(ctx context.Context, fecha time.Time) ([]byte, error) {
	liq, err := s.calcular(ctx, fecha)
	if err != nil {
		return nil, err
	}
	return infra.GenerateLiquidacionPDF(s.negocio, liq, s.clock.Now())
}

func liquidacionToResponse(l *model.Liquidacion) dto.LiquidacionResponse {
	return dto.LiquidacionResponse{
		Fecha:           tiempo.Civil(l.Fecha),
		CajaAnterior:    l.CajaAnterior,
		Ventas:          l.Ventas,
		Entradas:        l.Entradas,
		Salidas:         l.Salidas,
		Gastos:          l.Gastos,
		Caja:            l.Caja,
		InventarioValor: l.InventarioValor,
	}
}
