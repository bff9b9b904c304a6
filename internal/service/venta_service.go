package service

import (
	"context"
	"fmt"
	"time"

	"cajapos/internal/dto"
	"cajapos/internal/metrics"
	"cajapos/internal/model"
	"cajapos/internal/repository"
	"cajapos/internal/tiempo"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaRegistradaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) (*dto.VentaEliminadaResponse, error)
	ListarPorDia(ctx context.Context, fecha time.Time) (*dto.VentasDelDiaResponse, error)
	DetalleVentasHoy(ctx context.Context, productoID uuid.UUID) (*dto.VentasProductoHoyResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	clock        *tiempo.Clock
	efectos      *Efectos
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clock *tiempo.Clock,
	efectos *Efectos,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		clock:        clock,
		efectos:      efectos,
	}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// One transaction:
//   1. Lock the product row
//   2. Reset the daily counters if they belong to another day
//   3. Check stock, append the sale, decrement stock, bump counters
// The settlement refresh runs after commit.

func (s *ventaService) Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaRegistradaResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("%w: producto_id invalido", ErrValidacion)
	}
	if req.Cantidad <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", ErrValidacion)
	}

	ahora := s.clock.Now()
	hoy := s.clock.Fecha(ahora)

	var (
		venta model.Venta
		p     *model.Producto
	)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = s.productoRepo.LockByIDTx(tx, productoID)
		if err != nil {
			return notFound(err, "producto")
		}
		reiniciarDia(p, hoy)

		if req.Cantidad > p.UnidadesRestantes {
			return fmt.Errorf("%w: %s tiene %d unidades", ErrStockInsuficiente, p.Nombre, p.UnidadesRestantes)
		}

		venta = model.Venta{
			ProductoID: p.ID,
			Cantidad:   req.Cantidad,
			Ingreso:    p.Ingreso(req.Cantidad),
			Fecha:      ahora,
		}
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}

		p.UnidadesRestantes -= req.Cantidad
		p.VendidasDia += req.Cantidad
		p.ValorVendidoDia = p.ValorVendidoDia.Add(venta.Ingreso).Round(2)
		return s.productoRepo.SaveTx(tx, p)
	})
	if err != nil {
		return nil, err
	}

	metrics.VentasRegistradas.Inc()
	log.Info().
		Str("producto", p.Codigo).
		Int("cantidad", venta.Cantidad).
		Str("ingreso", venta.Ingreso.StringFixed(2)).
		Msg("venta registrada")

	s.efectos.Aplicar(ctx, hoy)

	venta.Producto = p
	return &dto.VentaRegistradaResponse{
		Venta:             ventaToResponse(&venta),
		UnidadesRestantes: p.UnidadesRestantes,
		VendidasDia:       p.VendidasDia,
		ValorVendidoDia:   p.ValorVendidoDia,
	}, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────
// Deleting a sale restores the units. The product's daily counters are only
// rolled back when the sale belongs to the day they describe.

func (s *ventaService) Eliminar(ctx context.Context, id uuid.UUID) (*dto.VentaEliminadaResponse, error) {
	hoy := s.clock.Hoy()

	var (
		venta *model.Venta
		p     *model.Producto
	)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err, "venta")
		}
		p, err = s.productoRepo.LockByIDTx(tx, venta.ProductoID)
		if err != nil {
			return notFound(err, "producto")
		}
		reiniciarDia(p, hoy)

		p.UnidadesRestantes += venta.Cantidad
		if p.UnidadesRestantes > p.StockInicial {
			p.StockInicial = p.UnidadesRestantes
		}
		if tiempo.MismaFecha(s.clock.Fecha(venta.Fecha), p.Fecha) {
			p.VendidasDia = max(p.VendidasDia-venta.Cantidad, 0)
			p.ValorVendidoDia = decimal.Max(p.ValorVendidoDia.Sub(venta.Ingreso), decimal.Zero).Round(2)
		}

		if err := s.repo.DeleteTx(tx, venta.ID); err != nil {
			return err
		}
		return s.productoRepo.SaveTx(tx, p)
	})
	if err != nil {
		return nil, err
	}

	metrics.VentasEliminadas.Inc()
	log.Info().Str("venta_id", id.String()).Str("producto", p.Codigo).Msg("venta eliminada")

	s.efectos.Aplicar(ctx, s.clock.Fecha(venta.Fecha))

	return &dto.VentaEliminadaResponse{
		UnidadesRestantes: p.UnidadesRestantes,
		VendidasDia:       p.VendidasDia,
		ValorVendidoDia:   p.ValorVendidoDia,
	}, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ListarPorDia(ctx context.Context, fecha time.Time) (*dto.VentasDelDiaResponse, error) {
	desde, hasta := s.clock.DayRange(fecha)
	ventas, err := s.repo.ListEntre(ctx, repository.VentaFilter{Desde: desde, Hasta: hasta})
	if err != nil {
		return nil, err
	}

	resp := &dto.VentasDelDiaResponse{
		Fecha:  tiempo.Civil(fecha),
		Ventas: make([]dto.VentaResponse, 0, len(ventas)),
		Total:  decimal.Zero,
	}
	for i := range ventas {
		resp.Ventas = append(resp.Ventas, ventaToResponse(&ventas[i]))
		resp.Cantidad += ventas[i].Cantidad
		resp.Total = resp.Total.Add(ventas[i].Ingreso)
	}
	return resp, nil
}

func (s *ventaService) DetalleVentasHoy(ctx context.Context, productoID uuid.UUID) (*dto.VentasProductoHoyResponse, error) {
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, notFound(err, "producto")
	}

	desde, hasta := s.clock.DayRange(s.clock.Hoy())
	ventas, err := s.repo.ListEntre(ctx, repository.VentaFilter{Desde: desde, Hasta: hasta, ProductoID: &productoID})
	if err != nil {
		return nil, err
	}

	resp := &dto.VentasProductoHoyResponse{
		ProductoID: p.ID.String(),
		Codigo:     p.Codigo,
		Nombre:     p.Nombre,
		Ventas:     make([]dto.VentaResponse, 0, len(ventas)),
		Total:      decimal.Zero,
	}
	for i := range ventas {
		resp.Ventas = append(resp.Ventas, ventaToResponse(&ventas[i]))
		resp.Cantidad += ventas[i].Cantidad
		resp.Total = resp.Total.Add(ventas[i].Ingreso)
	}
	return resp, nil
}

func ventaToResponse(v *model.Venta) dto.VentaResponse {
	r := dto.VentaResponse{
		ID:         v.ID.String(),
		ProductoID: v.ProductoID.String(),
		Cantidad:   v.Cantidad,
		Ingreso:    v.Ingreso,
		Fecha:      v.Fecha.Format(time.RFC3339),
	}
	if v.Producto != nil {
		r.ProductoNombre = v.Producto.Nombre
	}
	return r
}
