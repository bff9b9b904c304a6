package service

import (
	"context"
	"time"

	"cajapos/internal/dto"
	"cajapos/internal/repository"

	"github.com/rs/zerolog/log"
)

const ttlDashboard = 60 * time.Second

type DashboardService interface {
	Resumen(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	productoRepo repository.ProductoRepository
	ventaRepo    repository.VentaRepository
	cajaRepo     repository.CajaRepository
	cache        Cache
}

func NewDashboardService(
	productoRepo repository.ProductoRepository,
	ventaRepo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	cache Cache,
) DashboardService {
	return &dashboardService{productoRepo: productoRepo, ventaRepo: ventaRepo, cajaRepo: cajaRepo, cache: cache}
}

// Resumen serves the all-time totals from cache when possible. Cache errors
// only cost a recomputation.
func (s *dashboardService) Resumen(ctx context.Context) (*dto.DashboardResponse, error) {
	if s.cache != nil {
		var cached dto.DashboardResponse
		ok, err := s.cache.Get(ctx, claveDashboard, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("dashboard: cache no disponible")
		} else if ok {
			return &cached, nil
		}
	}

	productos, err := s.productoRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	unidades, ingreso, err := s.ventaRepo.Totales(ctx)
	if err != nil {
		return nil, err
	}
	movimientos, err := s.cajaRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	inventario, err := valorInventario(ctx, s.productoRepo)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		TotalProductos:        productos,
		TotalUnidadesVendidas: unidades,
		ValorTotalVendido:     ingreso.Round(2),
		TotalMovimientos:      movimientos,
		InventarioTotal:       inventario,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, claveDashboard, resp, ttlDashboard); err != nil {
			log.Warn().Err(err).Msg("dashboard: no se pudo guardar en cache")
		}
	}
	return resp, nil
}
