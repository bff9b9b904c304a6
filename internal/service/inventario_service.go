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
	"gorm.io/gorm"
)

// InventarioService handles restocks, the restock history and the
// valuation of the units on hand.
type InventarioService interface {
	Entrada(ctx context.Context, req dto.EntradaInventarioRequest) (*dto.EntradaInventarioResponse, error)
	Historial(ctx context.Context) ([]dto.HistorialInventarioItem, error)
	ValorInventario(ctx context.Context) (decimal.Decimal, error)
	PurgarHistorial(ctx context.Context) (int64, error)
}

type inventarioService struct {
	productoRepo  repository.ProductoRepository
	historialRepo repository.HistorialInventarioRepository
	clock         *tiempo.Clock
	efectos       *Efectos
	retencion     int
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	historialRepo repository.HistorialInventarioRepository,
	clock *tiempo.Clock,
	efectos *Efectos,
	retencionDias int,
) InventarioService {
	if retencionDias <= 0 {
		retencionDias = 90
	}
	return &inventarioService{
		productoRepo:  productoRepo,
		historialRepo: historialRepo,
		clock:         clock,
		efectos:       efectos,
		retencion:     retencionDias,
	}
}

// ── Entrada ───────────────────────────────────────────────────────────────────
// A restock adds cantidad to both the remaining units and the initial stock,
// and logs the entry valued at cantidad × valor_unitario.

func (s *inventarioService) Entrada(ctx context.Context, req dto.EntradaInventarioRequest) (*dto.EntradaInventarioResponse, error) {
	codigo := strings.TrimSpace(req.Codigo)
	if codigo == "" && req.ProductoID == "" {
		return nil, fmt.Errorf("%w: indique codigo o producto_id", ErrValidacion)
	}
	if req.Cantidad <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", ErrValidacion)
	}
	var productoID uuid.UUID
	if req.ProductoID != "" {
		id, err := uuid.Parse(req.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id invalido", ErrValidacion)
		}
		productoID = id
	}

	ahora := s.clock.Now()
	var (
		p       *model.Producto
		entrada model.HistorialInventario
	)
	err := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		var err error
		if productoID != uuid.Nil {
			p, err = s.productoRepo.LockByIDTx(tx, productoID)
		} else {
			p, err = s.productoRepo.LockByCodigoTx(tx, codigo)
		}
		if err != nil {
			return notFound(err, "producto")
		}

		p.UnidadesRestantes += req.Cantidad
		p.StockInicial += req.Cantidad
		if err := s.productoRepo.SaveTx(tx, p); err != nil {
			return err
		}

		entrada = model.HistorialInventario{
			ProductoID: p.ID,
			Cantidad:   req.Cantidad,
			ValorTotal: p.ValorUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad))).Round(2),
			Fecha:      ahora,
		}
		return s.historialRepo.CreateTx(tx, &entrada)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("producto", p.Codigo).Int("cantidad", req.Cantidad).Msg("entrada de inventario")
	s.efectos.Aplicar(ctx, s.clock.Fecha(ahora))

	entrada.Producto = p
	return &dto.EntradaInventarioResponse{
		Entrada:           historialToItem(&entrada),
		UnidadesRestantes: p.UnidadesRestantes,
		StockInicial:      p.StockInicial,
	}, nil
}

// ── Historial ─────────────────────────────────────────────────────────────────

// Historial lists the entries inside the retention window, newest first.
func (s *inventarioService) Historial(ctx context.Context) ([]dto.HistorialInventarioItem, error) {
	rows, err := s.historialRepo.ListDesde(ctx, s.limiteRetencion())
	if err != nil {
		return nil, err
	}
	items := make([]dto.HistorialInventarioItem, 0, len(rows))
	for i := range rows {
		items = append(items, historialToItem(&rows[i]))
	}
	return items, nil
}

// PurgarHistorial deletes the entries older than the retention window.
// It is driven by the retention cron, never by reads.
func (s *inventarioService) PurgarHistorial(ctx context.Context) (int64, error) {
	limite := s.limiteRetencion()
	n, err := s.historialRepo.DeleteAntesDe(ctx, limite)
	if err != nil {
		return 0, err
	}
	metrics.HistorialPurgado.Add(float64(n))
	if n > 0 {
		log.Info().Int64("filas", n).Str("antes_de", tiempo.Civil(limite)).Msg("historial de inventario purgado")
	}
	return n, nil
}

func (s *inventarioService) limiteRetencion() time.Time {
	return s.clock.Now().AddDate(0, 0, -s.retencion)
}

// ── Valorizacion ──────────────────────────────────────────────────────────────

func (s *inventarioService) ValorInventario(ctx context.Context) (decimal.Decimal, error) {
	return valorInventario(ctx, s.productoRepo)
}

// valorInventario is Σ unidades_restantes × precio_venta over the catalogue,
// rounded to cents once at the end.
func valorInventario(ctx context.Context, repo repository.ProductoRepository) (decimal.Decimal, error) {
	total, err := repo.SumValorInventario(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}

func historialToItem(h *model.HistorialInventario) dto.HistorialInventarioItem {
	item := dto.HistorialInventarioItem{
		ID:         h.ID.String(),
		ProductoID: h.ProductoID.String(),
		Cantidad:   h.Cantidad,
		ValorTotal: h.ValorTotal,
		Fecha:      h.Fecha.Format(time.RFC3339),
	}
	if h.Producto != nil {
		item.ProductoCodigo = h.Producto.Codigo
		item.ProductoNombre = h.Producto.Nombre
	}
	return item
}
