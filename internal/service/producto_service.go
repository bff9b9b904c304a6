package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"cajapos/internal/dto"
	"cajapos/internal/model"
	"cajapos/internal/repository"
	"cajapos/internal/tiempo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context) (*dto.ProductoListResponse, error)
	Reordenar(ctx context.Context, id uuid.UUID, posicion int) (*dto.ProductoListResponse, error)
	ActualizarPrecio(ctx context.Context, id uuid.UUID, req dto.ActualizarPrecioRequest) (*dto.ProductoResponse, error)
	HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistorialPrecioListResponse, error)
}

type productoService struct {
	repo       repository.ProductoRepository
	historial  repository.HistorialPrecioRepository
	inventario repository.HistorialInventarioRepository
	clock      *tiempo.Clock
	efectos    *Efectos
	codigo     func() string
}

func NewProductoService(
	repo repository.ProductoRepository,
	historial repository.HistorialPrecioRepository,
	inventario repository.HistorialInventarioRepository,
	clock *tiempo.Clock,
	efectos *Efectos,
) ProductoService {
	return &productoService{
		repo:       repo,
		historial:  historial,
		inventario: inventario,
		clock:      clock,
		efectos:    efectos,
		codigo:     codigoAleatorio,
	}
}

const intentosCodigo = 20

func codigoAleatorio() string {
	return fmt.Sprintf("%06d", rand.IntN(1_000_000))
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", ErrValidacion)
	}
	if req.ValorUnitario.IsNegative() || req.Interes.IsNegative() || req.StockInicial < 0 {
		return nil, fmt.Errorf("%w: valores negativos no permitidos", ErrValidacion)
	}

	codigo, err := s.codigoLibre(ctx)
	if err != nil {
		return nil, err
	}

	ahora := s.clock.Now()
	hoy := s.clock.Fecha(ahora)
	p := model.Producto{
		Codigo:            codigo,
		Nombre:            nombre,
		StockInicial:      req.StockInicial,
		UnidadesRestantes: req.StockInicial,
		ValorUnitario:     req.ValorUnitario.Round(2),
		Interes:           req.Interes.Round(2),
		Fecha:             hoy,
		ValorVendidoDia:   decimal.Zero,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		productos, err := s.repo.LockOrdenadosTx(tx)
		if err != nil {
			return err
		}
		p.Orden = len(productos) + 1
		if err := s.repo.CreateTx(tx, &p); err != nil {
			return err
		}
		if p.StockInicial > 0 && s.inventario != nil {
			err := s.inventario.CreateTx(tx, &model.HistorialInventario{
				ProductoID: p.ID,
				Cantidad:   p.StockInicial,
				ValorTotal: p.ValorUnitario.Mul(decimal.NewFromInt(int64(p.StockInicial))).Round(2),
				Fecha:      ahora,
			})
			if err != nil {
				return err
			}
		}
		if req.Orden == nil {
			return nil
		}
		_, err = s.moverTx(tx, append(productos, p), p.ID, *req.Orden)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.efectos.Aplicar(ctx, hoy)
	creado, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return productoToResponse(creado, hoy), nil
}

// codigoLibre draws random 6-digit codes until one is unused.
func (s *productoService) codigoLibre(ctx context.Context) (string, error) {
	for i := 0; i < intentosCodigo; i++ {
		c := s.codigo()
		existe, err := s.repo.ExisteCodigo(ctx, c)
		if err != nil {
			return "", err
		}
		if !existe {
			return c, nil
		}
	}
	return "", errors.New("no se pudo generar un codigo de producto unico")
}

// ── Lectura ───────────────────────────────────────────────────────────────────

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "producto")
	}
	return productoToResponse(p, s.clock.Hoy()), nil
}

// Listar returns the catalogue in display order with the effective daily
// counters. Stale counters are reported as zero but not written back: the
// next sale of that product resets them.
func (s *productoService) Listar(ctx context.Context) (*dto.ProductoListResponse, error) {
	productos, err := s.repo.ListOrdenados(ctx)
	if err != nil {
		return nil, err
	}
	return listaToResponse(productos, s.clock.Hoy()), nil
}

// ── Reordenar ─────────────────────────────────────────────────────────────────

func (s *productoService) Reordenar(ctx context.Context, id uuid.UUID, posicion int) (*dto.ProductoListResponse, error) {
	var ordenados []model.Producto
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		productos, err := s.repo.LockOrdenadosTx(tx)
		if err != nil {
			return err
		}
		ordenados, err = s.moverTx(tx, productos, id, posicion)
		return err
	})
	if err != nil {
		return nil, err
	}
	return listaToResponse(ordenados, s.clock.Hoy()), nil
}

// moverTx moves id to the 1-based posicion (clamped to [1, n]) and rewrites
// orden as 1..n. Only rows whose orden changes are updated.
func (s *productoService) moverTx(tx *gorm.DB, productos []model.Producto, id uuid.UUID, posicion int) ([]model.Producto, error) {
	idx := -1
	for i := range productos {
		if productos[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: producto no encontrado", ErrNoEncontrado)
	}

	ordenados := Mover(productos, idx, posicion)
	for i := range ordenados {
		if ordenados[i].Orden == i+1 {
			continue
		}
		ordenados[i].Orden = i + 1
		if err := s.repo.UpdateOrdenTx(tx, ordenados[i].ID, i+1); err != nil {
			return nil, err
		}
	}
	return ordenados, nil
}

// Mover returns a copy of productos with the element at idx moved to the
// 1-based posicion, clamped to the list bounds.
func Mover(productos []model.Producto, idx, posicion int) []model.Producto {
	n := len(productos)
	if posicion < 1 {
		posicion = 1
	}
	if posicion > n {
		posicion = n
	}
	item := productos[idx]
	resto := make([]model.Producto, 0, n)
	resto = append(resto, productos[:idx]...)
	resto = append(resto, productos[idx+1:]...)

	out := make([]model.Producto, 0, n)
	out = append(out, resto[:posicion-1]...)
	out = append(out, item)
	out = append(out, resto[posicion-1:]...)
	return out
}

// ── Precio ────────────────────────────────────────────────────────────────────

// ActualizarPrecio sets the marked-up selling price. The stored base cost is
// derived from it as precio / (1 + interes/100) and the change is recorded in
// the price history.
func (s *productoService) ActualizarPrecio(ctx context.Context, id uuid.UUID, req dto.ActualizarPrecioRequest) (*dto.ProductoResponse, error) {
	if !req.Precio.IsPositive() {
		return nil, fmt.Errorf("%w: el precio debe ser mayor a cero", ErrValidacion)
	}

	var p *model.Producto
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = s.repo.LockByIDTx(tx, id)
		if err != nil {
			return notFound(err, "producto")
		}
		anterior := p.ValorUnitario
		p.ValorUnitario = req.Precio.DivRound(p.Factor(), 2)
		if err := s.repo.SaveTx(tx, p); err != nil {
			return err
		}
		if s.historial == nil {
			return nil
		}
		return s.historial.CreateTx(tx, &model.HistorialPrecio{
			ProductoID:            p.ID,
			ValorUnitarioAnterior: anterior,
			ValorUnitarioNuevo:    p.ValorUnitario,
			PrecioVentaNuevo:      p.PrecioVenta().Round(2),
			Interes:               p.Interes,
		})
	})
	if err != nil {
		return nil, err
	}

	hoy := s.clock.Hoy()
	s.efectos.Aplicar(ctx, hoy)
	return productoToResponse(p, hoy), nil
}

func (s *productoService) HistorialPrecios(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistorialPrecioListResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, "producto")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, total, err := s.historial.ListByProducto(ctx, id, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.HistorialPrecioItem, 0, len(rows))
	for _, h := range rows {
		items = append(items, dto.HistorialPrecioItem{
			ID:                    h.ID.String(),
			ProductoID:            h.ProductoID.String(),
			ValorUnitarioAnterior: h.ValorUnitarioAnterior,
			ValorUnitarioNuevo:    h.ValorUnitarioNuevo,
			PrecioVentaNuevo:      h.PrecioVentaNuevo,
			Interes:               h.Interes,
			CreatedAt:             h.CreatedAt.Format(time.RFC3339),
		})
	}
	return &dto.HistorialPrecioListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// reiniciarDia zeroes the daily counters when p was last touched on another
// day and stamps it with hoy. It reports whether anything changed.
func reiniciarDia(p *model.Producto, hoy time.Time) bool {
	if tiempo.MismaFecha(p.Fecha, hoy) {
		return false
	}
	p.Fecha = hoy
	p.VendidasDia = 0
	p.ValorVendidoDia = decimal.Zero
	return true
}

func productoToResponse(p *model.Producto, hoy time.Time) *dto.ProductoResponse {
	vendidas, valor := p.VendidasDia, p.ValorVendidoDia
	if !tiempo.MismaFecha(p.Fecha, hoy) {
		vendidas, valor = 0, decimal.Zero
	}
	return &dto.ProductoResponse{
		ID:                p.ID.String(),
		Codigo:            p.Codigo,
		Nombre:            p.Nombre,
		Orden:             p.Orden,
		StockInicial:      p.StockInicial,
		UnidadesRestantes: p.UnidadesRestantes,
		ValorUnitario:     p.ValorUnitario,
		Interes:           p.Interes,
		PrecioVenta:       p.PrecioVenta().Round(2),
		VendidasDia:       vendidas,
		ValorVendidoDia:   valor,
		Fecha:             tiempo.Civil(hoy),
	}
}

func listaToResponse(productos []model.Producto, hoy time.Time) *dto.ProductoListResponse {
	resp := &dto.ProductoListResponse{
		Data:            make([]dto.ProductoResponse, 0, len(productos)),
		TotalVendidoHoy: decimal.Zero,
	}
	for i := range productos {
		r := productoToResponse(&productos[i], hoy)
		resp.Data = append(resp.Data, *r)
		resp.TotalVendidoHoy = resp.TotalVendidoHoy.Add(r.ValorVendidoDia)
	}
	resp.Total = len(resp.Data)
	return resp
}
