package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"cajapos/internal/model"
	"cajapos/internal/repository"
	"cajapos/internal/service"
	"cajapos/internal/tiempo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

// seed stores p as-is and returns its id.
func (r *stubProductoRepo) seed(p model.Producto) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.productos[p.ID] = &p
	return p.ID
}

func (r *stubProductoRepo) get(id uuid.UUID) model.Producto {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.productos[id]
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) ExisteCodigo(_ context.Context, codigo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.Codigo == codigo {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductoRepo) MaxOrden(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mayor := 0
	for _, p := range r.productos {
		mayor = max(mayor, p.Orden)
	}
	return mayor, nil
}

func (r *stubProductoRepo) ListOrdenados(_ context.Context) ([]model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Orden != out[j].Orden {
			return out[i].Orden < out[j].Orden
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *stubProductoRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.productos)), nil
}

func (r *stubProductoRepo) SumValorInventario(_ context.Context) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.productos {
		total = total.Add(p.ValorInventario())
	}
	return total, nil
}

func (r *stubProductoRepo) CreateTx(_ *gorm.DB, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) SaveTx(_ *gorm.DB, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) LockByCodigoTx(_ *gorm.DB, codigo string) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.Codigo == codigo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) LockOrdenadosTx(_ *gorm.DB) ([]model.Producto, error) {
	return r.ListOrdenados(context.Background())
}

func (r *stubProductoRepo) UpdateOrdenTx(_ *gorm.DB, id uuid.UUID, orden int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Orden = orden
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

// ── Ventas ────────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	mu     sync.Mutex
	ventas map[uuid.UUID]model.Venta
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]model.Venta)}
}

func (r *stubVentaRepo) seed(v model.Venta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas[v.ID] = v
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.ID = uuid.New()
	r.ventas[v.ID] = *v
	return nil
}

func (r *stubVentaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (r *stubVentaRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ventas, id)
	return nil
}

func (r *stubVentaRepo) ListEntre(_ context.Context, f repository.VentaFilter) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venta
	for _, v := range r.ventas {
		if v.Fecha.Before(f.Desde) || !v.Fecha.Before(f.Hasta) {
			continue
		}
		if f.ProductoID != nil && v.ProductoID != *f.ProductoID {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (r *stubVentaRepo) SumIngresoEntre(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	ventas, _ := r.ListEntre(ctx, repository.VentaFilter{Desde: desde, Hasta: hasta})
	total := decimal.Zero
	for _, v := range ventas {
		total = total.Add(v.Ingreso)
	}
	return total, nil
}

func (r *stubVentaRepo) Totales(_ context.Context) (int64, decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var unidades int64
	ingreso := decimal.Zero
	for _, v := range r.ventas {
		unidades += int64(v.Cantidad)
		ingreso = ingreso.Add(v.Ingreso)
	}
	return unidades, ingreso, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

// ── Caja ──────────────────────────────────────────────────────────────────────

type stubCajaRepo struct {
	mu   sync.Mutex
	movs map[uuid.UUID]model.MovimientoCaja
}

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{movs: make(map[uuid.UUID]model.MovimientoCaja)}
}

func (r *stubCajaRepo) seed(tipo, monto string, fecha time.Time) uuid.UUID {
	m := model.MovimientoCaja{ID: uuid.New(), Tipo: tipo, Monto: decimal.RequireFromString(monto), Fecha: fecha}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movs[m.ID] = m
	return m.ID
}

func (r *stubCajaRepo) Create(_ context.Context, m *model.MovimientoCaja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.New()
	r.movs[m.ID] = *m
	return nil
}

func (r *stubCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *stubCajaRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.movs, id)
	return nil
}

func (r *stubCajaRepo) ListEntre(_ context.Context, desde, hasta time.Time, tipos ...string) ([]model.MovimientoCaja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoCaja
	for _, m := range r.movs {
		if m.Fecha.Before(desde) || !m.Fecha.Before(hasta) {
			continue
		}
		if len(tipos) > 0 && !contiene(tipos, m.Tipo) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (r *stubCajaRepo) SumPorTipoEntre(ctx context.Context, desde, hasta time.Time) (map[string]decimal.Decimal, error) {
	movs, _ := r.ListEntre(ctx, desde, hasta)
	out := map[string]decimal.Decimal{
		model.MovimientoEntrada: decimal.Zero,
		model.MovimientoSalida:  decimal.Zero,
		model.MovimientoGasto:   decimal.Zero,
	}
	for _, m := range movs {
		out[m.Tipo] = out[m.Tipo].Add(m.Monto)
	}
	return out, nil
}

func (r *stubCajaRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.movs)), nil
}

func contiene(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}

// ── Liquidaciones ─────────────────────────────────────────────────────────────

// stubLiquidacionRepo keys snapshots by civil date and hands dates back as UTC
// midnight, the way a Postgres date column does.
type stubLiquidacionRepo struct {
	mu      sync.Mutex
	filas   map[string]model.Liquidacion
	upserts int
}

var _ repository.LiquidacionRepository = (*stubLiquidacionRepo)(nil)

func newStubLiquidacionRepo() *stubLiquidacionRepo {
	return &stubLiquidacionRepo{filas: make(map[string]model.Liquidacion)}
}

func (r *stubLiquidacionRepo) comoFecha(l model.Liquidacion) model.Liquidacion {
	y, m, d := l.Fecha.Date()
	l.Fecha = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return l
}

func (r *stubLiquidacionRepo) fechas() []string {
	keys := make([]string, 0, len(r.filas))
	for k := range r.filas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *stubLiquidacionRepo) FindByFecha(_ context.Context, fecha time.Time) (*model.Liquidacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.filas[tiempo.Civil(fecha)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *stubLiquidacionRepo) FindAnterior(_ context.Context, fecha time.Time) (*model.Liquidacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limite := tiempo.Civil(fecha)
	keys := r.fechas()
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] < limite {
			l := r.filas[keys[i]]
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLiquidacionRepo) FindUltima(_ context.Context) (*model.Liquidacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := r.fechas()
	if len(keys) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	l := r.filas[keys[len(keys)-1]]
	return &l, nil
}

func (r *stubLiquidacionRepo) ListEntre(_ context.Context, desde, hasta time.Time) ([]model.Liquidacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, h := tiempo.Civil(desde), tiempo.Civil(hasta)
	var out []model.Liquidacion
	for _, k := range r.fechas() {
		if k >= d && k <= h {
			out = append(out, r.filas[k])
		}
	}
	return out, nil
}

func (r *stubLiquidacionRepo) Upsert(_ context.Context, l *model.Liquidacion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.filas[tiempo.Civil(l.Fecha)] = r.comoFecha(*l)
	return nil
}

func (r *stubLiquidacionRepo) get(fecha string) (model.Liquidacion, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.filas[fecha]
	return l, ok
}

// ── Historiales ───────────────────────────────────────────────────────────────

type stubHistorialPrecioRepo struct {
	mu    sync.Mutex
	filas []model.HistorialPrecio
}

var _ repository.HistorialPrecioRepository = (*stubHistorialPrecioRepo)(nil)

func (r *stubHistorialPrecioRepo) CreateTx(_ *gorm.DB, h *model.HistorialPrecio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = uuid.New()
	h.CreatedAt = time.Now()
	r.filas = append(r.filas, *h)
	return nil
}

func (r *stubHistorialPrecioRepo) ListByProducto(_ context.Context, productoID uuid.UUID, page, limit int) ([]model.HistorialPrecio, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var todas []model.HistorialPrecio
	for i := len(r.filas) - 1; i >= 0; i-- {
		if r.filas[i].ProductoID == productoID {
			todas = append(todas, r.filas[i])
		}
	}
	inicio := (page - 1) * limit
	if inicio >= len(todas) {
		return nil, int64(len(todas)), nil
	}
	fin := min(inicio+limit, len(todas))
	return todas[inicio:fin], int64(len(todas)), nil
}

type stubHistorialInventarioRepo struct {
	mu    sync.Mutex
	filas []model.HistorialInventario
}

var _ repository.HistorialInventarioRepository = (*stubHistorialInventarioRepo)(nil)

func (r *stubHistorialInventarioRepo) CreateTx(_ *gorm.DB, h *model.HistorialInventario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = uuid.New()
	r.filas = append(r.filas, *h)
	return nil
}

func (r *stubHistorialInventarioRepo) ListDesde(_ context.Context, desde time.Time) ([]model.HistorialInventario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.HistorialInventario
	for i := len(r.filas) - 1; i >= 0; i-- {
		if !r.filas[i].Fecha.Before(desde) {
			out = append(out, r.filas[i])
		}
	}
	return out, nil
}

func (r *stubHistorialInventarioRepo) DeleteAntesDe(_ context.Context, limite time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.filas[:0]
	var n int64
	for _, h := range r.filas {
		if h.Fecha.Before(limite) {
			n++
			continue
		}
		kept = append(kept, h)
	}
	r.filas = kept
	return n, nil
}

// ── Efectos ───────────────────────────────────────────────────────────────────

type stubEncolador struct {
	mu     sync.Mutex
	fechas []string
	err    error
}

func (e *stubEncolador) EncolarLiquidacion(_ context.Context, fecha time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.fechas = append(e.fechas, tiempo.Civil(fecha))
	return nil
}

type stubCache struct {
	mu        sync.Mutex
	datos     map[string]any
	borradas  []string
	gets, set int
}

func newStubCache() *stubCache { return &stubCache{datos: make(map[string]any)} }

func (c *stubCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return false, nil
}

func (c *stubCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set++
	c.datos[key] = v
	return nil
}

func (c *stubCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.datos, k)
		c.borradas = append(c.borradas, k)
	}
	return nil
}

// ── Fixture ───────────────────────────────────────────────────────────────────

// mediodia is a fixed "now" well inside a civil day.
var (
	zonaTest = time.FixedZone("ART", -3*60*60)
	mediodia = time.Date(2024, 3, 15, 12, 0, 0, 0, zonaTest)
)

func dia(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, zonaTest)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	clock      *tiempo.Clock
	productos  *stubProductoRepo
	ventas     *stubVentaRepo
	caja       *stubCajaRepo
	liqRepo    *stubLiquidacionRepo
	precios    *stubHistorialPrecioRepo
	inventario *stubHistorialInventarioRepo
	cache      *stubCache

	liquidacion service.LiquidacionService
	efectos     *service.Efectos
}

// newFixture wires every service against the in-memory repos with a clock
// frozen at ahora. Settlement refreshes run inline.
func newFixture(ahora time.Time) *fixture {
	f := &fixture{
		clock:      tiempo.NewFijo(zonaTest, ahora),
		productos:  newStubProductoRepo(),
		ventas:     newStubVentaRepo(),
		caja:       newStubCajaRepo(),
		liqRepo:    newStubLiquidacionRepo(),
		precios:    &stubHistorialPrecioRepo{},
		inventario: &stubHistorialInventarioRepo{},
		cache:      newStubCache(),
	}
	f.liquidacion = service.NewLiquidacionService(f.liqRepo, f.ventas, f.caja, f.productos, nil, f.clock, 0, "Test")
	f.efectos = &service.Efectos{Liquidacion: f.liquidacion, Cache: f.cache}
	return f
}

func (f *fixture) ventaSvc() service.VentaService {
	return service.NewVentaService(f.ventas, f.productos, f.clock, f.efectos)
}

func (f *fixture) productoSvc() service.ProductoService {
	return service.NewProductoService(f.productos, f.precios, f.inventario, f.clock, f.efectos)
}

func (f *fixture) cajaSvc() service.CajaService {
	return service.NewCajaService(f.caja, f.clock, f.efectos)
}

func (f *fixture) inventarioSvc() service.InventarioService {
	return service.NewInventarioService(f.productos, f.inventario, f.clock, f.efectos, 0)
}

// producto seeds a product stamped with today.
func (f *fixture) producto(codigo, valor, interes string, stock int) uuid.UUID {
	return f.productos.seed(model.Producto{
		Codigo:            codigo,
		Nombre:            "Producto " + codigo,
		Orden:             len(f.productos.productos) + 1,
		StockInicial:      stock,
		UnidadesRestantes: stock,
		ValorUnitario:     dec(valor),
		Interes:           dec(interes),
		Fecha:             f.clock.Hoy(),
		ValorVendidoDia:   decimal.Zero,
	})
}
