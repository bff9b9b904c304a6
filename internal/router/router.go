package router

import (
	"context"
	"time"

	"cajapos/internal/config"
	"cajapos/internal/handler"
	"cajapos/internal/infra"
	"cajapos/internal/middleware"
	"cajapos/internal/repository"
	"cajapos/internal/service"
	"cajapos/internal/tiempo"
	"cajapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the wired service layer, shared by the HTTP router, the worker
// pool and the command-line tools.
type Services struct {
	Auth        service.AuthService
	Productos   service.ProductoService
	Ventas      service.VentaService
	Caja        service.CajaService
	Inventario  service.InventarioService
	Liquidacion service.LiquidacionService
	Dashboard   service.DashboardService
	Dispatcher  *worker.Dispatcher
}

// NewServices wires repositories and services.
// Dependency graph: Service ← Repository ← DB/Redis. rdb may be nil, in which
// case locks, cache, revocation and queues are disabled and settlement
// refreshes run inline.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, clock *tiempo.Clock) *Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	liquidacionRepo := repository.NewLiquidacionRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)
	historialInventarioRepo := repository.NewHistorialInventarioRepository(db)

	// ── Redis-backed infrastructure ──────────────────────────────────────────
	var (
		locker     service.Locker
		cache      service.Cache
		tokens     service.TokenStore
		encolador  service.Encolador
		dispatcher = worker.NewDispatcher(rdb)
	)
	if rdb != nil {
		locker = infra.NewRedisLocker(rdb, 10*time.Second)
		cache = infra.NewRedisCache(rdb)
		tokens = infra.NewRedisTokenStore(rdb)
		encolador = dispatcher
	}

	// ── Services ─────────────────────────────────────────────────────────────
	liquidacionSvc := service.NewLiquidacionService(
		liquidacionRepo, ventaRepo, cajaRepo, productoRepo,
		locker, clock, cfg.LiquidacionMaxDias, cfg.NegocioNombre,
	)
	efectos := &service.Efectos{Encolador: encolador, Liquidacion: liquidacionSvc, Cache: cache}

	provider := service.NewStaticAuthProvider(cfg.AdminUsername, cfg.AdminPasswordHash)
	ttl := time.Duration(cfg.JWTExpirationHours) * time.Hour

	return &Services{
		Auth:        service.NewAuthService(provider, tokens, cfg.JWTSecret, ttl, clock),
		Productos:   service.NewProductoService(productoRepo, historialPrecioRepo, historialInventarioRepo, clock, efectos),
		Ventas:      service.NewVentaService(ventaRepo, productoRepo, clock, efectos),
		Caja:        service.NewCajaService(cajaRepo, clock, efectos),
		Inventario:  service.NewInventarioService(productoRepo, historialInventarioRepo, clock, efectos, cfg.RetencionDias),
		Liquidacion: liquidacionSvc,
		Dashboard:   service.NewDashboardService(productoRepo, ventaRepo, cajaRepo, cache),
		Dispatcher:  dispatcher,
	}
}

// New returns a configured Gin engine. ctx bounds the lifetime of the
// rate limiters' background sweeps.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, clock *tiempo.Clock, svcs *Services, mailer *infra.Mailer) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(ctx, float64(cfg.RateLimitRPS), cfg.RateLimitBurst))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svcs.Auth)
	productosH := handler.NewProductosHandler(svcs.Productos, svcs.Ventas)
	historialPreciosH := handler.NewHistorialPreciosHandler(svcs.Productos)
	ventasH := handler.NewVentasHandler(svcs.Ventas, clock)
	cajaH := handler.NewCajaHandler(svcs.Caja, clock)
	inventarioH := handler.NewInventarioHandler(svcs.Inventario)
	liquidacionH := handler.NewLiquidacionHandler(svcs.Liquidacion, clock)
	dashboardH := handler.NewDashboardHandler(svcs.Dashboard)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailer))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/auth/login", middleware.LoginRateLimiter(ctx), authH.Login)

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(svcs.Auth))
	{
		v1.POST("/auth/logout", authH.Logout)

		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.POST("", productosH.Crear)
			prods.GET("/:id", productosH.Obtener)
			prods.PATCH("/:id/orden", productosH.Reordenar)
			prods.PATCH("/:id/precio", productosH.ActualizarPrecio)
			prods.GET("/:id/historial-precios", historialPreciosH.ListarPorProducto)
			prods.GET("/:id/ventas-hoy", productosH.VentasHoy)
		}

		v1.POST("/ventas", ventasH.Registrar)
		v1.GET("/ventas", ventasH.ListarPorDia)
		v1.DELETE("/ventas/:id", ventasH.Eliminar)

		caja := v1.Group("/caja")
		{
			caja.POST("/movimientos", cajaH.Registrar)
			caja.GET("/movimientos", cajaH.ListarPorDia)
			caja.DELETE("/movimientos/:id", cajaH.Eliminar)
			caja.GET("/salidas", cajaH.ListarSalidas)
		}

		inv := v1.Group("/inventario")
		{
			inv.POST("/entradas", inventarioH.Entrada)
			inv.GET("/historial", inventarioH.Historial)
		}

		liq := v1.Group("/liquidacion")
		{
			liq.GET("", liquidacionH.Ultima)
			liq.GET("/hoy", liquidacionH.Hoy)
			liq.GET("/rango", liquidacionH.Rango)
			liq.GET("/rango/xlsx", liquidacionH.RangoXLSX)
			liq.GET("/:fecha", liquidacionH.PorFecha)
			liq.GET("/:fecha/pdf", liquidacionH.PDF)
		}

		v1.GET("/dashboard", dashboardH.Resumen)
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
