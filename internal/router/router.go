package router

import (
	"context"
	"time"

	"vendimax/internal/cache"
	"vendimax/internal/config"
	"vendimax/internal/handler"
	"vendimax/internal/infra"
	"vendimax/internal/middleware"
	"vendimax/internal/repository"
	"vendimax/internal/service"
	"vendimax/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide infrastructure handles built in main.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client // nil when REDIS_URL is empty
	Mailer     *infra.Mailer
	Dispatcher *worker.Dispatcher
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// The rate limiter purge goroutine stops when ctx is done.
func New(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apiLimiter := middleware.APIRateLimiter(1000, time.Minute) // 1000 req/min per IP
	loginLimiter := middleware.LoginRateLimiter()
	apiLimiter.StartPurge(5*time.Minute, ctx.Done())
	loginLimiter.StartPurge(5*time.Minute, ctx.Done())

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	db := deps.DB

	// ── Repositories ─────────────────────────────────────────────────────────
	repos := service.Repos{
		Tx:        repository.NewTxRunner(db),
		Ventas:    repository.NewVentaRepository(db),
		Productos: repository.NewProductoRepository(db),
		Clientes:  repository.NewClienteRepository(db),
		Cajas:     repository.NewCajaRepository(db),
		MovStock:  repository.NewMovimientoStockRepository(db),
		Auditoria: repository.NewAuditRepository(db),
	}
	usuarioRepo := repository.NewUsuarioRepository(db)
	suscripcionRepo := repository.NewSuscripcionRepository(db)

	// ── Plan cache ───────────────────────────────────────────────────────────
	ttl := time.Duration(cfg.PlanCacheTTLMinutos) * time.Minute
	var planCache cache.PlanCache = cache.NewMemoryPlanCache(ttl)
	if deps.Redis != nil {
		planCache = cache.NewRedisPlanCache(deps.Redis, ttl)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	planSvc := service.NewPlanService(suscripcionRepo, repos.Ventas, planCache)
	ventaSvc := service.NewVentaService(repos, deps.Dispatcher, cfg.VentaMaxReintentos)
	cajaSvc := service.NewCajaService(repos, deps.Dispatcher, service.CajaConfig{
		UmbralAutorizacion: cfg.UmbralAutorizacion(),
		MaxReintentos:      cfg.VentaMaxReintentos,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	planH := handler.NewPlanHandler(planSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, deps.Redis, deps.Mailer, deps.Dispatcher))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		todos := middleware.RequireRole("cajero", "supervisor", "administrador")
		supervision := middleware.RequireRole("supervisor", "administrador")

		ventas := v1.Group("/ventas", middleware.RequirePlanFeature(planSvc, service.FeatureVentas))
		{
			ventas.POST("", todos, middleware.RequireCupoVentas(planSvc), ventasH.RegistrarVenta)
			ventas.GET("", todos, ventasH.ListarVentas)
			ventas.POST("/:id/anular", supervision, ventasH.AnularVenta)
		}

		caja := v1.Group("/caja", middleware.RequirePlanFeature(planSvc, service.FeatureCaja))
		{
			caja.POST("/abrir", todos, cajaH.Abrir)
			caja.POST("/cerrar", todos, cajaH.Cerrar)
			caja.POST("/movimiento", todos, cajaH.Movimiento)
			caja.GET("/activa", todos, cajaH.Activa)
			caja.GET("/:id/reporte", todos, cajaH.Reporte)
			caja.GET("/historial", supervision, cajaH.Historial)
			caja.GET("/historial/export", supervision, cajaH.ExportarHistorial)
		}

		v1.POST("/plan/invalidar", middleware.RequireRole("administrador"), planH.Invalidar)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
