package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/auth"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/cache"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/config"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/http/handlers"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/http/middlewares"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/observability"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/queue/redisclient"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/registry"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/repo/postgres"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/roles"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, queueClient *redisclient.Client) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	promRegistry := prometheus.NewRegistry()
	prom := observability.NewProm(promRegistry)

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("investor-portal-api"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	resourcesRepo := postgres.NewResourcesRepo(pool, prom)
	leadsRepo := postgres.NewLeadsRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	// domain services
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	leadRegistry := registry.New(leadsRepo, usersRepo, resourcesRepo, log)
	roleManager := roles.NewManager(usersRepo, cfg.AdminEmail)

	listCache := cache.New(5 * time.Second)

	var waker handlers.JobWaker
	if queueClient != nil {
		waker = queueClient
	}

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, cfg)
	resourcesHandler := handlers.NewResourcesHandler(resourcesRepo, listCache)
	gateHandler := handlers.NewGateHandler(usersRepo, resourcesRepo, leadRegistry, jobsRepo, waker, prom)
	leadsHandler := handlers.NewLeadsHandler(leadRegistry)
	usersHandler := handlers.NewUsersHandler(usersRepo, roleManager)
	meHandler := handlers.NewMeHandler(usersRepo, leadRegistry)

	authMW := middlewares.NewAuthMiddleware(jwtManager)

	authLimiter := middlewares.NewRateLimiter(10, time.Minute)
	submitLimiter := middlewares.NewRateLimiter(30, time.Minute)

	// health + metrics
	pings := map[string]handlers.PingFunc{}
	if pool != nil {
		pings["db"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	}
	if queueClient != nil {
		pings["queue"] = queueClient.Ping
	}

	healthHandler := handlers.NewHealthHandler(pings)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	// public
	r.POST("/signup", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.SignUp)
	r.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/refresh", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	r.GET("/resources", resourcesHandler.ListResources)
	r.GET("/resources/:id", resourcesHandler.GetResource)

	// gate evaluation works for anonymous callers too
	r.POST("/resources/:id/access", authMW.OptionalAuth(), gateHandler.CheckAccess)

	// authenticated
	authed := r.Group("/")
	authed.Use(authMW.RequireAuth())
	{
		authed.GET("/me", meHandler.GetMe)
		authed.PUT("/me", meHandler.UpdateMe)
		authed.GET("/me/resources", meHandler.MyResources)

		authed.POST("/resources/:id/leads",
			submitLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP),
			gateHandler.SubmitLead,
		)
	}

	// admin
	admin := r.Group("/admin")
	admin.Use(authMW.RequireAuth(), authMW.RequireRole("admin"))
	{
		admin.POST("/resources", resourcesHandler.CreateResource)
		admin.PUT("/resources/:id", resourcesHandler.UpdateResource)
		admin.PUT("/resources/:id/document", resourcesHandler.AttachDocument)
		admin.DELETE("/resources/:id", resourcesHandler.DeleteResource)

		admin.GET("/leads", leadsHandler.ListLeads)
		admin.GET("/users", usersHandler.ListUsers)
		admin.PUT("/users/:id/role", usersHandler.SetRole)
	}

	return r
}
