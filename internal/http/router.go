package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/cohorthub/internal/auth"
	"github.com/geocoder89/cohorthub/internal/config"
	"github.com/geocoder89/cohorthub/internal/domain/user"
	"github.com/geocoder89/cohorthub/internal/http/handlers"
	"github.com/geocoder89/cohorthub/internal/http/middlewares"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// UserStore is the credential store as the auth and users handlers see it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
}

type Deps struct {
	Log    *slog.Logger
	Config config.Config

	Users    UserStore
	Students handlers.StudentStore
	Linker   handlers.StudentLinker
	Tokens   *auth.Manager

	// Limiter backs the signup/login rate limit; nil disables it.
	Limiter middlewares.WindowCounter
	// Checks are pinged by /readyz.
	Checks map[string]handlers.Pinger

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = observability.NopLogger()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.Recovery(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.ErrorResponder(d.Log))

	r.NoRoute(middlewares.RouteNotFound)
	r.NoMethod(middlewares.RouteNotFound)

	health := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.DocsPage)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	if d.Config.PublicDir != "" {
		r.Static("/static", d.Config.PublicDir)
	}

	gate := middlewares.NewAuthMiddleware(d.Tokens).RequireAuth()

	authHandler := handlers.NewAuthHandler(d.Users, d.Users, d.Tokens, d.Prom)
	usersHandler := handlers.NewUsersHandler(d.Users)
	studentsHandler := handlers.NewStudentsHandler(d.Students, d.Linker)

	// signup and login share one per-IP budget
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{h}
	}
	if d.Limiter != nil && d.Config.AuthRateLimit > 0 {
		rl := middlewares.NewRateLimiter(d.Limiter, d.Config.AuthRateLimit, time.Minute, d.Log)
		mw := rl.RateLimiterMiddleware(middlewares.KeyByIP)
		limited = func(h gin.HandlerFunc) []gin.HandlerFunc {
			return []gin.HandlerFunc{mw, h}
		}
	}

	authGroup := r.Group("/auth", middlewares.RequireJSON())
	{
		authGroup.POST("/signup", limited(authHandler.SignUp)...)
		authGroup.POST("/login", limited(authHandler.Login)...)
		authGroup.GET("/verify", gate, authHandler.Verify)
	}

	api := r.Group("/api", middlewares.RequireJSON())
	{
		api.GET("/users", usersHandler.List)
		api.GET("/users/:id", gate, usersHandler.GetByID)

		api.POST("/students", studentsHandler.CreateStudent)
		api.GET("/students", studentsHandler.ListStudents)
		api.GET("/students/cohort/:id", studentsHandler.ListByCohort)
		api.GET("/students/:id", studentsHandler.GetStudentByID)
		api.PUT("/students/:id", studentsHandler.UpdateStudent)
		api.DELETE("/students/:id", studentsHandler.DeleteStudent)
	}

	return r
}
