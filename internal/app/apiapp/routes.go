package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rmdelbarrio/adet/internal/config"
	authsvc "github.com/rmdelbarrio/adet/internal/services/auth"
	dashboardsvc "github.com/rmdelbarrio/adet/internal/services/dashboard"
	positionsvc "github.com/rmdelbarrio/adet/internal/services/positions"
	ratesvc "github.com/rmdelbarrio/adet/internal/services/rate"
	userssvc "github.com/rmdelbarrio/adet/internal/services/users"
	"github.com/rmdelbarrio/adet/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService      *authsvc.Service
	UserService      *userssvc.Service
	PositionService  *positionsvc.Service
	DashboardService *dashboardsvc.Service
	LoginLimiter     *ratesvc.LoginLimiter
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.UserService, deps.Logger)
	authHandler.AttachLoginLimiter(deps.LoginLimiter)
	usersHandler := handlers.NewUsersHandler(deps.UserService, deps.Logger)
	positionsHandler := handlers.NewPositionsHandler(deps.PositionService, deps.Logger)
	dashboardHandler := handlers.NewDashboardHandler(deps.DashboardService, deps.Logger)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminRoleMW := RequireRole("admin")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", usersHandler.List)
		r.With(adminRoleMW).Put("/{id}", usersHandler.Update)
		r.With(adminRoleMW).Delete("/{id}", usersHandler.Delete)
	})

	r.Route("/positions", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", positionsHandler.List)
		r.Get("/my-positions", positionsHandler.ListMine)
		r.Get("/code/{code}", positionsHandler.GetByCode)
		r.Get("/{id}", positionsHandler.Get)
		r.Post("/", positionsHandler.Create)
		r.Put("/{id}", positionsHandler.Update)
		r.Delete("/{id}", positionsHandler.Delete)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminRoleMW)
		r.Get("/dashboard/stats", dashboardHandler.Stats)
	})
}
