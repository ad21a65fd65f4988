package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rmdelbarrio/adet/internal/config"
	pgrepo "github.com/rmdelbarrio/adet/internal/repo/postgres"
	redrepo "github.com/rmdelbarrio/adet/internal/repo/redis"
	authsvc "github.com/rmdelbarrio/adet/internal/services/auth"
	dashboardsvc "github.com/rmdelbarrio/adet/internal/services/dashboard"
	positionsvc "github.com/rmdelbarrio/adet/internal/services/positions"
	ratesvc "github.com/rmdelbarrio/adet/internal/services/rate"
	userssvc "github.com/rmdelbarrio/adet/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	positionRepo := pgrepo.NewPositionRepo(pool)

	tokenManager, err := authsvc.NewTokenManager(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTTL,
		cfg.Auth.RefreshTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	authService := authsvc.NewService(tokenManager, userRepo)
	userService := userssvc.NewService(userRepo)
	positionService := positionsvc.NewService(positionRepo)
	dashboardService := dashboardsvc.NewService(userRepo, cfg.Dashboard.RecentUsers)
	loginLimiter := ratesvc.NewLoginLimiter(
		rateRepo,
		cfg.RateLimit.LoginPerMinute,
		cfg.RateLimit.LoginPer10Sec,
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:      authService,
		UserService:      userService,
		PositionService:  positionService,
		DashboardService: dashboardService,
		LoginLimiter:     loginLimiter,
		Logger:           log,
		Config:           cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
