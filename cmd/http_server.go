package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/hr-portal/api"
	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/department"
	"github.com/frahmantamala/hr-portal/internal/observability"
	"github.com/frahmantamala/hr-portal/internal/transport"
	"github.com/frahmantamala/hr-portal/internal/transport/middleware"
	"github.com/frahmantamala/hr-portal/internal/transport/rest"
	"github.com/frahmantamala/hr-portal/internal/user"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	Router  *chi.Mux
	Logger  *slog.Logger
	closers []func() error
}

func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Error("shutdown: close dependency", "error", err)
		}
	}
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	srvCfg := deps.Config.Server
	addr := fmt.Sprintf(":%d", srvCfg.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "store", deps.Config.Store.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: srvCfg.ReadHeaderTimeout,
		ReadTimeout:       srvCfg.ReadTimeout,
		WriteTimeout:      srvCfg.WriteTimeout,
		IdleTimeout:       srvCfg.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Setup(os.Stdout, cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
	deps := &Dependencies{Config: cfg, Logger: lg}

	if _, err := api.Load(ctx); err != nil {
		return nil, err
	}

	codec, err := auth.NewSessionCodec(cfg.Security.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}

	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	deps.closers = append(deps.closers, closeStore)

	healthComponents := map[string]rest.Pinger{"store": store}

	var denylist auth.Denylist = auth.NoopDenylist{}
	if cfg.Security.Revocation.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			deps.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		deps.closers = append(deps.closers, client.Close)
		denylist = auth.NewRedisDenylist(client)
		healthComponents["redis"] = rest.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		lg.Info("session revocation enabled", "redis", cfg.Redis.Addr)
	}

	var metrics *observability.Metrics
	var recorder middleware.AccessRecorder
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.NewMetrics()
		recorder = metrics
	}

	bus := events.NewEventBus(lg)
	deps.closers = append(deps.closers, func() error {
		ctx, cancel := internal.WithTimeout(context.Background(), 0)
		defer cancel()
		return bus.Drain(ctx)
	})
	auth.NewAuditLogger(lg).RegisterEventHandlers(bus)
	if metrics != nil {
		metrics.RegisterEventHandlers(bus)
	}

	routeTable, err := auth.NewRouteTable(auth.DefaultRouteRules(), cfg.Access.DefaultDeny)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("invalid access rules: %w", err)
	}

	hasher := auth.NewHasher(cfg.Security.BCryptCost)
	authService := auth.NewService(store, hasher, codec, denylist, bus, cfg.Security.SessionTTL, lg)
	permissions := auth.NewPermissionChecker(store, cfg.Security.PermissionCacheTTL, lg)

	base := transport.NewBaseHandler(lg)
	deps.Router = chi.NewRouter()

	metricsPath := ""
	if metrics != nil {
		metricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, rest.Routes{
		AuthHandler: auth.NewHandler(base, authService, auth.CookieConfig{
			Secure: cfg.App.IsProduction(),
			MaxAge: cfg.Security.SessionTTL,
		}),
		UserHandler:       user.NewHandler(base, user.NewService(store, lg)),
		DepartmentHandler: department.NewHandler(base, department.NewService(store, lg)),
		Health:            rest.NewHealthHandler(healthComponents),
		Access:            middleware.NewAccess(routeTable, auth.NewSessionVerifier(codec, denylist), recorder, lg),
		RBAC:              auth.NewRBACAuthorization(permissions, lg),
		Metrics:           metrics,
		MetricsPath:       metricsPath,
		OpenAPISpec:       api.Spec,
		AllowedOrigins:    cfg.Server.Origins(),
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		Production:        cfg.App.IsProduction(),
		RateLimitRequests: cfg.Security.RateLimit.Requests,
		RateLimitWindow:   cfg.Security.RateLimit.Window,
		Logger:            lg,
	})

	return deps, nil
}
