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

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	accessPostgres "github.com/amit1797/Eduadmin-sub000/internal/access/postgres"
	"github.com/amit1797/Eduadmin-sub000/internal/audit"
	auditPostgres "github.com/amit1797/Eduadmin-sub000/internal/audit/postgres"
	"github.com/amit1797/Eduadmin-sub000/internal/auth"
	authPostgres "github.com/amit1797/Eduadmin-sub000/internal/auth/postgres"
	"github.com/amit1797/Eduadmin-sub000/internal/core/events"
	"github.com/amit1797/Eduadmin-sub000/internal/observability"
	"github.com/amit1797/Eduadmin-sub000/internal/school"
	schoolPostgres "github.com/amit1797/Eduadmin-sub000/internal/school/postgres"
	"github.com/amit1797/Eduadmin-sub000/internal/student"
	studentPostgres "github.com/amit1797/Eduadmin-sub000/internal/student/postgres"
	"github.com/amit1797/Eduadmin-sub000/internal/transport/rest"
	"github.com/amit1797/Eduadmin-sub000/internal/transport/swagger"
	"github.com/amit1797/Eduadmin-sub000/internal/user"
	userPostgres "github.com/amit1797/Eduadmin-sub000/internal/user/postgres"
	"github.com/amit1797/Eduadmin-sub000/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
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
	Config *internal.Config
	Stores *stores
	Redis  *redis.Client
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
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
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		// pending audit writes need the database, so drain before closing it
		if err := deps.Bus.Drain(ctx); err != nil {
			lg.Error("Audit drain incomplete", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			lg.Error("Redis close error", "error", err)
		}
	}
	if err := deps.Stores.Close(); err != nil {
		lg.Error("Database close error", "error", err)
	}

	lg.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	ctx := context.Background()

	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	if _, err := swagger.Load(ctx); err != nil {
		return nil, err
	}

	st, err := openStores(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := initRedis(ctx, config.Redis)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	var (
		registry *prometheus.Registry
		metrics  *observability.Metrics
	)
	if config.Observability.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(registry)
	}

	tokens := newTokenService(config.Security)

	// Access control. Without redis the entitlement store reads straight
	// from the database and toggles have no cache to refresh.
	entitlementRepo := accessPostgres.NewEntitlementRepository(st.gorm)
	var (
		entitlements     access.EntitlementStore = entitlementRepo
		entitlementCache school.EntitlementCache
		cache            redis.UniversalClient
	)
	if rdb != nil {
		cached := access.NewCachedEntitlementStore(entitlementRepo, rdb, config.Redis.EntitlementTTL, metrics, lg)
		entitlements, entitlementCache, cache = cached, cached, rdb
	}
	permissions := access.NewCachedPermissionStore(
		accessPostgres.NewRolePermissionRepository(st.gorm),
		config.Cache.PermissionSize,
		config.Cache.PermissionTTL,
		metrics,
	)
	authorizer := access.NewAuthorizer(entitlements, permissions, metrics, lg)

	// Audit pipeline
	bus := events.NewEventBus(lg)
	auditRepo := auditPostgres.NewRepository(st.gorm)
	audit.NewRecorder(auditRepo, metrics, lg).Register(bus)

	// Domain services
	schoolRepo := schoolPostgres.NewRepository(st.gorm)
	authService := auth.NewService(authPostgres.NewRepository(st.gorm), schoolRepo, tokens, config.Security.BCryptCost, lg)
	userService := user.NewService(userPostgres.NewRepository(st.gorm, st.sqlx), tokens, lg)
	schoolService := school.NewService(schoolRepo, entitlementRepo, entitlementCache, userService, lg)
	studentService := student.NewService(studentPostgres.NewRepository(st.gorm), lg)

	routes := rest.Routes{
		DB:              st.sqlx.DB,
		Cache:           cache,
		Auth:            auth.NewHandler(authService),
		Authorizer:      authorizer,
		Audit:           audit.NewMiddleware(bus, lg),
		Schools:         school.NewHandler(schoolService),
		Users:           user.NewHandler(userService),
		Students:        student.NewHandler(studentService),
		AuditLogs:       audit.NewHandler(audit.NewService(auditRepo)),
		StudentPreImage: studentService.Snapshot,
		AllowedOrigins:  config.Server.AllowedOrigins,
	}
	if metrics != nil {
		routes.Metrics = metrics
		routes.Gatherer = registry
		routes.MetricsPath = config.Observability.Metrics.Path
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, routes, lg)

	return &Dependencies{
		Config: config,
		Stores: st,
		Redis:  rdb,
		Bus:    bus,
		Router: router,
		Logger: lg,
	}, nil
}
