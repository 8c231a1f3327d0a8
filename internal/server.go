package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/config"
	"github.com/2beens/gymtracker/internal/db"
	"github.com/2beens/gymtracker/internal/gymstats/analytics"
	"github.com/2beens/gymtracker/internal/gymstats/store"
	"github.com/2beens/gymtracker/internal/gymstats/templates"
	"github.com/2beens/gymtracker/internal/gymstats/workouts"
	"github.com/2beens/gymtracker/internal/middleware"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	authService *auth.Service
	resolver    *auth.Resolver
	ledger      *workouts.Ledger
	templates   *templates.Service
	analyzer    *analytics.Analyzer

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config  *config.Config
	Secrets *config.Secrets
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	secrets := params.Secrets

	var (
		dbPool     *pgxpool.Pool
		collectors []prometheus.Collector
		dataStore  store.Store
		accounts   auth.AccountsRepo
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     secrets.PostgresPassword,
			TracingEnabled: secrets.HoneycombEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate db: %w", err)
		}

		dbPool = pool
		collectors = append(collectors, pgxpoolprometheus.NewCollector(
			pool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
		dataStore = store.NewPsqlStore(pool)
		accounts = auth.NewPsqlAccounts(pool)
	default:
		log.Warnln("using in-memory storage, all data is lost on restart")
		dataStore = store.NewMemoryStore()
		accounts = auth.NewMemoryAccounts()
	}

	promRegistry := metrics.SetupPrometheus(collectors...)
	metricsManager := metrics.NewManager("gymtracker", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	var rdb *redis.Client
	if cfg.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: secrets.RedisPassword,
			DB:       0, // use default DB
		})
		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	} else {
		log.Debugln("redis host not set, progression cache disabled")
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(tracing.HoneycombParams{
		Enabled:     secrets.HoneycombEnabled,
		ApiKey:      secrets.HoneycombAPIKey,
		ServiceName: "gymtracker",
	}, rdb)
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	tokenService, err := auth.NewTokenService([]byte(secrets.TokenSecret), cfg.TokenTTL.Duration)
	if err != nil {
		return nil, fmt.Errorf("new token service: %w", err)
	}
	authService, err := auth.NewService(accounts, tokenService, cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}

	var (
		progressionCache *analytics.ProgressionCache
		listeners        []workouts.ChangeListener
	)
	if rdb != nil {
		if instanceID, err := dataStore.InstanceID(ctx); err != nil {
			log.Errorf("get store instance id, progression cache disabled: %s", err)
		} else {
			log.Debugf("progression cache namespace: %s", instanceID)
			progressionCache = analytics.NewProgressionCache(
				rdb,
				instanceID,
				cfg.ProgressionL1Size,
				cfg.ProgressionCacheTTL.Duration,
				metricsManager,
			)
			listeners = append(listeners, progressionCache)
		}
	}

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,

		authService: authService,
		resolver:    auth.NewResolver(tokenService, accounts),
		ledger:      workouts.NewLedger(dataStore, listeners...),
		templates:   templates.NewService(dataStore),
		analyzer:    analytics.NewAnalyzer(dataStore, progressionCache),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	auth.NewHandler(s.authService, s.metricsManager).SetupRoutes(r)
	workouts.NewHandler(s.ledger, s.metricsManager).SetupRoutes(r)
	templates.NewHandler(s.templates, s.metricsManager).SetupRoutes(r)
	analytics.NewHandler(s.analyzer).SetupRoutes(r)

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apperr.WriteHTTPError(w, apperr.New(apperr.RouteNotFound, "no route for [%s %s]", r.Method, r.URL.Path))
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.resolver)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
