// Package api implements the gateway HTTP server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/tokenforge/asset-gateway/pkg/app/http"
	"github.com/tokenforge/asset-gateway/pkg/auth"
	"github.com/tokenforge/asset-gateway/pkg/authz"
	"github.com/tokenforge/asset-gateway/pkg/config"
	"github.com/tokenforge/asset-gateway/pkg/confirm"
	"github.com/tokenforge/asset-gateway/pkg/indexstore"
	"github.com/tokenforge/asset-gateway/pkg/pgutil"
	"github.com/tokenforge/asset-gateway/pkg/portal"
	"github.com/tokenforge/asset-gateway/pkg/verification"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the gateway server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new gateway server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("gateway config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gateway server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("system", cfg.System.ID),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()

	logger.Info("Connected to index database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	policy, err := authz.LoadPolicy(cfg.Policy.File)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}
	logger.Info("Loaded mutation policy",
		zap.String("file", cfg.Policy.File),
		zap.Strings("mutations", policy.Mutations()),
	)

	portalClient, err := portal.NewClient(&cfg.Portal, portal.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create portal client: %w", err)
	}

	store := indexstore.NewStore(db)
	authorizer := authz.NewLog(authz.NewService(policy, store, store, logger), logger)

	chain := authz.NewChain(
		auth.NewJWTValidator(cfg.JWKS.URL, cfg.JWKS.Issuer),
		authz.NewStaticResolver(cfg.System.ID, cfg.System.ChainID),
		store,
		authorizer,
		logger,
	)

	h := &handler{
		chain:    chain,
		verifier: verification.NewLog(verification.NewService(portalClient, logger), logger),
		miner:    confirm.NewMiningWaiter(portalClient, cfg.Confirm.MiningInterval, cfg.Confirm.MiningTimeout, logger),
		indexer:  confirm.NewIndexWaiter(cfg.Confirm.IndexAttempts, cfg.Confirm.IndexDelay, logger),
		store:    store,
		logger:   logger,
	}

	router := s.setupRouter(h)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

func (s *Server) setupRouter(h *handler) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/mutations/{mutation}", apphttp.HandleError(h.submitMutation))
		r.Post("/transactions", apphttp.HandleError(h.submitTransaction))
		r.Get("/transactions/{hash}/wait", apphttp.HandleError(h.waitForTransaction))
	})

	return r
}
