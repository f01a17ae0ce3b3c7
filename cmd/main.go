package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/sfscore/internal/adapters/http/api"
	"github.com/okian/sfscore/internal/adapters/http/site"
	"github.com/okian/sfscore/internal/adapters/http/swagger"
	"github.com/okian/sfscore/internal/adapters/odata"
	service "github.com/okian/sfscore/internal/app"
	"github.com/okian/sfscore/internal/config"
	"github.com/okian/sfscore/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	// writeSlack is added on top of the longest upstream call chain.
	writeSlack = 5 * time.Second
)

// Bearer token states reported at startup.
const (
	tokenMissing = "missing"
	tokenExpired = "expired"
	tokenOK      = "ok"
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("sfscore: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	switch tokenStatus(cfg.Token, time.Now()) {
	case tokenMissing:
		log.Warn(ctx, "no bearer token configured; upstream calls are sent without Authorization")
	case tokenExpired:
		exp, _ := odata.TokenExpiry(cfg.Token)
		log.Warn(ctx, "bearer token has expired; upstream will likely reject calls", logger.String("exp", exp.UTC().Format(time.RFC3339)))
	}

	handler, err := newHandler(ctx, cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      serverWriteTimeout(cfg),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", srv.Addr),
			logger.String("base_url", cfg.BaseURL),
			logger.Bool("streak_enabled", cfg.StreakEnabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newHandler builds the upstream client, the service and the router.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, error) {
	client, err := odata.New(cfg.BaseURL,
		odata.WithToken(cfg.Token),
		odata.WithCompanyID(cfg.CompanyID),
		odata.WithPreviewLimit(cfg.PreviewLimit),
		odata.WithLogger(log.Named("odata")),
	)
	if err != nil {
		return nil, err
	}

	opts := append(service.FromConfig(cfg), service.WithLogger(log.Named("service")))
	svc := service.New(client, opts...)

	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		api.RequestID,
		api.AccessLog(log.Named("http")),
		middleware.Recoverer,
		api.CORS(cfg.CORSOrigins),
	)

	swagger.Register(ctx, r)
	api.NewServer(svc, log.Named("api")).Register(ctx, r)
	site.Register(ctx, r, cfg.StaticAliases)
	return r, nil
}

// serverWriteTimeout covers the longest request: two resolution lookups and a write.
func serverWriteTimeout(cfg *config.Config) time.Duration {
	chain := 2*cfg.LookupTimeout + cfg.WriteTimeout
	if read := cfg.LookupTimeout + cfg.ReadTimeout; read > chain {
		chain = read
	}
	return chain + writeSlack
}

func tokenStatus(token string, now time.Time) string {
	if token == "" {
		return tokenMissing
	}
	if exp, ok := odata.TokenExpiry(token); ok && now.After(exp) {
		return tokenExpired
	}
	return tokenOK
}
