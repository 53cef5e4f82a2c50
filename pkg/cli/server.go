package cli

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

	"github.com/google/uuid"
	"github.com/mchmarny/propensity/pkg/logging"
	"github.com/rs/cors"
	urfave "github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 30
	serverMaxHeaderBytes      = 20
	serverMaxBodyBytes        = 4 << 20

	flagPort   = "port"
	flagHost   = "host"
	flagOrigin = "origin"

	requestIDHeader = "X-Request-ID"
	routeUnmatched  = "unmatched"
)

func newServerCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start the scoring HTTP API",
		Action:  cmdStartServer,
		Flags: []urfave.Flag{
			&urfave.IntFlag{
				Name:  flagPort,
				Usage: "Port on which the server will listen (optional, defaults to config)",
			},
			&urfave.StringFlag{
				Name:  flagHost,
				Usage: "Address on which the server will listen",
				Value: "127.0.0.1",
			},
			&urfave.StringSliceFlag{
				Name:  flagOrigin,
				Usage: "Allowed CORS origin, repeat for more (optional, default: all)",
			},
		},
	}
}

type api struct {
	log     *slog.Logger
	metrics *metrics
	workers int
}

func cmdStartServer(ctx context.Context, cmd *urfave.Command) error {
	cfg, err := getConfig(ctx)
	if err != nil {
		return err
	}

	port := cfg.Port
	if cmd.IsSet(flagPort) {
		port = cmd.Int(flagPort)
	}
	address := fmt.Sprintf("%s:%d", cmd.String(flagHost), port)

	a := &api{
		log:     logging.NewServerLogger(os.Stderr, cfg.LogLevel),
		metrics: newMetrics(),
		workers: cfg.Workers,
	}

	s := &http.Server{
		Addr:           address,
		Handler:        a.router(cmd.StringSlice(flagOrigin)),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func (a *api) router(origins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.Handle("GET /metrics", a.metrics.handler())

	mux.HandleFunc("POST /api/score", a.scoreAPIHandler)
	mux.HandleFunc("POST /api/batch", a.batchAPIHandler)
	mux.HandleFunc("GET /api/model", modelAPIHandler)
	mux.HandleFunc("GET /api/dashboard", a.dashboardAPIHandler)
	mux.HandleFunc("POST /api/ask", a.askAPIHandler)

	c := cors.AllowAll()
	if len(origins) > 0 {
		c = cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", requestIDHeader},
		})
	}

	return c.Handler(a.instrument(mux))
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument assigns a request ID, logs the request and records its metrics.
func (a *api) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// set by the mux once the request is routed
		route := r.Pattern
		if route == "" {
			route = routeUnmatched
		}

		elapsed := time.Since(start)
		a.metrics.observeRequest(route, rec.status, elapsed)
		a.log.Info("request",
			"id", id,
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
