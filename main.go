// Command motk serves the MOTK REST API under /api and the dashboard
// everywhere else.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kidandcat/motk/internal/api"
	"github.com/kidandcat/motk/internal/auth"
	"github.com/kidandcat/motk/internal/config"
	"github.com/kidandcat/motk/internal/db"
	"github.com/kidandcat/motk/internal/logging"
	"github.com/kidandcat/motk/internal/session"
	"github.com/kidandcat/motk/internal/telemetry"
	"github.com/kidandcat/motk/internal/ui"
)

func main() {
	cfg := config.Load()
	logging.Init("motk", cfg.Log.File, cfg.Log.Level)

	shutdownTelemetry := telemetry.Setup("motk", cfg.OTLPEndpoint)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	store, err := db.Init(cfg.DataDir)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_INIT_FAILED, Description: %v", err)
	}
	defer store.Close()

	if err := seedAdmin(context.Background(), store, cfg.Seed); err != nil {
		logging.Logger.Fatalf("Event ID: SEED_FAILED, Description: %v", err)
	}
	if cfg.Auth.JWTSecret == "change-me" {
		logging.Logger.Warn("Event ID: DEFAULT_SECRET, Description: MOTK_JWT_SECRET is not set; tokens are signed with the default secret")
	}

	authenticator := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, store)
	handler := api.New(store, authenticator)

	// The prerendered shell never holds a token; the browser resolves its own.
	ui.Routes(ui.NewDeps(cfg.APIURL, &session.MemoryTokens{}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/api/", http.StripPrefix("/api", corsMiddleware(handler.Routes())))
	mux.Handle("/", &app.Handler{
		Name:        "MOTK",
		ShortName:   "MOTK",
		Title:       "MOTK",
		Description: "Production management for shots, assets and tasks",
		Styles:      []string{"/web/motk.css"},
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      otelhttp.NewHandler(recoverMiddleware(requestMiddleware(mux)), "motk"),
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START, Description: MOTK listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_ERROR, Description: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Logger.Errorf("Event ID: SHUTDOWN_ERROR, Description: %v", err)
	}
	logging.Logger.Info("Event ID: SERVER_STOP, Description: MOTK stopped")
}
