// main is the entry point of the Admissions API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (plus .env / ENV overrides)
//  2. Initialise the logger
//  3. Open the configured storage backend (JSON file or SQLite)
//  4. Build the service and register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/admissions-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/admissions-api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/admissions-api/internal/config"
	"github.com/aanand-mishra/admissions-api/internal/http/handlers/admission"
	"github.com/aanand-mishra/admissions-api/internal/service"
	"github.com/aanand-mishra/admissions-api/internal/storage"
	"github.com/aanand-mishra/admissions-api/internal/storage/jsonfile"
	"github.com/aanand-mishra/admissions-api/internal/storage/sqlite"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting admissions-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// The concrete backend is chosen here and nowhere else; the rest
	// of the code only sees the storage.Store interface.
	store, err := openStore(cfg, log)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", cfg.Storage.Path))

	svc := service.New(store, log)

	// Route table:
	//   GET    /                              → welcome message
	//   GET    /about                         → about message
	//   POST   /api/admissions                → create a record (id in body)
	//   GET    /api/admissions                → list all records
	//   GET    /api/admissions/sort           → sorted listing (?sort_by=&order=)
	//   GET    /api/admissions/by-name/{name} → exact case-insensitive name search
	//   GET    /api/admissions/{id}           → get one record
	//   PUT    /api/admissions/{id}           → partial update
	//   DELETE /api/admissions/{id}           → delete a record
	//
	// "sort" and "by-name" are registered as literal segments; the Go
	// 1.22 mux prefers them over the {id} wildcard, so an id can never
	// shadow them.
	router := http.NewServeMux()

	router.HandleFunc("GET /", admission.Home())
	router.HandleFunc("GET /about", admission.About())
	router.HandleFunc("POST /api/admissions", admission.New(svc))
	router.HandleFunc("GET /api/admissions", admission.GetList(svc))
	router.HandleFunc("GET /api/admissions/sort", admission.Sort(svc))
	router.HandleFunc("GET /api/admissions/by-name/{name}", admission.GetByName(svc))
	router.HandleFunc("GET /api/admissions/{id}", admission.GetByID(svc))
	router.HandleFunc("PUT /api/admissions/{id}", admission.Update(svc))
	router.HandleFunc("DELETE /api/admissions/{id}", admission.Delete(svc))

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		// Timeouts guard against slow-client attacks.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ListenAndServe blocks, so it runs in its own goroutine while
	// main waits for the shutdown signal below.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// openStore builds the storage backend named by the config.
func openStore(cfg *config.Config, log *slog.Logger) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return sqlite.New(cfg.Storage.Path)
	default: // "jsonfile" — config.MustLoad already rejected anything else
		return jsonfile.New(cfg.Storage.Path, log), nil
	}
}

// setupLogger returns a *slog.Logger configured for the given
// environment: human-readable text at DEBUG in dev, JSON for
// staging/prod so log aggregators can ingest it.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
