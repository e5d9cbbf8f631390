// main is the entry point of the student-portal application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the record store (JSON file by default, SQLite optional)
//  4. Register all HTTP routes (HTML pages + JSON API)
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-portal --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-portal
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmedkhan/student-portal/internal/config"
	"github.com/ahmedkhan/student-portal/internal/http/handlers/student"
	"github.com/ahmedkhan/student-portal/internal/http/handlers/web"
	"github.com/ahmedkhan/student-portal/internal/storage"
	"github.com/ahmedkhan/student-portal/internal/storage/jsonfile"
	"github.com/ahmedkhan/student-portal/internal/storage/sqlite"
)

func main() {
	// MustLoad reads the YAML config and fatals if anything is wrong —
	// if it returns, the config is guaranteed valid.
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting student-portal",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// The record store is held as the storage.Storage interface, never
	// as a concrete type: handlers stay backend-agnostic and the driver
	// is purely a config decision.
	store, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("driver", cfg.Storage.Driver),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", cfg.Storage.Path))

	// Route table:
	//
	//   HTML pages
	//     GET  /                 → welcome page
	//     GET  /add              → add-student form
	//     POST /add              → create a student from the form
	//     GET  /students         → table of all students (?roll_no= searches)
	//     GET  /search           → search form
	//     POST /search           → search result
	//
	//   JSON API
	//     POST  /api/students                 → create a student
	//     GET   /api/students                 → list all students
	//     GET   /api/students/{rollNo}        → one student by roll number
	//     PATCH /api/students/{rollNo}/email  → update a student's email
	//
	// "GET /{$}" matches only the root path exactly (Go 1.22 pattern
	// syntax); the bare "/" route below catches everything unmatched
	// and serves the 404 page.
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", web.Home())
	router.HandleFunc("GET /add", web.AddForm())
	router.HandleFunc("POST /add", web.AddSubmit(store))
	router.HandleFunc("GET /students", web.List(store))
	router.HandleFunc("GET /search", web.SearchForm())
	router.HandleFunc("POST /search", web.SearchSubmit(store))
	router.HandleFunc("GET /favicon.ico", web.Favicon())
	router.HandleFunc("/", web.NotFound())

	router.HandleFunc("POST /api/students", student.New(store))
	router.HandleFunc("GET /api/students", student.GetList(store))
	router.HandleFunc("GET /api/students/{rollNo}", student.GetByRollNo(store))
	router.HandleFunc("PATCH /api/students/{rollNo}/email", student.UpdateEmail(store))

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		// Timeouts guard against slow clients holding connections open.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ListenAndServe blocks, so it runs in its own goroutine while main
	// waits for a shutdown signal below.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ErrServerClosed is the normal return after Shutdown — not an
		// error worth logging.
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Buffered so a signal arriving while main is busy is not missed.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// Give in-flight requests five seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// openStorage constructs the record store selected by storage.driver.
// cleanenv defaults the driver to jsonfile when the key is absent, so
// anything else here is a typo in the config and refuses to start.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverJSONFile:
		return jsonfile.New(cfg)
	case config.DriverSQLite:
		return sqlite.New(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given
// environment: human-readable text at DEBUG for dev, JSON for staging
// and prod (DEBUG and INFO respectively) so aggregators can ingest it.
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
