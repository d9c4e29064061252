package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"coursehub/backend/internal/api"
	"coursehub/backend/internal/autosave"
	"coursehub/backend/internal/config"
	"coursehub/backend/internal/database"
	"coursehub/backend/internal/llm"
	"coursehub/backend/internal/repository"
	"coursehub/backend/internal/service"
)

const shutdownTimeout = 15 * time.Second

// App holds the wired dependencies of a running server.
type App struct {
	DB         *sql.DB
	Server     *http.Server
	Workspaces *service.WorkspaceService
	Beacon     autosave.BackgroundBeacon
}

// NewApp opens the database and wires repositories, services and handlers.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)

	repo := repository.NewSQLiteRepository(db)

	// Feedback and follow-ups read the raw event stream; the relay goes
	// through the SDK client.
	feedbackProvider := llm.NewSSEProvider(cfg.StreamURL(), cfg.LLMAPIKey, cfg.LLMModel, nil)
	relayProvider := llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	var beacon autosave.BackgroundBeacon
	if cfg.BeaconURL != "" {
		beacon = autosave.NewHTTPBeacon(cfg.BeaconURL, nil, slog.Default())
	} else {
		beacon = autosave.NewStoreBeacon(repo, slog.Default())
	}

	workspaceService := service.NewWorkspaceService(repo, feedbackProvider, beacon, service.WorkspaceConfig{
		Model:             cfg.LLMModel,
		AutosaveDelay:     cfg.AutosaveDelay,
		SaveTimeout:       cfg.SaveTimeout,
		FeedbackTimeout:   cfg.FeedbackTimeout,
		MaxFollowUpRounds: cfg.MaxFollowUpRounds,
	})
	draftService := service.NewDraftService(repo)
	relayService := service.NewRelayService(repo, relayProvider, cfg.LLMModel, cfg.SystemPrompt, cfg.DailyUsageLimit)

	router := api.NewRouter(
		api.NewWorkspaceHandler(workspaceService),
		api.NewDraftHandler(draftService),
		api.NewRelayHandler(relayService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{DB: db, Server: server, Workspaces: workspaceService, Beacon: beacon}, nil
}

// Shutdown stops accepting requests and unloads every open workspace. The
// database is closed once the unload beacons have been delivered.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)
	a.Workspaces.Shutdown()
	if waitErr := a.Beacon.Wait(ctx); waitErr != nil {
		err = errors.Join(err, fmt.Errorf("unload beacons were not delivered: %w", waitErr))
	}
	if dbErr := a.DB.Close(); dbErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close database connection: %w", dbErr))
	}
	return err
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort, "model", cfg.LLMModel)
		serveErr <- app.Server.ListenAndServe()
	}()

	code := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			code = 1
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown did not complete cleanly", "error", err)
		code = 1
	}
	return code
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))
	slog.SetDefault(logger)
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
