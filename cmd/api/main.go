package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Shaheer-Khan1/AdGenerator/internal/acquire"
	"github.com/Shaheer-Khan1/AdGenerator/internal/adapter/repo"
	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
	"github.com/Shaheer-Khan1/AdGenerator/internal/compose"
	"github.com/Shaheer-Khan1/AdGenerator/internal/http/handlers"
	httpapi "github.com/Shaheer-Khan1/AdGenerator/internal/http/httpapi"
	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
	"github.com/Shaheer-Khan1/AdGenerator/internal/providers/genai"
	"github.com/Shaheer-Khan1/AdGenerator/internal/providers/stock"
	"github.com/Shaheer-Khan1/AdGenerator/internal/providers/transcribe"
	"github.com/Shaheer-Khan1/AdGenerator/internal/selection"
	"github.com/Shaheer-Khan1/AdGenerator/internal/storage"
	"github.com/Shaheer-Khan1/AdGenerator/internal/task"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Task ledger is optional: without DATABASE_URL all state stays in memory.
	var ledger task.Ledger
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(context.Background(), cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		ledger = repo.NewTaskRepo(infra.NewSQLRunner(dbpool, logger))
		logger.Info().Msg("task ledger enabled")
	} else {
		logger.Warn().Msg("DATABASE_URL not set, running without task ledger")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	holder := catalog.NewHolder(loadCatalog(cfg.CatalogPath, logger))

	if err := compose.CheckBinary(cfg.FFmpegPath); err != nil {
		logger.Fatal().Err(err).Msg("ffmpeg is required")
	}

	model, err := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}
	if !model.Configured() {
		logger.Warn().Msg("GEMINI_API_KEY not set, selection will always fall back to stock footage")
	}

	var transcriber task.Transcriber
	if cfg.WhisperBaseURL != "" {
		whisper, err := transcribe.NewWhisperClient(transcribe.Options{
			BaseURL: cfg.WhisperBaseURL,
			Model:   cfg.WhisperModel,
			APIKey:  cfg.WhisperAPIKey,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build whisper client")
		}
		transcriber = whisper
	} else {
		logger.Warn().Msg("WHISPER_BASE_URL not set, submissions must include script_text")
	}

	stockClient := stock.NewClient(stock.Options{
		APIKey:  cfg.PexelsAPIKey,
		BaseURL: cfg.PexelsBaseURL,
		Logger:  &logger,
	})
	if !stockClient.Configured() {
		logger.Warn().Msg("PEXELS_API_KEY not set, stock fallback disabled")
	}

	engine := selection.NewEngine(model, logger)
	acquirer := acquire.NewService(acquire.Config{
		MinClips:     cfg.MinClips,
		MaxClips:     cfg.MaxClips,
		MaxRetries:   cfg.DownloadMaxRetries,
		DriveBaseURL: cfg.DriveBaseURL,
	}, nil, stockClient, &logger)
	composer := compose.NewFFmpegComposer(cfg.FFmpegPath, &logger)

	manager := task.NewManager(task.Config{
		MaxConcurrent: cfg.MaxConcurrentTasks,
		MaxQueued:     cfg.MaxQueuedTasks,
		StageTimeout:  cfg.StageTimeout,
		Retention:     cfg.ArtifactRetention,
	}, store, holder, transcriber, engine, acquirer, composer, ledger, &logger)
	defer manager.Close()

	app := handlers.NewApp(manager, holder, cfg.CatalogPath, logger)
	router := httpapi.NewRouter(app, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// loadCatalog reads the catalog document, tolerating a missing file so the
// server can start before the first drivemap run.
func loadCatalog(path string, logger infra.Logger) *catalog.Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("catalog file not readable, starting with empty catalog")
		empty, _ := catalog.Load(nil)
		return empty
	}
	c, err := catalog.Load(data)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("catalog file malformed, starting with empty catalog")
		empty, _ := catalog.Load(nil)
		return empty
	}
	logger.Info().
		Int("videos", c.TotalVideoCount()).
		Int("folders", c.FolderCount()).
		Msg("catalog loaded")
	return c
}
