package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// DatabaseURL is optional; when empty the service runs without the
	// task ledger and keeps all state in memory.
	DatabaseURL string

	StoragePath string
	CatalogPath string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	PexelsAPIKey  string
	PexelsBaseURL string

	WhisperBaseURL string
	WhisperModel   string
	WhisperAPIKey  string

	DriveBaseURL string
	FFmpegPath   string

	MaxConcurrentTasks int
	MaxQueuedTasks     int
	MinClips           int
	MaxClips           int
	DownloadMaxRetries int
	StageTimeout       time.Duration
	ArtifactRetention  time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		CatalogPath:        getEnv("CATALOG_PATH", "./drive_videos.json"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		PexelsAPIKey:       os.Getenv("PEXELS_API_KEY"),
		PexelsBaseURL:      getEnv("PEXELS_BASE_URL", "https://api.pexels.com"),
		WhisperBaseURL:     os.Getenv("WHISPER_BASE_URL"),
		WhisperModel:       getEnv("WHISPER_MODEL", "whisper-1"),
		WhisperAPIKey:      os.Getenv("WHISPER_API_KEY"),
		DriveBaseURL:       getEnv("DRIVE_BASE_URL", "https://drive.google.com"),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		MaxConcurrentTasks: getEnvInt("MAX_CONCURRENT_TASKS", 2),
		MaxQueuedTasks:     getEnvInt("MAX_QUEUED_TASKS", 16),
		MinClips:           getEnvInt("MIN_CLIPS", 2),
		MaxClips:           getEnvInt("MAX_CLIPS", 5),
		DownloadMaxRetries: getEnvInt("DOWNLOAD_MAX_RETRIES", 3),
		StageTimeout:       time.Second * time.Duration(getEnvInt("STAGE_TIMEOUT_SECONDS", 180)),
		ArtifactRetention:  time.Second * time.Duration(getEnvInt("ARTIFACT_RETENTION_SECONDS", 3600)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.MaxConcurrentTasks < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_TASKS must be at least 1")
	}
	if cfg.MinClips < 1 {
		return nil, fmt.Errorf("MIN_CLIPS must be at least 1")
	}
	if cfg.MaxClips < cfg.MinClips {
		return nil, fmt.Errorf("MAX_CLIPS must be >= MIN_CLIPS")
	}
	if cfg.DownloadMaxRetries < 1 {
		return nil, fmt.Errorf("DOWNLOAD_MAX_RETRIES must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
