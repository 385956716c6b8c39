package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
	"github.com/Shaheer-Khan1/AdGenerator/internal/domain"
	"github.com/Shaheer-Khan1/AdGenerator/internal/task"
)

// TaskService is what the handlers need from the task manager.
type TaskService interface {
	Submit(ctx context.Context, req task.Request) (string, error)
	Status(id string) (domain.Task, error)
	OpenArtifact(id string) (*os.File, error)
}

type App struct {
	Tasks       TaskService
	Catalog     *catalog.Holder
	CatalogPath string
	Logger      zerolog.Logger
}

func NewApp(tasks TaskService, cat *catalog.Holder, catalogPath string, logger zerolog.Logger) *App {
	return &App{Tasks: tasks, Catalog: cat, CatalogPath: catalogPath, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}
