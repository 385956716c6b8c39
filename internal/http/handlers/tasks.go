package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shaheer-Khan1/AdGenerator/internal/domain"
	"github.com/Shaheer-Khan1/AdGenerator/internal/task"
)

// maxUploadBytes caps the narration upload size.
const maxUploadBytes = 50 << 20

var allowedAudioExts = map[string]bool{
	".mp3": true,
	".wav": true,
	".m4a": true,
	".aac": true,
}

type submitResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type taskResponse struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status"`
	Progress    string `json:"progress,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

func (a *App) SubmitVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "multipart form required with an audio_file field")
		return
	}
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "audio_file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAudioExts[ext] {
		a.error(w, http.StatusBadRequest, "bad_request",
			fmt.Sprintf("unsupported audio format %q, expected mp3/wav/m4a/aac", ext))
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read audio_file")
		return
	}
	if len(audio) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "audio_file is empty")
		return
	}

	id, err := a.Tasks.Submit(r.Context(), task.Request{
		Audio:         audio,
		AudioFilename: header.Filename,
		Script:        strings.TrimSpace(r.FormValue("script_text")),
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			a.error(w, http.StatusServiceUnavailable, "capacity_exceeded", "too many queued tasks, retry later")
			return
		}
		a.Logger.Error().Err(err).Msg("task submission failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not admit task")
		return
	}
	a.json(w, http.StatusAccepted, submitResponse{TaskID: id, Status: string(domain.TaskStateQueued)})
}

func (a *App) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := a.Tasks.Status(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "task not found")
		return
	}
	resp := taskResponse{
		TaskID:    t.ID,
		Status:    string(t.State),
		Progress:  t.Progress,
		Error:     t.ErrorMessage,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if !t.CompletedAt.IsZero() {
		resp.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) DownloadTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f, err := a.Tasks.OpenArtifact(id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotReady):
			a.error(w, http.StatusConflict, "not_ready", "task has not finished yet")
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "no downloadable video for this task")
		default:
			a.Logger.Error().Err(err).Str("task_id", id).Msg("artifact open failed")
			a.error(w, http.StatusInternalServerError, "internal", "could not open video")
		}
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"_final.mp4"))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	}
	if _, err := io.Copy(w, f); err != nil {
		a.Logger.Warn().Err(err).Str("task_id", id).Msg("artifact stream interrupted")
	}
}
