// Package task orchestrates the end-to-end generation pipeline: admission,
// the stage state machine, per-stage timeouts, and artifact retention.
package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shaheer-Khan1/AdGenerator/internal/acquire"
	"github.com/Shaheer-Khan1/AdGenerator/internal/catalog"
	"github.com/Shaheer-Khan1/AdGenerator/internal/compose"
	"github.com/Shaheer-Khan1/AdGenerator/internal/domain"
	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
	"github.com/Shaheer-Khan1/AdGenerator/internal/providers/transcribe"
	"github.com/Shaheer-Khan1/AdGenerator/internal/selection"
	"github.com/Shaheer-Khan1/AdGenerator/internal/storage"
)

// Transcriber converts narration audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (*transcribe.Transcript, error)
}

// Selector picks catalog videos matching a transcription.
type Selector interface {
	Select(ctx context.Context, req selection.Request) (*selection.Result, error)
}

// Acquirer downloads the selected clips into a directory.
type Acquirer interface {
	Acquire(ctx context.Context, sel *selection.Result, destDir string) ([]acquire.Clip, error)
}

// Ledger records task lifecycle events in durable storage. A nil ledger
// disables recording.
type Ledger interface {
	RecordCreated(ctx context.Context, task domain.Task) error
	RecordTransition(ctx context.Context, task domain.Task) error
}

// Request is one submission: narration audio plus an optional pre-written
// script that skips transcription.
type Request struct {
	Audio         []byte
	AudioFilename string
	Script        string
}

// Config tunes the manager's concurrency and retention behaviour.
type Config struct {
	MaxConcurrent int
	MaxQueued     int
	StageTimeout  time.Duration
	Retention     time.Duration
}

// Manager owns every live task and drives each through the pipeline.
type Manager struct {
	cfg         Config
	store       *storage.FileStore
	catalog     *catalog.Holder
	transcriber Transcriber
	selector    Selector
	acquirer    Acquirer
	composer    compose.Composer
	ledger      Ledger
	logger      *infra.Logger

	slots  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	tasks  map[string]*domain.Task
	timers map[string]*time.Timer
	closed bool
}

// NewManager wires a task manager. transcriber and ledger may be nil; a nil
// transcriber makes submissions without a script fail at the transcription
// stage.
func NewManager(cfg Config, store *storage.FileStore, cat *catalog.Holder,
	transcriber Transcriber, selector Selector, acquirer Acquirer,
	composer compose.Composer, ledger Ledger, logger *infra.Logger) *Manager {

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxQueued < 1 {
		cfg.MaxQueued = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:         cfg,
		store:       store,
		catalog:     cat,
		transcriber: transcriber,
		selector:    selector,
		acquirer:    acquirer,
		composer:    composer,
		ledger:      ledger,
		logger:      logger,
		slots:       make(chan struct{}, cfg.MaxConcurrent),
		ctx:         ctx,
		cancel:      cancel,
		tasks:       make(map[string]*domain.Task),
		timers:      make(map[string]*time.Timer),
	}
}

// Submit admits a new task, persists its narration audio, and starts the
// pipeline in the background. Returns the task id.
func (m *Manager) Submit(ctx context.Context, req Request) (string, error) {
	if len(req.Audio) == 0 {
		return "", errors.New("task: narration audio is required")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", errors.New("task: manager is shut down")
	}
	waiting := 0
	for _, t := range m.tasks {
		if t.State == domain.TaskStateQueued {
			waiting++
		}
	}
	if waiting >= m.cfg.MaxQueued {
		m.mu.Unlock()
		return "", domain.ErrCapacityExceeded
	}
	id := uuid.NewString()
	task := &domain.Task{
		ID:        id,
		State:     domain.TaskStateQueued,
		Progress:  "waiting for a worker slot",
		CreatedAt: time.Now().UTC(),
	}
	m.tasks[id] = task
	m.mu.Unlock()

	workDir, err := m.store.EnsureTaskDir(id)
	if err != nil {
		m.remove(id)
		return "", fmt.Errorf("task: create working directory: %w", err)
	}
	audioName := "narration" + extOrDefault(req.AudioFilename, ".mp3")
	audioPath, err := m.store.Write(ctx, filepath.ToSlash(filepath.Join("tasks", id, audioName)), req.Audio)
	if err != nil {
		m.remove(id)
		_ = m.store.RemoveTask(id)
		return "", fmt.Errorf("task: persist narration: %w", err)
	}

	m.record(func(l Ledger, ctx context.Context) error { return l.RecordCreated(ctx, *task) })
	m.logger.Info().Str("task_id", id).Str("audio", audioName).Msg("task admitted")

	m.wg.Add(1)
	go m.run(id, workDir, audioPath, req)
	return id, nil
}

// run drives one task through every stage. It owns the task's working
// directory until success or failure.
func (m *Manager) run(id, workDir, audioPath string, req Request) {
	defer m.wg.Done()

	select {
	case m.slots <- struct{}{}:
		defer func() { <-m.slots }()
	case <-m.ctx.Done():
		m.fail(id, m.ctx.Err())
		return
	}

	script := req.Script
	if script == "" {
		err := m.stage(id, domain.TaskStateTranscribing, "transcribing narration", func(ctx context.Context) error {
			if m.transcriber == nil {
				return errors.New("no transcriber configured")
			}
			f, err := os.Open(audioPath)
			if err != nil {
				return err
			}
			defer f.Close()
			transcript, err := m.transcriber.Transcribe(ctx, f, req.AudioFilename)
			if err != nil {
				return err
			}
			script = transcript.Text
			return nil
		})
		if err != nil {
			m.fail(id, err)
			return
		}
	}

	var sel *selection.Result
	err := m.stage(id, domain.TaskStateSelecting, "selecting catalog clips", func(ctx context.Context) error {
		var err error
		sel, err = m.selector.Select(ctx, selection.Request{
			Transcription: script,
			Catalog:       m.catalog.Current(),
		})
		return err
	})
	if err != nil {
		m.fail(id, err)
		return
	}

	var clips []acquire.Clip
	err = m.stage(id, domain.TaskStateAcquiring, "downloading clips", func(ctx context.Context) error {
		var err error
		clips, err = m.acquirer.Acquire(ctx, sel, workDir)
		return err
	})
	if err != nil {
		m.fail(id, err)
		return
	}

	artifact := m.store.ArtifactPath(id)
	err = m.stage(id, domain.TaskStateComposing, "composing final video", func(ctx context.Context) error {
		paths := make([]string, len(clips))
		for i, clip := range clips {
			paths[i] = clip.Path
		}
		_, err := m.composer.Compose(ctx, compose.Request{
			ClipPaths:  paths,
			AudioPath:  audioPath,
			Script:     script,
			WorkDir:    workDir,
			OutputPath: artifact,
		})
		return err
	})
	if err != nil {
		m.fail(id, err)
		return
	}

	m.succeed(id, artifact)
}

// stage transitions the task and runs fn under the per-stage timeout.
func (m *Manager) stage(id string, state domain.TaskState, progress string, fn func(context.Context) error) error {
	if err := m.transition(id, state, progress, ""); err != nil {
		return err
	}
	ctx := m.ctx
	cancel := context.CancelFunc(func() {})
	if m.cfg.StageTimeout > 0 {
		ctx, cancel = context.WithTimeout(m.ctx, m.cfg.StageTimeout)
	}
	defer cancel()

	err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && m.ctx.Err() == nil {
		return fmt.Errorf("%w: %s after %s", domain.ErrStageTimeout, state, m.cfg.StageTimeout)
	}
	return err
}

// transition applies a state change under the lock, refusing illegal steps.
func (m *Manager) transition(id string, next domain.TaskState, progress, errMsg string) error {
	m.mu.Lock()
	task, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	if !task.State.CanTransition(next) {
		m.mu.Unlock()
		return fmt.Errorf("task: illegal transition %s -> %s", task.State, next)
	}
	task.State = next
	task.Progress = progress
	task.ErrorMessage = errMsg
	if next.Terminal() {
		task.CompletedAt = time.Now().UTC()
	}
	snapshot := *task
	m.mu.Unlock()

	m.logger.Info().
		Str("task_id", id).
		Str("state", string(next)).
		Str("progress", progress).
		Msg("task transition")
	m.record(func(l Ledger, ctx context.Context) error { return l.RecordTransition(ctx, snapshot) })
	return nil
}

// succeed finalizes a task, keeps its artifact for the retention window, and
// removes the intermediate files immediately.
func (m *Manager) succeed(id, artifact string) {
	m.mu.Lock()
	if task, ok := m.tasks[id]; ok {
		task.ArtifactPath = artifact
	}
	m.mu.Unlock()

	if err := m.transition(id, domain.TaskStateSucceeded, "done", ""); err != nil {
		m.logger.Error().Str("task_id", id).Err(err).Msg("could not finalize task")
		return
	}
	if err := m.store.RemoveTask(id); err != nil {
		m.logger.Warn().Str("task_id", id).Err(err).Msg("could not remove working directory")
	}
	m.scheduleReclaim(id)
}

// fail marks a task failed and reclaims its working directory right away.
func (m *Manager) fail(id string, cause error) {
	m.logger.Error().Str("task_id", id).Err(cause).Msg("task failed")
	if err := m.transition(id, domain.TaskStateFailed, "failed", cause.Error()); err != nil {
		m.logger.Error().Str("task_id", id).Err(err).Msg("could not mark task failed")
	}
	if err := m.store.RemoveTask(id); err != nil {
		m.logger.Warn().Str("task_id", id).Err(err).Msg("could not remove working directory")
	}
	m.scheduleReclaim(id)
}

// scheduleReclaim drops the task record and artifact after the retention
// window so the server does not accumulate completed tasks forever.
func (m *Manager) scheduleReclaim(id string) {
	if m.cfg.Retention <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.timers[id] = time.AfterFunc(m.cfg.Retention, func() { m.reclaim(id) })
}

func (m *Manager) reclaim(id string) {
	m.remove(id)
	if err := m.store.RemoveArtifact(id); err != nil {
		m.logger.Warn().Str("task_id", id).Err(err).Msg("could not remove artifact")
	}
	m.logger.Info().Str("task_id", id).Msg("task reclaimed after retention")
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.tasks, id)
	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
	m.mu.Unlock()
}

// record runs a ledger call with a short deadline, logging failures instead
// of surfacing them: the ledger is an audit trail, not a dependency.
func (m *Manager) record(fn func(Ledger, context.Context) error) {
	if m.ledger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(m.ledger, ctx); err != nil {
		m.logger.Warn().Err(err).Msg("ledger write failed")
	}
}

// Status returns a copy of the task's current record.
func (m *Manager) Status(id string) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrNotFound
	}
	return *task, nil
}

// Artifact returns the finished video's path without opening it.
func (m *Manager) Artifact(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	switch task.State {
	case domain.TaskStateSucceeded:
		return task.ArtifactPath, nil
	case domain.TaskStateFailed:
		return "", domain.ErrNotFound
	default:
		return "", domain.ErrNotReady
	}
}

// OpenArtifact opens the finished video for reading. The handle stays valid
// even if the retention reclaim deletes the file afterwards.
func (m *Manager) OpenArtifact(id string) (*os.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	switch task.State {
	case domain.TaskStateSucceeded:
	case domain.TaskStateFailed:
		return nil, domain.ErrNotFound
	default:
		return nil, domain.ErrNotReady
	}
	f, err := os.Open(task.ArtifactPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Close stops admissions, cancels running tasks, and waits for them to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func extOrDefault(filename, fallback string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	return fallback
}
