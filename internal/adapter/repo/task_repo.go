// Package repo contains the Postgres-backed persistence adapters.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Shaheer-Khan1/AdGenerator/internal/domain"
	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
	"github.com/Shaheer-Khan1/AdGenerator/internal/sqlinline"
)

// TaskRepo records task lifecycle events in the tasks table. It is an audit
// ledger: the in-memory task manager stays authoritative for live state.
type TaskRepo struct {
	runner infra.SQLExecutor
}

func NewTaskRepo(runner infra.SQLExecutor) *TaskRepo {
	return &TaskRepo{runner: runner}
}

// RecordCreated inserts the initial row for a new task.
func (r *TaskRepo) RecordCreated(ctx context.Context, task domain.Task) error {
	_, err := r.runner.Exec(ctx, sqlinline.InsertTask,
		task.ID, string(task.State), task.Progress, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("repo: insert task: %w", err)
	}
	return nil
}

// RecordTransition updates the row after a state change.
func (r *TaskRepo) RecordTransition(ctx context.Context, task domain.Task) error {
	var completedAt *time.Time
	if !task.CompletedAt.IsZero() {
		completedAt = &task.CompletedAt
	}
	_, err := r.runner.Exec(ctx, sqlinline.UpdateTaskState,
		task.ID, string(task.State), task.Progress, nullable(task.ErrorMessage), completedAt)
	if err != nil {
		return fmt.Errorf("repo: update task: %w", err)
	}
	return nil
}

// Fetch loads one task row by id, mostly for operational inspection.
func (r *TaskRepo) Fetch(ctx context.Context, id string) (domain.Task, error) {
	var (
		task        domain.Task
		state       string
		completedAt *time.Time
	)
	err := r.runner.QueryRow(ctx, sqlinline.SelectTask, id).Scan(
		&task.ID, &state, &task.Progress, &task.ErrorMessage, &task.CreatedAt, &completedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("repo: fetch task: %w", err)
	}
	task.State = domain.TaskState(state)
	if completedAt != nil {
		task.CompletedAt = *completedAt
	}
	return task, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
