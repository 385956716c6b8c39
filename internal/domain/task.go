package domain

import "time"

// TaskState enumerates the lifecycle stages of a video generation task.
type TaskState string

const (
	TaskStateQueued       TaskState = "queued"
	TaskStateTranscribing TaskState = "transcribing"
	TaskStateSelecting    TaskState = "selecting"
	TaskStateAcquiring    TaskState = "acquiring"
	TaskStateComposing    TaskState = "composing"
	TaskStateSucceeded    TaskState = "succeeded"
	TaskStateFailed       TaskState = "failed"
)

// stateRank orders the forward pipeline so that callers polling a task can
// never observe a stage regression. Failed sits outside the order because it
// is reachable from any non-terminal state.
var stateRank = map[TaskState]int{
	TaskStateQueued:       0,
	TaskStateTranscribing: 1,
	TaskStateSelecting:    2,
	TaskStateAcquiring:    3,
	TaskStateComposing:    4,
	TaskStateSucceeded:    5,
}

// Terminal reports whether the state allows no further transitions.
func (s TaskState) Terminal() bool {
	return s == TaskStateSucceeded || s == TaskStateFailed
}

// CanTransition reports whether moving from s to next is a legal state
// machine step: strictly forward through the pipeline, or to Failed from any
// non-terminal state.
func (s TaskState) CanTransition(next TaskState) bool {
	if s.Terminal() {
		return false
	}
	if next == TaskStateFailed {
		return true
	}
	from, ok := stateRank[s]
	if !ok {
		return false
	}
	to, ok := stateRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Task is the externally visible record of one end-to-end generation job.
type Task struct {
	ID           string
	State        TaskState
	Progress     string
	ErrorMessage string
	ArtifactPath string
	CreatedAt    time.Time
	CompletedAt  time.Time
}
