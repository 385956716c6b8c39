package domain

import "errors"

var (
	ErrNotFound         = errors.New("task not found")
	ErrNotReady         = errors.New("artifact not ready")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrStageTimeout     = errors.New("stage deadline exceeded")
	ErrEmptySelection   = errors.New("empty selection")
	ErrCatalogFormat    = errors.New("malformed catalog document")
	ErrComposition      = errors.New("composition failed")
)
