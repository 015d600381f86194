// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	ErrOutOfMemory    = errors.New("streaming pool allocation failed")
	ErrAlreadyRunning = errors.New("worker already running")
	ErrWorkerRunning  = errors.New("cannot load source into a started worker")
	ErrWorkerStopped  = errors.New("worker stopped")
	ErrNotLoaded      = errors.New("no source loaded")
	ErrClosed         = errors.New("engine closed")
	ErrInvalidConfig  = errors.New("invalid stream config")
)
