// Package organizer runs the long-lived pipeline jobs: feed synchronization
// and reclassification. At most one job executes at a time; cancellation is
// cooperative and observed between units of work, never inside a step.
package organizer

import (
	"context"
	"errors"
	"sync"
)

// Kind identifies a job type.
type Kind string

const (
	KindSync       Kind = "sync"
	KindReclassify Kind = "reclassify"
)

// ErrJobBusy is returned when a different job kind is already running.
var ErrJobBusy = errors.New("organizer: another job is running")

// ErrCancelRequested is returned when starting a job of the kind already
// running: the start action doubles as the cancel affordance.
var ErrCancelRequested = errors.New("organizer: cancellation requested for running job")

// jobState is the single run-state value: idle (kind == ""), or running a
// kind with its cancel function. Owned by the Runner; never ambient.
type jobState struct {
	mu     sync.Mutex
	kind   Kind
	cancel context.CancelFunc
}

// begin transitions Idle→Running(kind) and returns the run context.
// Invoking it while the same kind is running cancels that job instead and
// returns ErrCancelRequested; a different running kind returns ErrJobBusy.
func (s *jobState) begin(parent context.Context, kind Kind) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kind != "" {
		if s.kind == kind {
			s.cancel()
			return nil, ErrCancelRequested
		}
		return nil, ErrJobBusy
	}

	ctx, cancel := context.WithCancel(parent)
	s.kind = kind
	s.cancel = cancel
	return ctx, nil
}

// finish releases the run state back to Idle.
func (s *jobState) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.kind = ""
	s.cancel = nil
}

// Running reports the currently running kind, or "" when idle.
func (s *jobState) Running() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}
