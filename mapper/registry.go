package mapper

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// State is the lifecycle of a Registry.
type State int32

const (
	StateUninitialized State = iota // load in progress
	StateReady                      // statements available
	StateUnavailable                // DAO has no mapping document
	StateFailed                     // document failed to parse or compile
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateReady:
		return "READY"
	case StateUnavailable:
		return "UNAVAILABLE"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Registry holds the compiled statements of one mapping document.
// It leaves StateUninitialized exactly once. Its contents are never changed
// afterwards; a reload builds a new Registry.
type Registry struct {
	ready chan struct{}
	once  sync.Once

	// written once, before ready is closed
	state State
	stmts map[string]*Statement
	err   error
}

func newRegistry() *Registry {
	return &Registry{ready: make(chan struct{})}
}

// complete publishes the final state. Calls after the first are ignored.
func (r *Registry) complete(state State, stmts map[string]*Statement, err error) {
	r.once.Do(func() {
		r.state = state
		r.stmts = stmts
		r.err = err
		close(r.ready)
	})
}

// Ready is closed once the registry has left StateUninitialized.
func (r *Registry) Ready() <-chan struct{} {
	return r.ready
}

// State reports the current state without blocking.
func (r *Registry) State() State {
	select {
	case <-r.ready:
		return r.state
	default:
		return StateUninitialized
	}
}

// Wait blocks until loading has finished or ctx is done. It returns the
// error a lookup would fail with for StateUnavailable and StateFailed.
func (r *Registry) Wait(ctx context.Context) error {
	select {
	case <-r.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	switch r.state {
	case StateUnavailable:
		return ErrNoTemplate
	case StateFailed:
		return fmt.Errorf("%w: %w", ErrTemplateLoad, r.err)
	}
	return nil
}

// Resolve waits for readiness and looks up a statement by name.
func (r *Registry) Resolve(ctx context.Context, name string) (*Statement, error) {
	if err := r.Wait(ctx); err != nil {
		return nil, err
	}
	s, ok := r.stmts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStatementNotFound, name)
	}
	return s, nil
}

// Names returns the sorted statement names. Empty unless ready.
func (r *Registry) Names() []string {
	if r.State() != StateReady {
		return nil
	}
	names := make([]string, 0, len(r.stmts))
	for n := range r.stmts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Err is the captured load error of a failed registry.
func (r *Registry) Err() error {
	if r.State() != StateFailed {
		return nil
	}
	return r.err
}
