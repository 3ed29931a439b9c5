package mapper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBlocksUntilReady(t *testing.T) {
	reg := newRegistry()
	assert.Equal(t, StateUninitialized, reg.State())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := reg.Resolve(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	got := make(chan *Statement, 1)
	go func() {
		s, err := reg.Resolve(context.Background(), "a")
		if err == nil {
			got <- s
		}
		close(got)
	}()
	reg.complete(StateReady, map[string]*Statement{"a": {Name: "a"}}, nil)

	select {
	case s := <-got:
		require.NotNil(t, s)
		assert.Equal(t, "a", s.Name)
	case <-time.After(time.Second):
		t.Fatal("resolve did not return after completion")
	}
	assert.Equal(t, StateReady, reg.State())
	assert.Equal(t, []string{"a"}, reg.Names())
}

func TestRegistryCompletesOnce(t *testing.T) {
	reg := newRegistry()
	reg.complete(StateUnavailable, nil, nil)
	reg.complete(StateReady, map[string]*Statement{"a": {Name: "a"}}, nil)

	assert.Equal(t, StateUnavailable, reg.State())
	_, err := reg.Resolve(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestRegistryFailed(t *testing.T) {
	cause := errors.New("boom")
	reg := newRegistry()
	reg.complete(StateFailed, nil, cause)

	_, err := reg.Resolve(context.Background(), "a")
	assert.ErrorIs(t, err, ErrTemplateLoad)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, reg.Err())
	assert.Nil(t, reg.Names())
}

func TestRegistryStatementNotFound(t *testing.T) {
	reg := newRegistry()
	reg.complete(StateReady, map[string]*Statement{}, nil)

	_, err := reg.Resolve(context.Background(), "findMissing")
	assert.ErrorIs(t, err, ErrStatementNotFound)
	assert.Contains(t, err.Error(), "findMissing")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "READY", StateReady.String())
	assert.Equal(t, "FAILED", StateFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
