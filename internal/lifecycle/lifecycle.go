// Package lifecycle forwards foreground/background transitions to the core.
package lifecycle

import (
	"log/slog"
	"sync"

	"github.com/clanofthecloud/cloudbridge/internal/bridge"
)

type State int

const (
	Foreground State = iota
	Background
)

func (s State) String() string {
	if s == Background {
		return "background"
	}
	return "foreground"
}

// Tracker only forwards actual transitions; a repeated suspend is dropped.
type Tracker struct {
	native bridge.NativeBridge
	logger *slog.Logger

	mu    sync.Mutex
	state State
	subs  []func(State)
}

func NewTracker(native bridge.NativeBridge, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{native: native, logger: logger}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe registers fn to be called after each forwarded transition.
func (t *Tracker) Subscribe(fn func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

// Suspended returns the core's result, or -1 when nothing was forwarded.
func (t *Tracker) Suspended() int {
	return t.transition(Background, t.native.Suspended)
}

// Resumed returns the core's result, or -1 when nothing was forwarded.
func (t *Tracker) Resumed() int {
	return t.transition(Foreground, t.native.Resumed)
}

func (t *Tracker) transition(to State, forward func() int) int {
	t.mu.Lock()
	if t.state == to {
		t.mu.Unlock()
		t.logger.Debug("lifecycle: already in state", "state", to)
		return -1
	}
	t.state = to
	subs := append([]func(State){}, t.subs...)
	t.mu.Unlock()

	rc := forward()
	t.logger.Debug("lifecycle transition", "state", to, "rc", rc)
	for _, fn := range subs {
		fn(to)
	}
	return rc
}
