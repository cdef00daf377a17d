package push

import (
	"sync/atomic"

	"github.com/clanofthecloud/cloudbridge/internal/capability"
)

type State int32

const (
	Idle State = iota
	Started
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Started:
		return "started"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Operation tracks one capability call from start to completion. It cannot
// be cancelled.
type Operation struct {
	Kind string

	state   atomic.Int32
	done    chan struct{}
	outcome capability.Outcome
}

func newOperation(kind string) *Operation {
	return &Operation{Kind: kind, done: make(chan struct{})}
}

func (o *Operation) State() State {
	return State(o.state.Load())
}

// Done is closed once the operation reached Completed.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Outcome is only meaningful after Done is closed.
func (o *Operation) Outcome() capability.Outcome {
	<-o.done
	return o.outcome
}

func (o *Operation) start() {
	o.state.CompareAndSwap(int32(Idle), int32(Started))
}

func (o *Operation) finish(out capability.Outcome) {
	if !o.state.CompareAndSwap(int32(Started), int32(Completed)) {
		return
	}
	o.outcome = out
	close(o.done)
}
