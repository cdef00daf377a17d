// Package bridgetest provides a recording NativeBridge for tests.
package bridgetest

import (
	"sync"

	"github.com/clanofthecloud/cloudbridge/internal/bridge"
)

var _ bridge.NativeBridge = (*Recorder)(nil)

type Invocation struct {
	HandlerID int64
	Result    string
}

// Recorder captures every call made across the boundary.
type Recorder struct {
	mu          sync.Mutex
	invocations []Invocation
	tokens      []string
	suspended   int
	resumed     int

	// OnInvoke, when set, runs after an invocation is recorded.
	OnInvoke func(Invocation)
	// OnToken, when set, runs after a token is recorded.
	OnToken func(string)
}

func (r *Recorder) InvokeHandler(handlerID int64, result string) {
	inv := Invocation{HandlerID: handlerID, Result: result}
	r.mu.Lock()
	r.invocations = append(r.invocations, inv)
	cb := r.OnInvoke
	r.mu.Unlock()
	if cb != nil {
		cb(inv)
	}
}

func (r *Recorder) RegisterDevice(token string) int {
	r.mu.Lock()
	r.tokens = append(r.tokens, token)
	cb := r.OnToken
	r.mu.Unlock()
	if cb != nil {
		cb(token)
	}
	return 0
}

func (r *Recorder) Suspended() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended++
	return 0
}

func (r *Recorder) Resumed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumed++
	return 0
}

func (r *Recorder) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.invocations...)
}

func (r *Recorder) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens...)
}

func (r *Recorder) Lifecycle() (suspended, resumed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suspended, r.resumed
}
