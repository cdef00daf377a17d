// Package capability describes the platform services the bridge drives but
// does not implement, and adapts their callback style into single-shot
// completion channels.
package capability

import (
	"context"

	"github.com/clanofthecloud/cloudbridge/internal/models"
)

// Outcome is what a capability reports when an operation finishes.
type Outcome struct {
	Code    models.ErrorCode
	Payload models.Payload
	Message string
}

func (o Outcome) OK() bool { return o.Code == models.NoErr }

// Result converts the outcome into the message shape delivered to handlers.
func (o Outcome) Result() models.Result {
	return models.Result{Payload: o.Payload, Code: o.Code, Description: o.Message}
}

// Push is the platform push-notification registration service. Each start
// returns a channel that receives exactly one Outcome and is then closed. The
// outcome may be produced on any goroutine.
type Push interface {
	StartRegistration(ctx context.Context) <-chan Outcome
	StartUnregistration(ctx context.Context) <-chan Outcome
}

// Done returns an already completed channel holding o.
func Done(o Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- o
	close(ch)
	return ch
}
