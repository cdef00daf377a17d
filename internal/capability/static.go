package capability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/clanofthecloud/cloudbridge/internal/models"
)

// Static is a Push implementation for hosts without a platform push service.
// Registration hands out Token, or a fresh UUID when Token is empty.
type Static struct {
	Token string
	Delay time.Duration

	// Fail, when non-zero, makes every operation complete with this code.
	Fail    models.ErrorCode
	FailMsg string

	registrations   atomic.Int64
	unregistrations atomic.Int64
}

var _ Push = (*Static)(nil)

func (s *Static) StartRegistration(ctx context.Context) <-chan Outcome {
	s.registrations.Add(1)
	return s.run(ctx, func() Outcome {
		tok := s.Token
		if tok == "" {
			tok = uuid.NewString()
		}
		return Outcome{Payload: models.Payload{"token": tok}}
	})
}

func (s *Static) StartUnregistration(ctx context.Context) <-chan Outcome {
	s.unregistrations.Add(1)
	return s.run(ctx, func() Outcome { return Outcome{} })
}

// Calls reports how many operations were started.
func (s *Static) Calls() (registrations, unregistrations int64) {
	return s.registrations.Load(), s.unregistrations.Load()
}

func (s *Static) run(ctx context.Context, success func() Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)

		if s.Delay > 0 {
			t := time.NewTimer(s.Delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				ch <- Outcome{Code: models.Canceled, Message: ctx.Err().Error()}
				return
			case <-t.C:
			}
		}

		if s.Fail != models.NoErr {
			ch <- Outcome{Code: s.Fail, Message: s.FailMsg}
			return
		}
		ch <- success()
	}()
	return ch
}
