package capability

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clanofthecloud/cloudbridge/internal/models"
)

// Listener is handed to native capabilities; they call OnDone once the
// operation finishes. resultJSON is a JSON object or empty.
type Listener interface {
	OnDone(code int, resultJSON string, message string)
}

// NativePush is the gomobile-facing, callback style push service.
type NativePush interface {
	StartRegistration(l Listener)
	StartUnregistration(l Listener)
}

// FromNative adapts a callback style NativePush into Push.
func FromNative(n NativePush, logger *slog.Logger) Push {
	if logger == nil {
		logger = slog.Default()
	}
	return &nativePush{native: n, logger: logger}
}

type nativePush struct {
	native NativePush
	logger *slog.Logger
}

func (p *nativePush) StartRegistration(ctx context.Context) <-chan Outcome {
	l := newOnceListener("registration", p.logger)
	p.native.StartRegistration(l)
	return l.ch
}

func (p *nativePush) StartUnregistration(ctx context.Context) <-chan Outcome {
	l := newOnceListener("unregistration", p.logger)
	p.native.StartUnregistration(l)
	return l.ch
}

// onceListener forwards the first OnDone and ignores the rest.
type onceListener struct {
	op     string
	logger *slog.Logger
	once   sync.Once
	ch     chan Outcome
}

func newOnceListener(op string, logger *slog.Logger) *onceListener {
	return &onceListener{op: op, logger: logger, ch: make(chan Outcome, 1)}
}

func (l *onceListener) OnDone(code int, resultJSON string, message string) {
	fired := false
	l.once.Do(func() {
		fired = true
		l.ch <- Outcome{
			Code:    models.ErrorCode(code),
			Payload: l.decode(resultJSON),
			Message: message,
		}
		close(l.ch)
	})
	if !fired {
		l.logger.Warn("capability completed more than once, ignoring", "op", l.op, "code", code)
	}
}

func (l *onceListener) decode(resultJSON string) models.Payload {
	if resultJSON == "" {
		return nil
	}
	p, err := models.DecodePayload([]byte(resultJSON))
	if err != nil {
		l.logger.Error("capability returned malformed result", "op", l.op, "err", err)
		return nil
	}
	return p
}
