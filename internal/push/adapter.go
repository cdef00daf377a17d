// Package push drives the platform push capability and reports outcomes
// either to the dedicated RegisterDevice sink or through handler invocation.
package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/clanofthecloud/cloudbridge/internal/bridge"
	"github.com/clanofthecloud/cloudbridge/internal/capability"
	"github.com/clanofthecloud/cloudbridge/internal/config"
	"github.com/clanofthecloud/cloudbridge/internal/logger"
	"github.com/clanofthecloud/cloudbridge/internal/models"
)

const (
	KindRegister       = "register"
	KindUnregister     = "unregister"
	KindRegisterHandle = "register_handler"

	tokenKey = "token"
)

var (
	// ErrClosed answers handlers whose operation was requested after Close.
	ErrClosed  = errors.New("push adapter closed")
	errNoToken = errors.New("registration returned no token")
)

type Adapter struct {
	available bool
	push      capability.Push
	invoker   *bridge.Invoker
	native    bridge.NativeBridge
	logger    *slog.Logger

	mu       sync.Mutex
	closed   bool
	wg       sync.WaitGroup
	inflight atomic.Int64
}

// New builds an adapter. Push is considered unavailable when the config has
// no sender id or no capability is supplied.
func New(
	cfg *config.Config,
	push capability.Push,
	invoker *bridge.Invoker,
	native bridge.NativeBridge,
	log *slog.Logger,
) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		available: cfg.PushAvailable() && push != nil,
		push:      push,
		invoker:   invoker,
		native:    native,
		logger:    log,
	}
}

func (a *Adapter) Available() bool { return a.available }

// QueryRegisterDevice starts a registration and hands the resulting token to
// NativeBridge.RegisterDevice. Returns nil when push is unavailable or the
// adapter is closed.
func (a *Adapter) QueryRegisterDevice() *Operation {
	a.verbose("query register device")
	if !a.available {
		return nil
	}

	return a.start(KindRegister, a.push.StartRegistration, func(o capability.Outcome) {
		if !o.OK() {
			a.logger.Warn("push registration failed",
				"code", o.Code,
				"message", o.Message,
			)
			return
		}
		tok, ok := o.Payload.String(tokenKey)
		if !ok || tok == "" {
			a.logger.Error("could not retrieve token in registration result")
			return
		}
		rc := a.native.RegisterDevice(tok)
		a.logger.Debug("registered device token", "rc", rc)
	})
}

// UnregisterDevice is internal housekeeping: its outcome is only logged.
// Returns nil when push is unavailable or the adapter is closed.
func (a *Adapter) UnregisterDevice() *Operation {
	a.verbose("unregistering device")
	if !a.available {
		return nil
	}

	return a.start(KindUnregister, a.push.StartUnregistration, func(o capability.Outcome) {
		if !o.OK() {
			a.logger.Warn("push unregistration failed",
				"code", o.Code,
				"message", o.Message,
			)
			return
		}
		a.verbose("finished unregistration")
	})
}

// RegisterWithHandler is the caller initiated registration: the outcome,
// success or failure, is delivered to h. When push is unavailable h receives
// PushNotSetup right away, and after Close it receives Canceled.
func (a *Adapter) RegisterWithHandler(h models.HandlerID) *Operation {
	a.verbose("register device with handler", "handler", h)
	if !a.available {
		op := newOperation(KindRegisterHandle)
		op.start()
		out := capability.Outcome{
			Code:    models.PushNotSetup,
			Message: "push notifications are not configured",
		}
		a.invoker.InvokeResult(h, out.Result())
		op.finish(out)
		return op
	}

	op := a.start(KindRegisterHandle, a.push.StartRegistration, func(o capability.Outcome) {
		if !o.OK() {
			a.invoker.InvokeResult(h, o.Result())
			return
		}
		tok, ok := o.Payload.String(tokenKey)
		if !ok || tok == "" {
			a.invoker.InvokeErr(h, &models.OpError{C: models.PushRegistrationFailed, Op: "register", Err: errNoToken})
			return
		}
		a.invoker.Invoke(h, models.Payload{tokenKey: tok})
	})
	if op == nil {
		op = newOperation(KindRegisterHandle)
		op.start()
		a.invoker.InvokeErr(h, &models.OpError{C: models.Canceled, Op: "register", Err: ErrClosed})
		op.finish(capability.Outcome{Code: models.Canceled, Message: ErrClosed.Error()})
	}
	return op
}

// Close stops new operations and waits for started ones to be handled. A
// capability that never completes would block forever, so the wait ends with
// ctx and the number of abandoned operations is logged.
func (a *Adapter) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		a.logger.Warn("push operations still pending at close",
			"pending", a.inflight.Load(),
			"err", ctx.Err(),
		)
		return ctx.Err()
	}
}

// start returns nil once the adapter is closed.
func (a *Adapter) start(
	kind string,
	begin func(context.Context) <-chan capability.Outcome,
	complete func(capability.Outcome),
) *Operation {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Warn("push operation requested after close", "kind", kind)
		return nil
	}
	a.wg.Add(1)
	a.mu.Unlock()

	op := newOperation(kind)
	op.start()
	a.inflight.Add(1)
	ch := begin(context.Background())

	go func() {
		defer a.wg.Done()
		defer a.inflight.Add(-1)

		out, ok := <-ch
		if !ok {
			out = capability.Outcome{
				Code:    models.InternalError,
				Message: "capability finished without an outcome",
			}
		}
		complete(out)
		op.finish(out)
	}()
	return op
}

func (a *Adapter) verbose(msg string, args ...any) {
	a.logger.Log(context.Background(), logger.LevelVerbose, msg, args...)
}
