package bridge

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/clanofthecloud/cloudbridge/internal/models"
)

// Invoker turns typed results into result messages and hands them to the
// native dispatcher. It keeps no per-handler state: delivering twice for the
// same handler produces two messages.
type Invoker struct {
	native NativeBridge
	logger *slog.Logger
}

func NewInvoker(native NativeBridge, logger *slog.Logger) *Invoker {
	if native == nil {
		panic("bridge: NewInvoker called with a nil NativeBridge")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{native: native, logger: logger}
}

// Invoke delivers payload as a success.
func (i *Invoker) Invoke(h models.HandlerID, payload models.Payload) {
	i.InvokeResult(h, models.Success(payload))
}

// InvokeError delivers code with an optional payload and message.
func (i *Invoker) InvokeError(
	h models.HandlerID,
	code models.ErrorCode,
	payload models.Payload,
	message string,
) {
	i.InvokeResult(h, models.Result{
		Payload:     payload,
		Code:        code,
		Description: message,
	})
}

// InvokeErr delivers the code carried by err, using its text as description.
func (i *Invoker) InvokeErr(h models.HandlerID, err error) {
	if err == nil {
		i.Invoke(h, nil)
		return
	}
	i.InvokeError(h, models.CodeOf(err), nil, err.Error())
}

func (i *Invoker) InvokeResult(h models.HandlerID, r models.Result) {
	if keys := r.Collisions(); len(keys) > 0 {
		i.logger.Warn("payload uses reserved keys, overwriting",
			"handler", h,
			"keys", keys,
		)
	}

	msg, err := json.Marshal(r)
	if err != nil {
		i.logger.Error("encode result failed, delivering error fields only",
			"handler", h,
			"code", r.Code,
			"err", err,
		)
		msg = fallback(r.Code, err)
	}

	i.deliver(h, string(msg))
}

func (i *Invoker) deliver(h models.HandlerID, msg string) {
	defer func() {
		if rec := recover(); rec != nil {
			i.logger.Error("native InvokeHandler panicked",
				"handler", h,
				"err", fmt.Errorf("%v", rec),
			)
		}
	}()

	i.logger.Debug("invoke handler", "handler", h, "bytes", len(msg))
	i.native.InvokeHandler(int64(h), msg)
}

func fallback(code models.ErrorCode, cause error) []byte {
	if code == models.NoErr {
		code = models.InternalError
	}
	out, err := json.Marshal(models.Failure(code, "encode result: "+cause.Error()))
	if err != nil {
		// Only an int and a string are left to encode.
		return []byte(fmt.Sprintf(`{"%s":%d}`, models.KeyError, int(code)))
	}
	return out
}
