// Package mobile is the gomobile bound surface. Native code registers its
// bridge and capabilities, calls Init once, then drives every entry point
// from here.
package mobile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/clanofthecloud/cloudbridge/internal/app"
	"github.com/clanofthecloud/cloudbridge/internal/bridge"
	"github.com/clanofthecloud/cloudbridge/internal/capability"
	"github.com/clanofthecloud/cloudbridge/internal/config"
	"github.com/clanofthecloud/cloudbridge/internal/logger"
	"github.com/clanofthecloud/cloudbridge/internal/models"
)

const deviceInfoTimeout = 5 * time.Second

var shutdownTimeout = 5 * time.Second

// CompletionListener is what native push code calls back into once a
// registration or unregistration finishes.
type CompletionListener interface {
	OnDone(code int, resultJSON string, message string)
}

// PushService is implemented natively when the platform supports push.
type PushService interface {
	StartRegistration(l CompletionListener)
	StartUnregistration(l CompletionListener)
}

// DeviceProvider answers the platform specific device queries.
type DeviceProvider interface {
	DeviceID() (string, error)
	OSName() string
	OSVersion() (string, error)
	Model() (string, error)
}

var (
	mu       sync.Mutex
	current  *app.Context
	pushSvc  PushService
	provider DeviceProvider

	level = new(slog.LevelVar)
	log   = logger.NewLeveled(os.Stdout, level)
)

func RegisterBridge(b bridge.NativeBridge) {
	bridge.Register(b)
}

// RegisterPush must be called before Init to enable push support.
func RegisterPush(p PushService) {
	mu.Lock()
	defer mu.Unlock()
	pushSvc = p
}

func RegisterDeviceProvider(p DeviceProvider) {
	mu.Lock()
	defer mu.Unlock()
	provider = p
}

// Init loads the manifest and builds the bridge context. dataDir, when not
// empty, overrides storage.data_dir from the manifest.
func Init(manifestPath string, dataDir string) error {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return fmt.Errorf("already initialised")
	}

	native, err := bridge.Safe()
	if err != nil {
		return fmt.Errorf("call RegisterBridge before Init: %w", err)
	}

	cfg, err := config.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	logger.SetVerbose(level, cfg.Verbose)

	opts := app.Options{
		Config: cfg,
		Native: native,
		Logger: log,
	}
	if pushSvc != nil {
		opts.Push = capability.FromNative(pushAdapter{pushSvc}, log)
	}
	if provider != nil {
		opts.Device = provider
	}

	ctx, err := app.Init(opts)
	if err != nil {
		return err
	}
	current = ctx
	log.Info("bridge initialised", "data_dir", cfg.DataDir, "push", ctx.Push().Available())
	return nil
}

// Shutdown drops the context, so Init can be called again, and waits a
// bounded time for pending push work. Handlers asking for push after this
// point are answered with Canceled.
func Shutdown() {
	mu.Lock()
	ctx := current
	current = nil
	mu.Unlock()

	if ctx == nil {
		return
	}
	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ctx.Close(closeCtx); err != nil {
		log.Warn("shutdown left push operations pending", "err", err)
	}
}

func SetVerboseLog(verbose bool) {
	logger.SetVerbose(level, verbose)
}

func QueryRegisterDevice() {
	mustContext().QueryRegisterDevice()
}

func UnregisterDevice() {
	mustContext().UnregisterDevice()
}

// RegisterDeviceWithHandler registers for push and answers handlerID with
// the token, or with the failure.
func RegisterDeviceWithHandler(handlerID int64) {
	mustContext().RegisterWithHandler(models.HandlerID(handlerID))
}

func CollectDeviceInformation() string {
	ctx, cancel := context.WithTimeout(context.Background(), deviceInfoTimeout)
	defer cancel()
	return mustContext().CollectDeviceInformation(ctx)
}

func GetDataDirectory() string {
	return mustContext().DataDirectory()
}

func CreateDirectory(path string) bool {
	return mustContext().CreateDirectory(path)
}

func DeleteFile(path string) bool {
	return mustContext().DeleteFile(path)
}

func Suspended() int {
	return mustContext().Suspended()
}

func Resumed() int {
	return mustContext().Resumed()
}

// InvokeHandler lets native capabilities answer a handler directly.
// resultJSON may be empty; malformed JSON is logged and dropped.
func InvokeHandler(handlerID int64, code int, resultJSON string, message string) {
	c := mustContext()

	var payload models.Payload
	if resultJSON != "" {
		p, err := models.DecodePayload([]byte(resultJSON))
		if err != nil {
			c.Logger().Error("malformed handler payload, sending without it",
				"handler", handlerID, "err", err)
		}
		payload = p
	}
	c.Invoker().InvokeError(models.HandlerID(handlerID), models.ErrorCode(code), payload, message)
}

// mustContext panics when called before Init. Native code calling into the
// bridge without initialising it is a programming error.
func mustContext() *app.Context {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		panic("cloudbridge: not initialised, call Init first")
	}
	return current
}

type pushAdapter struct{ svc PushService }

func (p pushAdapter) StartRegistration(l capability.Listener) {
	p.svc.StartRegistration(l)
}

func (p pushAdapter) StartUnregistration(l capability.Listener) {
	p.svc.StartUnregistration(l)
}
