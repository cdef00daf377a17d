// Package app wires the bridge components into one initialised context.
// Every boundary entry point goes through a *Context, so no operation can run
// against missing configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clanofthecloud/cloudbridge/internal/bridge"
	"github.com/clanofthecloud/cloudbridge/internal/capability"
	"github.com/clanofthecloud/cloudbridge/internal/config"
	"github.com/clanofthecloud/cloudbridge/internal/deviceinfo"
	"github.com/clanofthecloud/cloudbridge/internal/lifecycle"
	"github.com/clanofthecloud/cloudbridge/internal/models"
	"github.com/clanofthecloud/cloudbridge/internal/push"
	"github.com/clanofthecloud/cloudbridge/internal/storage"
)

type Options struct {
	Config *config.Config
	Native bridge.NativeBridge
	Push   capability.Push
	Device deviceinfo.Source
	Logger *slog.Logger
}

type Context struct {
	cfg       *config.Config
	native    bridge.NativeBridge
	logger    *slog.Logger
	invoker   *bridge.Invoker
	push      *push.Adapter
	device    *deviceinfo.Collector
	fs        *storage.FS
	lifecycle *lifecycle.Tracker
}

// Init validates opts and builds the context. Push and Device are optional.
func Init(opts Options) (*Context, error) {
	if opts.Native == nil {
		return nil, bridge.ErrNoBridge
	}
	if opts.Config == nil {
		return nil, errors.New("app: nil config")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	fs := storage.New(opts.Config.DataDir, log)
	if err := fs.Prepare(); err != nil {
		return nil, fmt.Errorf("prepare data directory: %w", err)
	}

	invoker := bridge.NewInvoker(opts.Native, log)
	c := &Context{
		cfg:       opts.Config,
		native:    opts.Native,
		logger:    log,
		invoker:   invoker,
		push:      push.New(opts.Config, opts.Push, invoker, opts.Native, log),
		device:    deviceinfo.NewCollector(opts.Device, opts.Config.DeviceCacheTTL, log),
		fs:        fs,
		lifecycle: lifecycle.NewTracker(opts.Native, log),
	}

	// Device details may change while in the background.
	c.lifecycle.Subscribe(func(s lifecycle.State) {
		if s == lifecycle.Foreground {
			c.device.Invalidate()
		}
	})

	if c.push.Available() {
		log.Info("push notification support is enabled")
	} else {
		log.Info("push sender id not configured, push notifications disabled")
	}
	return c, nil
}

func (c *Context) Config() *config.Config        { return c.cfg }
func (c *Context) Logger() *slog.Logger          { return c.logger }
func (c *Context) Invoker() *bridge.Invoker      { return c.invoker }
func (c *Context) Push() *push.Adapter           { return c.push }
func (c *Context) Lifecycle() *lifecycle.Tracker { return c.lifecycle }
func (c *Context) Storage() *storage.FS          { return c.fs }

func (c *Context) QueryRegisterDevice() *push.Operation {
	return c.push.QueryRegisterDevice()
}

func (c *Context) UnregisterDevice() *push.Operation {
	return c.push.UnregisterDevice()
}

func (c *Context) RegisterWithHandler(h models.HandlerID) *push.Operation {
	return c.push.RegisterWithHandler(h)
}

func (c *Context) CollectDeviceInformation(ctx context.Context) string {
	return c.device.CollectJSON(ctx)
}

func (c *Context) DataDirectory() string        { return c.fs.DataDirectory() }
func (c *Context) CreateDirectory(p string) bool { return c.fs.CreateDirectory(p) }
func (c *Context) DeleteFile(p string) bool      { return c.fs.DeleteFile(p) }

func (c *Context) Suspended() int { return c.lifecycle.Suspended() }
func (c *Context) Resumed() int   { return c.lifecycle.Resumed() }

// Close refuses new push operations and waits, until ctx ends, for the
// in-flight ones to finish delivering.
func (c *Context) Close(ctx context.Context) error {
	return c.push.Close(ctx)
}
