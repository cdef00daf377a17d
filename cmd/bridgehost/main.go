// Command bridgehost runs the bridge against an in-process native side and
// serves it over HTTP, so the boundary can be driven from a desktop.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/clanofthecloud/cloudbridge/internal/app"
	"github.com/clanofthecloud/cloudbridge/internal/capability"
	"github.com/clanofthecloud/cloudbridge/internal/config"
	"github.com/clanofthecloud/cloudbridge/internal/deviceinfo"
	"github.com/clanofthecloud/cloudbridge/internal/dispatch"
	"github.com/clanofthecloud/cloudbridge/internal/handlers"
	"github.com/clanofthecloud/cloudbridge/internal/logger"
	"github.com/clanofthecloud/cloudbridge/internal/router"
	"github.com/clanofthecloud/cloudbridge/internal/ws"
)

const (
	defaultListen = "127.0.0.1:0"
	closeTimeout  = 5 * time.Second
)

func main() {
	slogger := logger.New(true)
	if err := run(slogger); err != nil {
		slogger.Error("bridgehost failed", "err", err)
		os.Exit(1)
	}
}

func run(slogger *slog.Logger) error {
	path := os.Getenv("CLOUDBRIDGE_MANIFEST")
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to locate manifest: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if !cfg.Verbose {
		slogger = logger.New(false)
	}
	if cfg.DataDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("failed to resolve data directory: %w", err)
		}
		cfg.DataDir = filepath.Join(dir, "cloudbridge")
	}

	disp := dispatch.New(slogger)
	ctx, err := app.Init(app.Options{
		Config: cfg,
		Native: disp,
		Push:   &capability.Static{Delay: 50 * time.Millisecond},
		Device: deviceinfo.HostSource{},
		Logger: slogger,
	})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := ctx.Close(closeCtx); err != nil {
			slogger.Warn("push operations abandoned at exit", "err", err)
		}
	}()

	wsHub := ws.NewHub(slogger)
	defer wsHub.Forward(disp)()

	h := handlers.New(ctx, disp, wsHub, slogger)
	mux := router.New(h)

	addr := os.Getenv("CLOUDBRIDGE_LISTEN")
	if addr == "" {
		addr = defaultListen
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	slogger.Info("server starting", "addr", "http://"+listener.Addr().String(), "manifest", path)

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(listener)
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	slogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
