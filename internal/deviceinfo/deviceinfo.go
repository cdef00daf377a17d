// Package deviceinfo collects the platform identifiers reported to the core
// when a device is registered.
package deviceinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clanofthecloud/cloudbridge/internal/cache"
	"github.com/clanofthecloud/cloudbridge/internal/models"
)

// Source answers the individual platform queries. Any of them may fail; a
// failed field is reported as empty.
type Source interface {
	DeviceID() (string, error)
	OSName() string
	OSVersion() (string, error)
	Model() (string, error)
}

const cacheKey = "device"

// emptyJSON is returned if encoding ever fails, so callers always get an
// object carrying every key.
const emptyJSON = `{"id":"","osname":"","osversion":"","model":"","version":"1"}`

type Collector struct {
	src    Source
	cache  *cache.TTL[models.DeviceInfo]
	logger *slog.Logger
}

func NewCollector(src Source, ttl time.Duration, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		src:    src,
		cache:  cache.NewTTL[models.DeviceInfo](ttl),
		logger: logger,
	}
}

// Collect returns the device fields. When ctx ends before every platform
// query answered, the fields that did answer are returned and nothing is
// cached.
func (c *Collector) Collect(ctx context.Context) models.DeviceInfo {
	var partial models.DeviceInfo
	info, err := c.cache.Get(cacheKey, func() (models.DeviceInfo, error) {
		info, err := c.query(ctx)
		if err != nil {
			partial = info
		}
		return info, err
	})
	if err == nil {
		return info
	}
	c.logger.WarnContext(ctx, "device info incomplete", "err", err)
	if partial.Version == "" {
		// Joined another caller's query that gave up.
		partial = models.DeviceInfo{Version: models.DeviceInfoVersion, OSName: runtime.GOOS}
	}
	return partial
}

// Invalidate drops the cached fields so the next Collect queries again.
func (c *Collector) Invalidate() {
	c.cache.Invalidate(cacheKey)
}

// CollectJSON always returns a JSON object with the keys id, osname,
// osversion, model and version.
func (c *Collector) CollectJSON(ctx context.Context) string {
	out, err := json.Marshal(c.Collect(ctx))
	if err != nil {
		c.logger.Error("encode device info failed", "err", err)
		return emptyJSON
	}
	return string(out)
}

func (c *Collector) query(ctx context.Context) (models.DeviceInfo, error) {
	info := models.DeviceInfo{Version: models.DeviceInfoVersion, OSName: runtime.GOOS}
	if c.src == nil {
		return info, nil
	}

	// One buffered channel per field: a query still running after ctx ends
	// writes into its own channel and is never read.
	id := make(chan string, 1)
	osName := make(chan string, 1)
	osVersion := make(chan string, 1)
	model := make(chan string, 1)

	var g errgroup.Group
	g.Go(func() error {
		id <- c.field(ctx, "id", c.src.DeviceID)
		return nil
	})
	g.Go(func() error {
		osVersion <- c.field(ctx, "osversion", c.src.OSVersion)
		return nil
	})
	g.Go(func() error {
		model <- c.field(ctx, "model", c.src.Model)
		return nil
	})
	g.Go(func() error {
		osName <- c.field(ctx, "osname", func() (string, error) {
			return c.src.OSName(), nil
		})
		return nil
	})

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	read := func(ch chan string, dst *string) {
		select {
		case v := <-ch:
			if v != "" {
				*dst = v
			}
		default:
		}
	}
	read(id, &info.ID)
	read(osName, &info.OSName)
	read(osVersion, &info.OSVersion)
	read(model, &info.Model)
	return info, err
}

func (c *Collector) field(ctx context.Context, name string, fn func() (string, error)) (v string) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.ErrorContext(ctx, "device info query panicked",
				"field", name,
				"err", fmt.Errorf("%v", rec),
			)
			v = ""
		}
	}()

	v, err := fn()
	if err != nil {
		c.logger.WarnContext(ctx, "device info query failed", "field", name, "err", err)
		return ""
	}
	return v
}
