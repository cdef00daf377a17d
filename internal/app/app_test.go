package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clanofthecloud/cloudbridge/internal/bridge"
	"github.com/clanofthecloud/cloudbridge/internal/bridge/bridgetest"
	"github.com/clanofthecloud/cloudbridge/internal/capability"
	"github.com/clanofthecloud/cloudbridge/internal/config"
	"github.com/clanofthecloud/cloudbridge/internal/dispatch"
	"github.com/clanofthecloud/cloudbridge/internal/logger"
	"github.com/clanofthecloud/cloudbridge/internal/models"
)

func TestInitRequiresBridge(t *testing.T) {
	_, err := Init(Options{Config: &config.Config{}})
	assert.ErrorIs(t, err, bridge.ErrNoBridge)

	_, err = Init(Options{Native: &bridgetest.Recorder{}})
	assert.Error(t, err)
}

func TestRegisterScenario(t *testing.T) {
	rec := &bridgetest.Recorder{}
	tokens := make(chan string, 1)
	rec.OnToken = func(tok string) { tokens <- tok }

	c, err := Init(Options{
		Config: &config.Config{PushSenderID: "sender", DataDir: t.TempDir()},
		Native: rec,
		Push:   &capability.Static{Token: "abc123"},
		Logger: logger.Discard(),
	})
	require.NoError(t, err)
	defer c.Close(context.Background())

	require.NotNil(t, c.QueryRegisterDevice())
	select {
	case tok := <-tokens:
		assert.Equal(t, "abc123", tok)
	case <-time.After(2 * time.Second):
		t.Fatal("token never reached the sink")
	}
	require.NoError(t, c.Close(context.Background()))
	assert.Empty(t, rec.Invocations())
}

func TestPushDisabledScenario(t *testing.T) {
	rec := &bridgetest.Recorder{}
	s := &capability.Static{}
	c, err := Init(Options{
		Config: &config.Config{},
		Native: rec,
		Push:   s,
		Logger: logger.Discard(),
	})
	require.NoError(t, err)

	assert.Nil(t, c.QueryRegisterDevice())
	assert.Nil(t, c.UnregisterDevice())
	require.NoError(t, c.Close(context.Background()))

	reg, unreg := s.Calls()
	assert.Zero(t, reg+unreg)
	assert.Empty(t, rec.Invocations())
	assert.Empty(t, rec.Tokens())
}

func TestRegisterWithHandlerThroughDispatcher(t *testing.T) {
	d := dispatch.New(logger.Discard())
	c, err := Init(Options{
		Config: &config.Config{PushSenderID: "sender"},
		Native: d,
		Push:   &capability.Static{Token: "tok", Delay: time.Millisecond},
		Logger: logger.Discard(),
	})
	require.NoError(t, err)
	defer c.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r, err := d.Call(ctx, func(h models.HandlerID) { c.RegisterWithHandler(h) })
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Equal(t, "tok", r.Payload["token"])
}

func TestEntryPoints(t *testing.T) {
	rec := &bridgetest.Recorder{}
	dir := t.TempDir()
	c, err := Init(Options{
		Config: &config.Config{DataDir: filepath.Join(dir, "data")},
		Native: rec,
		Logger: logger.Discard(),
	})
	require.NoError(t, err)

	assert.DirExists(t, c.DataDirectory())
	sub := filepath.Join(c.DataDirectory(), "cache")
	assert.True(t, c.CreateDirectory(sub))
	assert.True(t, c.DeleteFile(sub))

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(c.CollectDeviceInformation(context.Background())), &info))
	assert.Equal(t, "1", info["version"])

	assert.Equal(t, 0, c.Suspended())
	assert.Equal(t, 0, c.Resumed())
	s, r := rec.Lifecycle()
	assert.Equal(t, 1, s)
	assert.Equal(t, 1, r)
}

type countingSource struct {
	calls atomic.Int32
}

func (s *countingSource) DeviceID() (string, error) {
	s.calls.Add(1)
	return "dev", nil
}
func (s *countingSource) OSName() string             { return "iOS" }
func (s *countingSource) OSVersion() (string, error) { return "17", nil }
func (s *countingSource) Model() (string, error)     { return "iPhone", nil }

func TestResumeRefreshesDeviceInfo(t *testing.T) {
	src := &countingSource{}
	c, err := Init(Options{
		Config: &config.Config{DeviceCacheTTL: time.Hour},
		Native: &bridgetest.Recorder{},
		Device: src,
		Logger: logger.Discard(),
	})
	require.NoError(t, err)

	c.CollectDeviceInformation(context.Background())
	c.CollectDeviceInformation(context.Background())
	assert.Equal(t, int32(1), src.calls.Load())

	c.Suspended()
	c.CollectDeviceInformation(context.Background())
	assert.Equal(t, int32(1), src.calls.Load())

	c.Resumed()
	c.CollectDeviceInformation(context.Background())
	assert.Equal(t, int32(2), src.calls.Load())
}

type neverPush struct{}

func (neverPush) StartRegistration(context.Context) <-chan capability.Outcome {
	return make(chan capability.Outcome)
}

func (neverPush) StartUnregistration(context.Context) <-chan capability.Outcome {
	return make(chan capability.Outcome)
}

func TestCloseDoesNotHangOnLostCallback(t *testing.T) {
	c, err := Init(Options{
		Config: &config.Config{PushSenderID: "sender"},
		Native: &bridgetest.Recorder{},
		Push:   neverPush{},
		Logger: logger.Discard(),
	})
	require.NoError(t, err)
	require.NotNil(t, c.QueryRegisterDevice())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Close(ctx), context.DeadlineExceeded)
}
