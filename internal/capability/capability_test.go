package capability

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clanofthecloud/cloudbridge/internal/models"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeNative struct {
	registration   func(Listener)
	unregistration func(Listener)
}

func (f *fakeNative) StartRegistration(l Listener)   { f.registration(l) }
func (f *fakeNative) StartUnregistration(l Listener) { f.unregistration(l) }

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

func recv(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o, ok := <-ch:
		require.True(t, ok, "channel closed without outcome")
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

func TestFromNativeSuccessOnOtherGoroutine(t *testing.T) {
	native := &fakeNative{
		registration: func(l Listener) {
			go l.OnDone(0, `{"token":"abc123"}`, "")
		},
	}

	o := recv(t, FromNative(native, discard()).StartRegistration(context.Background()))
	assert.True(t, o.OK())
	assert.Equal(t, models.Payload{"token": "abc123"}, o.Payload)
}

func TestFromNativeFailure(t *testing.T) {
	native := &fakeNative{
		unregistration: func(l Listener) {
			l.OnDone(int(models.NetworkError), "", "no network")
		},
	}

	o := recv(t, FromNative(native, discard()).StartUnregistration(context.Background()))
	assert.Equal(t, models.NetworkError, o.Code)
	assert.Equal(t, "no network", o.Message)
	assert.Nil(t, o.Payload)
	assert.JSONEq(t, `{"_error":5,"_description":"no network"}`, mustJSON(t, o.Result()))
}

func TestFromNativeMalformedResult(t *testing.T) {
	native := &fakeNative{
		registration: func(l Listener) { l.OnDone(0, `{not json`, "") },
	}

	o := recv(t, FromNative(native, discard()).StartRegistration(context.Background()))
	assert.True(t, o.OK())
	assert.Nil(t, o.Payload)
}

func TestFromNativeSecondCompletionIgnored(t *testing.T) {
	native := &fakeNative{
		registration: func(l Listener) {
			l.OnDone(0, `{"token":"first"}`, "")
			l.OnDone(0, `{"token":"second"}`, "")
		},
	}

	ch := FromNative(native, discard()).StartRegistration(context.Background())
	o := recv(t, ch)
	assert.Equal(t, "first", o.Payload["token"])

	_, ok := <-ch
	assert.False(t, ok)
}

func TestStatic(t *testing.T) {
	t.Run("fixed token", func(t *testing.T) {
		s := &Static{Token: "tok"}
		o := recv(t, s.StartRegistration(context.Background()))
		assert.Equal(t, models.Payload{"token": "tok"}, o.Payload)

		reg, unreg := s.Calls()
		assert.Equal(t, int64(1), reg)
		assert.Zero(t, unreg)
	})

	t.Run("generated token", func(t *testing.T) {
		o := recv(t, (&Static{}).StartRegistration(context.Background()))
		tok, ok := o.Payload.String("token")
		require.True(t, ok)
		_, err := uuid.Parse(tok)
		assert.NoError(t, err)
	})

	t.Run("failure", func(t *testing.T) {
		s := &Static{Fail: models.PushRegistrationFailed, FailMsg: "denied"}
		o := recv(t, s.StartUnregistration(context.Background()))
		assert.Equal(t, models.PushRegistrationFailed, o.Code)
		assert.Equal(t, "denied", o.Message)
	})

	t.Run("canceled while delayed", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		o := recv(t, (&Static{Delay: time.Hour}).StartRegistration(ctx))
		assert.Equal(t, models.Canceled, o.Code)
	})
}

func TestDone(t *testing.T) {
	ch := Done(Outcome{Code: models.NotSetup})
	assert.Equal(t, models.NotSetup, recv(t, ch).Code)
	_, ok := <-ch
	assert.False(t, ok)
}
