package ws

import (
	"encoding/json"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clanofthecloud/cloudbridge/internal/dispatch"
	"github.com/clanofthecloud/cloudbridge/internal/logger"
)

func TestHubPublish(t *testing.T) {
	h := NewHub(logger.Discard())
	a := &Client{Send: make(chan []byte, 1), Topic: TopicEvents}
	b := &Client{Send: make(chan []byte, 1), Topic: "other"}
	h.Register(a)
	h.Register(b)
	assert.Equal(t, 1, h.Count(TopicEvents))

	h.Publish(TopicEvents, Frame{ID: "1", Kind: "token", Token: "one"})
	h.Publish(TopicEvents, Frame{ID: "2", Kind: "token", Token: "dropped"})

	var f Frame
	require.NoError(t, json.Unmarshal(<-a.Send, &f))
	assert.Equal(t, "one", f.Token)
	assert.Empty(t, a.Send)
	assert.Empty(t, b.Send)

	h.Unregister(a)
	h.Unregister(a)
	_, ok := <-a.Send
	assert.False(t, ok)
	assert.Zero(t, h.Count(TopicEvents))
}

func TestForwardDispatcherEvents(t *testing.T) {
	h := NewHub(logger.Discard())
	c := &Client{Send: make(chan []byte, 4), Topic: TopicEvents}
	h.Register(c)

	d := dispatch.New(logger.Discard())
	cancel := h.Forward(d)
	defer cancel()

	d.InvokeHandler(42, `{"token":"abc","_error":0}`)
	d.RegisterDevice("abc123")

	var f Frame
	require.NoError(t, json.Unmarshal(<-c.Send, &f))
	assert.Equal(t, "result", f.Kind)
	require.NotNil(t, f.Handler)
	assert.EqualValues(t, 42, *f.Handler)
	require.NotNil(t, f.Result)
	assert.Equal(t, "abc", f.Result.Payload["token"])
	_, err := ulid.Parse(f.ID)
	assert.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(<-c.Send, &raw))
	assert.Equal(t, "token", raw["kind"])
	assert.Equal(t, "abc123", raw["token"])
	assert.NotContains(t, raw, "result")
}

func TestPublishWithoutSubscribers(t *testing.T) {
	h := NewHub(logger.Discard())
	assert.NotPanics(t, func() {
		h.Publish(TopicEvents, Frame{Kind: "lifecycle", State: "suspended"})
	})
}
