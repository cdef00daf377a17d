package ws

import (
	"encoding/json"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/clanofthecloud/cloudbridge/internal/dispatch"
	"github.com/clanofthecloud/cloudbridge/internal/models"
)

// TopicEvents carries every boundary event.
const TopicEvents = "events"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

func newFrameID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Frame is the JSON record pushed to stream subscribers.
type Frame struct {
	ID      string            `json:"id"`
	Kind    string            `json:"kind"`
	Handler *models.HandlerID `json:"handler,omitempty"`
	Result  *models.Result    `json:"result,omitempty"`
	Token   string            `json:"token,omitempty"`
	State   string            `json:"state,omitempty"`
	At      time.Time         `json:"at"`
}

func FrameFromEvent(ev dispatch.Event) Frame {
	f := Frame{
		ID:    newFrameID(),
		Kind:  string(ev.Kind),
		Token: ev.Token,
		State: ev.State,
		At:    ev.At,
	}
	if ev.Kind == dispatch.EventResult {
		h, r := ev.Handler, ev.Result
		f.Handler = &h
		f.Result = &r
	}
	return f
}

// Publish encodes f once and queues it for every client on topic.
func (h *Hub) Publish(topic string, f Frame) {
	if h.Count(topic) == 0 {
		return
	}
	data, err := json.Marshal(f)
	if err != nil {
		h.logger.Error("encode frame failed", "kind", f.Kind, "err", err)
		return
	}
	h.broadcast(topic, data)
}

// Forward publishes every dispatcher event as a frame and returns the
// cancel func.
func (h *Hub) Forward(d *dispatch.Dispatcher) func() {
	return d.Subscribe(func(ev dispatch.Event) {
		h.Publish(TopicEvents, FrameFromEvent(ev))
	})
}
