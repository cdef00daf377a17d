// Package dispatch is an in-process stand-in for the native side of the
// boundary. It allocates handler ids, keeps the table of pending waiters and
// routes every delivered result message to the waiter that owns the id.
package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/tidwall/btree"

	"github.com/clanofthecloud/cloudbridge/internal/bridge"
	"github.com/clanofthecloud/cloudbridge/internal/models"
)

var _ bridge.NativeBridge = (*Dispatcher)(nil)

const (
	defaultSettledSize  = 1024
	defaultHistoryLimit = 256
)

type EventKind string

const (
	EventResult    EventKind = "result"
	EventToken     EventKind = "token"
	EventLifecycle EventKind = "lifecycle"
)

// Event is published to observers for everything crossing the boundary.
type Event struct {
	Kind    EventKind
	Handler models.HandlerID
	Result  models.Result
	Token   string
	State   string
	At      time.Time
}

// Delivery is one routed result message, kept in the history.
type Delivery struct {
	Seq       uint64
	Handler   models.HandlerID
	Raw       string
	Result    models.Result
	Delivered bool
	At        time.Time
}

type Dispatcher struct {
	logger *slog.Logger

	nextID  atomic.Int64
	pending *xsync.Map[models.HandlerID, chan models.Result]
	settled *lru.Cache[models.HandlerID, struct{}]

	seq          atomic.Uint64
	historyMu    sync.Mutex
	history      *btree.BTreeG[Delivery]
	historyLimit int

	obsID     atomic.Uint64
	observers *xsync.Map[uint64, func(Event)]

	tokenMu   sync.RWMutex
	lastToken string
}

func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	settled, err := lru.New[models.HandlerID, struct{}](defaultSettledSize)
	if err != nil {
		panic(err)
	}
	return &Dispatcher{
		logger:  logger,
		pending: xsync.NewMap[models.HandlerID, chan models.Result](),
		settled: settled,
		history: btree.NewBTreeG(func(a, b Delivery) bool {
			return a.Seq < b.Seq
		}),
		historyLimit: defaultHistoryLimit,
		observers:    xsync.NewMap[uint64, func(Event)](),
	}
}

// Await allocates a fresh handler id and returns the channel its result
// will arrive on. The channel receives at most one value.
func (d *Dispatcher) Await() (models.HandlerID, <-chan models.Result) {
	h := models.HandlerID(d.nextID.Add(1))
	ch := make(chan models.Result, 1)
	d.pending.Store(h, ch)
	return h, ch
}

// Forget drops a pending waiter. A result arriving later is treated as
// unknown.
func (d *Dispatcher) Forget(h models.HandlerID) {
	d.pending.Compute(h, func(ch chan models.Result, loaded bool) (chan models.Result, xsync.ComputeOp) {
		if loaded && ch != nil {
			close(ch)
		}
		return nil, xsync.DeleteOp
	})
}

// Call allocates a handler, lets start kick off the operation with it and
// waits for the result.
func (d *Dispatcher) Call(ctx context.Context, start func(models.HandlerID)) (models.Result, error) {
	h, ch := d.Await()
	start(h)

	select {
	case r, ok := <-ch:
		if !ok {
			return models.Result{}, context.Canceled
		}
		return r, nil
	case <-ctx.Done():
		d.Forget(h)
		return models.Result{}, ctx.Err()
	}
}

// Pending reports how many handlers are still waiting.
func (d *Dispatcher) Pending() int {
	return d.pending.Size()
}

func (d *Dispatcher) InvokeHandler(handlerID int64, result string) {
	h := models.HandlerID(handlerID)

	var r models.Result
	if err := json.Unmarshal([]byte(result), &r); err != nil {
		d.logger.Error("malformed result message", "handler", h, "err", err)
		r = models.Failure(models.InternalError, "malformed result message")
	}

	delivered := false
	if ch, ok := d.pending.LoadAndDelete(h); ok {
		ch <- r
		close(ch)
		d.settled.Add(h, struct{}{})
		delivered = true
	} else if d.settled.Contains(h) {
		d.logger.Warn("duplicate result for settled handler", "handler", h)
	} else {
		d.logger.Warn("result for unknown handler", "handler", h)
	}

	d.record(Delivery{
		Handler:   h,
		Raw:       result,
		Result:    r,
		Delivered: delivered,
	})
	d.publish(Event{Kind: EventResult, Handler: h, Result: r})
}

func (d *Dispatcher) RegisterDevice(token string) int {
	d.tokenMu.Lock()
	d.lastToken = token
	d.tokenMu.Unlock()

	d.logger.Info("device token registered")
	d.publish(Event{Kind: EventToken, Token: token})
	return 0
}

// Token returns the last token handed to RegisterDevice.
func (d *Dispatcher) Token() string {
	d.tokenMu.RLock()
	defer d.tokenMu.RUnlock()
	return d.lastToken
}

func (d *Dispatcher) Suspended() int {
	d.publish(Event{Kind: EventLifecycle, State: "suspended"})
	return 0
}

func (d *Dispatcher) Resumed() int {
	d.publish(Event{Kind: EventLifecycle, State: "resumed"})
	return 0
}

// Subscribe registers fn for every event. fn runs on the delivering
// goroutine and must not block.
func (d *Dispatcher) Subscribe(fn func(Event)) (cancel func()) {
	id := d.obsID.Add(1)
	d.observers.Store(id, fn)
	return func() { d.observers.Delete(id) }
}

// History returns the retained deliveries, oldest first.
func (d *Dispatcher) History() []Delivery {
	d.historyMu.Lock()
	defer d.historyMu.Unlock()

	items := make([]Delivery, 0, d.history.Len())
	d.history.Scan(func(item Delivery) bool {
		items = append(items, item)
		return true
	})
	return items
}

func (d *Dispatcher) record(del Delivery) {
	del.Seq = d.seq.Add(1)
	del.At = time.Now()

	d.historyMu.Lock()
	defer d.historyMu.Unlock()
	d.history.Set(del)
	for d.history.Len() > d.historyLimit {
		d.history.PopMin()
	}
}

func (d *Dispatcher) publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	d.observers.Range(func(_ uint64, fn func(Event)) bool {
		fn(ev)
		return true
	})
}
