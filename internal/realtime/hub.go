package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Channel names a creator-scoped event stream.
type Channel string

const (
	ChannelMessages    Channel = "messages"
	ChannelContent     Channel = "content"
	ChannelSubscribers Channel = "subscribers"
	ChannelAnalytics   Channel = "analytics"
)

// Event is what flows through a channel.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type Callback func(Event)

// Publisher is the write half of the hub, for components that only emit.
type Publisher interface {
	Publish(ctx context.Context, channel Channel, ownerID int64, event Event) error
}

// Hub multiplexes Redis pub/sub streams per "{channel}:{ownerID}" key.
// The first subscriber on a key opens the one underlying stream; later
// subscribers share it; the last unsubscribe tears it down. There is never
// more than one live upstream subscription per key.
type Hub struct {
	rdb *redis.Client

	mu      sync.Mutex
	streams map[string]*stream
}

type stream struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
	subs   map[int64]subscription
	nextID int64
}

type subscription struct {
	event string
	cb    Callback
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:     rdb,
		streams: make(map[string]*stream),
	}
}

func key(channel Channel, ownerID int64) string {
	return fmt.Sprintf("rt:%s:%d", channel, ownerID)
}

// Subscribe registers cb for events of the given type ("" matches all) and
// returns its unsubscribe function. The unsubscribe function is idempotent.
func (h *Hub) Subscribe(channel Channel, ownerID int64, event string, cb Callback) (func(), error) {
	k := key(channel, ownerID)

	h.mu.Lock()
	defer h.mu.Unlock()

	st, ok := h.streams[k]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		pubsub := h.rdb.Subscribe(ctx, k)

		st = &stream{
			pubsub: pubsub,
			cancel: cancel,
			subs:   make(map[int64]subscription),
		}
		h.streams[k] = st

		go h.pump(ctx, k, pubsub)
	}

	st.nextID++
	id := st.nextID
	st.subs[id] = subscription{event: event, cb: cb}

	var once sync.Once
	return func() {
		once.Do(func() { h.unsubscribe(k, id) })
	}, nil
}

func (h *Hub) unsubscribe(k string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, ok := h.streams[k]
	if !ok {
		return
	}

	delete(st.subs, id)
	if len(st.subs) == 0 {
		st.cancel()
		if err := st.pubsub.Close(); err != nil {
			slog.Info(err.Error())
		}
		delete(h.streams, k)
	}
}

func (h *Hub) pump(ctx context.Context, k string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Info(err.Error())
				continue
			}

			h.dispatch(k, event)
		}
	}
}

func (h *Hub) dispatch(k string, event Event) {
	h.mu.Lock()
	callbacks := make([]Callback, 0, 4)
	if st, ok := h.streams[k]; ok {
		for _, sub := range st.subs {
			if sub.event == "" || sub.event == event.Type {
				callbacks = append(callbacks, sub.cb)
			}
		}
	}
	h.mu.Unlock()

	// Callbacks run outside the lock so a callback may unsubscribe.
	for _, cb := range callbacks {
		cb(event)
	}
}

// Publish emits an event on a creator's channel.
func (h *Hub) Publish(ctx context.Context, channel Channel, ownerID int64, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, key(channel, ownerID), payload).Err()
}

// Disconnect tears down every stream unconditionally, for owner logout.
func (h *Hub) Disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for k, st := range h.streams {
		st.cancel()
		if err := st.pubsub.Close(); err != nil {
			slog.Info(err.Error())
		}
		delete(h.streams, k)
	}
}
