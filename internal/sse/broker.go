// Package sse streams working-list changes and vault file events to HTTP
// clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// TypeIndexUpdated follows file events, at most once per throttle window.
const TypeIndexUpdated = "index.updated"

const (
	clientBuffer = 64
	retryMillis  = 3000
)

// Event is one message on the stream. ID is assigned by the broker.
type Event struct {
	ID   uint64 `json:"-"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Encode renders an event in text/event-stream framing.
func Encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event.Type, payload), nil
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", event.ID, event.Type, payload), nil
}

// hub is the broker state. Only the loop goroutine touches it.
type hub struct {
	clients   map[chan []byte]struct{}
	seq       uint64
	lastIndex time.Time
	throttle  time.Duration
}

func (h *hub) broadcast(event Event) {
	h.seq++
	event.ID = h.seq
	raw, err := Encode(event)
	if err != nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
			// slow reader, drop
		}
	}
}

func (h *hub) fileEvent(kind, path string, now time.Time) {
	h.broadcast(Event{Type: "file." + kind, Data: map[string]string{"path": path}})
	if now.Sub(h.lastIndex) >= h.throttle {
		h.lastIndex = now
		h.broadcast(Event{Type: TypeIndexUpdated, Data: map[string]string{}})
	}
}

// Broker fans events out to subscribers. A single goroutine owns the hub;
// every method hands it a closure.
type Broker struct {
	cmds      chan func(*hub)
	quit      chan struct{}
	done      chan struct{}
	closed    atomic.Bool
	keepalive time.Duration
}

// NewBroker starts a broker that emits index.updated at most once per
// indexThrottle.
func NewBroker(indexThrottle time.Duration) *Broker {
	if indexThrottle <= 0 {
		indexThrottle = 2 * time.Second
	}
	b := &Broker{
		cmds:      make(chan func(*hub), 256),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		keepalive: 30 * time.Second,
	}
	h := &hub{clients: make(map[chan []byte]struct{}), throttle: indexThrottle}
	go b.loop(h)
	return b
}

func (b *Broker) loop(h *hub) {
	defer close(b.done)
	for {
		select {
		case <-b.quit:
			for ch := range h.clients {
				close(ch)
			}
			return
		case fn := <-b.cmds:
			fn(h)
		}
	}
}

// do queues fn for the loop. It reports false once the broker is closed.
func (b *Broker) do(fn func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.cmds <- fn:
		return true
	case <-b.done:
		return false
	}
}

// Close stops the loop and closes every subscriber channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. The channel is closed by Unsubscribe or
// Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	added := make(chan struct{})
	ok := b.do(func(h *hub) {
		h.clients[ch] = struct{}{}
		close(added)
	})
	if !ok {
		close(ch)
		return ch
	}
	select {
	case <-added:
	case <-b.done:
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.do(func(h *hub) { resp <- len(h.clients) }) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.do(func(h *hub) { h.broadcast(event) })
}

// PublishChange matches session.ChangeFunc: kind is the event type, such as
// "topic.inserted" or "word.added".
func (b *Broker) PublishChange(kind string, data map[string]any) {
	b.Publish(Event{Type: kind, Data: data})
}

// PublishFileEvent matches index.EventCallback. It sends file.<kind> and a
// throttled index.updated.
func (b *Broker) PublishFileEvent(kind, path string) {
	now := time.Now()
	b.do(func(h *hub) { h.fileEvent(kind, path, now) })
}

// ServeHTTP streams events until the client goes away or the broker
// closes. Idle streams get a comment line every keepalive period.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepalive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
