// Package sse streams vault and analysis events to HTTP clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypeNoteCreated       = "note.created"
	TypeNoteUpdated       = "note.updated"
	TypeNoteDeleted       = "note.deleted"
	TypeClustersStale     = "clusters.stale"
	TypeAnalysisCompleted = "analysis.completed"
)

const defaultStaleThrottle = 2 * time.Second

// Event is one SSE frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type noteChange struct {
	kind string
	path string
}

// Broker fans events out to subscribers.
//
// A single loop goroutine owns the client set and the stale throttle; public
// methods talk to it over channels.
//
// Every note change marks clusters stale. At most one clusters.stale event
// goes out per throttle window; changes inside a window are folded into one
// trailing event when the window ends.
type Broker struct {
	staleEvery time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	noteCh        chan noteChange
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts the broker loop. Non-positive throttle means two seconds.
func NewBroker(staleThrottle time.Duration) *Broker {
	if staleThrottle <= 0 {
		staleThrottle = defaultStaleThrottle
	}
	b := &Broker{
		staleEvery:    staleThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		noteCh:        make(chan noteChange, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastStale time.Time
		pending   int
		trailing  *time.Timer
		trailCh   <-chan time.Time
	)

	broadcast := func(event Event) {
		raw, err := encode(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	emitStale := func(changes int) {
		lastStale = time.Now()
		pending = 0
		broadcast(Event{Type: TypeClustersStale, Data: map[string]int{"changes": changes}})
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case c := <-b.noteCh:
			typ, ok := noteEventType(c.kind)
			if !ok {
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"path": c.path}})

			pending++
			if wait := b.staleEvery - time.Since(lastStale); wait <= 0 {
				emitStale(pending)
			} else if trailCh == nil {
				trailing = time.NewTimer(wait)
				trailCh = trailing.C
			}

		case <-trailCh:
			trailCh = nil
			if pending > 0 {
				emitStale(pending)
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func noteEventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return TypeNoteCreated, true
	case "updated":
		return TypeNoteUpdated, true
	case "deleted":
		return TypeNoteDeleted, true
	}
	return "", false
}

// Close stops the loop and closes every subscriber channel. Safe to call twice.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The channel is closed when the broker stops.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishNoteEvent forwards a watcher change. Its signature matches
// index.EventCallback.
func (b *Broker) PublishNoteEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.noteCh <- noteChange{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// PublishAnalysis announces a finished analysis run.
func (b *Broker) PublishAnalysis(id string, clusters int, dryRun bool) {
	b.Publish(Event{Type: TypeAnalysisCompleted, Data: map[string]any{
		"id":       id,
		"clusters": clusters,
		"dry_run":  dryRun,
	}})
}

// ServeHTTP streams events until the client goes away (GET /events).
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
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
