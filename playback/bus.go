package playback

import (
	"sync"

	"github.com/nagare-player/nagare/media"
)

// EventName identifies a host-facing lifecycle notification.
type EventName string

const (
	EventBeginFetch     EventName = "begin-fetch"
	EventEndFetch       EventName = "end-fetch"
	EventItemStarted    EventName = "item-started"
	EventItemStopped    EventName = "item-stopped"
	EventStopped        EventName = "stopped"
	EventError          EventName = "error"
	EventPlaybackStart  EventName = "playback-start"
	EventWaiting        EventName = "waiting"
	EventPlaying        EventName = "playing"
	EventPause          EventName = "pause"
	EventUnpause        EventName = "unpause"
	EventVolumeChange   EventName = "volume-change"
	EventTimeUpdate     EventName = "time-update"
	EventBufferedUpdate EventName = "buffered-update"
	EventEnded          EventName = "ended"
	EventPipelineChange EventName = "pipeline-change"

	// EventActivePlayer is emitted by the host when it acknowledges the
	// session as its active player; the session defers EventUIReady until
	// then.
	EventActivePlayer EventName = "active-player"
	EventUIReady      EventName = "ui-ready"
)

// Payload carries the event-specific data of a notification. Fields are
// populated per event: PositionTicks for time and stop events, Volume for
// volume changes, Message for errors.
type Payload struct {
	Item          *media.Item
	PositionTicks int64
	Volume        int
	Message       string
}

// Handler consumes a host-facing notification.
type Handler func(Payload)

// Bus is an ordered, synchronous notification registry: handlers run in
// registration order on the emitter's goroutine, so notifications are
// delivered in emission order.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[EventName][]*subscription
}

type subscription struct {
	id      int
	once    bool
	handler Handler
}

// NewBus creates an empty notification registry.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventName][]*subscription)}
}

// On registers a handler for the named event and returns a function that
// removes the registration.
func (b *Bus) On(name EventName, handler Handler) (off func()) {
	return b.subscribe(name, handler, false)
}

// Once registers a self-unregistering handler invoked at most one time.
func (b *Bus) Once(name EventName, handler Handler) (off func()) {
	return b.subscribe(name, handler, true)
}

func (b *Bus) subscribe(name EventName, handler Handler, once bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, once: once, handler: handler}
	b.handlers[name] = append(b.handlers[name], sub)

	id := sub.id
	return func() { b.remove(name, id) }
}

func (b *Bus) remove(name EventName, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[name]
	for i, sub := range subs {
		if sub.id == id {
			b.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit delivers the event to all registered handlers in registration order.
// One-shot registrations are removed before their handler runs.
func (b *Bus) Emit(name EventName, payload Payload) {
	b.mu.Lock()
	subs := append([]*subscription(nil), b.handlers[name]...)
	for _, sub := range subs {
		if sub.once {
			b.removeLocked(name, sub.id)
		}
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.handler(payload)
	}
}

func (b *Bus) removeLocked(name EventName, id int) {
	subs := b.handlers[name]
	for i, sub := range subs {
		if sub.id == id {
			b.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Clear removes every registration; used on session teardown.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventName][]*subscription)
}
