package controller

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// EventType names a page interaction. It is also the last segment of the
// POST /events/{type} route.
type EventType string

const (
	EventSubmit          EventType = config.EventSubmit
	EventCancelEdit      EventType = config.EventCancelEdit
	EventCloseModal      EventType = config.EventCloseModal
	EventBackdropClick   EventType = config.EventBackdropClick
	EventRefreshFriends  EventType = config.EventRefreshFriends
	EventRefreshAlerts   EventType = config.EventRefreshAlerts
	EventRefreshUpcoming EventType = config.EventRefreshUpcoming
	EventEdit            EventType = config.EventEdit
	EventDelete          EventType = config.EventDelete
	EventViewMessages    EventType = config.EventViewMessages
	EventMarkRead        EventType = config.EventMarkRead
	EventImport          EventType = config.EventImport
)

// Event is one interaction posted by the page.
type Event struct {
	Type EventType

	// TargetID is the friend or alert the action applies to.
	TargetID int64
	// Label is the display name of the target, used in prompts and titles.
	Label     string
	Confirmed bool

	Form    FormData  // submit only
	Payload io.Reader // import only
}

// Handler reacts to one event.
type Handler func(ctx context.Context, ev Event)

// Bus is the explicit subscription list between the page and the controller.
// Every Subscribe returns its own unsubscribe function.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[EventType]map[uint64]Handler
}

// NewBus returns an empty subscription list.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType]map[uint64]Handler)}
}

// Subscribe registers h for t. Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(t EventType, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[t] == nil {
		b.subs[t] = make(map[uint64]Handler)
	}
	b.subs[t][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[t], id)
			if len(b.subs[t]) == 0 {
				delete(b.subs, t)
			}
		})
	}
}

// Dispatch runs every handler subscribed to ev.Type and reports whether there was any.
// Handlers run outside the lock so they may subscribe or unsubscribe.
func (b *Bus) Dispatch(ctx context.Context, ev Event) bool {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Type]))
	for _, h := range b.subs[ev.Type] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	if len(handlers) == 0 {
		slog.Warn(config.MsgEventUnhandled,
			config.LogKeyComponent, config.CompController,
			config.LogKeyEvent, string(ev.Type),
		)
		return false
	}

	slog.Debug(config.MsgEventDispatched,
		config.LogKeyComponent, config.CompController,
		config.LogKeyEvent, string(ev.Type),
		config.LogKeyCount, len(handlers),
	)
	for _, h := range handlers {
		h(ctx, ev)
	}
	return true
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, hs := range b.subs {
		n += len(hs)
	}
	return n
}
