package controller

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/birthday-dashboard/internal/config"
	"github.com/tartampluch/birthday-dashboard/internal/render"
)

// Notifier keeps the stack of transient status popups. Each popup stays for
// the display delay, fades for the fade delay, then leaves the mount.
type Notifier struct {
	mu      sync.Mutex
	mount   *Mount
	r       *render.Renderer
	delay   time.Duration
	fade    time.Duration
	notices []render.Notice
	timers  map[string]*time.Timer
	closed  bool
}

func newNotifier(mount *Mount, r *render.Renderer, delay, fade time.Duration) *Notifier {
	n := &Notifier{
		mount:  mount,
		r:      r,
		delay:  delay,
		fade:   fade,
		timers: make(map[string]*time.Timer),
	}
	n.mount.Render(r.Notifications(nil))
	return n
}

// Success shows a green popup.
func (n *Notifier) Success(text string) string {
	return n.Show(config.NotifyKindSuccess, text)
}

// Error shows a red popup.
func (n *Notifier) Error(text string) string {
	return n.Show(config.NotifyKindError, text)
}

// Show adds a popup and returns its id. After Close it is a no-op.
func (n *Notifier) Show(kind, text string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ""
	}

	id := uuid.NewString()
	n.notices = append(n.notices, render.Notice{ID: id, Kind: kind, Text: text})
	n.timers[id] = time.AfterFunc(n.delay, func() { n.fadeOut(id) })
	n.renderLocked()

	slog.Info(config.MsgNotification,
		config.LogKeyComponent, config.CompNotifier,
		config.LogKeyKind, kind,
		config.LogKeyValue, text,
	)
	return id
}

func (n *Notifier) fadeOut(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	i := slices.IndexFunc(n.notices, func(x render.Notice) bool { return x.ID == id })
	if i < 0 {
		return
	}
	n.notices[i].Fading = true
	n.timers[id] = time.AfterFunc(n.fade, func() { n.remove(id) })
	n.renderLocked()
}

func (n *Notifier) remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	delete(n.timers, id)
	n.notices = slices.DeleteFunc(n.notices, func(x render.Notice) bool { return x.ID == id })
	n.renderLocked()
}

// Active returns a copy of the popups currently displayed.
func (n *Notifier) Active() []render.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.notices)
}

// Close stops every pending timer. Popups on screen stay as they are.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
}

func (n *Notifier) renderLocked() {
	n.mount.Render(n.r.Notifications(n.notices))
}
