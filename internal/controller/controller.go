// Package controller is the view controller of the dashboard: it owns the mount
// points of the page, loads backend collections into them and reacts to the
// events posted by the page.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
	"github.com/tartampluch/birthday-dashboard/internal/engine"
	"github.com/tartampluch/birthday-dashboard/internal/render"
)

// Options tunes the timers of the controller. Zero values take the defaults.
type Options struct {
	AlertRefreshInterval time.Duration
	NotificationDelay    time.Duration
	NotificationFade     time.Duration
}

func (o Options) withDefaults() Options {
	if o.AlertRefreshInterval <= 0 {
		o.AlertRefreshInterval = config.DefaultAlertRefresh
	}
	if o.NotificationDelay <= 0 {
		o.NotificationDelay = config.DefaultNotificationDelay
	}
	if o.NotificationFade <= 0 {
		o.NotificationFade = config.DefaultNotificationFade
	}
	return o
}

// Controller holds the mount points, the form state and the alert schedule.
type Controller struct {
	api  backend.API
	r    *render.Renderer
	bus  *Bus
	gen  *engine.Generator
	opts Options

	friends       *Mount
	alerts        *Mount
	upcoming      *Mount
	form          *Mount
	modal         *Mount
	notifications *Mount
	calendar      *Mount
	mounts        map[string]*Mount

	notifier *Notifier

	formMu     sync.Mutex
	mode       Mode
	formValues backend.FriendInput

	lifeMu      sync.Mutex
	started     bool
	closed      bool
	scheduler   *gocron.Scheduler
	cancel      context.CancelFunc
	unsubscribe []func()
}

// New wires a controller. Nothing is fetched before Start.
func New(api backend.API, r *render.Renderer, bus *Bus, gen *engine.Generator, opts Options) *Controller {
	opts = opts.withDefaults()
	if gen == nil {
		gen = engine.NewGenerator()
	}
	if gen.FormatSummary == nil {
		gen.FormatSummary = func(name string, age int) string {
			if age > 0 {
				return r.Text(config.TKeyEvtSummaryAge, map[string]any{"Name": name, "Age": age})
			}
			return r.Text(config.TKeyEvtSummary, map[string]any{"Name": name})
		}
	}

	c := &Controller{
		api:           api,
		r:             r,
		bus:           bus,
		gen:           gen,
		opts:          opts,
		friends:       newMount(config.MountFriends),
		alerts:        newMount(config.MountAlerts),
		upcoming:      newMount(config.MountUpcoming),
		form:          newMount(config.MountForm),
		modal:         newMount(config.MountModal),
		notifications: newMount(config.MountNotifications),
		calendar:      newMount(config.MountCalendar),
	}
	c.mounts = map[string]*Mount{
		c.friends.Name():       c.friends,
		c.alerts.Name():        c.alerts,
		c.upcoming.Name():      c.upcoming,
		c.form.Name():          c.form,
		c.modal.Name():         c.modal,
		c.notifications.Name(): c.notifications,
	}
	c.notifier = newNotifier(c.notifications, r, opts.NotificationDelay, opts.NotificationFade)
	c.renderForm()
	c.CloseModal()
	return c
}

// Start loads the three collections, schedules the alert reload and subscribes
// every event handler. A controller starts once.
func (c *Controller) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.closed {
		return errors.New(config.ErrControllerClosed)
	}
	if c.started {
		return errors.New(config.ErrControllerStarted)
	}

	c.LoadFriends(ctx)
	c.LoadAlerts(ctx)
	c.LoadUpcomingBirthdays(ctx)

	jobCtx, cancel := context.WithCancel(ctx)
	s := gocron.NewScheduler(c.r.Location)
	_, err := s.Every(c.opts.AlertRefreshInterval).WaitForSchedule().Do(func() {
		slog.Debug(config.MsgAlertTick,
			config.LogKeyComponent, config.CompScheduler,
			config.LogKeyInterval, c.opts.AlertRefreshInterval.String(),
		)
		c.LoadAlerts(jobCtx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("%s: %w", config.ErrSchedule, err)
	}
	s.StartAsync()

	c.scheduler = s
	c.cancel = cancel
	c.subscribe()
	c.started = true

	slog.Info(config.MsgControllerStart,
		config.LogKeyComponent, config.CompController,
		config.LogKeyInterval, c.opts.AlertRefreshInterval.String(),
		config.LogKeyEvents, c.bus.Len(),
	)
	return nil
}

func (c *Controller) subscribe() {
	handlers := map[EventType]Handler{
		EventSubmit:     func(ctx context.Context, ev Event) { c.SubmitForm(ctx, ev.Form) },
		EventCancelEdit: func(context.Context, Event) { c.ResetForm() },
		EventCloseModal: func(context.Context, Event) { c.CloseModal() },
		// A click outside the modal content closes it like the close control.
		EventBackdropClick:   func(context.Context, Event) { c.CloseModal() },
		EventRefreshFriends:  func(ctx context.Context, _ Event) { c.LoadFriends(ctx) },
		EventRefreshAlerts:   func(ctx context.Context, _ Event) { c.LoadAlerts(ctx) },
		EventRefreshUpcoming: func(ctx context.Context, _ Event) { c.LoadUpcomingBirthdays(ctx) },
		EventEdit:            func(ctx context.Context, ev Event) { c.EditFriend(ctx, ev.TargetID) },
		EventDelete: func(ctx context.Context, ev Event) {
			c.DeleteFriend(ctx, ev.TargetID, ev.Label, dialogConfirmer{c: c, ev: ev})
		},
		EventViewMessages: func(ctx context.Context, ev Event) { c.ShowMessages(ctx, ev.TargetID, ev.Label) },
		EventMarkRead:     func(ctx context.Context, ev Event) { c.MarkAlertRead(ctx, ev.TargetID) },
		EventImport: func(ctx context.Context, ev Event) {
			if ev.Payload != nil {
				c.ImportVCards(ctx, ev.Payload)
			}
		},
	}
	for t, h := range handlers {
		c.unsubscribe = append(c.unsubscribe, c.bus.Subscribe(t, h))
	}
}

// Close stops the alert schedule, removes every subscription and cancels the
// pending notification timers. It is safe to call more than once.
func (c *Controller) Close() {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
	for _, unsub := range c.unsubscribe {
		unsub()
	}
	c.unsubscribe = nil
	c.notifier.Close()

	slog.Info(config.MsgControllerStop, config.LogKeyComponent, config.CompController)
}

// Mount returns the page mount called name, or nil.
func (c *Controller) Mount(name string) *Mount {
	return c.mounts[name]
}

// Calendar is the iCalendar feed rebuilt after each friend load.
func (c *Controller) Calendar() *Mount {
	return c.calendar
}

// Bus returns the subscription list the page posts events to.
func (c *Controller) Bus() *Bus {
	return c.bus
}

// Renderer returns the renderer of the page.
func (c *Controller) Renderer() *render.Renderer {
	return c.r
}

// Notifier returns the status popup stack.
func (c *Controller) Notifier() *Notifier {
	return c.notifier
}

// Mode returns the current form mode.
func (c *Controller) Mode() Mode {
	c.formMu.Lock()
	defer c.formMu.Unlock()
	return c.mode
}
