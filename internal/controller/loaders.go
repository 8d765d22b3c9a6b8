package controller

import (
	"context"
	"log/slog"

	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// LoadFriends re-renders the friend list, then rebuilds the calendar feed.
// A failed fetch leaves the error placeholder; there is no retry.
func (c *Controller) LoadFriends(ctx context.Context) {
	friends, err := c.api.ListFriends(ctx)
	if err != nil {
		slog.Error(config.ErrLoadFriends,
			config.LogKeyComponent, config.CompController,
			config.LogKeyMount, c.friends.Name(),
			config.LogKeyError, err,
		)
		c.friends.Render(c.r.FriendsError())
		return
	}
	c.friends.Render(c.r.Friends(friends))
	c.rebuildCalendar(ctx, friends)
}

// LoadAlerts re-renders the alert list.
func (c *Controller) LoadAlerts(ctx context.Context) {
	alerts, err := c.api.ListAlerts(ctx)
	if err != nil {
		slog.Error(config.ErrLoadAlerts,
			config.LogKeyComponent, config.CompController,
			config.LogKeyMount, c.alerts.Name(),
			config.LogKeyError, err,
		)
		c.alerts.Render(c.r.AlertsError())
		return
	}
	c.alerts.Render(c.r.Alerts(alerts))
}

// LoadUpcomingBirthdays re-renders the upcoming birthday cards.
func (c *Controller) LoadUpcomingBirthdays(ctx context.Context) {
	upcoming, err := c.api.UpcomingBirthdays(ctx)
	if err != nil {
		slog.Error(config.ErrLoadUpcoming,
			config.LogKeyComponent, config.CompController,
			config.LogKeyMount, c.upcoming.Name(),
			config.LogKeyError, err,
		)
		c.upcoming.Render(c.r.UpcomingError())
		return
	}
	c.upcoming.Render(c.r.Upcoming(upcoming))
}

func (c *Controller) rebuildCalendar(ctx context.Context, friends []backend.Friend) {
	data, _, err := c.gen.Build(ctx, friends)
	if err != nil {
		// The previous feed keeps being served.
		slog.Error(config.ErrCalendar,
			config.LogKeyComponent, config.CompController,
			config.LogKeyError, err,
		)
		return
	}
	c.calendar.RenderBytes(data)
}
