package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// probe reads one collection and returns how many records it holds.
type probe struct {
	path  string
	count func(ctx context.Context) (int, error)
}

// runCheck hits every read endpoint of the backend and prints one line per endpoint.
// It fails when at least one endpoint is unreachable.
func runCheck(ctx context.Context, out io.Writer, api backend.API, baseURL string) error {
	probes := []probe{
		{config.PathFriends, func(ctx context.Context) (int, error) {
			f, err := api.ListFriends(ctx)
			return len(f), err
		}},
		{config.PathAlerts, func(ctx context.Context) (int, error) {
			a, err := api.ListAlerts(ctx)
			return len(a), err
		}},
		{config.PathUpcoming, func(ctx context.Context) (int, error) {
			u, err := api.UpcomingBirthdays(ctx)
			return len(u), err
		}},
	}

	_, _ = fmt.Fprint(out, yellow(fmt.Sprintf(config.MsgCheckHeader, config.AppName, baseURL)))

	reachable := 0
	for _, p := range probes {
		n, err := p.count(ctx)
		if err != nil {
			slog.Warn(config.ErrCheckFailed,
				config.LogKeyComponent, config.CompCheck,
				config.LogKeyPath, p.path,
				config.LogKeyError, err,
			)
			_, _ = fmt.Fprint(out, red(fmt.Sprintf(config.MsgCheckFail, p.path, err)))
			continue
		}
		reachable++
		_, _ = fmt.Fprint(out, green(fmt.Sprintf(config.MsgCheckOK, p.path, n)))
	}

	_, _ = fmt.Fprintf(out, config.MsgCheckSummary, reachable, len(probes))
	if reachable != len(probes) {
		return errors.New(config.ErrCheckFailed)
	}
	return nil
}
