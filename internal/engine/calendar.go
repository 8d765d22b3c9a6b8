package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// Generator builds the birthday calendar feed from the friend list.
type Generator struct {
	Clock Clock

	// FormatSummary lets the caller inject localized event titles.
	FormatSummary func(name string, age int) string
}

// NewGenerator returns a generator on the system clock with English titles.
func NewGenerator() *Generator {
	return &Generator{Clock: RealClock{}}
}

// Build returns the iCalendar feed and the number of birthdays falling today.
// Each friend gets an all-day event for the previous, current and next year.
func (g *Generator) Build(ctx context.Context, friends []backend.Friend) ([]byte, int, error) {
	start := time.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint for subscribed clients.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Birthdays follow the local calendar date; only DTSTAMP is UTC.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := 0
	for _, f := range friends {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		birthDate, err := time.ParseInLocation(config.DateLayout, f.Birthday, now.Location())
		if err != nil {
			slog.Debug(config.ErrDateParse,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyFriendID, f.ID,
				config.LogKeyValue, f.Birthday)
			continue
		}

		events, isToday := g.createEvents(f, birthDate, now)
		if isToday {
			today++
		}
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, len(friends)),
			slog.Int(config.LogKeyEvents, len(cal.Children)),
			slog.Int(config.LogKeyToday, today),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), today, nil
}

// createEvents generates the events of one friend. No event is created before
// the birth year.
func (g *Generator) createEvents(f backend.Friend, birthDate, now time.Time) ([]*ical.Event, bool) {
	uidBase := friendUID(f, birthDate)
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()

	var events []*ical.Event
	isToday := false

	for _, y := range []int{todayYear - 1, todayYear, todayYear + 1} {
		if y < birthDate.Year() {
			continue
		}

		// time.Date normalizes Feb 29 to March 1 in non-leap years.
		eventDate := time.Date(y, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
		if eventDate.Year() == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, g.summary(f.Name, y-birthDate.Year()))

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		events = append(events, event)
	}
	return events, isToday
}

func (g *Generator) summary(name string, age int) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(name, age)
	}
	if age > 0 {
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
	return fmt.Sprintf(config.FallbackSummary, name)
}

// friendUID is stable across refreshes as long as the friend keeps id, name and birthday.
func friendUID(f backend.Friend, birthDate time.Time) string {
	input := fmt.Sprintf(config.FormatHashInput, f.Name, f.ID, birthDate.Format(config.DateLayout), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
