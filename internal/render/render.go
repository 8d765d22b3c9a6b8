// Package render turns backend records into the HTML fragments of the dashboard.
// Every function here is pure: same input, same markup. All user-controlled text
// goes through Escape before it reaches the output.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
	"golang.org/x/text/language"
)

// htmlEscaper covers exactly & < > " ' with the entities the page has always used.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape replaces the five HTML-significant characters with entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Renderer holds the language and time zone used to build fragments.
type Renderer struct {
	Lang        language.Tag
	Location    *time.Location
	localizer   *i18n.Localizer
	months      [12]string
	monthsShort [12]string
}

// New creates a renderer for the closest embedded locale of lang.
// Dates are interpreted in loc; nil means time.Local.
func New(lang string, loc *time.Location) *Renderer {
	bundle, _ := loadBundle()
	tag := MatchLanguage(lang)
	if loc == nil {
		loc = time.Local
	}
	r := &Renderer{
		Lang:      tag,
		Location:  loc,
		localizer: i18n.NewLocalizer(bundle, tag.String(), config.DefaultLanguage),
	}
	r.months = r.monthNames(config.TKeyMonthNames, "January")
	r.monthsShort = r.monthNames(config.TKeyMonthNamesShort, "Jan")
	return r
}

// Text returns the translated plain text of key. The result is not escaped.
func (r *Renderer) Text(key string, data map[string]any) string {
	return r.msg(key, data)
}

// text returns the translated, escaped text of key, ready for markup.
func (r *Renderer) text(key string, data map[string]any) string {
	return Escape(r.msg(key, data))
}

// -----------------------------------------------------------------------------
// Friends
// -----------------------------------------------------------------------------

// Friends renders the friend cards, or the empty placeholder.
func (r *Renderer) Friends(friends []backend.Friend) string {
	if len(friends) == 0 {
		return `<div class="no-friends"><i class="fas fa-user-friends fa-3x"></i><br>` +
			r.text(config.TKeyFriendsEmpty, nil) + `</div>`
	}
	var b strings.Builder
	for _, f := range friends {
		b.WriteString(r.FriendCard(f))
	}
	return b.String()
}

// FriendsError is the placeholder shown when the friend list could not be loaded.
func (r *Renderer) FriendsError() string {
	return `<div class="no-friends error">` + r.text(config.TKeyFriendsError, nil) + `</div>`
}

// FriendCard renders one friend. Optional fields appear only when populated.
func (r *Renderer) FriendCard(f backend.Friend) string {
	name := Escape(f.Name)
	id := strconv.FormatInt(f.ID, 10)

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="friend-card" data-friend-id="%s">`, id)
	fmt.Fprintf(&b, `<div class="friend-header"><div class="friend-name"><i class="fas fa-user-circle"></i> %s</div></div>`, name)
	fmt.Fprintf(&b, `<div class="friend-info friend-birthday"><i class="fas fa-birthday-cake"></i> %s</div>`,
		r.LongDate(f.Birthday))

	optional := []struct {
		class, icon, value string
	}{
		{"friend-relationship", "fa-heart", f.Relationship},
		{"friend-email", "fa-envelope", f.Email},
		{"friend-phone", "fa-phone", f.Phone},
		{"friend-notes", "fa-sticky-note", f.Notes},
	}
	for _, o := range optional {
		if o.value == "" {
			continue
		}
		fmt.Fprintf(&b, `<div class="friend-info %s"><i class="fas %s"></i> %s</div>`, o.class, o.icon, Escape(o.value))
	}

	b.WriteString(`<div class="friend-actions">`)
	b.WriteString(actionForm(config.EventViewMessages, id, name, "",
		`<button type="submit" class="btn btn-info"><i class="fas fa-comments"></i> `+r.text(config.TKeyBtnMessages, nil)+`</button>`))
	b.WriteString(actionForm(config.EventEdit, id, "", "",
		`<button type="submit" class="btn btn-warning"><i class="fas fa-edit"></i> `+r.text(config.TKeyBtnEdit, nil)+`</button>`))
	b.WriteString(actionForm(config.EventDelete, id, name, "",
		`<button type="submit" class="btn btn-danger"><i class="fas fa-trash"></i> `+r.text(config.TKeyBtnDelete, nil)+`</button>`))
	b.WriteString(`</div></div>`)

	return b.String()
}

// -----------------------------------------------------------------------------
// Alerts
// -----------------------------------------------------------------------------

// Alerts renders the alert items, or the empty placeholder.
func (r *Renderer) Alerts(alerts []backend.Alert) string {
	if len(alerts) == 0 {
		return `<div class="no-alerts"><i class="fas fa-bell-slash fa-3x"></i><br>` +
			r.text(config.TKeyAlertsEmpty, nil) + `</div>`
	}
	var b strings.Builder
	for _, a := range alerts {
		b.WriteString(r.AlertItem(a))
	}
	return b.String()
}

// AlertsError is the placeholder shown when alerts could not be loaded.
func (r *Renderer) AlertsError() string {
	return `<div class="no-alerts error">` + r.text(config.TKeyAlertsError, nil) + `</div>`
}

// AlertItem renders one alert. Unread alerts carry the mark-as-read action.
func (r *Renderer) AlertItem(a backend.Alert) string {
	classes := "alert-item alert-" + Escape(a.AlertType)
	if a.IsRead {
		classes += " read"
	}
	id := strconv.FormatInt(a.ID, 10)

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="%s" data-alert-id="%s">`, classes, id)
	fmt.Fprintf(&b, `<div><div class="alert-message">%s</div><div class="alert-time">%s</div></div>`,
		Escape(a.Message), r.AlertTime(a.CreatedAt))
	if !a.IsRead {
		b.WriteString(actionForm(config.EventMarkRead, id, "", "",
			`<button type="submit" class="mark-read-btn">`+r.text(config.TKeyBtnMarkRead, nil)+`</button>`))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// -----------------------------------------------------------------------------
// Upcoming birthdays
// -----------------------------------------------------------------------------

// Upcoming renders the upcoming cards, or the empty placeholder.
func (r *Renderer) Upcoming(entries []backend.UpcomingEntry) string {
	if len(entries) == 0 {
		return `<div class="no-alerts">` + r.text(config.TKeyUpcomingEmpty, nil) + `</div>`
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(r.UpcomingCard(e))
	}
	return b.String()
}

// UpcomingError is the placeholder shown when upcoming birthdays could not be loaded.
func (r *Renderer) UpcomingError() string {
	return `<div class="no-alerts error">` + r.text(config.TKeyUpcomingError, nil) + `</div>`
}

// UpcomingCard renders one upcoming birthday.
func (r *Renderer) UpcomingCard(e backend.UpcomingEntry) string {
	return fmt.Sprintf(`<div class="upcoming-card"><h3>%s</h3><div class="days">%s</div><div class="date">%s</div></div>`,
		Escape(e.Name), Escape(r.DaysUntil(e.DaysUntil)), r.MonthDay(e.Birthday))
}

// DaysUntil is "TODAY!" for 0, "Tomorrow" for 1 and "In n days" otherwise.
func (r *Renderer) DaysUntil(n int) string {
	switch n {
	case 0:
		return r.msg(config.TKeyDaysToday, nil)
	case 1:
		return r.msg(config.TKeyDaysTomorrow, nil)
	default:
		return r.msg(config.TKeyDaysIn, map[string]any{"Count": n})
	}
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

// Messages renders the message history of a friend, or the empty placeholder.
func (r *Renderer) Messages(messages []backend.Message) string {
	if len(messages) == 0 {
		return `<div class="no-alerts">` + r.text(config.TKeyMessagesEmpty, nil) + `</div>`
	}
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(r.MessageItem(m))
	}
	return b.String()
}

// MessageItem renders one sent greeting.
func (r *Renderer) MessageItem(m backend.Message) string {
	var b strings.Builder
	b.WriteString(`<div class="message-item">`)
	fmt.Fprintf(&b, `<div class="message-text">%s</div>`, Escape(m.Message))
	b.WriteString(`<div class="message-meta">`)
	fmt.Fprintf(&b, `<span class="message-year"><i class="fas fa-calendar"></i> %s</span>`,
		r.text(config.TKeyMsgYear, map[string]any{"Year": m.Year}))
	fmt.Fprintf(&b, `<span class="message-sent"><i class="fas fa-clock"></i> %s</span>`, r.MessageTime(m.SentAt))
	if m.EmailSent {
		fmt.Fprintf(&b, `<span class="message-email"><i class="fas fa-envelope"></i> %s</span>`,
			r.text(config.TKeyMsgEmailSent, nil))
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// actionForm wraps a button in a POST form targeting one dashboard event.
// id and name must already be escaped.
func actionForm(event, id, name, extra, button string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<form method="post" action="`+config.FormatEventAction+`" class="inline-action">`, event)
	fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s">`, config.FieldID, id)
	if name != "" {
		fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s">`, config.FieldLabel, name)
	}
	b.WriteString(extra)
	b.WriteString(button)
	b.WriteString(`</form>`)
	return b.String()
}
