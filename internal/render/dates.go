package render

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// timestampLayouts are tried in order for created_at and sent_at.
var timestampLayouts = []string{
	config.TimestampLayout,
	time.RFC3339,
	config.TimestampLayoutT,
}

// ParseCalendarDate reads a YYYY-MM-DD value as midnight in loc.
// Parsing at local midnight keeps the day from shifting across time zones.
func ParseCalendarDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(config.DateLayout, value, loc)
}

// LongDate formats a birthday with the locale's format_long_date template,
// "June 15, 1990" in English.
// A value that is not a calendar date is shown as received, escaped.
func (r *Renderer) LongDate(value string) string {
	t, err := ParseCalendarDate(value, r.Location)
	if err != nil {
		return Escape(value)
	}
	return r.formatDate(t, config.TKeyFormatLongDate, config.DisplayLongDate)
}

// MonthDay formats a birthday without its year.
func (r *Renderer) MonthDay(value string) string {
	t, err := ParseCalendarDate(value, r.Location)
	if err != nil {
		return Escape(value)
	}
	return r.formatDate(t, config.TKeyFormatMonthDay, config.DisplayMonthDay)
}

// AlertTime formats created_at.
func (r *Renderer) AlertTime(value string) string {
	return r.timestamp(value, config.TKeyFormatAlertTime, config.DisplayAlertTime)
}

// MessageTime formats sent_at in the locale's date and time notation.
func (r *Renderer) MessageTime(value string) string {
	return r.timestamp(value, config.TKeyFormatMessageTime, config.DisplayMessageTime)
}

func (r *Renderer) timestamp(value, key, fallback string) string {
	for _, l := range timestampLayouts {
		if t, err := time.ParseInLocation(l, value, r.Location); err == nil {
			return r.formatDate(t.In(r.Location), key, fallback)
		}
	}
	return Escape(value)
}

// formatDate fills the locale template of key. Without one, t is formatted
// with the Go layout fallback.
func (r *Renderer) formatDate(t time.Time, key, fallback string) string {
	out := r.msg(key, r.dateFields(t))
	if out == key {
		return Escape(t.Format(fallback))
	}
	return Escape(out)
}

// dateFields lists the values a date template may reference.
func (r *Renderer) dateFields(t time.Time) map[string]any {
	return map[string]any{
		"Year":       t.Format("2006"),
		"Month":      r.months[t.Month()-1],
		"MonthShort": r.monthsShort[t.Month()-1],
		"MonthNum":   t.Format("1"),
		"MonthNum2":  t.Format("01"),
		"Day":        t.Format("2"),
		"Day2":       t.Format("02"),
		"Hour":       t.Format("15"),
		"Hour12":     t.Format("3"),
		"Minute":     t.Format("04"),
		"Second":     t.Format("05"),
		"AmPm":       t.Format("PM"),
	}
}

// monthNames reads the twelve names of key. A missing or malformed list falls
// back to the Go layout names.
func (r *Renderer) monthNames(key, layout string) [12]string {
	var names [12]string
	parts := strings.Split(r.msg(key, nil), config.MonthNameSeparator)
	if len(parts) != len(names) {
		slog.Warn(config.MsgMonthNamesBad,
			config.LogKeyComponent, config.CompRender,
			config.LogKeyKey, key,
			config.LogKeyLang, r.Lang.String(),
		)
		for i := range names {
			names[i] = time.Date(2000, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format(layout)
		}
		return names
	}
	for i, p := range parts {
		names[i] = strings.TrimSpace(p)
	}
	return names
}
