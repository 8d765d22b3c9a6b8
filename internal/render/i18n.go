package render

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/birthday-dashboard/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// loadBundle reads every embedded active.<lang>.json once per process.
var loadBundle = sync.OnceValues(func() (*i18n.Bundle, []language.Tag) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	// The fallback language must come first for the matcher.
	tags := []language.Tag{language.English}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return bundle, tags
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		tag, err := language.Parse(langCode)
		if langCode == "" || err != nil {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		if tag != language.English {
			tags = append(tags, tag)
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	return bundle, tags
})

// MatchLanguage maps a requested language to the closest embedded locale.
// Unknown or empty input falls back to English.
func MatchLanguage(requested string) language.Tag {
	_, tags := loadBundle()
	if requested == "" {
		return tags[0]
	}
	_, idx, confidence := language.NewMatcher(tags).Match(language.Make(requested))
	if confidence == language.No {
		return tags[0]
	}
	return tags[idx]
}

// msg translates a key. A missing key is returned as is.
// A Count in data selects the plural form.
func (r *Renderer) msg(key string, data map[string]any) string {
	lc := &i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	}
	if n, ok := data["Count"]; ok {
		lc.PluralCount = n
	}
	out, err := r.localizer.Localize(lc)
	if err != nil || out == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return out
}
