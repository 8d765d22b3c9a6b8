package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the runtime configuration of the dashboard.
type Settings struct {
	Addr              string
	Port              string
	BackendURL        string
	BackendTimeout    time.Duration
	Language          string
	AlertRefresh      time.Duration
	NotificationDelay time.Duration
	NotificationFade  time.Duration
}

// ListenAddr returns host:port for http.Server.
func (s Settings) ListenAddr() string {
	return s.Addr + AddrSeparator + s.Port
}

// NewViper returns a viper instance carrying the defaults and reading
// BIRTHDAY_* environment variables (BIRTHDAY_BACKEND_URL for backend.url).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyServerAddr, LocalhostBindAddr)
	v.SetDefault(KeyServerPort, DefaultPort)
	v.SetDefault(KeyBackendURL, DefaultBackendURL)
	v.SetDefault(KeyBackendTimeout, HTTPTimeout)
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeyAlertRefresh, DefaultAlertRefresh)
	v.SetDefault(KeyNotificationDelay, DefaultNotificationDelay)
	v.SetDefault(KeyNotificationFade, DefaultNotificationFade)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads the optional settings file into v and returns the validated result.
// An empty file path means defaults, environment and bound flags only.
func LoadSettings(v *viper.Viper, file string) (Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType(SettingsFileType)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("%s: %w", ErrReadSettings, err)
		}
	}

	s := Settings{
		Addr:              v.GetString(KeyServerAddr),
		Port:              v.GetString(KeyServerPort),
		BackendURL:        v.GetString(KeyBackendURL),
		BackendTimeout:    v.GetDuration(KeyBackendTimeout),
		Language:          v.GetString(KeyLanguage),
		AlertRefresh:      v.GetDuration(KeyAlertRefresh),
		NotificationDelay: v.GetDuration(KeyNotificationDelay),
		NotificationFade:  v.GetDuration(KeyNotificationFade),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the values that would otherwise fail late at runtime.
func (s Settings) Validate() error {
	if s.Port == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(s.Port)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPortNumber, err)
	}
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%s: %d", ErrPortRange, port)
	}
	if s.BackendURL == "" {
		return errors.New(ErrBackendURLEmpty)
	}
	if s.AlertRefresh <= 0 {
		return errors.New(ErrIntervalPositive)
	}
	return nil
}
