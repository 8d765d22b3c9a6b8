package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := config.LoadSettings(config.NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, config.LocalhostBindAddr, s.Addr)
	assert.Equal(t, config.DefaultPort, s.Port)
	assert.Equal(t, config.DefaultBackendURL, s.BackendURL)
	assert.Equal(t, config.HTTPTimeout, s.BackendTimeout)
	assert.Equal(t, config.DefaultLanguage, s.Language)
	assert.Equal(t, config.DefaultAlertRefresh, s.AlertRefresh)
	assert.Equal(t, config.DefaultNotificationDelay, s.NotificationDelay)
	assert.Equal(t, config.DefaultNotificationFade, s.NotificationFade)
	assert.Equal(t, "127.0.0.1:18081", s.ListenAddr())
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "dashboard.yaml")
	content := "server:\n  port: \"9000\"\nbackend:\n  url: http://backend:5000/api\nui:\n  language: fr\nalerts:\n  refresh_interval: 1m\n"
	require.NoError(t, os.WriteFile(file, []byte(content), config.FilePermUserRW))

	// Environment overrides the file.
	t.Setenv("BIRTHDAY_SERVER_PORT", "9100")

	s, err := config.LoadSettings(config.NewViper(), file)
	require.NoError(t, err)

	assert.Equal(t, "9100", s.Port)
	assert.Equal(t, "http://backend:5000/api", s.BackendURL)
	assert.Equal(t, "fr", s.Language)
	assert.Equal(t, time.Minute, s.AlertRefresh)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := config.LoadSettings(config.NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrReadSettings)
}

func TestSettings_Validate(t *testing.T) {
	valid := config.Settings{Port: "8080", BackendURL: config.DefaultBackendURL, AlertRefresh: time.Minute}

	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr string
	}{
		{"Valid", func(*config.Settings) {}, ""},
		{"EmptyPort", func(s *config.Settings) { s.Port = "" }, config.ErrPortRequired},
		{"NonNumericPort", func(s *config.Settings) { s.Port = "http" }, config.ErrPortNumber},
		{"PortTooHigh", func(s *config.Settings) { s.Port = "70000" }, config.ErrPortRange},
		{"PortZero", func(s *config.Settings) { s.Port = "0" }, config.ErrPortRange},
		{"EmptyBackend", func(s *config.Settings) { s.BackendURL = "" }, config.ErrBackendURLEmpty},
		{"ZeroInterval", func(s *config.Settings) { s.AlertRefresh = 0 }, config.ErrIntervalPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
