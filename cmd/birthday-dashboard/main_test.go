package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/backend/backendtest"
	"github.com/tartampluch/birthday-dashboard/internal/config"
)

func TestRunCheck_AllReachable(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("ListFriends", mock.Anything).Return([]backend.Friend{{ID: 1}, {ID: 2}}, nil)
	api.On("ListAlerts", mock.Anything).Return([]backend.Alert{}, nil)
	api.On("UpcomingBirthdays", mock.Anything).Return([]backend.UpcomingEntry{{ID: 1}}, nil)

	var out bytes.Buffer
	err := runCheck(context.Background(), &out, api, "http://backend/api")

	require.NoError(t, err)
	s := out.String()
	assert.Contains(t, s, "http://backend/api")
	assert.Contains(t, s, "✓ /friends")
	assert.Contains(t, s, "2 record(s)")
	assert.Contains(t, s, "3 of 3 endpoint(s) reachable")
	api.AssertExpectations(t)
}

func TestRunCheck_Unreachable(t *testing.T) {
	api := new(backendtest.MockAPI)
	api.On("ListFriends", mock.Anything).Return([]backend.Friend{}, nil)
	api.On("ListAlerts", mock.Anything).Return(nil, errors.New("connection refused"))
	api.On("UpcomingBirthdays", mock.Anything).Return([]backend.UpcomingEntry{}, nil)

	var out bytes.Buffer
	err := runCheck(context.Background(), &out, api, "http://backend/api")

	require.Error(t, err)
	assert.Equal(t, config.ErrCheckFailed, err.Error())
	assert.Contains(t, out.String(), "✗ /alerts")
	assert.Contains(t, out.String(), "connection refused")
	assert.Contains(t, out.String(), "2 of 3 endpoint(s) reachable")
}

func TestRunMain_Version(t *testing.T) {
	var out bytes.Buffer
	code := runMain([]string{config.CmdVersion}, &out)

	assert.Equal(t, config.ExitCodeSuccess, code)
	assert.Contains(t, out.String(), config.AppName)
	assert.Contains(t, out.String(), config.Version)
}

func TestRunMain_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"UnknownCommand", []string{"explode"}},
		{"MissingConfigFile", []string{config.CmdCheck, "--" + config.FlagConfig, "/does/not/exist.yaml"}},
		{"BadBackendURL", []string{config.CmdCheck, "--" + config.FlagBackend, "ftp://example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, config.ExitCodeError, runMain(tt.args, io.Discard))
		})
	}
}

func TestRunMain_CheckAgainstBackend(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/api/"))
		_, _ = io.WriteString(w, "[]")
	}))
	defer ts.Close()

	var out bytes.Buffer
	code := runMain([]string{config.CmdCheck, "--" + config.FlagBackend, ts.URL + "/api"}, &out)

	assert.Equal(t, config.ExitCodeSuccess, code)
	assert.Contains(t, out.String(), "3 of 3 endpoint(s) reachable")
}

func TestLogStartupInfo_BuildAndListenFields(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	logStartupInfo(config.Settings{Addr: "127.0.0.1", Port: "18081", Language: "fr"})

	out := logs.String()
	assert.Contains(t, out, config.MsgAppStarting)
	assert.Contains(t, out, `"`+config.LogKeyCommit+`":"`+config.Commit+`"`)
	assert.Contains(t, out, `"`+config.LogKeyDate+`":"`+config.Date+`"`)
	assert.Contains(t, out, `"`+config.LogKeyPort+`":"18081"`)
	assert.Contains(t, out, `"`+config.LogKeyAddr+`":"127.0.0.1:18081"`)
}
