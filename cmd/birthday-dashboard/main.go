package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
	"github.com/tartampluch/birthday-dashboard/internal/backend"
	"github.com/tartampluch/birthday-dashboard/internal/config"
	"github.com/tartampluch/birthday-dashboard/internal/controller"
	"github.com/tartampluch/birthday-dashboard/internal/engine"
	"github.com/tartampluch/birthday-dashboard/internal/render"
	"github.com/tartampluch/birthday-dashboard/internal/server"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout))
}

// runMain executes the command line and maps the outcome to an exit code.
func runMain(args []string, out io.Writer) int {
	a := &app{v: config.NewViper()}
	defer a.closeLog()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

// app carries the state shared by the commands.
type app struct {
	v         *viper.Viper
	cfgFile   string
	debug     bool
	logCloser io.Closer
}

func (a *app) closeLog() {
	if a.logCloser != nil {
		_ = a.logCloser.Close() // Best effort close
	}
}

// settings loads the settings file named by --config, if any.
func (a *app) settings() (config.Settings, error) {
	s, err := config.LoadSettings(a.v, a.cfgFile)
	if err != nil {
		return config.Settings{}, err
	}
	if a.cfgFile != "" {
		slog.Debug(config.MsgSettingsFile,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyFile, a.v.ConfigFileUsed(),
		)
	}
	return s, nil
}

// serve wires the dashboard and blocks until ctx is cancelled.
func serve(ctx context.Context, s config.Settings) error {
	client, err := backend.NewClient(s.BackendURL, s.BackendTimeout)
	if err != nil {
		return err
	}

	ctrl := controller.New(client, render.New(s.Language, time.Local), controller.NewBus(), engine.NewGenerator(),
		controller.Options{
			AlertRefreshInterval: s.AlertRefresh,
			NotificationDelay:    s.NotificationDelay,
			NotificationFade:     s.NotificationFade,
		})
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	defer ctrl.Close()

	srv, err := server.NewPageServer(ctrl, s.ListenAddr())
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return nil
}

// printVersion outputs the build information.
func printVersion(out io.Writer) {
	_, _ = fmt.Fprintf(out, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo(s config.Settings) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyDate, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
		config.LogKeyAddr, s.ListenAddr(),
		config.LogKeyPort, s.Port,
		config.LogKeyLang, s.Language,
	)
}

// setupLogging configures the default slog logger.
func (a *app) setupLogging() {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stdout.
	writers = append(writers, os.Stdout)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: a.debug,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile != nil {
		a.logCloser = logFile
	}
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
