// Package server exposes the dashboard over HTTP: the page shell, one endpoint
// per mount, the calendar and vCard exports, and the event posts that drive
// the view controller.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tartampluch/birthday-dashboard/internal/config"
	"github.com/tartampluch/birthday-dashboard/internal/controller"
)

//go:embed templates/index.html
var templateFS embed.FS

// PageServer serves the dashboard of one view controller.
type PageServer struct {
	Addr string

	ctrl *controller.Controller
	page *template.Template
}

// pageData feeds the page shell. Mount contents are already escaped by the renderer.
type pageData struct {
	Lang          string
	CalendarURL   string
	VCardsURL     string
	PollMillis    int64
	Form          template.HTML
	Friends       template.HTML
	Alerts        template.HTML
	Upcoming      template.HTML
	Modal         template.HTML
	Notifications template.HTML
}

// NewPageServer parses the embedded page shell.
func NewPageServer(ctrl *controller.Controller, addr string) (*PageServer, error) {
	funcs := template.FuncMap{
		"t": func(key string) string { return ctrl.Renderer().Text(key, nil) },
	}
	page, err := template.New("index.html").Funcs(funcs).ParseFS(templateFS, config.PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTemplate, err)
	}
	return &PageServer{Addr: addr, ctrl: ctrl, page: page}, nil
}

// Handler returns the router of the dashboard.
func (s *PageServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(config.RouteRoot, s.handlePage).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(config.RouteFragment, s.handleFragment).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(config.RouteCalendar, s.handleCalendar).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(config.RouteVCards, s.handleVCards).Methods(http.MethodGet)
	r.HandleFunc(config.RouteHealth, s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(config.RouteEvent, s.handleEvent).Methods(http.MethodPost)
	// Router middleware does not wrap the 405 handler.
	r.MethodNotAllowedHandler = loggingMiddleware(http.HandlerFunc(methodNotAllowed))
	r.Use(loggingMiddleware)
	return r
}

// Start listens on Addr and blocks until the context is cancelled.
func (s *PageServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func (s *PageServer) handlePage(w http.ResponseWriter, r *http.Request) {
	mount := func(name string) template.HTML {
		return template.HTML(s.ctrl.Mount(name).HTML())
	}
	data := pageData{
		Lang:          s.ctrl.Renderer().Lang.String(),
		CalendarURL:   config.RouteCalendar,
		VCardsURL:     config.RouteVCards,
		PollMillis:    config.FragmentPollInterval.Milliseconds(),
		Form:          mount(config.MountForm),
		Friends:       mount(config.MountFriends),
		Alerts:        mount(config.MountAlerts),
		Upcoming:      mount(config.MountUpcoming),
		Modal:         mount(config.MountModal),
		Notifications: mount(config.MountNotifications),
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		slog.Error(config.ErrTemplate,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextHTML)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	if r.Method == http.MethodGet {
		writeBody(w, buf.Bytes())
	}
}

func (s *PageServer) handleFragment(w http.ResponseWriter, r *http.Request) {
	m := s.ctrl.Mount(mux.Vars(r)[config.RouteVarMount])
	if m == nil {
		http.Error(w, config.HTTPMsgUnknownMount, http.StatusNotFound)
		return
	}
	serveCached(w, r, m.Load(), config.MimeTextHTML)
}

func (s *PageServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, s.ctrl.Calendar().Load(), config.MimeTextCalendar)
}

func (s *PageServer) handleVCards(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.ctrl.ExportVCards(r.Context(), &buf); err != nil {
		slog.Error(config.ErrExport,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusBadGateway)
		return
	}
	w.Header().Set(config.HeaderContentType, config.MimeVCard)
	w.Header().Set(config.HeaderDisposition, config.DispositionVCards)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	writeBody(w, buf.Bytes())
}

func (s *PageServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderContentType, config.MimeJSONUTF8)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": config.HealthStatusOK}); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// handleEvent dispatches a posted event and redirects back to the page, so a
// reload never re-posts the form.
func (s *PageServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxFormSize)

	ev, closer, err := parseEvent(r, controller.EventType(mux.Vars(r)[config.RouteVarType]))
	if err != nil {
		slog.Warn(config.MsgEventRejected,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyEvent, mux.Vars(r)[config.RouteVarType],
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgBadRequest, http.StatusBadRequest)
		return
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	if !s.ctrl.Bus().Dispatch(r.Context(), ev) {
		http.Error(w, config.HTTPMsgUnknownEvent, http.StatusNotFound)
		return
	}

	target := config.RouteRoot
	if ev.Type == controller.EventEdit {
		target += config.FormSectionAnchor
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// serveCached writes a fragment with ETag and Last-Modified, answering 304
// when the client copy is current and 503 before the first render.
func serveCached(w http.ResponseWriter, r *http.Request, item *controller.Fragment, contentType string) {
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.ETag)
	w.Header().Set(config.HeaderLastModified, item.LastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		if match == item.ETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	} else if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		// Only consulted without If-None-Match: mounts can change twice within a second.
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.LastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		writeBody(w, item.Data)
	}
}

func writeBody(w io.Writer, data []byte) {
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
}
