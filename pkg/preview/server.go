package preview

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/yaklabco/mdsync/pkg/scrollsync"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:7474"

	// DefaultMaxBody bounds the size of a posted document.
	DefaultMaxBody = 8 << 20

	startGrace      = 50 * time.Millisecond
	shutdownTimeout = 5 * time.Second
	keepAlive       = 25 * time.Second
	maxJSONBody     = 1 << 16
)

//go:embed static/index.html
var static embed.FS

// Hooks are optional callbacks for observing the server. They run on the loop goroutine,
// except OnClient which runs on the request goroutine.
type Hooks struct {
	OnClient   func(id string, connected bool)
	OnContent  func(err error)
	OnPosition func(line, resolved int)
	OnRestore  func(target scrollsync.RestoreTarget)
}

// Config configures a preview server.
type Config struct {
	// Addr is the TCP listen address. Defaults to DefaultAddr.
	Addr string

	// Path is the previewed file, used for parsing and as the page title.
	Path string

	Parser   scrollsync.Parser
	Renderer scrollsync.Renderer

	// Stylesheet is served at /style.css.
	Stylesheet []byte

	// LineSync starts the server in line-synchronized mode.
	LineSync bool

	// Zoom is applied after each content load when positive.
	Zoom float64

	// MaxBody bounds POST /api/content. Defaults to DefaultMaxBody.
	MaxBody int64

	Hooks Hooks
}

// Server wires a scroll-sync session to browsers over HTTP and server-sent events.
type Server struct {
	cfg      Config
	hub      *Hub
	viewport *BrowserViewport
	sync     *scrollsync.Switch
	session  *scrollsync.Session
	loop     *Loop
	mux      *http.ServeMux

	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
}

// New builds a server and its session. Call Start or Serve to begin handling requests.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}

	hub := NewHub()
	viewport := NewBrowserViewport(hub)
	lineSync := scrollsync.NewSwitch(cfg.LineSync)

	var opts []scrollsync.Option
	if cfg.Zoom > 0 {
		opts = append(opts, scrollsync.WithZoom(cfg.Zoom))
	}
	director := scrollsync.NewDirector(viewport, lineSync, opts...)

	srv := &Server{
		cfg:      cfg,
		hub:      hub,
		viewport: viewport,
		sync:     lineSync,
		session:  scrollsync.NewSession(cfg.Path, cfg.Parser, cfg.Renderer, director),
	}
	srv.loop = NewLoop(srv.applyContent)
	srv.mux = srv.routes()
	return srv
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /style.css", s.handleStylesheet)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("POST /viewport", s.handleViewport)
	mux.HandleFunc("POST /api/position", s.handlePosition)
	mux.HandleFunc("POST /api/content", s.handleContent)
	mux.HandleFunc("GET /api/sync", s.handleSync)
	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Handler returns the HTTP handler. Requests that reach the session need the loop
// started by Start.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the loop and begins listening. It returns once the listener is up, or
// with the error that prevented the server from starting.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go func() { _ = s.loop.Run(loopCtx) }()

	s.server = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		err := s.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			cancel()
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-time.After(startGrace):
		return nil
	}
}

// Serve starts the server and blocks until ctx is done, then shuts down.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown disconnects browsers, stops the listener and stops the loop.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.hub.Close()
	err := s.server.Shutdown(ctx)
	if s.cancel != nil {
		s.cancel()
	}
	if err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// Addr returns the bound listen address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// URL returns the address browsers should open.
func (s *Server) URL() string {
	return "http://" + s.Addr() + "/"
}

// UpdateContent queues a new document source. Superseded sources are never rendered.
func (s *Server) UpdateContent(source []byte) error {
	return s.loop.Content(source)
}

// UpdatePosition resolves an editor line on the loop and returns the resolved line.
func (s *Server) UpdatePosition(ctx context.Context, line int) (int, error) {
	var resolved int
	err := s.loop.Do(ctx, func() {
		resolved = s.session.UpdatePosition(line)
		if s.cfg.Hooks.OnPosition != nil {
			s.cfg.Hooks.OnPosition(line, resolved)
		}
	})
	return resolved, err
}

// SetLineSync switches between line-synchronized and free scrolling.
func (s *Server) SetLineSync(enabled bool) bool {
	return s.sync.Set(enabled)
}

// LineSync reports whether line synchronization is enabled.
func (s *Server) LineSync() bool {
	return s.sync.LineSync()
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Loop returns the loop owning the session.
func (s *Server) Loop() *Loop {
	return s.loop
}

// Session returns the underlying session. It must only be used from the loop.
func (s *Server) Session() *scrollsync.Session {
	return s.session
}

func (s *Server) applyContent(ctx context.Context, source []byte) {
	err := s.session.UpdateContent(ctx, source)
	if s.cfg.Hooks.OnContent != nil {
		s.cfg.Hooks.OnContent(err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(s.cfg.Stylesheet)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	id, commands, cancel := s.hub.Subscribe()
	defer cancel()

	if s.cfg.Hooks.OnClient != nil {
		s.cfg.Hooks.OnClient(id, true)
		defer s.cfg.Hooks.OnClient(id, false)
	}

	// A new browser starts empty; resend the current document to everyone.
	if err := s.loop.Do(r.Context(), func() { s.session.Refresh() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			if err := writeSSEData(w, cmd); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// viewportReport is posted by the browser after a load or a user scroll.
type viewportReport struct {
	Event  string  `json:"event"`
	Offset float64 `json:"offset"`
	Height float64 `json:"height"`
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var report viewportReport
	if err := decodeJSONBody(r, &report); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var apply func()
	switch report.Event {
	case "loaded":
		apply = func() {
			s.viewport.Report(report.Offset, report.Height)
			target, restored := s.session.Director().OnLoadCompleted()
			if restored && s.cfg.Hooks.OnRestore != nil {
				s.cfg.Hooks.OnRestore(target)
			}
		}
	case "scroll":
		apply = func() {
			s.viewport.Report(report.Offset, report.Height)
			s.session.Director().OnViewportScrolled()
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown viewport event %q", report.Event))
		return
	}

	if err := s.loop.Do(r.Context(), apply); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type positionRequest struct {
	Line int `json:"line"`
}

type positionResponse struct {
	Line     int    `json:"line"`
	Resolved int    `json:"resolved_line"`
	Anchor   string `json:"anchor,omitempty"`
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resolved, err := s.UpdatePosition(r.Context(), req.Line)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	resp := positionResponse{Line: req.Line, Resolved: resolved}
	if resolved != scrollsync.NoTarget {
		resp.Anchor = scrollsync.AnchorID(resolved)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	source, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.UpdateContent(source); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type syncState struct {
	LineSync bool  `json:"line_sync"`
	Previous *bool `json:"previous,omitempty"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, syncState{LineSync: s.LineSync()})
		return
	}

	var req syncState
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	previous := s.SetLineSync(req.LineSync)
	writeJSON(w, http.StatusOK, syncState{LineSync: req.LineSync, Previous: &previous})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.Clients(),
	})
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

func writeSSEData(w io.Writer, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", b)
	return err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
