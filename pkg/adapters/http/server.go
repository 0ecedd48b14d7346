package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// maxBodyBytes caps request bodies before input sanitization applies its own limit.
const maxBodyBytes = 1 << 20

// reloadTopic is the stream key for reload notices. Session routes never match an empty id.
const reloadTopic = ""

// Engine defines what the HTTP adapter needs from the responder.
type Engine interface {
	NewSession(id string) *domain.Session
	Greeting() string
	Reply(ctx context.Context, sess *domain.Session, input string) (domain.Reply, error)
	Inspect() *domain.Script
	AutoReload(ctx context.Context, onReload func(parley.ReloadEvent)) error
}

// Server serves an Engine over a JSON API. Sessions live in the Manager's store.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager

	doc       *openapi3.T
	metrics   http.Handler
	logger    *slog.Logger
	reloadCtx context.Context
	hotReload bool
}

// Option configures the handler.
type Option func(*Server)

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithHotReload reloads the script whenever its source changes, until ctx is done,
// and announces every attempt on GET /events.
func WithHotReload(ctx context.Context) Option {
	return func(s *Server) {
		s.reloadCtx = ctx
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		doc:      doc,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.reloadCtx != nil {
		if err := engine.AutoReload(s.reloadCtx, s.announceReload); err != nil {
			s.logger.Warn("hot reload disabled", "err", err)
		} else {
			s.hotReload = true
		}
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/script", s.GetScript)
	r.Get("/events", s.SubscribeReloads)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/messages", s.SendMessage)
			r.Get("/events", s.SubscribeSession)
		})
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Parley API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	ID string `json:"id,omitempty"`
}

// CreateSessionResponse answers POST /sessions.
type CreateSessionResponse struct {
	ID       string `json:"id"`
	Greeting string `json:"greeting,omitempty"`
}

// MessageRequest is the body of POST /sessions/{id}/messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// SessionList answers GET /sessions.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "parley-http",
		"version":     strings.TrimSpace(parley.Version),
		"api_version": apiVersion,
		"script":      s.Engine.Inspect().Name,
	})
}

// GetScript handles the GET /script request.
func (s *Server) GetScript(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Inspect())
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, SessionList{Sessions: ids})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, "CreateSessionRequest", true)
	if !ok {
		return
	}
	var req CreateSessionRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	id := s.Engine.NewSession(req.ID).ID
	sess, err := s.Sessions.LoadOrCreate(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("session created", "session_id", sess.ID)
	s.writeJSON(w, http.StatusCreated, CreateSessionResponse{ID: sess.ID, Greeting: s.Engine.Greeting()})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles the POST /sessions/{id}/messages request.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	body, ok := s.readBody(w, r, "MessageRequest", false)
	if !ok {
		return
	}
	var req MessageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	text, err := runner.SanitizeInput(req.Text)
	if err != nil {
		s.logger.Warn("SendMessage: Input rejected", "err", err, "size", len(req.Text))
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	reply, err := s.Sessions.Respond(r.Context(), s.Engine, id, text)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.logger.Error("SendMessage: script configuration error", "session_id", id, "err", err)
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if payload, err := json.Marshal(reply); err == nil {
		s.Streams.Broadcast(id, string(payload))
	}
	s.writeJSON(w, http.StatusOK, reply)
}

// SubscribeSession handles the GET /sessions/{id}/events request (SSE).
func (s *Server) SubscribeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	flusher, ok := s.startStream(w)
	if !ok {
		return
	}
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	s.logger.Info("SSE: Subscribing to session replies", "session_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reply\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// SubscribeReloads handles the GET /events request (SSE).
func (s *Server) SubscribeReloads(w http.ResponseWriter, r *http.Request) {
	if !s.hotReload {
		s.writeError(w, http.StatusNotImplemented, errors.New("hot reload is not enabled for this script"))
		return
	}
	flusher, ok := s.startStream(w)
	if !ok {
		return
	}

	ch, cancel := s.Streams.Subscribe(reloadTopic)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "%s\n\n", msg)
			flusher.Flush()
		}
	}
}

// announceReload sends "reload" with the new script name, or "reload_failed" with
// the reason when the previous script stayed in service.
func (s *Server) announceReload(ev parley.ReloadEvent) {
	if ev.Err != nil {
		msg := strings.ReplaceAll(ev.Err.Error(), "\n", " ")
		s.Streams.Broadcast(reloadTopic, "event: reload_failed\ndata: "+msg)
		return
	}
	s.logger.Debug("SSE: Announcing reload", "script", ev.Script, "subscribers", s.Streams.Subscribers(reloadTopic))
	s.Streams.Broadcast(reloadTopic, "event: reload\ndata: "+ev.Script)
}

func (s *Server) startStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

// sessionID binds the {id} path parameter, unescaping it as a simple-style value.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter id: %w", err))
		return "", false
	}
	return id, true
}

// readBody reads and validates the request body against the named schema.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema string, allowEmpty bool) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	if err := validateBody(s.doc, schema, body, allowEmpty); err != nil {
		s.logger.Warn("Invalid request body", "schema", schema, "err", err)
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return body, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast delivers msg to every subscriber of the session.
// Slow subscribers with a full buffer miss the message.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers reports how many streams follow the session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}
