// Package http exposes the membrane of an organism over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/cells"
	"github.com/aretw0/cells/pkg/dna"
	"github.com/aretw0/cells/pkg/domain"
	"github.com/aretw0/cells/pkg/organism"
	"github.com/aretw0/cells/pkg/schema"
)

// TraceHeader carries the action id of a request.
const TraceHeader = "X-Trace-Id"

// Server routes HTTP requests to a membrane.
//
//	GET  /health
//	GET  /info
//	GET  /attributes
//	GET  /config
//	GET  /state
//	GET  /state/{name}
//	PUT  /state/{name}    {"value": ...}
//	POST /events/{name}   {"args": [...]}
//	POST /queries/{name}  {"args": [...]}
//	GET  /records         server-sent records, ?attribute=a,b&node=n
type Server struct {
	api     *organism.Membrane
	streams *StreamManager
	logger  *slog.Logger
	handler http.Handler
	stop    func()
}

type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer builds the handler and subscribes it to the records of the
// organism behind api. Call Close to unsubscribe.
func NewServer(api *organism.Membrane, opts ...Option) *Server {
	s := &Server{api: api}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.streams = NewStreamManager(s.logger)
	s.stop = api.Organism().Subscribe(s.streams.Broadcast)

	r := chi.NewRouter()
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/attributes", s.getAttributes)
	r.Get("/config", s.getConfig)
	r.Get("/state", s.getState)
	r.Get("/state/{name}", s.getStateValue)
	r.Put("/state/{name}", s.putStateValue)
	r.Post("/events/{name}", s.postEvent)
	r.Post("/queries/{name}", s.postQuery)
	r.Get("/records", s.streamRecords)
	s.handler = enableCORS(r)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops feeding records to the SSE connections.
func (s *Server) Close() {
	s.stop()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+TraceHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type argsBody struct {
	Args []any `json:"args"`
}

type valueBody struct {
	Value any `json:"value"`
}

type errorBody struct {
	Error string `json:"error"`
	Key   string `json:"key,omitempty"`
}

func (s *Server) membrane(r *http.Request) *organism.Membrane {
	if id := r.Header.Get(TraceHeader); id != "" {
		return s.api.Trace(id)
	}
	return s.api
}

// attribute resolves the {name} parameter and checks its kind.
func (s *Server) attribute(w http.ResponseWriter, r *http.Request, kind dna.Kind) (string, bool) {
	name := chi.URLParam(r, "name")
	if k, ok := s.api.Kind(name); !ok || k != kind {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("no %s attribute %q", kind, name)})
		return "", false
	}
	return name, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// writeError maps soft failures to 422 and fatal ones to 409.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *schema.ValidationError
	switch {
	case errors.As(err, &ve) && !domain.IsFatal(err):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Error(), Key: ve.Key})
	case domain.IsFatal(err):
		s.logger.Warn("invariant violated", "error", err)
		s.writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if !s.api.Organism().Alive() {
		status = "inactive"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) getInfo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":      "cells-http",
		"version":  strings.TrimSpace(cells.Version),
		"organism": s.api.Organism().Name(),
	})
}

func (s *Server) getAttributes(w http.ResponseWriter, _ *http.Request) {
	d := s.api.Organism().Dna()
	out := make(map[string]dna.Amino, len(d))
	for _, name := range s.api.Names() {
		out[name] = d[name]
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getConfig(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.api.Config()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	st, err := s.api.State()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) getStateValue(w http.ResponseWriter, r *http.Request) {
	name, ok := s.attribute(w, r, dna.KindState)
	if !ok {
		return
	}
	v, err := s.api.Get(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, valueBody{Value: v})
}

func (s *Server) putStateValue(w http.ResponseWriter, r *http.Request) {
	name, ok := s.attribute(w, r, dna.KindState)
	if !ok {
		return
	}
	var body valueBody
	if !decode(w, r, &body) {
		return
	}
	if err := s.membrane(r).Set(r.Context(), name, body.Value); err != nil {
		s.writeError(w, err)
		return
	}
	v, _ := s.api.Get(name)
	s.writeJSON(w, http.StatusOK, valueBody{Value: v})
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	name, ok := s.attribute(w, r, dna.KindEvent)
	if !ok {
		return
	}
	var body argsBody
	if !decode(w, r, &body) {
		return
	}
	if err := s.membrane(r).Emit(r.Context(), name, body.Args...); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) postQuery(w http.ResponseWriter, r *http.Request) {
	name, ok := s.attribute(w, r, dna.KindQuery)
	if !ok {
		return
	}
	var body argsBody
	if !decode(w, r, &body) {
		return
	}
	res, err := s.membrane(r).Query(r.Context(), name, body.Args...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": res})
}

// streamRecords handles GET /records (SSE).
func (s *Server) streamRecords(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("streamRecords: Streaming not supported")
		return
	}

	var attributes map[string]bool
	if list := r.URL.Query().Get("attribute"); list != "" {
		attributes = make(map[string]bool)
		for _, a := range strings.Split(list, ",") {
			attributes[strings.TrimSpace(a)] = true
		}
	}
	node := r.URL.Query().Get("node")

	ch, cancel := s.streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case rec, ok := <-ch:
			if !ok {
				return
			}
			if attributes != nil && !attributes[rec.Attribute] {
				continue
			}
			if node != "" && rec.NodeID != node {
				continue
			}
			msg, err := encodeRecord(rec)
			if err != nil {
				s.logger.Warn("SSE: record encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", rec.Type, msg)
			flusher.Flush()
		}
	}
}
