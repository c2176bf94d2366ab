// Package admin serves sweep progress over HTTP while a run is in flight.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"wban-jamming-sim/internal/sweep"
)

type Server struct {
	Recorder *sweep.Recorder
	Metrics  http.Handler

	tpl *template.Template
	mux *http.ServeMux

	mu        sync.RWMutex
	summaries []sweep.Summary
}

//go:embed templates/index.html
var content embed.FS

// NewServer builds a server over rec. metrics may be nil, in which case
// /metrics answers 404.
func NewServer(rec *sweep.Recorder, metrics http.Handler) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{Recorder: rec, Metrics: metrics, tpl: tpl, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/points", s.handlePoints)
	s.mux.HandleFunc("/summary", s.handleSummary)
	if s.Metrics != nil {
		s.mux.Handle("/metrics", s.Metrics)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start listens on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// WriteSummary implements sweep.SummaryWriter.
func (s *Server) WriteSummary(sum sweep.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, sum)
	return nil
}

// Summaries returns the finished sweeps in completion order.
func (s *Server) Summaries() []sweep.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sweep.Summary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

type sweepView struct {
	ID     string
	Points []sweep.Record
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	var sweeps []sweepView
	for _, id := range s.Recorder.SweepIDs() {
		sweeps = append(sweeps, sweepView{ID: id, Points: s.Recorder.Sweep(id)})
	}
	data := struct {
		Sweeps    []sweepView
		Summaries []sweep.Summary
	}{
		Sweeps:    sweeps,
		Summaries: s.Summaries(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	var rows []sweep.Record
	if id := r.URL.Query().Get("sweep"); id != "" {
		rows = s.Recorder.Sweep(id)
	} else {
		rows = s.Recorder.Records()
	}
	if rows == nil {
		rows = []sweep.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Summaries())
}
