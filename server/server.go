package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"auto_blog_publisher/workflow"
)

// Runner is the pipeline surface the server drives. The workflow
// executor implements it.
type Runner interface {
	Run(ctx context.Context, state workflow.State) (workflow.State, workflow.Outcome, error)
}

// Server exposes pipeline runs over HTTP: POST to start, GET to poll.
type Server struct {
	runner     Runner
	store      *runStore
	runTimeout time.Duration
	logger     *log.Logger
}

type runRecord struct {
	ID       string
	Running  bool
	Outcome  workflow.Outcome
	State    workflow.State
	ErrorMsg string
}

type runStore struct {
	mu   sync.Mutex
	runs map[string]*runRecord
}

func newStore() *runStore {
	return &runStore{runs: make(map[string]*runRecord)}
}

func (s *runStore) set(id string, rec *runRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = rec
}

func (s *runStore) get(id string) (runRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[id]
	if !ok {
		return runRecord{}, false
	}
	return *rec, true
}

func (s *runStore) finish(id string, state workflow.State, outcome workflow.Outcome, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[id]
	if !ok {
		return
	}
	rec.Running = false
	rec.State = state
	rec.Outcome = outcome
	if err != nil {
		rec.ErrorMsg = err.Error()
	}
}

func New(runner Runner, runTimeout time.Duration, logger *log.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("runner required")
	}
	if runTimeout <= 0 {
		runTimeout = 30 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:     runner,
		store:      newStore(),
		runTimeout: runTimeout,
		logger:     logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleRunCreate)
	mux.HandleFunc("/api/runs/", s.handleRunByID)
	return s.logMiddleware(mux)
}

// --- Handlers ---

type runCreateReq struct {
	Topic        string `json:"topic"`
	Tone         string `json:"tone"`
	Instructions string `json:"instructions"`
}

type checkResp struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

type runResp struct {
	RunID         string      `json:"run_id"`
	Status        string      `json:"status"`
	Outcome       string      `json:"outcome,omitempty"`
	Approval      string      `json:"approval,omitempty"`
	RevisionCount int         `json:"revision_count"`
	PostID        string      `json:"post_id,omitempty"`
	PostURL       string      `json:"post_url,omitempty"`
	Checks        []checkResp `json:"checks,omitempty"`
	Errors        []string    `json:"errors,omitempty"`
	Warnings      []string    `json:"warnings,omitempty"`
}

func (s *Server) handleRunCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req runCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	state := workflow.NewState(req.Topic, req.Tone, req.Instructions)
	s.store.set(id, &runRecord{ID: id, Running: true, State: state})

	// The run outlives the HTTP request; it gets its own context.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()
		final, outcome, err := s.runner.Run(ctx, state)
		if err != nil {
			s.logger.Printf("[server] run %s failed: %v", id, err)
		}
		s.store.finish(id, final, outcome, err)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(runResp{RunID: id, Status: "running"})
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	rec, ok := s.store.get(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	checks := make([]checkResp, 0, len(rec.State.Checks))
	for _, c := range rec.State.Checks {
		checks = append(checks, checkResp{Name: c.Name, Passed: c.Passed, Message: c.Message})
	}

	resp := runResp{
		RunID:         rec.ID,
		Status:        "completed",
		Approval:      string(rec.State.Approval),
		RevisionCount: rec.State.RevisionCount,
		PostID:        rec.State.PostID,
		PostURL:       rec.State.PostURL,
		Checks:        checks,
		Errors:        rec.State.Errors,
		Warnings:      rec.State.Warnings,
	}
	if rec.Running {
		resp.Status = "running"
	} else {
		resp.Outcome = string(rec.Outcome)
	}
	if rec.ErrorMsg != "" {
		resp.Errors = append(append([]string{}, resp.Errors...), rec.ErrorMsg)
	}
	writeJSON(w, resp)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("[server] %s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
