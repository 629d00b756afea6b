package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwbudde/imagefidelity/internal/butteraugli"
	"github.com/cwbudde/imagefidelity/internal/colorspace"
	"github.com/cwbudde/imagefidelity/internal/heatmap"
	"github.com/cwbudde/imagefidelity/internal/metrics"
	"github.com/cwbudde/imagefidelity/internal/packed"
	"github.com/cwbudde/imagefidelity/internal/report"
	"github.com/cwbudde/imagefidelity/internal/worker"
)

// Server exposes the comparison pipeline over HTTP: jobs are created with a
// reference and a list of candidates, run asynchronously, and their reports
// and diffmap heatmaps can be fetched once complete.
type Server struct {
	jobManager *JobManager
	store      *report.FSStore
	addr       string
	server     *http.Server
}

// NewServer creates a new HTTP server persisting reports to store (may be
// nil to keep reports in memory only).
func NewServer(addr string, store *report.FSStore) *Server {
	return &Server{
		jobManager: NewJobManager(),
		store:      store,
		addr:       addr,
	}
}

// routes assembles the request handler with middleware applied.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)
	mux.HandleFunc("/api/v1/reports", s.handleListReports)
	mux.HandleFunc("/api/v1/reports/", s.handleReportsWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	slog.Info("starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	if len(parts) == 1 || parts[1] == "status" {
		s.handleGetJobStatus(w, r, jobID)
	} else if parts[1] == "report" {
		s.handleGetReport(w, r, jobID)
	} else if parts[1] == "diffmap.png" {
		s.handleGetDiffmap(w, r, jobID)
	} else {
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var config JobConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if config.RefPath == "" {
		http.Error(w, "refPath is required", http.StatusBadRequest)
		return
	}
	if len(config.Candidates) == 0 {
		http.Error(w, "candidates is required", http.StatusBadRequest)
		return
	}
	if config.Norm <= 0 {
		config.Norm = 3
	}
	if config.Colorspace != "" {
		if _, err := colorspace.ParseDescription(config.Colorspace); err != nil {
			http.Error(w, fmt.Sprintf("Invalid colorspace: %v", err), http.StatusBadRequest)
			return
		}
	}

	job := s.jobManager.CreateJob(config)

	go runJob(context.Background(), s.jobManager, s.store, job.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	var elapsed time.Duration
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime)
	} else {
		elapsed = time.Since(job.StartTime)
	}

	response := map[string]interface{}{
		"id":         job.ID,
		"state":      job.State,
		"config":     job.Config,
		"candidates": len(job.Config.Candidates),
		"completed":  len(job.Records),
		"elapsed":    elapsed.Seconds(),
		"startTime":  job.StartTime,
		"endTime":    job.EndTime,
		"error":      job.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetReport handles GET /api/v1/jobs/:id/report
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if job.State != StateCompleted {
		http.Error(w, "No results yet", http.StatusNotFound)
		return
	}

	rep := &report.Report{
		JobID:     job.ID,
		Reference: job.Config.RefPath,
		Created:   job.StartTime,
		Records:   job.Records,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}

// handleListReports handles GET /api/v1/reports, listing persisted reports.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		http.Error(w, "No report store configured", http.StatusNotFound)
		return
	}

	infos, err := s.store.List()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list reports: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

// handleReportsWithID handles GET and DELETE on /api/v1/reports/:id. Unlike
// the job report endpoint this serves persisted reports, so finished runs
// survive a server restart.
func (s *Server) handleReportsWithID(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	if jobID == "" || strings.Contains(jobID, "/") {
		http.Error(w, "Report ID required", http.StatusBadRequest)
		return
	}
	if s.store == nil {
		http.Error(w, "No report store configured", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rep, err := s.store.Load(jobID)
		if errors.Is(err, report.ErrNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to load report: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep)
	case http.MethodDelete:
		err := s.store.Delete(jobID)
		if errors.Is(err, report.ErrNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to delete report: %v", err), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetDiffmap handles GET /api/v1/jobs/:id/diffmap.png?candidate=N
// The difference map is recomputed on demand for the requested candidate and
// rendered as a false-color heatmap.
func (s *Server) handleGetDiffmap(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	idx := 0
	if v := r.URL.Query().Get("candidate"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &idx); err != nil {
			http.Error(w, "Invalid candidate index", http.StatusBadRequest)
			return
		}
	}
	if idx < 0 || idx >= len(job.Config.Candidates) {
		http.Error(w, "Candidate index out of range", http.StatusBadRequest)
		return
	}

	ref, err := packed.Load(job.Config.RefPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load reference: %v", err), http.StatusInternalServerError)
		return
	}
	cand, err := packed.Load(job.Config.Candidates[idx])
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load candidate: %v", err), http.StatusInternalServerError)
		return
	}
	if job.Config.Colorspace != "" {
		enc, err := colorspace.ParseDescription(job.Config.Colorspace)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid colorspace: %v", err), http.StatusBadRequest)
			return
		}
		ref.Encoding = &enc
		cand.Encoding = &enc
	}

	params := butteraugli.DefaultParams()
	if job.Config.Norm > 0 {
		params.Norm = job.Config.Norm
	}
	_, distmap, err := metrics.Distance(ref, cand, params, worker.New(job.Config.Workers))
	if err != nil {
		http.Error(w, fmt.Sprintf("Comparison failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if err := png.Encode(w, heatmap.Render(distmap, 0)); err != nil {
		slog.Error("failed to encode PNG", "error", err)
	}
}

// corsMiddleware adds CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
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

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
