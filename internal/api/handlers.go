// Package api serves the loaded benchmark results over read-only HTTP
// endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/accelbench/specbench/internal/database"
)

// Reports is the read side of the store.
type Reports interface {
	ListAccuracy(ctx context.Context, f database.ReportFilter) ([]database.AccuracyRow, error)
	ListSDPerformances(ctx context.Context, f database.ReportFilter) ([]database.SDPerformanceRow, error)
	ListLoadTests(ctx context.Context, f database.ReportFilter) ([]database.LoadTestRow, error)
}

// Server holds dependencies for API handlers.
type Server struct {
	reports Reports
	log     logrus.FieldLogger
}

// NewServer creates a new API server.
func NewServer(reports Reports, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{reports: reports, log: log.WithField("component", "api")}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/v1/accuracy", s.handleListAccuracy)
	mux.HandleFunc("GET /api/v1/sd", s.handleListSD)
	mux.HandleFunc("GET /api/v1/loadtests", s.handleListLoadTests)
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// reportFilter reads ?model= and ?limit= from the request.
func reportFilter(r *http.Request) (database.ReportFilter, bool) {
	q := r.URL.Query()
	f := database.ReportFilter{Model: q.Get("model")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, false
		}
		f.Limit = n
	}
	return f, true
}

func (s *Server) handleListAccuracy(w http.ResponseWriter, r *http.Request) {
	f, ok := reportFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	rows, err := s.reports.ListAccuracy(r.Context(), f)
	if err != nil {
		s.log.WithError(err).Error("accuracy query failed")
		writeError(w, http.StatusInternalServerError, "accuracy query failed")
		return
	}
	if rows == nil {
		rows = []database.AccuracyRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleListSD(w http.ResponseWriter, r *http.Request) {
	f, ok := reportFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	rows, err := s.reports.ListSDPerformances(r.Context(), f)
	if err != nil {
		s.log.WithError(err).Error("sd query failed")
		writeError(w, http.StatusInternalServerError, "sd query failed")
		return
	}
	if rows == nil {
		rows = []database.SDPerformanceRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleListLoadTests(w http.ResponseWriter, r *http.Request) {
	f, ok := reportFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	rows, err := s.reports.ListLoadTests(r.Context(), f)
	if err != nil {
		s.log.WithError(err).Error("load test query failed")
		writeError(w, http.StatusInternalServerError, "load test query failed")
		return
	}
	if rows == nil {
		rows = []database.LoadTestRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
