// Package api serves the run history over HTTP: JSON listings and an
// interactive chart per arc run.
package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/profiler.report/internal/db"
	"github.com/banshee-data/profiler.report/internal/httputil"
	"github.com/banshee-data/profiler.report/internal/plotting"
	"github.com/banshee-data/profiler.report/internal/qatrack"
)

// ANSI escape codes for log output
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// defaultRunLimit caps /api/runs when no limit is given.
const defaultRunLimit = 50

type Server struct {
	db *db.DB
}

func NewServer(db *db.DB) *Server {
	return &Server{db: db}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/{id}", s.showRun)
	mux.HandleFunc("/api/runs/{id}/frames", s.listFrames)
	mux.HandleFunc("/runs/{id}/chart", s.arcChart)
	return mux
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	limit := defaultRunLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSONOK(w, runs)
}

type runDetail struct {
	db.Run
	Metrics qatrack.Results `json:"metrics"`
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id := r.PathValue("id")
	run, err := s.db.GetRun(id)
	if err != nil {
		httputil.WriteLookupError(w, err, db.ErrRunNotFound)
		return
	}
	metrics, err := s.db.RunMetrics(id)
	if err != nil {
		httputil.WriteLookupError(w, err, db.ErrRunNotFound)
		return
	}
	httputil.WriteJSONOK(w, runDetail{Run: *run, Metrics: metrics})
}

type frameJSON struct {
	Frame     int     `json:"frame"`
	Status    string  `json:"status"`
	AverageAB float64 `json:"avg_ab"`
	AverageGT float64 `json:"avg_gt"`
	MaxAB     float64 `json:"max_ab"`
	MaxGT     float64 `json:"max_gt"`
}

func (s *Server) listFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	frames, err := s.db.ArcFrames(r.PathValue("id"))
	if err != nil {
		httputil.WriteLookupError(w, err, db.ErrRunNotFound)
		return
	}
	out := make([]frameJSON, 0, len(frames))
	for _, f := range frames {
		out = append(out, frameJSON{
			Frame:     f.Frame,
			Status:    string(f.Status),
			AverageAB: f.Result.AverageAB,
			AverageGT: f.Result.AverageGT,
			MaxAB:     f.Result.MaxAB,
			MaxGT:     f.Result.MaxGT,
		})
	}
	httputil.WriteJSONOK(w, out)
}

func (s *Server) arcChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")
	run, err := s.db.GetRun(id)
	if errors.Is(err, db.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run.Kind != db.RunArc {
		http.Error(w, fmt.Sprintf("run %s is a %s run; charts exist for arc runs only", id, run.Kind), http.StatusBadRequest)
		return
	}
	rep, err := s.db.ArcReport(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := plotting.RenderArcChart(w, run.InputPath, rep); err != nil {
		log.Printf("api: render chart %s: %v", id, err)
	}
}
