// Package api serves the read-only aggregation queries over HTTP as
// JSON, plus a rendered chart of activities per transportation mode.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/geolife.report/internal/db"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db *db.DB
}

func NewServer(database *db.DB) *Server {
	return &Server{db: database}
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

// LoggingMiddleware logs method, path, query, status, and duration
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
	mux.HandleFunc("/counts", s.showCounts)
	mux.HandleFunc("/activities/modes", s.showActivitiesPerMode)
	mux.HandleFunc("/activities/years", s.showActivitiesPerYear)
	mux.HandleFunc("/activities/invalid", s.showInvalidActivities)
	mux.HandleFunc("/users/summary", s.showUserSummaries)
	mux.HandleFunc("/users/near", s.showUsersNear)
	mux.HandleFunc("/trackpoints/box", s.showTrackPointsInBox)
	mux.HandleFunc("/ingest/latest", s.showLatestIngestRun)
	mux.HandleFunc("/charts/modes", s.renderModeChart)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		log.Printf("failed to encode error response: %v", err)
	}
}

func (s *Server) showCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.GetCollectionCounts()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, counts)
}

func (s *Server) showActivitiesPerMode(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.GetActivitiesPerMode()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, counts)
}

func (s *Server) showActivitiesPerYear(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.GetActivitiesPerYear()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, counts)
}

func (s *Server) showInvalidActivities(w http.ResponseWriter, r *http.Request) {
	invalid, err := s.db.GetInvalidActivities()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, map[string]any{
		"count":      len(invalid),
		"activities": invalid,
	})
}

func (s *Server) showUserSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.db.GetUserSummaries()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, summaries)
}

// showUsersNear handles /users/near?lat=..&lon=..&radius=<meters>
func (s *Server) showUsersNear(w http.ResponseWriter, r *http.Request) {
	lat, err := parseFloatParam(r, "lat")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := parseFloatParam(r, "lon")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	radius, err := parseFloatParam(r, "radius")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if radius <= 0 {
		s.writeJSONError(w, http.StatusBadRequest, "radius must be positive")
		return
	}

	users, err := s.db.GetUsersNear(lat, lon, radius)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, map[string]any{"users": users})
}

// showTrackPointsInBox handles
// /trackpoints/box?min_lat=..&max_lat=..&min_lon=..&max_lon=..&limit=N
func (s *Server) showTrackPointsInBox(w http.ResponseWriter, r *http.Request) {
	var box db.BoundingBox
	var err error
	if box.MinLat, err = parseFloatParam(r, "min_lat"); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if box.MaxLat, err = parseFloatParam(r, "max_lat"); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if box.MinLon, err = parseFloatParam(r, "min_lon"); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if box.MaxLon, err = parseFloatParam(r, "max_lon"); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 1000
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 10000 {
			limit = v
		}
	}

	points, err := s.db.GetTrackPointsInBox(box, limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, points)
}

func (s *Server) showLatestIngestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.db.LatestIngestRun()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.writeJSONError(w, http.StatusNotFound, "no ingest run recorded")
		return
	}
	s.writeJSON(w, run)
}

func parseFloatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, &missingParamError{name}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &badParamError{name, raw}
	}
	return v, nil
}

type missingParamError struct{ name string }

func (e *missingParamError) Error() string { return "missing query parameter " + e.name }

type badParamError struct{ name, value string }

func (e *badParamError) Error() string {
	return "invalid value " + strconv.Quote(e.value) + " for query parameter " + e.name
}
