// Package web serves the upload UI and the conversion API.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"courseical/internal/config"
	"courseical/internal/convert"
	"courseical/internal/expand"
	appLog "courseical/internal/log"
)

// maxUploadBytes bounds the multipart form we are willing to parse.
// Schedule exports are small; 16 MiB is generous.
const maxUploadBytes = 16 << 20

// Server provides the upload form, /health and the conversion API.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
// Blank username or password counts as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays unauthenticated for liveness probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="courseical", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer runs the HTTP server bound to cfg.Listen until ctx is
// canceled, then shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config) error {
	s := NewServer(cfg)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/convert", s.handleConvert)
	s.mux.HandleFunc("/", s.handleIndex)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// indexHTML is the entire upload UI. A static build is overkill for one
// form posting to one endpoint.
const indexHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Course Schedule to Calendar</title></head>
<body>
<h1>Course Schedule to Calendar</h1>
<p>Upload a course-schedule export (.xlsx) and download it as an .ics calendar file.</p>
<form method="POST" action="/api/convert" enctype="multipart/form-data">
<input type="file" name="file" accept=".xlsx,.xls" required>
<button type="submit">Convert to Calendar</button>
</form>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexHTML))
}

// convertResponse is the JSON response shape for /api/convert?format=json.
type convertResponse struct {
	convert.Summary
	Calendar string `json:"calendar"`
}

// handleConvert accepts a multipart upload (field "file") and responds with
// the generated calendar.
//
// POST /api/convert              -> .ics attachment, counts in X-* headers
// POST /api/convert?format=json  -> JSON summary with the calendar inline
//
// A workbook with no usable course rows is a 422 with a plain message, not
// a server error: bad exports are expected input.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing upload field \"file\"")
		return
	}
	defer file.Close()

	appLog.Info("convert upload received", "filename", header.Filename, "size", header.Size)

	data, sum, err := convert.Convert(file, s.cfg)
	if err != nil {
		if errors.Is(err, expand.ErrNoData) {
			writeError(w, http.StatusUnprocessableEntity,
				"no course data found in the file; please check the file format")
			return
		}
		appLog.Error("conversion failed", err, "filename", header.Filename)
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("could not read course data: %v", err))
		return
	}

	w.Header().Set("X-Courses-Found", strconv.Itoa(sum.CoursesFound))
	w.Header().Set("X-Courses-Scheduled", strconv.Itoa(sum.CoursesScheduled))
	w.Header().Set("X-Events-Created", strconv.Itoa(sum.EventsCreated))

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, convertResponse{
			Summary:  sum,
			Calendar: string(data),
		})
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="courses.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to encode JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
