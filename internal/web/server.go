// Package web serves the diary, capture workbench and catalog as a JSON API.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/nutriscan/internal/photostore"
	"github.com/vbonduro/nutriscan/internal/service"
)

// Deps are the services a Server exposes. Location decides which calendar
// day is "today"; Now defaults to time.Now.
type Deps struct {
	Diary     *service.Diary
	Capture   *service.Capture
	Catalog   *service.Catalog
	Dashboard *service.Dashboard
	Photos    photostore.PhotoStore
	Location  *time.Location
	Now       func() time.Time
}

type Server struct {
	diary     *service.Diary
	capture   *service.Capture
	catalog   *service.Catalog
	dashboard *service.Dashboard
	photos    photostore.PhotoStore
	location  *time.Location
	now       func() time.Time
	mux       *http.ServeMux
	logger    *slog.Logger
}

func NewServer(deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		diary:     deps.Diary,
		capture:   deps.Capture,
		catalog:   deps.Catalog,
		dashboard: deps.Dashboard,
		photos:    deps.Photos,
		location:  deps.Location,
		now:       deps.Now,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /api/diary", s.handleDiary)

	s.mux.HandleFunc("GET /api/entries", s.handleListEntries)
	s.mux.HandleFunc("PATCH /api/entries/{id}", s.handleUpdateEntry)
	s.mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)
	s.mux.HandleFunc("GET /api/entries/{id}/photo", s.handleEntryPhoto)

	s.mux.HandleFunc("GET /api/capture", s.handleGetCapture)
	s.mux.HandleFunc("DELETE /api/capture", s.handleResetCapture)
	s.mux.HandleFunc("POST /api/capture/image", s.handleCaptureImage)
	s.mux.HandleFunc("POST /api/capture/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/capture/text", s.handleAnalyzeText)
	s.mux.HandleFunc("POST /api/capture/products", s.handlePickProduct)
	s.mux.HandleFunc("PATCH /api/capture/items/{index}", s.handleEditItem)
	s.mux.HandleFunc("DELETE /api/capture/items/{index}", s.handleRemoveItem)
	s.mux.HandleFunc("POST /api/capture/recipe", s.handleSuggestRecipe)
	s.mux.HandleFunc("POST /api/capture/save", s.handleSaveMeal)

	s.mux.HandleFunc("GET /api/products", s.handleListProducts)
	s.mux.HandleFunc("PUT /api/products", s.handleSaveProduct)
	s.mux.HandleFunc("DELETE /api/products/{name}", s.handleRemoveProduct)
	s.mux.HandleFunc("POST /api/products/estimate", s.handleEstimateProduct)
}

// today is the current time in the configured location.
func (s *Server) today() time.Time {
	return s.now().In(s.location)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves until the server fails. Estimator calls can take a
// while, hence the long write timeout.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
