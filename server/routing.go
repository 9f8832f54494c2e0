package server

import (
	"bufio"
	"net"
	"net/http"
	"time"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/logger"
)

// setupHTTPRoutes builds the handler for every route
func (s *Server) setupHTTPRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Compiler
	mux.HandleFunc("GET /api/languages", s.HandleLanguages)      // Targets and their capabilities
	mux.HandleFunc("POST /api/compile", s.HandleCompile)         // {graph, language} -> source
	mux.HandleFunc("POST /api/validate", s.HandleValidate)       // graph -> report
	mux.HandleFunc("POST /api/preview", s.HandlePreviewDocument) // graph -> runtime HTML

	// Saved graphs and installed files
	mux.HandleFunc("GET /api/graphs", s.HandleListGraphs)
	mux.HandleFunc("POST /api/graphs", s.HandleCreateGraph)
	mux.HandleFunc("GET /api/graphs/{id}", s.HandleGetGraph)
	mux.HandleFunc("PUT /api/graphs/{id}", s.HandlePutGraph)
	mux.HandleFunc("DELETE /api/graphs/{id}", s.HandleDeleteGraph)
	mux.HandleFunc("POST /api/graphs/{id}/compile", s.HandleCompileGraph)
	mux.HandleFunc("GET /api/graphs/{id}/preview", s.HandlePreviewGraph)
	mux.HandleFunc("POST /api/graphs/{id}/install", s.HandleInstall)
	mux.HandleFunc("GET /api/graphs/{id}/files", s.HandleListFiles)
	mux.HandleFunc("GET /api/graphs/{id}/files/{name}", s.HandleGetFile)

	// Raids
	mux.HandleFunc("GET /api/raids", s.HandleListRaids)
	mux.HandleFunc("GET /api/raids/{id}", s.HandleGetRaid)
	mux.HandleFunc("GET /ws/raid", s.HandleRaidWebSocket)

	return s.metricsMiddleware(s.corsMiddleware(mux))
}

// corsMiddleware adds CORS headers to HTTP responses using configured allowed origins.
// Uses the same origin validation as WebSocket connections (server.allowed_origins config).
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware counts requests by route pattern and status, and caps
// request bodies
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		}
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		// The mux records the matched pattern on the request
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(r.Method, route, rec.statusCode)
		if !rec.hijacked {
			s.logger.Debugw("HTTP request",
				logger.FieldMethod, r.Method,
				logger.FieldPath, r.URL.Path,
				logger.FieldStatus, rec.statusCode,
				logger.FieldDurationMS, time.Since(start).Milliseconds(),
			)
		}
	})
}

// statusRecorder captures the response status. It passes Hijack through so
// the raid socket can upgrade.
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	hijacked    bool
}

func (rr *statusRecorder) WriteHeader(code int) {
	if !rr.wroteHeader {
		rr.statusCode = code
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *statusRecorder) Write(b []byte) (int, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	return rr.ResponseWriter.Write(b)
}

func (rr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	conn, rw, err := h.Hijack()
	if err == nil {
		rr.hijacked = true
		rr.statusCode = http.StatusSwitchingProtocols
	}
	return conn, rw, err
}

func (rr *statusRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}
