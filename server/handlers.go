package server

import (
	"net/http"
	"time"

	"github.com/devtycoon/forge/compiler"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
	grapherr "github.com/devtycoon/forge/graph/error"
	"github.com/devtycoon/forge/metrics"
	"github.com/devtycoon/forge/version"
)

// HandleHealth reports liveness with build information
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	versionInfo := version.Get()

	health := map[string]interface{}{
		"status":     "ok",
		"state":      stateString(s.getState()),
		"version":    versionInfo.Version,
		"commit":     versionInfo.CommitHash,
		"build_time": versionInfo.BuildTime,
		"clients":    s.clientCount(),
		"raids":      len(s.raids.Rooms()),
	}

	writeJSON(w, http.StatusOK, health)
}

// HandleLanguages lists compile targets with their capabilities
func (s *Server) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, compiler.Languages())
}

// HandleCompile compiles the posted graph
func (s *Server) HandleCompile(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Graph == nil {
		s.writeError(w, r, errors.NewInvalidRequestError("graph is required"))
		return
	}

	resp, err := s.compile(req.Graph, req.Language)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleValidate returns the validation report for the posted graph. An
// invalid graph is still a 200; the report says why.
func (s *Server) HandleValidate(w http.ResponseWriter, r *http.Request) {
	g, err := readGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report := s.compiler.Check(g, graph.Language(r.URL.Query().Get("language")))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     report.OK(),
		"issues": nonNilIssues(report.Issues),
		"stats":  g.Stats(),
	})
}

// HandlePreviewDocument renders the posted graph as a runtime page
func (s *Server) HandlePreviewDocument(w http.ResponseWriter, r *http.Request) {
	g, err := readGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePreview(w, r, g)
}

// compile runs the compiler and records the outcome
func (s *Server) compile(g *graph.Graph, language graph.Language) (*CompileResponse, error) {
	start := time.Now()
	out, err := s.compiler.CompileGraph(g, language)

	label := string(language)
	if label == "" {
		label = string(g.Language)
	}
	if out != nil {
		label = out.Language
	}
	s.metrics.ObserveCompile(metricLanguage(label), compileResult(err), time.Since(start))

	if err != nil {
		return nil, err
	}
	return &CompileResponse{
		Language: out.Language,
		Filename: out.Filename,
		Source:   out.Source,
		Stats:    out.Stats,
		Warnings: s.compiler.Check(g, graph.Language(out.Language)).Warnings(),
	}, nil
}

func (s *Server) writePreview(w http.ResponseWriter, r *http.Request, g *graph.Graph) {
	start := time.Now()
	page, err := s.compiler.CompileToRuntime(g)
	s.metrics.ObserveCompile(compiler.RuntimeLanguage, compileResult(err), time.Since(start))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// The page runs untrusted graph code; keep it away from this origin
	w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// compileResult classifies a compile error for metrics
func compileResult(err error) string {
	if err == nil {
		return metrics.ResultOK
	}
	if ge, ok := grapherr.As(err); ok && ge.Category == grapherr.CategoryValidation {
		return metrics.ResultInvalid
	}
	return metrics.ResultError
}

// metricLanguage keeps label cardinality bounded
func metricLanguage(name string) string {
	if _, ok := compiler.Dialect(name); ok {
		return name
	}
	return "unknown"
}

func nonNilIssues(issues []graph.Issue) []graph.Issue {
	if issues == nil {
		return []graph.Issue{}
	}
	return issues
}
