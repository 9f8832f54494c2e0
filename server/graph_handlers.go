package server

import (
	"net/http"

	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/logger"
	"github.com/devtycoon/forge/storage"
)

// Saved graph routes:
//
//	GET    /api/graphs                    - List graphs
//	POST   /api/graphs                    - Save a new graph
//	GET    /api/graphs/{id}               - Get a graph with its document
//	PUT    /api/graphs/{id}               - Replace a graph
//	DELETE /api/graphs/{id}               - Delete a graph and its files
//	POST   /api/graphs/{id}/compile       - Compile (?language= overrides the graph's)
//	GET    /api/graphs/{id}/preview       - Runtime page
//	POST   /api/graphs/{id}/install       - Compile and store main.<ext>
//	GET    /api/graphs/{id}/files         - Installed files
//	GET    /api/graphs/{id}/files/{name}  - One installed file, as text

func (s *Server) HandleListGraphs(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListGraphs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) HandleCreateGraph(w http.ResponseWriter, r *http.Request) {
	s.saveGraph(w, r, "", http.StatusCreated)
}

func (s *Server) HandlePutGraph(w http.ResponseWriter, r *http.Request) {
	s.saveGraph(w, r, r.PathValue("id"), http.StatusOK)
}

// saveGraph stores a graph that decodes and has no validation errors.
// Warnings do not block saving.
func (s *Server) saveGraph(w http.ResponseWriter, r *http.Request, id string, status int) {
	g, err := readGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if report := s.compiler.Check(g, ""); !report.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"ok":     false,
			"issues": report.Issues,
		})
		return
	}

	rec, err := s.store.SaveGraph(r.Context(), id, g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Infow("Graph saved",
		logger.FieldGraphID, rec.ID,
		logger.FieldNodes, rec.NodeCount,
	)
	writeJSON(w, status, rec)
}

func (s *Server) HandleGetGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) HandleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteGraph(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Infow("Graph deleted", logger.FieldGraphID, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleCompileGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.compile(rec.Graph, graph.Language(r.URL.Query().Get("language")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) HandlePreviewGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePreview(w, r, rec.Graph)
}

// HandleInstall compiles a saved graph and stores the file under its
// conventional name, replacing an earlier install for that language
func (s *Server) HandleInstall(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := s.store.GetGraph(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.compile(rec.Graph, graph.Language(r.URL.Query().Get("language")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	artifact := &storage.Artifact{
		GraphID:  id,
		Filename: resp.Filename,
		Language: resp.Language,
		Source:   resp.Source,
		MaxDepth: resp.Stats.MaxDepth,
	}
	if err := s.store.PutArtifact(r.Context(), artifact); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Infow("Graph installed",
		logger.FieldGraphID, id,
		logger.FieldLanguage, resp.Language,
		logger.FieldFile, resp.Filename,
	)
	writeJSON(w, http.StatusCreated, InstallResponse{
		GraphID:  id,
		Filename: resp.Filename,
		Language: resp.Language,
		Stats:    resp.Stats,
	})
}

func (s *Server) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.GetGraph(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	files, err := s.store.ListArtifacts(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) HandleGetFile(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetArtifact(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Language", a.Language)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(a.Source))
}
