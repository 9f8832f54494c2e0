package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
	grapherr "github.com/devtycoon/forge/graph/error"
	"github.com/devtycoon/forge/logger"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// writeError writes err as a categorised JSON error. Uncategorised errors
// are classified by toGraphError.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ge := toGraphError(err)
	status := ge.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("Request failed",
			append(ge.ToLogFields(), logger.FieldMethod, r.Method, logger.FieldPath, r.URL.Path)...)
	} else {
		s.logger.Debugw("Request rejected",
			logger.FieldMethod, r.Method,
			logger.FieldPath, r.URL.Path,
			logger.FieldStatus, status,
			logger.FieldError, ge.Error())
	}
	_ = writeJSON(w, status, ge.ToResponse())
}

// readJSON decodes a JSON request body
func readJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	return nil
}

// readGraph decodes a graph document as JSON or YAML, by content type
func readGraph(r *http.Request) (*graph.Graph, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, decodeError(err)
	}
	g, err := graph.DecodeBytes(body, graph.FormatForContentType(r.Header.Get("Content-Type")))
	if err != nil {
		return nil, decodeError(err)
	}
	return g, nil
}

func decodeError(err error) error {
	return grapherr.New(grapherr.CategoryValidation, err, "The request body is not a valid graph document").
		WithSubcategory(grapherr.SubcategoryValidationDecode)
}
