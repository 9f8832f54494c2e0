// Package storage persists editor graphs and the files compiled from them.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/internal/idgen"
)

// GraphRecord is a saved graph. Graph is nil in listings.
type GraphRecord struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Language  string       `json:"language"`
	NodeCount int          `json:"node_count"`
	Graph     *graph.Graph `json:"graph,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Artifact is a compiled file installed for a graph
type Artifact struct {
	GraphID   string    `json:"graph_id"`
	Filename  string    `json:"filename"`
	Language  string    `json:"language"`
	Source    string    `json:"source,omitempty"`
	MaxDepth  int       `json:"max_depth"`
	CreatedAt time.Time `json:"created_at"`
}

// GraphStore provides storage operations for graphs and artifacts
type GraphStore struct {
	db *sql.DB
}

// NewGraphStore creates a new graph store
func NewGraphStore(db *sql.DB) *GraphStore {
	return &GraphStore{db: db}
}

// === Graph operations ===

// SaveGraph creates or replaces the graph stored under id. An empty id
// allocates a new one.
func (s *GraphStore) SaveGraph(ctx context.Context, id string, g *graph.Graph) (*GraphRecord, error) {
	if g == nil {
		return nil, errors.NewInvalidRequestError("graph is required")
	}
	if id == "" {
		var err error
		if id, err = idgen.New(idgen.PrefixGraph); err != nil {
			return nil, err
		}
	}

	doc, err := json.Marshal(g)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode graph %s", id)
	}

	now := time.Now().UTC()
	rec := &GraphRecord{
		ID:        id,
		Name:      g.Name,
		Language:  string(g.Language),
		NodeCount: len(g.Nodes),
		Graph:     g,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO graphs (id, name, language, document, node_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			language = excluded.language,
			document = excluded.document,
			node_count = excluded.node_count,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.Language, string(doc), rec.NodeCount,
		rec.CreatedAt.Format(time.RFC3339Nano),
		rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save graph %s", id)
	}

	// created_at survives an update; read it back
	var createdAt string
	err = s.db.QueryRowContext(ctx, `SELECT created_at FROM graphs WHERE id = ?`, id).Scan(&createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read back graph %s", id)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return rec, nil
}

// GetGraph retrieves a graph with its document
func (s *GraphStore) GetGraph(ctx context.Context, id string) (*GraphRecord, error) {
	query := `SELECT id, name, language, document, node_count, created_at, updated_at
	          FROM graphs WHERE id = ?`

	var rec GraphRecord
	var doc, createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.Language, &doc, &rec.NodeCount,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("graph %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get graph %s", id)
	}

	var g graph.Graph
	if err := json.Unmarshal([]byte(doc), &g); err != nil {
		return nil, errors.Wrapf(err, "graph %s has a corrupt document", id)
	}
	rec.Graph = &g
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &rec, nil
}

// ListGraphs returns every graph without its document, most recently
// updated first
func (s *GraphStore) ListGraphs(ctx context.Context) ([]*GraphRecord, error) {
	query := `SELECT id, name, language, node_count, created_at, updated_at
	          FROM graphs ORDER BY updated_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list graphs")
	}
	defer rows.Close()

	recs := []*GraphRecord{}
	for rows.Next() {
		var rec GraphRecord
		var createdAt, updatedAt string

		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Language, &rec.NodeCount,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan graph")
		}

		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate graphs")
	}

	return recs, nil
}

// DeleteGraph removes a graph and its artifacts
func (s *GraphStore) DeleteGraph(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete graph %s", id)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NewNotFoundError("graph %s not found", id)
	}

	return nil
}

// === Artifact operations ===

// PutArtifact installs a compiled file, replacing one with the same name
func (s *GraphStore) PutArtifact(ctx context.Context, a *Artifact) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO artifacts (graph_id, filename, language, source, max_depth, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(graph_id, filename) DO UPDATE SET
			language = excluded.language,
			source = excluded.source,
			max_depth = excluded.max_depth,
			created_at = excluded.created_at
	`

	_, err := s.db.ExecContext(ctx, query,
		a.GraphID, a.Filename, a.Language, a.Source, a.MaxDepth,
		a.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to install %s for graph %s", a.Filename, a.GraphID)
	}

	return nil
}

// GetArtifact retrieves one installed file with its source
func (s *GraphStore) GetArtifact(ctx context.Context, graphID, filename string) (*Artifact, error) {
	query := `SELECT graph_id, filename, language, source, max_depth, created_at
	          FROM artifacts WHERE graph_id = ? AND filename = ?`

	var a Artifact
	var createdAt string

	err := s.db.QueryRowContext(ctx, query, graphID, filename).Scan(
		&a.GraphID, &a.Filename, &a.Language, &a.Source, &a.MaxDepth, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("%s is not installed for graph %s", filename, graphID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s for graph %s", filename, graphID)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &a, nil
}

// ListArtifacts returns a graph's installed files without their source
func (s *GraphStore) ListArtifacts(ctx context.Context, graphID string) ([]*Artifact, error) {
	query := `SELECT graph_id, filename, language, max_depth, created_at
	          FROM artifacts WHERE graph_id = ? ORDER BY filename ASC`

	rows, err := s.db.QueryContext(ctx, query, graphID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list artifacts for graph %s", graphID)
	}
	defer rows.Close()

	out := []*Artifact{}
	for rows.Next() {
		var a Artifact
		var createdAt string
		if err := rows.Scan(&a.GraphID, &a.Filename, &a.Language, &a.MaxDepth, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan artifact")
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate artifacts")
	}

	return out, nil
}
