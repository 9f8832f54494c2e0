package graph

import (
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/internal/idgen"
)

// Editor operations mutate a graph in place, the way the node editor does.
// Each returns an error instead of leaving the graph half-changed.

// AddNode appends a node of the given type at pos with the palette defaults
// and returns it. An empty id gets a generated one.
func (g *Graph) AddNode(id string, t NodeType, pos Position) (*Node, error) {
	if t == "" {
		return nil, errors.NewInvalidRequestError("node type is required")
	}
	if id == "" {
		id = idgen.MustNew(idgen.PrefixNode)
	}
	if _, exists := g.Node(id); exists {
		return nil, errors.NewConflictError("node %s already exists", id)
	}

	spec, _ := Spec(t)
	g.Nodes = append(g.Nodes, Node{ID: id, Type: t, Position: pos, Data: spec.Defaults})
	return &g.Nodes[len(g.Nodes)-1], nil
}

// UpdateNodeData replaces a node's payload
func (g *Graph) UpdateNodeData(id string, data NodeData) error {
	n, ok := g.Node(id)
	if !ok {
		return errors.NewNotFoundError("node %s", id)
	}
	if n.Type == TypeLogicIf && !IsValidOperator(data.Operator) {
		return errors.NewInvalidRequestError("operator %q is not one of ==, !=, >, <", data.Operator)
	}
	n.Data = data
	return nil
}

// MoveNode changes a node's editor position
func (g *Graph) MoveNode(id string, pos Position) error {
	n, ok := g.Node(id)
	if !ok {
		return errors.NewNotFoundError("node %s", id)
	}
	n.Position = pos
	return nil
}

// RemoveNode deletes a node and every connection touching it. It returns
// the number of connections removed.
func (g *Graph) RemoveNode(id string) (int, error) {
	idx := -1
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, errors.NewNotFoundError("node %s", id)
	}
	g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)

	kept := g.Connections[:0]
	removed := 0
	for _, c := range g.Connections {
		if c.FromNode == id || c.ToNode == id {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	g.Connections = kept
	return removed, nil
}

// Connect joins from's output handle to to. The endpoints must differ and
// both exist, the handle must be one the source type produces, and the
// handle must be free: one connection per (node, handle).
func (g *Graph) Connect(from string, handle Handle, to string) (*Connection, error) {
	if from == to {
		return nil, errors.NewInvalidRequestError("cannot connect node %s to itself", from)
	}
	src, ok := g.Node(from)
	if !ok {
		return nil, errors.NewNotFoundError("source node %s", from)
	}
	if _, ok := g.Node(to); !ok {
		return nil, errors.NewNotFoundError("target node %s", to)
	}

	if handle == "" {
		handle = HandleFlow
	}
	spec, _ := Spec(src.Type)
	if !spec.HasOutput(handle) {
		return nil, errors.NewInvalidRequestError("node type %s has no %q output", src.Type, handle)
	}

	for _, c := range g.Connections {
		if c.FromNode == from && c.SourceHandle == handle {
			return nil, errors.NewConflictError("handle %s.%s is already connected to %s", from, handle, c.ToNode)
		}
	}

	conn := Connection{
		ID:           idgen.MustNew(idgen.PrefixConnection),
		FromNode:     from,
		ToNode:       to,
		SourceHandle: handle,
	}
	g.Connections = append(g.Connections, conn)
	return &g.Connections[len(g.Connections)-1], nil
}

// Disconnect removes a connection by id
func (g *Graph) Disconnect(id string) error {
	for i, c := range g.Connections {
		if c.ID == id {
			g.Connections = append(g.Connections[:i], g.Connections[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("connection %s", id)
}
