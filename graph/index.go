package graph

type handleKey struct {
	node   string
	handle Handle
}

// Index is a read-only lookup view over a graph, built once per compile.
// It never mutates the graph it was built from.
type Index struct {
	graph    *Graph
	byID     map[string]*Node
	outgoing map[handleKey][]Connection
}

// NewIndex builds an index. For duplicate node ids the first declaration wins.
func NewIndex(g *Graph) *Index {
	idx := &Index{
		graph:    g,
		byID:     make(map[string]*Node, len(g.Nodes)),
		outgoing: make(map[handleKey][]Connection, len(g.Connections)),
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if _, dup := idx.byID[n.ID]; !dup {
			idx.byID[n.ID] = n
		}
	}
	for _, c := range g.Connections {
		key := handleKey{node: c.FromNode, handle: c.SourceHandle}
		idx.outgoing[key] = append(idx.outgoing[key], c)
	}
	return idx
}

// Graph returns the indexed graph
func (idx *Index) Graph() *Graph { return idx.graph }

// Node looks a node up by id
func (idx *Index) Node(id string) (*Node, bool) {
	n, ok := idx.byID[id]
	return n, ok
}

// Connections returns every connection leaving node on handle, in
// declaration order
func (idx *Index) Connections(node string, handle Handle) []Connection {
	return idx.outgoing[handleKey{node: node, handle: handle}]
}

// Next returns the node connected to node's handle. A free handle or a
// dangling target both report ok=false.
func (idx *Index) Next(node string, handle Handle) (*Node, bool) {
	conns := idx.outgoing[handleKey{node: node, handle: handle}]
	if len(conns) == 0 {
		return nil, false
	}
	return idx.Node(conns[0].ToNode)
}

// HasConnection reports whether anything leaves node on handle
func (idx *Index) HasConnection(node string, handle Handle) bool {
	return len(idx.outgoing[handleKey{node: node, handle: handle}]) > 0
}

// EntryNodes returns event-start nodes in declaration order
func (idx *Index) EntryNodes() []*Node {
	return idx.nodesWhere(func(n *Node) bool { return n.Type == TypeEventStart })
}

// UINodes returns UI declaration nodes in declaration order
func (idx *Index) UINodes() []*Node {
	return idx.nodesWhere(func(n *Node) bool {
		spec, _ := Spec(n.Type)
		return spec.IsUI()
	})
}

func (idx *Index) nodesWhere(match func(*Node) bool) []*Node {
	var out []*Node
	for i := range idx.graph.Nodes {
		n := &idx.graph.Nodes[i]
		if match(n) {
			out = append(out, n)
		}
	}
	return out
}

// successors returns every node reachable in one step through any of the
// node's declared output handles, plus flow for unknown types. Self
// connections are reported on their own and skipped here.
func (idx *Index) successors(n *Node) []string {
	spec, _ := Spec(n.Type)
	var out []string
	for _, h := range spec.Outputs {
		for _, c := range idx.Connections(n.ID, h) {
			if c.ToNode == n.ID {
				continue
			}
			if _, ok := idx.byID[c.ToNode]; ok {
				out = append(out, c.ToNode)
			}
		}
	}
	return out
}

// FindCycle returns the node ids of one cycle reachable through output
// handles, closed with its first id repeated, or nil when the graph is
// acyclic.
func (idx *Index) FindCycle() []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(idx.byID))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		stack = append(stack, id)
		n := idx.byID[id]
		for _, next := range idx.successors(n) {
			switch color[next] {
			case grey:
				for i, s := range stack {
					if s == next {
						cycle = append(append([]string(nil), stack[i:]...), next)
						return true
					}
				}
			case white:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for i := range idx.graph.Nodes {
		id := idx.graph.Nodes[i].ID
		if color[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}
