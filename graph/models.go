package graph

// Graph is a visual program: typed nodes joined by labelled connections,
// compiled for one target language.
type Graph struct {
	Name        string       `json:"name" yaml:"name" validate:"max=200"`
	Language    Language     `json:"language" yaml:"language"`
	Nodes       []Node       `json:"nodes" yaml:"nodes" validate:"dive"`
	Connections []Connection `json:"connections" yaml:"connections" validate:"dive"`
}

// Node is one unit of behaviour or UI
type Node struct {
	ID       string   `json:"id" yaml:"id" validate:"required,max=128"`
	Type     NodeType `json:"type" yaml:"type" validate:"required"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// Position is editor layout only; it never affects compiled output
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData is the per-node payload, interpreted by node type
type NodeData struct {
	Label        string `json:"label,omitempty" yaml:"label,omitempty"`
	Value        Value  `json:"value,omitzero" yaml:"value,omitempty"`
	VariableName string `json:"variableName,omitempty" yaml:"variableName,omitempty"`
	Operator     string `json:"operator,omitempty" yaml:"operator,omitempty"`
	ElementID    string `json:"elementID,omitempty" yaml:"elementID,omitempty"`
	Color        string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Connection is a directed edge from a node's output handle to another node
type Connection struct {
	ID           string `json:"id" yaml:"id"`
	FromNode     string `json:"fromNode" yaml:"fromNode" validate:"required"`
	ToNode       string `json:"toNode" yaml:"toNode" validate:"required"`
	SourceHandle Handle `json:"sourceHandle" yaml:"sourceHandle"`
}

// Language is a compile target
type Language string

const (
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangCPP        Language = "cpp"
	LangRust       Language = "rust"
	LangGo         Language = "go"
	LangSQL        Language = "sql"
	LangLua        Language = "lua"
)

// Languages lists every compile target in display order
var Languages = []Language{LangJavaScript, LangPython, LangCPP, LangRust, LangGo, LangSQL, LangLua}

// Valid reports whether l is one of the seven targets
func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

func (l Language) String() string { return string(l) }

// Handle names a node output port
type Handle string

const (
	HandleFlow   Handle = "flow"
	HandleTrue   Handle = "true"
	HandleFalse  Handle = "false"
	HandleClick  Handle = "click"
	HandleChange Handle = "change"
	HandleLoop   Handle = "loop"
	HandleDone   Handle = "done"
)

// Comparison operators accepted by logic-if
const (
	OpEqual    = "=="
	OpNotEqual = "!="
	OpGreater  = ">"
	OpLess     = "<"
)

// EffectiveOperator returns the node's operator, defaulting to ==
func (d NodeData) EffectiveOperator() string {
	if d.Operator == "" {
		return OpEqual
	}
	return d.Operator
}

// IsValidOperator reports whether op is a supported comparison
func IsValidOperator(op string) bool {
	switch op {
	case "", OpEqual, OpNotEqual, OpGreater, OpLess:
		return true
	}
	return false
}

// ElementKey is the UI registry key: elementID, falling back to the node id
func (n Node) ElementKey() string {
	if n.Data.ElementID != "" {
		return n.Data.ElementID
	}
	return n.ID
}

// Clone returns a deep copy so editors never alias a caller's slices
func (g *Graph) Clone() *Graph {
	out := &Graph{Name: g.Name, Language: g.Language}
	out.Nodes = append([]Node(nil), g.Nodes...)
	out.Connections = append([]Connection(nil), g.Connections...)
	return out
}

// Node returns the first node with the given id
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Stats counts nodes and connections
type Stats struct {
	TotalNodes int `json:"total_nodes"`
	TotalEdges int `json:"total_edges"`
}

// Stats returns node and connection counts
func (g *Graph) Stats() Stats {
	return Stats{TotalNodes: len(g.Nodes), TotalEdges: len(g.Connections)}
}
