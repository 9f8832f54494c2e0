package graph

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Severity of a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes
const (
	CodeInvalidField     = "invalid_field"
	CodeDuplicateNode    = "duplicate_node"
	CodeSelfConnection   = "self_connection"
	CodeMultiEdge        = "multiple_edges_on_handle"
	CodeCycle            = "cycle"
	CodeUnsupportedLang  = "unsupported_language"
	CodeInvalidOperator  = "invalid_operator"
	CodeTooManyNodes     = "too_many_nodes"
	CodeUnknownType      = "unknown_node_type"
	CodeDanglingEndpoint = "dangling_connection"
	CodeInvalidHandle    = "invalid_handle"
	CodeDuplicateConnID  = "duplicate_connection_id"
	CodeNonNumericValue  = "non_numeric_value"
	CodeMissingVariable  = "missing_variable"
)

// Issue is one finding about a graph
type Issue struct {
	Severity     Severity `json:"severity"`
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	NodeID       string   `json:"node_id,omitempty"`
	ConnectionID string   `json:"connection_id,omitempty"`
	Handle       Handle   `json:"handle,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s", i.Severity, i.Code, i.Message)
}

// Report collects validation issues in discovery order
type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether there are no errors (warnings allowed)
func (r *Report) OK() bool {
	return len(r.Errors()) == 0
}

// Errors returns issues with error severity
func (r *Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns issues with warning severity
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r *Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Summary joins error messages into one line
func (r *Report) Summary() string {
	errs := r.Errors()
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func (r *Report) add(sev Severity, code, format string, args ...interface{}) *Issue {
	r.Issues = append(r.Issues, Issue{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)})
	return &r.Issues[len(r.Issues)-1]
}

// Options tunes validation
type Options struct {
	// MaxNodes rejects larger graphs; 0 = unlimited
	MaxNodes int
	// RequireLanguage rejects an empty language instead of allowing a
	// caller-supplied default
	RequireLanguage bool
}

// Validate checks a graph with default options
func Validate(g *Graph) *Report {
	return ValidateWith(g, Options{})
}

// ValidateWith checks structure and the authoring invariants the compiler
// relies on: unique ids, one connection per output handle and no cycles.
// It never mutates g.
func ValidateWith(g *Graph, opts Options) *Report {
	r := &Report{}

	if err := validate.Struct(g); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				r.add(SeverityError, CodeInvalidField, "%s", formatFieldError(fe))
			}
		} else {
			r.add(SeverityError, CodeInvalidField, "%v", err)
		}
	}

	if g.Language == "" {
		if opts.RequireLanguage {
			r.add(SeverityError, CodeUnsupportedLang, "language is required")
		}
	} else if !g.Language.Valid() {
		r.add(SeverityError, CodeUnsupportedLang, "language %q is not supported", g.Language)
	}

	if opts.MaxNodes > 0 && len(g.Nodes) > opts.MaxNodes {
		r.add(SeverityError, CodeTooManyNodes, "graph has %d nodes, limit is %d", len(g.Nodes), opts.MaxNodes)
	}

	validateNodes(g, r)
	idx := NewIndex(g)
	validateConnections(g, idx, r)

	if cycle := idx.FindCycle(); cycle != nil {
		issue := r.add(SeverityError, CodeCycle, "cycle through %s", strings.Join(cycle, " -> "))
		issue.NodeID = cycle[0]
	}

	return r
}

func validateNodes(g *Graph, r *Report) {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID != "" && seen[n.ID] {
			r.add(SeverityError, CodeDuplicateNode, "node id %s is used more than once", n.ID).NodeID = n.ID
		}
		seen[n.ID] = true

		if n.Type == "" {
			continue // reported by the struct tags
		}
		if !n.Type.Known() {
			r.add(SeverityWarning, CodeUnknownType, "node %s has unknown type %q and will compile to nothing", n.ID, n.Type).NodeID = n.ID
			continue
		}

		switch n.Type {
		case TypeLogicIf:
			if !IsValidOperator(n.Data.Operator) {
				r.add(SeverityError, CodeInvalidOperator, "node %s uses operator %q, expected ==, !=, > or <", n.ID, n.Data.Operator).NodeID = n.ID
			}
			if n.Data.VariableName == "" {
				r.add(SeverityWarning, CodeMissingVariable, "if node %s compares an unnamed variable", n.ID).NodeID = n.ID
			}
		case TypeVarSet, TypeMathAdd, TypeMathSub, TypeIOInput, TypeVarGet:
			if n.Data.VariableName == "" {
				r.add(SeverityWarning, CodeMissingVariable, "node %s has no variable name", n.ID).NodeID = n.ID
			}
		case TypeLogicTimer, TypeLogicLoop:
			if _, ok := n.Data.Value.Number(); !ok {
				r.add(SeverityWarning, CodeNonNumericValue, "node %s value %q is not a number, default used", n.ID, n.Data.Value.String()).NodeID = n.ID
			}
		}
	}
}

func validateConnections(g *Graph, idx *Index, r *Report) {
	connIDs := make(map[string]bool, len(g.Connections))
	reportedHandles := make(map[handleKey]bool)

	for _, c := range g.Connections {
		if c.ID != "" {
			if connIDs[c.ID] {
				r.add(SeverityWarning, CodeDuplicateConnID, "connection id %s is used more than once", c.ID).ConnectionID = c.ID
			}
			connIDs[c.ID] = true
		}

		if c.FromNode != "" && c.FromNode == c.ToNode {
			issue := r.add(SeverityError, CodeSelfConnection, "node %s is connected to itself", c.FromNode)
			issue.NodeID, issue.ConnectionID = c.FromNode, c.ID
			continue
		}

		src, srcOK := idx.Node(c.FromNode)
		_, dstOK := idx.Node(c.ToNode)
		if !srcOK || !dstOK {
			missing := c.FromNode
			if srcOK {
				missing = c.ToNode
			}
			issue := r.add(SeverityWarning, CodeDanglingEndpoint, "connection %s references missing node %s", c.ID, missing)
			issue.ConnectionID = c.ID
			continue
		}

		spec, known := Spec(src.Type)
		if known && !spec.HasOutput(c.SourceHandle) {
			issue := r.add(SeverityWarning, CodeInvalidHandle, "node %s (%s) has no %q output; connection %s is ignored", src.ID, src.Type, c.SourceHandle, c.ID)
			issue.NodeID, issue.ConnectionID, issue.Handle = src.ID, c.ID, c.SourceHandle
		}

		key := handleKey{node: c.FromNode, handle: c.SourceHandle}
		if conns := idx.Connections(c.FromNode, c.SourceHandle); len(conns) > 1 && !reportedHandles[key] {
			reportedHandles[key] = true
			issue := r.add(SeverityError, CodeMultiEdge, "handle %s.%s has %d connections, at most one is allowed", c.FromNode, c.SourceHandle, len(conns))
			issue.NodeID, issue.Handle = c.FromNode, c.SourceHandle
		}
	}
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
