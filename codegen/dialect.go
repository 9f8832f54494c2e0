package codegen

import "github.com/devtycoon/forge/graph"

// Capabilities describes what a target language lets the emitter do
type Capabilities struct {
	// SupportsClosures emits click/change bodies as inline handlers;
	// otherwise the body follows a comment annotation.
	SupportsClosures bool `json:"supports_closures"`
	// AsyncTimers wraps a timer's continuation in a callback block;
	// otherwise the timer sleeps and the path continues inline.
	AsyncTimers bool `json:"async_timers"`
	// RequiresEntry always emits the entry construct, even without an
	// event-start node.
	RequiresEntry bool   `json:"requires_entry"`
	CommentToken  string `json:"comment_token"`
	Indent        string `json:"indent"`
	// EmptyBlock is written into a block that would otherwise be empty
	EmptyBlock string `json:"empty_block,omitempty"`
}

// Block is a construct with a nested body. Any field may span several
// lines separated by \n; empty fields are skipped.
type Block struct {
	Open  string // at the enclosing level
	Head  string // first lines of the body
	Tail  string // last lines of the body
	Else  string // between branches, at the enclosing level
	Close string // at the enclosing level
}

// Condition is a logic-if comparison
type Condition struct {
	Variable string
	Operator string // ==, !=, > or <
	Value    graph.Value
}

// Program describes the file the body is assembled into
type Program struct {
	Name     string
	Features *Features
	// Wrapped is set when the body sits inside the entry construct
	Wrapped bool
}

// Dialect spells graph operations in one target language.
// Statement methods return "" for nothing to emit.
type Dialect interface {
	// Language returns the target name (e.g. "python")
	Language() string

	// FileExtension returns the output extension without a dot
	FileExtension() string

	Capabilities() Capabilities

	// Literal renders a node value: a number when it parses as one,
	// otherwise a quoted string
	Literal(v graph.Value) string

	Assign(variable string, v graph.Value) string
	Increment(variable string, delta graph.Value, subtract bool) string
	ReadVariable(variable string) string
	ReadInput(variable, prompt string) string
	PrintVariable(variable string) string
	Log(message string) string
	Alert(message string) string
	Spawn(name string) string
	PlaySound(frequency float64) string
	UIElement(kind graph.NodeType, key string, data graph.NodeData) string

	If(c Condition) Block
	Loop(counter string, count int) Block
	Timer(ms int) Block
	Handler(key string, event graph.Handle) Block

	Prelude(p Program) string
	Entry(p Program) Block
	Epilogue(p Program) string
}

// Features records what the emitted body uses, so a dialect's prelude can
// add exactly the imports, declarations and helpers needed
type Features struct {
	Variables  []string // in first-use order
	Elements   bool
	Printing   bool
	Alerts     bool
	Spawns     bool
	Sounds     bool
	Input      bool
	Sleep      bool
	Compare    bool
	Arithmetic bool
	Concat     bool // arithmetic with a non-numeric operand
	Loops      []string
	seen       map[string]bool
}

// UseVariable records a variable name once
func (f *Features) UseVariable(name string) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[name] {
		return
	}
	f.seen[name] = true
	f.Variables = append(f.Variables, name)
}

// HasVariables reports whether any variable is read or written
func (f *Features) HasVariables() bool { return len(f.Variables) > 0 }
