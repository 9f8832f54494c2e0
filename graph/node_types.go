package graph

// NodeType tags a node's behaviour
type NodeType string

const (
	TypeEventStart  NodeType = "event-start"
	TypeUIButton    NodeType = "ui-button"
	TypeUIText      NodeType = "ui-text"
	TypeUIInput     NodeType = "ui-input"
	TypeLogicIf     NodeType = "logic-if"
	TypeLogicTimer  NodeType = "logic-timer"
	TypeLogicLoop   NodeType = "logic-loop"
	TypeVarSet      NodeType = "var-set"
	TypeMathAdd     NodeType = "math-add"
	TypeMathSub     NodeType = "math-sub"
	TypeActionAlert NodeType = "action-alert"
	TypeActionLog   NodeType = "action-log"
	TypeActionSpawn NodeType = "action-spawn"
	TypeActionSound NodeType = "action-sound"
	TypeIOPrint     NodeType = "io-print"
	TypeVarGet      NodeType = "var-get"
	TypeIOInput     NodeType = "io-input"
)

// Category groups node types in the editor palette
type Category string

const (
	CategoryEvent  Category = "event"
	CategoryUI     Category = "ui"
	CategoryLogic  Category = "logic"
	CategoryData   Category = "data"
	CategoryAction Category = "action"
	CategoryIO     Category = "io"
)

// TypeSpec describes a node type's ports and palette defaults
type TypeSpec struct {
	Type     NodeType `json:"type"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Outputs  []Handle `json:"outputs"`
	// Continuation is the handle straight-line emission follows after this
	// node; empty when the node ends its path (branch, loop, timer).
	Continuation Handle   `json:"continuation,omitempty"`
	Defaults     NodeData `json:"defaults"`
}

// IsUI reports whether the type declares a UI element
func (s TypeSpec) IsUI() bool { return s.Category == CategoryUI }

// HasOutput reports whether h is one of the type's ports
func (s TypeSpec) HasOutput(h Handle) bool {
	for _, out := range s.Outputs {
		if out == h {
			return true
		}
	}
	return false
}

var flowOnly = []Handle{HandleFlow}

var typeSpecs = []TypeSpec{
	{Type: TypeEventStart, Label: "On Start", Category: CategoryEvent, Color: "#22c55e", Outputs: flowOnly, Continuation: HandleFlow},
	{Type: TypeUIButton, Label: "Button", Category: CategoryUI, Color: "#3b82f6", Outputs: []Handle{HandleClick, HandleFlow}, Continuation: HandleFlow,
		Defaults: NodeData{Label: "Click me"}},
	{Type: TypeUIText, Label: "Text", Category: CategoryUI, Color: "#3b82f6", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{Value: StringValue("Hello")}},
	{Type: TypeUIInput, Label: "Input", Category: CategoryUI, Color: "#3b82f6", Outputs: []Handle{HandleChange, HandleFlow}, Continuation: HandleFlow,
		Defaults: NodeData{Label: "Enter text"}},
	{Type: TypeLogicIf, Label: "If", Category: CategoryLogic, Color: "#eab308", Outputs: []Handle{HandleTrue, HandleFalse},
		Defaults: NodeData{VariableName: "x", Operator: OpEqual, Value: NumberValue(0)}},
	{Type: TypeLogicTimer, Label: "Wait", Category: CategoryLogic, Color: "#eab308", Outputs: flowOnly,
		Defaults: NodeData{Value: NumberValue(1000)}},
	{Type: TypeLogicLoop, Label: "Repeat", Category: CategoryLogic, Color: "#eab308", Outputs: []Handle{HandleLoop, HandleDone},
		Defaults: NodeData{Value: NumberValue(3)}},
	{Type: TypeVarSet, Label: "Set Variable", Category: CategoryData, Color: "#a855f7", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{VariableName: "x", Value: NumberValue(0)}},
	{Type: TypeVarGet, Label: "Get Variable", Category: CategoryData, Color: "#a855f7", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{VariableName: "x"}},
	{Type: TypeMathAdd, Label: "Add", Category: CategoryData, Color: "#a855f7", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{VariableName: "x", Value: NumberValue(1)}},
	{Type: TypeMathSub, Label: "Subtract", Category: CategoryData, Color: "#a855f7", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{VariableName: "x", Value: NumberValue(1)}},
	{Type: TypeActionAlert, Label: "Alert", Category: CategoryAction, Color: "#ef4444", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{Value: StringValue("Alert!")}},
	{Type: TypeActionLog, Label: "Log", Category: CategoryAction, Color: "#ef4444", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{Value: StringValue("Hello, world")}},
	{Type: TypeActionSpawn, Label: "Spawn", Category: CategoryAction, Color: "#ef4444", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{Label: "enemy"}},
	{Type: TypeActionSound, Label: "Play Sound", Category: CategoryAction, Color: "#ef4444", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{Value: NumberValue(440)}},
	{Type: TypeIOPrint, Label: "Print", Category: CategoryIO, Color: "#14b8a6", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{VariableName: "x"}},
	{Type: TypeIOInput, Label: "Read Input", Category: CategoryIO, Color: "#14b8a6", Outputs: flowOnly, Continuation: HandleFlow,
		Defaults: NodeData{VariableName: "answer", Label: "Your answer?"}},
}

var specByType = func() map[NodeType]TypeSpec {
	m := make(map[NodeType]TypeSpec, len(typeSpecs))
	for _, s := range typeSpecs {
		m[s.Type] = s
	}
	return m
}()

// unknownSpec applies to types outside the closed set: no-op emission
// that still follows flow
var unknownSpec = TypeSpec{Label: "Unknown", Outputs: flowOnly, Continuation: HandleFlow}

// Spec returns the type's spec. Unknown types get a flow-only spec and ok=false.
func Spec(t NodeType) (TypeSpec, bool) {
	if s, ok := specByType[t]; ok {
		return s, true
	}
	s := unknownSpec
	s.Type = t
	return s, false
}

// Known reports whether t is in the closed node vocabulary
func (t NodeType) Known() bool {
	_, ok := specByType[t]
	return ok
}

// Palette returns every node type spec in palette order
func Palette() []TypeSpec {
	return append([]TypeSpec(nil), typeSpecs...)
}
