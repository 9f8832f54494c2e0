// Package javascript spells graphs as browser JavaScript.
package javascript

import (
	"fmt"
	"strings"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/graph"
)

// Dialect implements codegen.Dialect for JavaScript
type Dialect struct{}

// New creates a JavaScript dialect
func New() *Dialect {
	return &Dialect{}
}

// Language returns "javascript"
func (Dialect) Language() string { return string(graph.LangJavaScript) }

// FileExtension returns "js"
func (Dialect) FileExtension() string { return "js" }

func (Dialect) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		SupportsClosures: true,
		AsyncTimers:      true,
		CommentToken:     "//",
		Indent:           "  ",
	}
}

// Quote renders a JavaScript string literal
func Quote(s string) string {
	q := codegen.Quote(s, codegen.EscapeHex)
	q = strings.ReplaceAll(q, "\u2028", `\u2028`)
	return strings.ReplaceAll(q, "\u2029", `\u2029`)
}

// Var is the registry lookup for a variable
func Var(name string) string {
	return "variables[" + Quote(name) + "]"
}

// Element is the registry lookup for a UI element
func Element(key string) string {
	return "elements[" + Quote(key) + "]"
}

func (Dialect) Literal(v graph.Value) string {
	return codegen.NumberOrQuote(v, Quote)
}

func (d Dialect) Assign(name string, v graph.Value) string {
	return fmt.Sprintf("%s = %s;", Var(name), d.Literal(v))
}

func (d Dialect) Increment(name string, delta graph.Value, subtract bool) string {
	op, zero := "+", "0"
	if subtract {
		op = "-"
	}
	if _, ok := delta.Number(); !ok {
		zero = `""`
	}
	return fmt.Sprintf("%s = (%s || %s) %s %s;", Var(name), Var(name), zero, op, d.Literal(delta))
}

func (Dialect) ReadVariable(name string) string {
	return fmt.Sprintf("var %s = %s;", codegen.Identifier(name), Var(name))
}

func (Dialect) ReadInput(name, prompt string) string {
	return fmt.Sprintf("%s = prompt(%s);", Var(name), Quote(prompt))
}

func (Dialect) PrintVariable(name string) string {
	return fmt.Sprintf("console.log(%s);", Var(name))
}

func (Dialect) Log(msg string) string {
	return fmt.Sprintf("console.log(%s);", Quote(msg))
}

func (Dialect) Alert(msg string) string {
	return fmt.Sprintf("alert(%s);", Quote(msg))
}

func (Dialect) Spawn(name string) string {
	return fmt.Sprintf("spawn(%s);", Quote(name))
}

func (Dialect) PlaySound(freq float64) string {
	return fmt.Sprintf("playTone(%s);", graph.FormatNumber(freq))
}

// ElementKind is the element type name for a UI node
func ElementKind(t graph.NodeType) string {
	return strings.TrimPrefix(string(t), "ui-")
}

// ElementText is the visible text of a UI node: a text node shows its
// value, buttons and inputs their label
func ElementText(t graph.NodeType, data graph.NodeData) string {
	if t == graph.TypeUIText {
		if s := data.Value.String(); s != "" {
			return s
		}
	}
	return data.Label
}

func (Dialect) UIElement(t graph.NodeType, key string, data graph.NodeData) string {
	return fmt.Sprintf("%s = { type: %s, label: %s, color: %s };",
		Element(key), Quote(ElementKind(t)), Quote(ElementText(t, data)), Quote(data.Color))
}

func (d Dialect) If(c codegen.Condition) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("if (%s %s %s) {", Var(c.Variable), c.Operator, d.Literal(c.Value)),
		Else:  "} else {",
		Close: "}",
	}
}

func (Dialect) Loop(counter string, count int) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("for (let %s = 0; %s < %d; %s++) {", counter, counter, count, counter),
		Close: "}",
	}
}

func (Dialect) Timer(ms int) codegen.Block {
	return codegen.Block{
		Open:  "setTimeout(() => {",
		Close: fmt.Sprintf("}, %d);", ms),
	}
}

func (Dialect) Handler(key string, event graph.Handle) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("%s.on%s = () => {", Element(key), event),
		Close: "};",
	}
}

func (Dialect) Prelude(p codegen.Program) string {
	f := p.Features
	var lines []string
	if f.HasVariables() {
		lines = append(lines, "const variables = {};")
	}
	if f.Elements {
		lines = append(lines, "const elements = {};")
	}
	if f.Spawns {
		lines = append(lines, `function spawn(name) { console.log("spawn", name); }`)
	}
	if f.Sounds {
		lines = append(lines, `function playTone(freq) { console.log("tone", freq); }`)
	}
	if len(lines) == 0 {
		return ""
	}
	return codegen.Header("//", p.Name) + "\n" + strings.Join(lines, "\n")
}

func (Dialect) Entry(codegen.Program) codegen.Block {
	return codegen.Block{Open: "window.onload = () => {", Close: "};"}
}

func (Dialect) Epilogue(codegen.Program) string { return "" }
