// Package python spells graphs as a Python 3 script.
package python

import (
	"fmt"
	"strings"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/graph"
)

// Dialect implements codegen.Dialect for Python
type Dialect struct{}

// New creates a Python dialect
func New() *Dialect {
	return &Dialect{}
}

// Language returns "python"
func (Dialect) Language() string { return string(graph.LangPython) }

// FileExtension returns "py"
func (Dialect) FileExtension() string { return "py" }

func (Dialect) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		CommentToken: "#",
		Indent:       "    ",
		EmptyBlock:   "pass",
	}
}

func quote(s string) string { return codegen.Quote(s, codegen.EscapeHex) }

func target(name string) string { return "variables[" + quote(name) + "]" }

// read looks a variable up with a default matching the other operand
func read(name string, numeric bool) string {
	def := `""`
	if numeric {
		def = "0"
	}
	return fmt.Sprintf("variables.get(%s, %s)", quote(name), def)
}

func (Dialect) Literal(v graph.Value) string {
	return codegen.NumberOrQuote(v, quote)
}

func (d Dialect) Assign(name string, v graph.Value) string {
	return fmt.Sprintf("%s = %s", target(name), d.Literal(v))
}

func (d Dialect) Increment(name string, delta graph.Value, subtract bool) string {
	op := "+"
	if subtract {
		op = "-"
	}
	if _, ok := delta.Number(); ok {
		return fmt.Sprintf("%s = %s %s %s", target(name), read(name, true), op, d.Literal(delta))
	}
	return fmt.Sprintf("%s = str(%s) %s %s", target(name), read(name, false), op, d.Literal(delta))
}

func (Dialect) ReadVariable(name string) string {
	return fmt.Sprintf("%s = variables.get(%s)", codegen.Identifier(name), quote(name))
}

func (Dialect) ReadInput(name, prompt string) string {
	return fmt.Sprintf("%s = input(%s)", target(name), quote(prompt))
}

func (Dialect) PrintVariable(name string) string {
	return fmt.Sprintf("print(variables.get(%s))", quote(name))
}

func (Dialect) Log(msg string) string {
	return fmt.Sprintf("print(%s)", quote(msg))
}

func (Dialect) Alert(msg string) string {
	return fmt.Sprintf("print(\"ALERT:\", %s)", quote(msg))
}

func (Dialect) Spawn(name string) string {
	return fmt.Sprintf("spawn(%s)", quote(name))
}

func (Dialect) PlaySound(freq float64) string {
	return fmt.Sprintf("play_tone(%s)", graph.FormatNumber(freq))
}

func (Dialect) UIElement(t graph.NodeType, key string, data graph.NodeData) string {
	text := data.Label
	if t == graph.TypeUIText && data.Value.String() != "" {
		text = data.Value.String()
	}
	return fmt.Sprintf("elements[%s] = {\"type\": %s, \"label\": %s, \"color\": %s}",
		quote(key), quote(strings.TrimPrefix(string(t), "ui-")), quote(text), quote(data.Color))
}

func (d Dialect) If(c codegen.Condition) codegen.Block {
	_, numeric := c.Value.Number()
	return codegen.Block{
		Open: fmt.Sprintf("if %s %s %s:", read(c.Variable, numeric), c.Operator, d.Literal(c.Value)),
		Else: "else:",
	}
}

func (Dialect) Loop(counter string, count int) codegen.Block {
	return codegen.Block{Open: fmt.Sprintf("for %s in range(%d):", counter, count)}
}

func (Dialect) Timer(ms int) codegen.Block {
	return codegen.Block{Open: fmt.Sprintf("time.sleep(%s)", codegen.Seconds(ms))}
}

func (Dialect) Handler(string, graph.Handle) codegen.Block { return codegen.Block{} }

func (Dialect) Prelude(p codegen.Program) string {
	f := p.Features
	lines := []string{codegen.Header("#", p.Name)}
	if f.Sleep {
		lines = append(lines, "import time")
	}
	var decls []string
	if f.HasVariables() {
		decls = append(decls, "variables = {}")
	}
	if f.Elements {
		decls = append(decls, "elements = {}")
	}
	if f.Spawns {
		decls = append(decls, "\ndef spawn(name):\n    print(\"spawn\", name)\n")
	}
	if f.Sounds {
		decls = append(decls, "\ndef play_tone(freq):\n    print(\"tone\", freq)\n")
	}
	if len(decls) > 0 {
		lines = append(lines, "")
		lines = append(lines, decls...)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (Dialect) Entry(codegen.Program) codegen.Block {
	return codegen.Block{Open: "def main():"}
}

func (Dialect) Epilogue(p codegen.Program) string {
	if !p.Wrapped {
		return ""
	}
	return "\n\nif __name__ == \"__main__\":\n    main()"
}
