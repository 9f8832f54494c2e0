// Package lua spells graphs as a Lua 5 script.
package lua

import (
	"fmt"
	"strings"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/graph"
)

// Dialect implements codegen.Dialect for Lua
type Dialect struct{}

// New creates a Lua dialect
func New() *Dialect {
	return &Dialect{}
}

// Language returns "lua"
func (Dialect) Language() string { return string(graph.LangLua) }

// FileExtension returns "lua"
func (Dialect) FileExtension() string { return "lua" }

func (Dialect) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		CommentToken: "--",
		Indent:       "  ",
	}
}

func quote(s string) string { return codegen.Quote(s, codegen.EscapeDecimal) }

func variable(name string) string { return "variables[" + quote(name) + "]" }

// operators maps comparison operators that Lua spells differently
var operators = map[string]string{
	graph.OpNotEqual: "~=",
}

func (Dialect) Literal(v graph.Value) string {
	return codegen.NumberOrQuote(v, quote)
}

func (d Dialect) Assign(name string, v graph.Value) string {
	return fmt.Sprintf("%s = %s", variable(name), d.Literal(v))
}

func (d Dialect) Increment(name string, delta graph.Value, subtract bool) string {
	if _, ok := delta.Number(); !ok {
		return fmt.Sprintf("%s = (%s or \"\") .. %s", variable(name), variable(name), d.Literal(delta))
	}
	op := "+"
	if subtract {
		op = "-"
	}
	return fmt.Sprintf("%s = (%s or 0) %s %s", variable(name), variable(name), op, d.Literal(delta))
}

func (Dialect) ReadVariable(name string) string {
	return fmt.Sprintf("local %s = %s", codegen.Identifier(name), variable(name))
}

func (Dialect) ReadInput(name, prompt string) string {
	return fmt.Sprintf("io.write(%s)\n%s = io.read()", quote(prompt+" "), variable(name))
}

func (Dialect) PrintVariable(name string) string {
	return fmt.Sprintf("print(%s)", variable(name))
}

func (Dialect) Log(msg string) string {
	return fmt.Sprintf("print(%s)", quote(msg))
}

func (Dialect) Alert(msg string) string {
	return fmt.Sprintf("print(\"ALERT: \" .. %s)", quote(msg))
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
	return fmt.Sprintf("elements[%s] = { type = %s, label = %s, color = %s }",
		quote(key), quote(strings.TrimPrefix(string(t), "ui-")), quote(text), quote(data.Color))
}

func (d Dialect) If(c codegen.Condition) codegen.Block {
	op := c.Operator
	if alt, ok := operators[op]; ok {
		op = alt
	}
	return codegen.Block{
		Open:  fmt.Sprintf("if %s %s %s then", variable(c.Variable), op, d.Literal(c.Value)),
		Else:  "else",
		Close: "end",
	}
}

func (Dialect) Loop(counter string, count int) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("for %s = 1, %d do", counter, count),
		Close: "end",
	}
}

func (Dialect) Timer(ms int) codegen.Block {
	return codegen.Block{Open: fmt.Sprintf("sleep(%d)", ms)}
}

func (Dialect) Handler(string, graph.Handle) codegen.Block { return codegen.Block{} }

func (Dialect) Prelude(p codegen.Program) string {
	f := p.Features
	lines := []string{codegen.Header("--", p.Name)}
	if f.HasVariables() {
		lines = append(lines, "local variables = {}")
	}
	if f.Elements {
		lines = append(lines, "local elements = {}")
	}
	if f.Sleep {
		lines = append(lines, "local function sleep(ms)\n  local deadline = os.clock() + ms / 1000\n  while os.clock() < deadline do end\nend")
	}
	if f.Spawns {
		lines = append(lines, "local function spawn(name) print(\"spawn \" .. name) end")
	}
	if f.Sounds {
		lines = append(lines, "local function play_tone(freq) print(\"tone \" .. freq) end")
	}
	return strings.Join(lines, "\n")
}

func (Dialect) Entry(codegen.Program) codegen.Block {
	return codegen.Block{Open: "local function main()", Close: "end"}
}

func (Dialect) Epilogue(p codegen.Program) string {
	if !p.Wrapped {
		return ""
	}
	return "\nmain()"
}
