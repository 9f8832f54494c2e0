// Package golang spells graphs as a Go main package.
package golang

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/graph"
)

// Dialect implements codegen.Dialect for Go
type Dialect struct{}

// New creates a Go dialect
func New() *Dialect {
	return &Dialect{}
}

// Language returns "go"
func (Dialect) Language() string { return string(graph.LangGo) }

// FileExtension returns "go"
func (Dialect) FileExtension() string { return "go" }

func (Dialect) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		RequiresEntry: true,
		CommentToken:  "//",
		Indent:        "\t",
	}
}

func quote(s string) string { return codegen.Quote(s, codegen.EscapeHex) }

func variable(name string) string { return "variables[" + quote(name) + "]" }

func (Dialect) Literal(v graph.Value) string {
	return codegen.NumberOrQuote(v, quote)
}

// stored wraps numbers so the map holds float64 rather than int
func (d Dialect) stored(v graph.Value) string {
	if _, ok := v.Number(); ok {
		return "float64(" + d.Literal(v) + ")"
	}
	return d.Literal(v)
}

func (d Dialect) Assign(name string, v graph.Value) string {
	return fmt.Sprintf("%s = %s", variable(name), d.stored(v))
}

func (d Dialect) Increment(name string, delta graph.Value, subtract bool) string {
	v := variable(name)
	if _, ok := delta.Number(); !ok {
		if subtract {
			return fmt.Sprintf("%s = without(str(%s), %s)", v, v, d.Literal(delta))
		}
		return fmt.Sprintf("%s = str(%s) + %s", v, v, d.Literal(delta))
	}
	op := "+"
	if subtract {
		op = "-"
	}
	return fmt.Sprintf("%s = num(%s) %s %s", v, v, op, d.Literal(delta))
}

func (Dialect) ReadVariable(name string) string {
	id := codegen.Identifier(name)
	return fmt.Sprintf("%s := %s\n_ = %s", id, variable(name), id)
}

func (Dialect) ReadInput(name, prompt string) string {
	return fmt.Sprintf("%s = readLine(%s)", variable(name), quote(prompt))
}

func (Dialect) PrintVariable(name string) string {
	return fmt.Sprintf("fmt.Println(%s)", variable(name))
}

func (Dialect) Log(msg string) string {
	return fmt.Sprintf("fmt.Println(%s)", quote(msg))
}

func (Dialect) Alert(msg string) string {
	return fmt.Sprintf("fmt.Println(\"ALERT:\", %s)", quote(msg))
}

func (Dialect) Spawn(name string) string {
	return fmt.Sprintf("spawn(%s)", quote(name))
}

func (Dialect) PlaySound(freq float64) string {
	return fmt.Sprintf("playTone(%s)", graph.FormatNumber(freq))
}

func (Dialect) UIElement(t graph.NodeType, key string, data graph.NodeData) string {
	text := data.Label
	if t == graph.TypeUIText && data.Value.String() != "" {
		text = data.Value.String()
	}
	return fmt.Sprintf("elements[%s] = map[string]string{\"type\": %s, \"label\": %s, \"color\": %s}",
		quote(key), quote(strings.TrimPrefix(string(t), "ui-")), quote(text), quote(data.Color))
}

func (d Dialect) If(c codegen.Condition) codegen.Block {
	v := variable(c.Variable)
	var cond string
	switch _, numeric := c.Value.Number(); {
	case numeric:
		cond = fmt.Sprintf("num(%s) %s %s", v, c.Operator, d.Literal(c.Value))
	case c.Operator == graph.OpEqual || c.Operator == graph.OpNotEqual:
		cond = fmt.Sprintf("%s %s %s", v, c.Operator, d.Literal(c.Value))
	default:
		cond = fmt.Sprintf("str(%s) %s %s", v, c.Operator, d.Literal(c.Value))
	}
	return codegen.Block{
		Open:  "if " + cond + " {",
		Else:  "} else {",
		Close: "}",
	}
}

func (Dialect) Loop(counter string, count int) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("for %s := 0; %s < %d; %s++ {", counter, counter, count, counter),
		Close: "}",
	}
}

func (Dialect) Timer(ms int) codegen.Block {
	return codegen.Block{Open: fmt.Sprintf("time.Sleep(%d * time.Millisecond)", ms)}
}

func (Dialect) Handler(string, graph.Handle) codegen.Block { return codegen.Block{} }

func imports(f *codegen.Features) []string {
	set := map[string]bool{}
	if f.Printing || f.Alerts || f.Spawns || f.Sounds || f.Input || f.HasVariables() {
		set["fmt"] = true
	}
	if f.Input {
		set["bufio"], set["os"], set["strings"] = true, true, true
	}
	if f.Concat {
		set["strings"] = true
	}
	if f.Sleep {
		set["time"] = true
	}
	out := make([]string, 0, len(set))
	for pkg := range set {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

const helperNum = `func num(v any) float64 {
	f, _ := v.(float64)
	return f
}`

const helperStr = `func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}`

const helperWithout = `func without(s, suffix string) string {
	return strings.TrimSuffix(s, suffix)
}`

const helperReadLine = `func readLine(prompt string) string {
	fmt.Print(prompt + " ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}`

func (Dialect) Prelude(p codegen.Program) string {
	f := p.Features
	parts := []string{codegen.Header("//", p.Name) + "\npackage main"}

	if pkgs := imports(f); len(pkgs) > 0 {
		var sb strings.Builder
		sb.WriteString("import (\n")
		for _, pkg := range pkgs {
			fmt.Fprintf(&sb, "\t%q\n", pkg)
		}
		sb.WriteString(")")
		parts = append(parts, sb.String())
	}

	var decls []string
	if f.HasVariables() {
		decls = append(decls, "var variables = map[string]any{}")
	}
	if f.Elements {
		decls = append(decls, "var elements = map[string]map[string]string{}")
	}
	if len(decls) > 0 {
		parts = append(parts, strings.Join(decls, "\n"))
	}

	if f.HasVariables() {
		parts = append(parts, helperNum, helperStr)
	}
	if f.Concat {
		parts = append(parts, helperWithout)
	}
	if f.Input {
		parts = append(parts, helperReadLine)
	}
	if f.Spawns {
		parts = append(parts, "func spawn(name string) {\n\tfmt.Println(\"spawn\", name)\n}")
	}
	if f.Sounds {
		parts = append(parts, "func playTone(freq float64) {\n\tfmt.Println(\"tone\", freq)\n}")
	}
	return strings.Join(parts, "\n\n")
}

func (Dialect) Entry(codegen.Program) codegen.Block {
	return codegen.Block{Open: "func main() {", Close: "}"}
}

func (Dialect) Epilogue(codegen.Program) string { return "" }
