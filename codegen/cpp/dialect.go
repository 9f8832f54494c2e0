// Package cpp spells graphs as a C++17 program.
package cpp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/graph"
)

// Dialect implements codegen.Dialect for C++
type Dialect struct{}

// New creates a C++ dialect
func New() *Dialect {
	return &Dialect{}
}

// Language returns "cpp"
func (Dialect) Language() string { return string(graph.LangCPP) }

// FileExtension returns "cpp"
func (Dialect) FileExtension() string { return "cpp" }

func (Dialect) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		RequiresEntry: true,
		CommentToken:  "//",
		Indent:        "    ",
	}
}

func quote(s string) string { return codegen.Quote(s, codegen.EscapeOctal) }

func variable(name string) string { return "variables[" + quote(name) + "]" }

// Literal renders numbers as doubles so they convert to Var unambiguously
func (Dialect) Literal(v graph.Value) string {
	if f, ok := v.Number(); ok {
		return codegen.FloatLiteral(f)
	}
	return "std::string(" + quote(v.String()) + ")"
}

func (d Dialect) Assign(name string, v graph.Value) string {
	return fmt.Sprintf("%s = %s;", variable(name), d.Literal(v))
}

func (d Dialect) Increment(name string, delta graph.Value, subtract bool) string {
	v := variable(name)
	if _, ok := delta.Number(); !ok {
		return fmt.Sprintf("%s = text(%s) + %s;", v, v, d.Literal(delta))
	}
	op := "+"
	if subtract {
		op = "-"
	}
	return fmt.Sprintf("%s = num(%s) %s %s;", v, v, op, d.Literal(delta))
}

func (Dialect) ReadVariable(name string) string {
	return fmt.Sprintf("Var %s = %s;", codegen.Identifier(name), variable(name))
}

func (Dialect) ReadInput(name, prompt string) string {
	return fmt.Sprintf("%s = read_line(%s);", variable(name), quote(prompt))
}

func (Dialect) PrintVariable(name string) string {
	return fmt.Sprintf("std::visit([](const auto& v) { std::cout << v << std::endl; }, %s);", variable(name))
}

func (Dialect) Log(msg string) string {
	return fmt.Sprintf("std::cout << %s << std::endl;", quote(msg))
}

func (Dialect) Alert(msg string) string {
	return fmt.Sprintf("std::cout << \"ALERT: \" << %s << std::endl;", quote(msg))
}

func (Dialect) Spawn(name string) string {
	return fmt.Sprintf("spawn(%s);", quote(name))
}

func (Dialect) PlaySound(freq float64) string {
	return fmt.Sprintf("play_tone(%s);", codegen.FloatLiteral(freq))
}

func (Dialect) UIElement(t graph.NodeType, key string, data graph.NodeData) string {
	text := data.Label
	if t == graph.TypeUIText && data.Value.String() != "" {
		text = data.Value.String()
	}
	return fmt.Sprintf("elements[%s] = Element{%s, %s, %s};",
		quote(key), quote(strings.TrimPrefix(string(t), "ui-")), quote(text), quote(data.Color))
}

func (d Dialect) If(c codegen.Condition) codegen.Block {
	v := variable(c.Variable)
	var cond string
	if _, numeric := c.Value.Number(); numeric {
		cond = fmt.Sprintf("num(%s) %s %s", v, c.Operator, d.Literal(c.Value))
	} else {
		cond = fmt.Sprintf("text(%s) %s %s", v, c.Operator, quote(c.Value.String()))
	}
	return codegen.Block{
		Open:  "if (" + cond + ") {",
		Else:  "} else {",
		Close: "}",
	}
}

func (Dialect) Loop(counter string, count int) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("for (int %s = 0; %s < %d; ++%s) {", counter, counter, count, counter),
		Close: "}",
	}
}

func (Dialect) Timer(ms int) codegen.Block {
	return codegen.Block{Open: fmt.Sprintf("std::this_thread::sleep_for(std::chrono::milliseconds(%d));", ms)}
}

func (Dialect) Handler(string, graph.Handle) codegen.Block { return codegen.Block{} }

func includes(f *codegen.Features) []string {
	set := map[string]bool{}
	if f.Printing || f.Alerts || f.Spawns || f.Sounds || f.Input {
		set["iostream"] = true
	}
	if f.HasVariables() {
		set["map"], set["string"], set["variant"] = true, true, true
	}
	if f.Elements {
		set["map"], set["string"] = true, true
	}
	if f.Input || f.Spawns {
		set["string"] = true
	}
	if f.Sleep {
		set["chrono"], set["thread"] = true, true
	}
	out := make([]string, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

const helperVar = `using Var = std::variant<double, std::string>;
std::map<std::string, Var> variables;

double num(const Var& v) {
    if (const double* d = std::get_if<double>(&v)) return *d;
    return 0;
}

std::string text(const Var& v) {
    if (const std::string* s = std::get_if<std::string>(&v)) return *s;
    return std::to_string(std::get<double>(v));
}`

const helperElements = `struct Element {
    std::string type;
    std::string label;
    std::string color;
};
std::map<std::string, Element> elements;`

const helperReadLine = `std::string read_line(const std::string& prompt) {
    std::cout << prompt << " ";
    std::string line;
    std::getline(std::cin, line);
    return line;
}`

func (Dialect) Prelude(p codegen.Program) string {
	f := p.Features
	head := []string{codegen.Header("//", p.Name)}
	for _, h := range includes(f) {
		head = append(head, "#include <"+h+">")
	}
	parts := []string{strings.Join(head, "\n")}

	if f.HasVariables() {
		parts = append(parts, helperVar)
	}
	if f.Elements {
		parts = append(parts, helperElements)
	}
	if f.Input {
		parts = append(parts, helperReadLine)
	}
	if f.Spawns {
		parts = append(parts, "void spawn(const std::string& name) { std::cout << \"spawn \" << name << std::endl; }")
	}
	if f.Sounds {
		parts = append(parts, "void play_tone(double freq) { std::cout << \"tone \" << freq << std::endl; }")
	}
	return strings.Join(parts, "\n\n")
}

func (Dialect) Entry(codegen.Program) codegen.Block {
	return codegen.Block{Open: "int main() {", Tail: "return 0;", Close: "}"}
}

func (Dialect) Epilogue(codegen.Program) string { return "" }
