// Package rust spells graphs as a Rust binary crate's main.rs.
package rust

import (
	"fmt"
	"strings"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/graph"
)

// Dialect implements codegen.Dialect for Rust
type Dialect struct{}

// New creates a Rust dialect
func New() *Dialect {
	return &Dialect{}
}

// Language returns "rust"
func (Dialect) Language() string { return string(graph.LangRust) }

// FileExtension returns "rs"
func (Dialect) FileExtension() string { return "rs" }

func (Dialect) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		RequiresEntry: true,
		CommentToken:  "//",
		Indent:        "    ",
	}
}

func quote(s string) string { return codegen.Quote(s, codegen.EscapeHex) }

// Literal renders numbers as f64 literals and text as a &str
func (Dialect) Literal(v graph.Value) string {
	if f, ok := v.Number(); ok {
		return codegen.FloatLiteral(f)
	}
	return quote(v.String())
}

// value wraps a literal in the Var enum
func (d Dialect) value(v graph.Value) string {
	if _, ok := v.Number(); ok {
		return "Var::Num(" + d.Literal(v) + ")"
	}
	return "Var::Text(" + d.Literal(v) + ".to_string())"
}

func (d Dialect) Assign(name string, v graph.Value) string {
	return fmt.Sprintf("variables.insert(%s, %s);", quote(name), d.value(v))
}

func (d Dialect) Increment(name string, delta graph.Value, subtract bool) string {
	key := quote(name)
	if _, ok := delta.Number(); !ok {
		return fmt.Sprintf("variables.insert(%s, Var::Text(text(&variables, %s) + %s));", key, key, d.Literal(delta))
	}
	op := "+"
	if subtract {
		op = "-"
	}
	return fmt.Sprintf("variables.insert(%s, Var::Num(num(&variables, %s) %s %s));", key, key, op, d.Literal(delta))
}

func (Dialect) ReadVariable(name string) string {
	return fmt.Sprintf("let %s = variables.get(%s).cloned();", codegen.Identifier(name), quote(name))
}

func (Dialect) ReadInput(name, prompt string) string {
	return fmt.Sprintf("variables.insert(%s, Var::Text(read_line(%s)));", quote(name), quote(prompt))
}

func (Dialect) PrintVariable(name string) string {
	return fmt.Sprintf("println!(\"{:?}\", variables.get(%s));", quote(name))
}

func (Dialect) Log(msg string) string {
	return fmt.Sprintf("println!(\"{}\", %s);", quote(msg))
}

func (Dialect) Alert(msg string) string {
	return fmt.Sprintf("println!(\"ALERT: {}\", %s);", quote(msg))
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
	return fmt.Sprintf("elements.insert(%s, (%s, %s, %s));",
		quote(key), quote(strings.TrimPrefix(string(t), "ui-")), quote(text), quote(data.Color))
}

func (d Dialect) If(c codegen.Condition) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("if variables.get(%s) %s Some(&%s) {", quote(c.Variable), c.Operator, d.value(c.Value)),
		Else:  "} else {",
		Close: "}",
	}
}

func (Dialect) Loop(counter string, count int) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("for _%s in 0..%d {", counter, count),
		Close: "}",
	}
}

func (Dialect) Timer(ms int) codegen.Block {
	return codegen.Block{Open: fmt.Sprintf("thread::sleep(Duration::from_millis(%d));", ms)}
}

func (Dialect) Handler(string, graph.Handle) codegen.Block { return codegen.Block{} }

const helperVar = `#[derive(Clone, Debug, PartialEq, PartialOrd)]
enum Var {
    Num(f64),
    Text(String),
}

fn num(vars: &HashMap<&str, Var>, key: &str) -> f64 {
    match vars.get(key) {
        Some(Var::Num(n)) => *n,
        _ => 0.0,
    }
}

fn text(vars: &HashMap<&str, Var>, key: &str) -> String {
    match vars.get(key) {
        Some(Var::Num(n)) => n.to_string(),
        Some(Var::Text(s)) => s.clone(),
        None => String::new(),
    }
}`

const helperReadLine = `fn read_line(prompt: &str) -> String {
    print!("{} ", prompt);
    io::stdout().flush().unwrap();
    let mut line = String::new();
    io::stdin().read_line(&mut line).unwrap();
    line.trim().to_string()
}`

func (Dialect) Prelude(p codegen.Program) string {
	f := p.Features
	head := []string{codegen.Header("//", p.Name)}
	if f.HasVariables() || f.Elements {
		head = append(head, "use std::collections::HashMap;")
	}
	if f.Input {
		head = append(head, "use std::io::{self, Write};")
	}
	if f.Sleep {
		head = append(head, "use std::thread;", "use std::time::Duration;")
	}
	parts := []string{strings.Join(head, "\n")}

	if f.HasVariables() {
		parts = append(parts, helperVar)
	}
	if f.Input {
		parts = append(parts, helperReadLine)
	}
	if f.Spawns {
		parts = append(parts, "fn spawn(name: &str) {\n    println!(\"spawn {}\", name);\n}")
	}
	if f.Sounds {
		parts = append(parts, "fn play_tone(freq: f64) {\n    println!(\"tone {}\", freq);\n}")
	}
	return strings.Join(parts, "\n\n")
}

func (Dialect) Entry(p codegen.Program) codegen.Block {
	var head []string
	if p.Features.HasVariables() {
		head = append(head, "let mut variables: HashMap<&str, Var> = HashMap::new();")
	}
	if p.Features.Elements {
		head = append(head, "let mut elements: HashMap<&str, (&str, &str, &str)> = HashMap::new();")
	}
	return codegen.Block{Open: "fn main() {", Head: strings.Join(head, "\n"), Close: "}"}
}

func (Dialect) Epilogue(codegen.Program) string { return "" }
