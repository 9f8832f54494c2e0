// Package runtime spells graphs as a self-contained HTML page whose script
// runs immediately in a sandboxed preview frame.
package runtime

import (
	"fmt"
	"html"
	"strings"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/codegen/javascript"
	"github.com/devtycoon/forge/graph"
)

// Language is the registry name of the runtime target
const Language = "runtime"

// Dialect implements codegen.Dialect for the preview runtime. It shares
// JavaScript's statements and replaces output and UI with DOM calls.
type Dialect struct {
	javascript.Dialect
}

// New creates a runtime dialect
func New() *Dialect {
	return &Dialect{}
}

func (Dialect) Language() string { return Language }

// FileExtension returns "html"
func (Dialect) FileExtension() string { return "html" }

func (d Dialect) Capabilities() codegen.Capabilities {
	caps := d.Dialect.Capabilities()
	caps.RequiresEntry = true
	return caps
}

// Quote renders a string literal that is safe inside a <script> element
func Quote(s string) string {
	return strings.ReplaceAll(javascript.Quote(s), "</", `<\/`)
}

func variable(name string) string { return "variables[" + Quote(name) + "]" }
func element(key string) string { return "elements[" + Quote(key) + "]" }

func (Dialect) Literal(v graph.Value) string {
	return codegen.NumberOrQuote(v, Quote)
}

func (d Dialect) Assign(name string, v graph.Value) string {
	return fmt.Sprintf("%s = %s;", variable(name), d.Literal(v))
}

func (d Dialect) Increment(name string, delta graph.Value, subtract bool) string {
	op, zero := "+", "0"
	if subtract {
		op = "-"
	}
	if _, ok := delta.Number(); !ok {
		zero = `""`
	}
	return fmt.Sprintf("%s = (%s || %s) %s %s;", variable(name), variable(name), zero, op, d.Literal(delta))
}

func (Dialect) ReadVariable(name string) string {
	return fmt.Sprintf("var %s = %s;", codegen.Identifier(name), variable(name))
}

func (Dialect) ReadInput(name, prompt string) string {
	return fmt.Sprintf("%s = prompt(%s);", variable(name), Quote(prompt))
}

func (Dialect) PrintVariable(name string) string {
	return fmt.Sprintf("logOutput(%s);", variable(name))
}

func (Dialect) Log(msg string) string {
	return fmt.Sprintf("logOutput(%s);", Quote(msg))
}

func (Dialect) Alert(msg string) string {
	return fmt.Sprintf("alert(%s);", Quote(msg))
}

func (Dialect) Spawn(name string) string {
	return fmt.Sprintf("spawn(%s);", Quote(name))
}

var tags = map[graph.NodeType]string{
	graph.TypeUIButton: "button",
	graph.TypeUIText:   "p",
	graph.TypeUIInput:  "input",
}

func (Dialect) UIElement(t graph.NodeType, key string, data graph.NodeData) string {
	tag, ok := tags[t]
	if !ok {
		tag = "div"
	}
	el := element(key)
	text := javascript.ElementText(t, data)

	lines := []string{fmt.Sprintf("%s = document.createElement(%s);", el, Quote(tag))}
	if t == graph.TypeUIInput {
		lines = append(lines, fmt.Sprintf("%s.placeholder = %s;", el, Quote(text)))
	} else {
		lines = append(lines, fmt.Sprintf("%s.textContent = %s;", el, Quote(text)))
	}
	if data.Color != "" {
		lines = append(lines, fmt.Sprintf("%s.style.color = %s;", el, Quote(data.Color)))
	}
	lines = append(lines, fmt.Sprintf("document.getElementById(\"app\").appendChild(%s);", el))
	return strings.Join(lines, "\n")
}

func (d Dialect) If(c codegen.Condition) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("if (%s %s %s) {", variable(c.Variable), c.Operator, d.Literal(c.Value)),
		Else:  "} else {",
		Close: "}",
	}
}

func (Dialect) Handler(key string, event graph.Handle) codegen.Block {
	return codegen.Block{
		Open:  fmt.Sprintf("%s.addEventListener(%s, () => {", element(key), Quote(string(event))),
		Close: "});",
	}
}

const runtimeScript = `const elements = {};
const variables = {};
let audioCtx = null;

function logOutput(msg) {
  const out = document.getElementById("output");
  out.textContent += String(msg) + "\n";
  console.log(msg);
}

function playTone(freq, ms = 200) {
  if (!audioCtx) {
    audioCtx = new (window.AudioContext || window.webkitAudioContext)();
  }
  const osc = audioCtx.createOscillator();
  osc.frequency.value = freq;
  osc.connect(audioCtx.destination);
  osc.start();
  osc.stop(audioCtx.currentTime + ms / 1000);
}

function spawn(name) {
  logOutput("spawned " + name);
}`

func (Dialect) Prelude(p codegen.Program) string {
	title := p.Name
	if title == "" {
		title = "DevTycoon Preview"
	}
	return strings.Join([]string{
		"<!DOCTYPE html>",
		"<html>",
		"<head>",
		`<meta charset="utf-8">`,
		"<title>" + html.EscapeString(title) + "</title>",
		"<style>",
		"body { font-family: sans-serif; margin: 12px; }",
		"#output { background: #111; color: #9f9; padding: 8px; min-height: 4em; }",
		"</style>",
		"</head>",
		"<body>",
		`<div id="app"></div>`,
		`<pre id="output"></pre>`,
		"<script>",
		runtimeScript,
	}, "\n")
}

func (Dialect) Epilogue(codegen.Program) string {
	return "</script>\n</body>\n</html>"
}
