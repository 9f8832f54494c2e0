// Package sql spells graphs as a T-SQL batch. Variables become @locals
// and UI elements rows in a table variable.
package sql

import (
	"fmt"
	"strings"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/graph"
)

// Dialect implements codegen.Dialect for SQL
type Dialect struct{}

// New creates a SQL dialect
func New() *Dialect {
	return &Dialect{}
}

// Language returns "sql"
func (Dialect) Language() string { return string(graph.LangSQL) }

// FileExtension returns "sql"
func (Dialect) FileExtension() string { return "sql" }

func (Dialect) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		CommentToken: "--",
		Indent:       "    ",
		EmptyBlock:   "SET NOCOUNT ON;",
	}
}

// Variable is the @local holding a graph variable
func Variable(name string) string {
	return "@" + codegen.Identifier(name)
}

var operators = map[string]string{
	graph.OpEqual:    "=",
	graph.OpNotEqual: "<>",
}

func (Dialect) Literal(v graph.Value) string {
	return codegen.NumberOrQuote(v, codegen.QuoteSQL)
}

func (d Dialect) Assign(name string, v graph.Value) string {
	return fmt.Sprintf("SET %s = %s;", Variable(name), d.Literal(v))
}

func (d Dialect) Increment(name string, delta graph.Value, subtract bool) string {
	v := Variable(name)
	if _, ok := delta.Number(); !ok {
		return fmt.Sprintf("SET %s = CONCAT(%s, %s);", v, v, d.Literal(delta))
	}
	op := "+"
	if subtract {
		op = "-"
	}
	return fmt.Sprintf("SET %s = ISNULL(%s, 0) %s %s;", v, v, op, d.Literal(delta))
}

func (Dialect) ReadVariable(name string) string {
	return fmt.Sprintf("SELECT %s AS %s;", Variable(name), codegen.Identifier(name))
}

func (Dialect) ReadInput(name, prompt string) string {
	return fmt.Sprintf("EXEC read_input %s, %s OUTPUT;", codegen.QuoteSQL(prompt), Variable(name))
}

func (Dialect) PrintVariable(name string) string {
	return fmt.Sprintf("PRINT CAST(%s AS NVARCHAR(MAX));", Variable(name))
}

func (Dialect) Log(msg string) string {
	return fmt.Sprintf("PRINT %s;", codegen.QuoteSQL(msg))
}

func (Dialect) Alert(msg string) string {
	return fmt.Sprintf("RAISERROR(%s, 0, 1) WITH NOWAIT;", codegen.QuoteSQL(strings.ReplaceAll(msg, "%", "%%")))
}

func (Dialect) Spawn(name string) string {
	return fmt.Sprintf("EXEC spawn %s;", codegen.QuoteSQL(name))
}

func (Dialect) PlaySound(freq float64) string {
	return fmt.Sprintf("EXEC play_tone %s;", graph.FormatNumber(freq))
}

func (Dialect) UIElement(t graph.NodeType, key string, data graph.NodeData) string {
	text := data.Label
	if t == graph.TypeUIText && data.Value.String() != "" {
		text = data.Value.String()
	}
	return fmt.Sprintf("INSERT INTO @elements (id, kind, label, color) VALUES (%s, %s, %s, %s);",
		codegen.QuoteSQL(key), codegen.QuoteSQL(strings.TrimPrefix(string(t), "ui-")),
		codegen.QuoteSQL(text), codegen.QuoteSQL(data.Color))
}

func (d Dialect) If(c codegen.Condition) codegen.Block {
	op := c.Operator
	if alt, ok := operators[op]; ok {
		op = alt
	}
	return codegen.Block{
		Open:  fmt.Sprintf("IF %s %s %s\nBEGIN", Variable(c.Variable), op, d.Literal(c.Value)),
		Else:  "END\nELSE\nBEGIN",
		Close: "END",
	}
}

func (Dialect) Loop(counter string, count int) codegen.Block {
	v := "@" + counter
	return codegen.Block{
		Open:  fmt.Sprintf("DECLARE %s INT = 0;\nWHILE %s < %d\nBEGIN", v, v, count),
		Tail:  fmt.Sprintf("SET %s = %s + 1;", v, v),
		Close: "END",
	}
}

// maxDelayMS is the longest wait one WAITFOR DELAY takes; its time value
// cannot reach 24 hours
const maxDelayMS = 12 * 3600000

// Delay formats milliseconds below one day as a WAITFOR DELAY time
func Delay(ms int) string {
	h := ms / 3600000
	m := ms / 60000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// Timer waits in 12 hour steps when ms is too long for a single WAITFOR
func (Dialect) Timer(ms int) codegen.Block {
	var waits []string
	for ms > maxDelayMS {
		waits = append(waits, fmt.Sprintf("WAITFOR DELAY '%s';", Delay(maxDelayMS)))
		ms -= maxDelayMS
	}
	waits = append(waits, fmt.Sprintf("WAITFOR DELAY '%s';", Delay(ms)))
	return codegen.Block{Open: strings.Join(waits, "\n")}
}

func (Dialect) Handler(string, graph.Handle) codegen.Block { return codegen.Block{} }

func (Dialect) Prelude(p codegen.Program) string {
	f := p.Features
	lines := []string{codegen.Header("--", p.Name)}
	declared := make(map[string]bool, len(f.Variables))
	for _, name := range f.Variables {
		v := Variable(name)
		if declared[v] {
			continue
		}
		declared[v] = true
		lines = append(lines, fmt.Sprintf("DECLARE %s SQL_VARIANT;", v))
	}
	if f.Elements {
		lines = append(lines, "DECLARE @elements TABLE (id NVARCHAR(128), kind NVARCHAR(16), label NVARCHAR(MAX), color NVARCHAR(16));")
	}
	return strings.Join(lines, "\n")
}

func (Dialect) Entry(codegen.Program) codegen.Block {
	return codegen.Block{Open: "BEGIN", Close: "END;"}
}

func (Dialect) Epilogue(codegen.Program) string { return "" }
