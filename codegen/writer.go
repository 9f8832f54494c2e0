package codegen

import "strings"

type line struct {
	level int
	text  string
}

// Writer collects emitted lines with their nesting level
type Writer struct {
	lines []line
	level int
}

// Line writes s at the current level. Embedded newlines start new lines
// at the same level; an empty s writes nothing.
func (w *Writer) Line(s string) {
	if s == "" {
		return
	}
	for _, part := range strings.Split(s, "\n") {
		w.lines = append(w.lines, line{level: w.level, text: part})
	}
}

// Blank writes an empty line
func (w *Writer) Blank() {
	w.lines = append(w.lines, line{level: w.level})
}

// Indent nests following lines one level deeper
func (w *Writer) Indent() { w.level++ }

// Dedent undoes one Indent
func (w *Writer) Dedent() {
	if w.level > 0 {
		w.level--
	}
}

// Len is the number of lines written so far
func (w *Writer) Len() int { return len(w.lines) }

// Append copies other's lines, nested at the current level
func (w *Writer) Append(other *Writer) {
	for _, l := range other.lines {
		w.lines = append(w.lines, line{level: w.level + l.level, text: l.text})
	}
}

// Render joins the lines using indent per level. Blank lines carry no
// indentation and the result ends with a newline unless empty.
func (w *Writer) Render(indent string) string {
	var sb strings.Builder
	for _, l := range w.lines {
		if l.text != "" {
			sb.WriteString(strings.Repeat(indent, l.level))
			sb.WriteString(l.text)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
