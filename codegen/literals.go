package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/devtycoon/forge/graph"
)

// EscapeStyle selects how control characters are escaped inside a
// double-quoted literal
type EscapeStyle int

const (
	// EscapeHex writes \xNN (JavaScript, Python, Go, Rust)
	EscapeHex EscapeStyle = iota
	// EscapeOctal writes \NNN (C++, where \x is greedy)
	EscapeOctal
	// EscapeDecimal writes \NNN in decimal (Lua)
	EscapeDecimal
)

// Quote renders s as a double-quoted string literal
func Quote(s string, style EscapeStyle) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				switch style {
				case EscapeOctal:
					fmt.Fprintf(&sb, `\%03o`, r)
				case EscapeDecimal:
					fmt.Fprintf(&sb, `\%03d`, r)
				default:
					fmt.Fprintf(&sb, `\x%02x`, r)
				}
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteSQL renders s as a single-quoted SQL string
func QuoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Identifier turns a variable name into a safe identifier: letters,
// digits and underscores, never starting with a digit
func Identifier(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))):
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	id := sb.String()
	if id == "" {
		return "value"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}

// FloatLiteral renders f so typed languages read it as floating point
func FloatLiteral(f float64) string {
	s := graph.FormatNumber(f)
	if strings.ContainsAny(s, ".eE") {
		return s
	}
	return s + ".0"
}

// NumberOrQuote renders v as a number when it parses as one, else as a
// string via quote
func NumberOrQuote(v graph.Value, quote func(string) string) string {
	if f, ok := v.Number(); ok {
		return graph.FormatNumber(f)
	}
	return quote(v.String())
}

// Header is the first comment line of a generated file
func Header(commentToken, name string) string {
	if name == "" {
		return commentToken + " Generated by devtycoon"
	}
	return commentToken + " " + name + " (generated by devtycoon)"
}

// Seconds renders a millisecond delay in seconds
func Seconds(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64)
}

// EventTitle is the annotation used when a language has no inline handlers
func EventTitle(event graph.Handle) string {
	switch event {
	case graph.HandleClick:
		return "On Click:"
	case graph.HandleChange:
		return "On Change:"
	}
	return "On " + string(event) + ":"
}
