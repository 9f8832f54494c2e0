package graph

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devtycoon/forge/errors"
)

// Value is a node's value field. Editors send it as either a JSON string or
// a JSON number; the original text is kept so emission is lossless.
type Value struct {
	raw      string
	isNumber bool // decoded from a numeric token, not a string
}

// StringValue builds a Value from text
func StringValue(s string) Value { return Value{raw: s} }

// NumberValue builds a Value from a number
func NumberValue(f float64) Value {
	return Value{raw: strconv.FormatFloat(f, 'f', -1, 64), isNumber: true}
}

// String returns the value as text
func (v Value) String() string { return v.raw }

// IsZero reports whether the value is unset; used by omitempty
func (v Value) IsZero() bool { return v.raw == "" && !v.isNumber }

var (
	decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	radixLiteral   = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// Number parses the value the way a JavaScript Number() call would:
// surrounding whitespace is ignored, empty text is 0, hex/octal/binary
// prefixes are accepted, anything else non-numeric fails. Infinity and NaN
// are reported as non-numeric since no target can spell them portably.
func (v Value) Number() (float64, bool) {
	s := strings.TrimSpace(v.raw)
	if s == "" {
		return 0, true
	}

	if radixLiteral.MatchString(s) {
		base := 16
		switch s[1] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		n, err := strconv.ParseUint(s[2:], base, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}

	if !decimalLiteral.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// MaxCount bounds loop counts and timer delays. JavaScript timers fire at
// once past it and 32-bit loop counters in the C-like targets would wrap.
const MaxCount = math.MaxInt32

// Count returns the value as a whole count for a loop or a delay in ms.
// A fraction rounds up, matching a `i < 2.5` loop that runs 3 times;
// negatives are 0 and large values clamp to MaxCount. An unset or
// non-numeric value gives def.
func (v Value) Count(def int) int {
	if v.IsZero() {
		return def
	}
	f, ok := v.Number()
	if !ok {
		return def
	}
	switch {
	case f <= 0:
		return 0
	case f >= MaxCount:
		return MaxCount
	}
	return int(math.Ceil(f))
}

// FormatNumber renders f as a plain numeric literal: integers without a
// fraction, no exponent below 1e21
func FormatNumber(f float64) string {
	if f == 0 {
		return "0" // also folds -0
	}
	if math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// MarshalJSON keeps numbers as numbers
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNumber {
		return []byte(v.raw), nil
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON accepts a string, a number or null
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Value{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "value")
		}
		*v = Value{raw: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Newf("value must be a string or number, got %s", string(data))
	}
	*v = Value{raw: n.String(), isNumber: true}
	return nil
}

// MarshalYAML keeps numbers as numbers
func (v Value) MarshalYAML() (interface{}, error) {
	if v.isNumber {
		if f, ok := v.Number(); ok {
			return f, nil
		}
	}
	return v.raw, nil
}

// UnmarshalYAML accepts any scalar
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf("value must be a scalar (line %d)", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*v = Value{}
	case "!!int", "!!float":
		*v = Value{raw: node.Value, isNumber: true}
	default:
		*v = Value{raw: node.Value}
	}
	return nil
}
