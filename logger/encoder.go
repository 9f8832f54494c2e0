package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	fg     string
	time   string
	accent string
	id     string
	number string
	warn   string
	warnBg string
	err    string
	errBg  string
	soft   string
}

// Gruvbox Dark: warm and muted
var gruvbox = palette{
	fg:     "\x1b[38;5;223m",
	time:   "\x1b[38;5;108m",
	accent: "\x1b[38;5;208m",
	id:     "\x1b[38;5;109m",
	number: "\x1b[38;5;175m",
	warn:   "\x1b[38;5;214m",
	warnBg: "\x1b[48;5;58m",
	err:    "\x1b[38;5;167m",
	errBg:  "\x1b[48;5;88m",
	soft:   "\x1b[38;5;142m",
}

// Everforest Dark: forest greens
var everforest = palette{
	fg:     "\x1b[38;5;223m",
	time:   "\x1b[38;5;107m",
	accent: "\x1b[38;5;65m",
	id:     "\x1b[38;5;109m",
	number: "\x1b[38;5;108m",
	warn:   "\x1b[38;5;179m",
	warnBg: "\x1b[48;5;58m",
	err:    "\x1b[38;5;167m",
	errBg:  "\x1b[48;5;52m",
	soft:   "\x1b[38;5;108m",
}

var (
	currentTheme = "everforest"
	bufferPool   = buffer.NewPool()
)

// SetTheme configures the color scheme for console output.
// Unknown names are ignored.
func SetTheme(theme string) {
	if theme == "everforest" || theme == "gruvbox" {
		currentTheme = theme
	}
}

func colors() palette {
	if currentTheme == "gruvbox" {
		return gruvbox
	}
	return everforest
}

// idFields are rendered first and in the ID colour
var idFields = map[string]bool{
	FieldRaidID:   true,
	FieldClientID: true,
	FieldGraphID:  true,
	FieldPlayerID: true,
}

// minimalEncoder renders one calm line per entry:
// "13:04:35  s.raid  Participant joined  r-7f3a c-19 (3 participants)"
type minimalEncoder struct {
	zapcore.Encoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := bufferPool.Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if lvl := levelLabel(ent.Level, c); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(c.accent)
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if rendered := renderFields(fields, c); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

func levelLabel(level zapcore.Level, c palette) string {
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return c.soft + "debug" + colorReset
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: server.raid -> s.raid
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

func fieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1)
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return ""
}

// renderFields prints IDs bare, then the remaining fields as key=value
func renderFields(fields []zapcore.Field, c palette) string {
	var ids, rest []string
	for _, field := range fields {
		val := fieldValue(field)
		if val == "" {
			continue
		}
		switch {
		case idFields[field.Key]:
			ids = append(ids, c.id+val+colorReset)
		case field.Key == FieldDurationMS:
			rest = append(rest, c.number+val+colorReset+"ms")
		case field.Key == FieldError:
			rest = append(rest, c.err+val+colorReset)
		default:
			rest = append(rest, c.soft+field.Key+"="+colorReset+val)
		}
	}
	return strings.Join(append(ids, rest...), " ")
}
