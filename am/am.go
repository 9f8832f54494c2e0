package am

import "time"

// Config represents the core DevTycoon configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Compiler CompilerConfig `mapstructure:"compiler"`
	Raid     RaidConfig     `mapstructure:"raid"`
	Events   EventsConfig   `mapstructure:"events"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the DevTycoon web server
type ServerConfig struct {
	Port           *int     `mapstructure:"port"` // nil = default 8787, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogTheme       string   `mapstructure:"log_theme"` // Color theme: gruvbox, everforest
}

// CompilerConfig configures the visual graph compiler
type CompilerConfig struct {
	DefaultLanguage string `mapstructure:"default_language"` // used when a graph names no language
	MaxNodes        int    `mapstructure:"max_nodes"`        // 0 = unlimited
}

// RaidConfig configures raid room limits and teardown
type RaidConfig struct {
	TeardownGraceMS int     `mapstructure:"teardown_grace_ms"` // delay between complete and teardown
	MaxParticipants int     `mapstructure:"max_participants"`  // 0 = unlimited
	EventLogLimit   int     `mapstructure:"event_log_limit"`   // oldest events dropped beyond this, 0 = unlimited
	EventsPerSecond float64 `mapstructure:"events_per_second"` // per connection, 0 = unlimited
	EventBurst      int     `mapstructure:"event_burst"`
}

// EventsConfig configures the raid event republisher
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"`       // empty = events stay in-process
	SubjectPrefix string `mapstructure:"subject_prefix"` // e.g. "devtycoon.raid"
}

// Server port constants
const (
	DefaultServerPort  = 8787
	FallbackServerPort = 8788
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// TeardownGrace returns the raid teardown delay as a duration
func (r RaidConfig) TeardownGrace() time.Duration {
	return time.Duration(r.TeardownGraceMS) * time.Millisecond
}
