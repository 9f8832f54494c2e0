package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default values shared by SetDefaults and the Config accessors
const (
	DefaultDatabasePath     = "devtycoon.db"
	DefaultLanguage         = "javascript"
	DefaultLogTheme         = "everforest"
	DefaultTeardownGraceMS  = 5000
	DefaultMaxParticipants  = 32
	DefaultEventLogLimit    = 500
	DefaultEventsPerSecond  = 20.0
	DefaultEventBurst       = 40
	DefaultNATSSubjectRoot  = "devtycoon.raid"
	DefaultCompilerMaxNodes = 2000
)

var defaultAllowedOrigins = []string{
	"http://localhost",
	"https://localhost",
	"http://127.0.0.1",
	"https://127.0.0.1",
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", DefaultDatabasePath)

	// Server configuration defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", defaultAllowedOrigins)
	v.SetDefault("server.log_theme", DefaultLogTheme)

	// Compiler defaults
	v.SetDefault("compiler.default_language", DefaultLanguage)
	v.SetDefault("compiler.max_nodes", DefaultCompilerMaxNodes)

	// Raid defaults
	v.SetDefault("raid.teardown_grace_ms", DefaultTeardownGraceMS) // 5s after complete
	v.SetDefault("raid.max_participants", DefaultMaxParticipants)
	v.SetDefault("raid.event_log_limit", DefaultEventLogLimit)
	v.SetDefault("raid.events_per_second", DefaultEventsPerSecond)
	v.SetDefault("raid.event_burst", DefaultEventBurst)

	// Event republishing defaults (no NATS unless configured)
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", DefaultNATSSubjectRoot)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	// Database path
	v.BindEnv("database.path", "DEVTYCOON_DATABASE_PATH")

	// Broker credentials may be embedded in the URL
	v.BindEnv("events.nats_url", "DEVTYCOON_NATS_URL", "NATS_URL")
}

// GetServerPort returns the configured server port
// Returns server.port from config, or DefaultServerPort if not configured
func GetServerPort() int {
	cfg, err := Load()
	if err != nil {
		return DefaultServerPort
	}
	return cfg.GetServerPort()
}

// GetServerPort returns the configured port or DefaultServerPort
func (c *Config) GetServerPort() int {
	if c.Server.Port == nil || *c.Server.Port <= 0 {
		return DefaultServerPort
	}
	return *c.Server.Port
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetServerAllowedOrigins returns the allowed CORS origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return append([]string(nil), defaultAllowedOrigins...)
	}
	return c.Server.AllowedOrigins
}

// GetServerLogTheme returns the log theme (default: everforest)
func (c *Config) GetServerLogTheme() string {
	if c.Server.LogTheme == "" {
		return DefaultLogTheme
	}
	return c.Server.LogTheme
}

// GetDefaultLanguage returns the compile language used when a graph names none
func (c *Config) GetDefaultLanguage() string {
	if c.Compiler.DefaultLanguage == "" {
		return DefaultLanguage
	}
	return c.Compiler.DefaultLanguage
}

// GetRaidConfig returns the raid configuration with defaults applied for
// unset values. Explicit zero limits mean unlimited and are kept.
func (c *Config) GetRaidConfig() RaidConfig {
	cfg := c.Raid
	if cfg.TeardownGraceMS == 0 {
		cfg.TeardownGraceMS = DefaultTeardownGraceMS
	}
	if cfg.EventsPerSecond > 0 && cfg.EventBurst == 0 {
		cfg.EventBurst = DefaultEventBurst
	}
	return cfg
}

// GetSubjectPrefix returns the NATS subject root for raid events
func (c *Config) GetSubjectPrefix() string {
	if c.Events.SubjectPrefix == "" {
		return DefaultNATSSubjectRoot
	}
	return c.Events.SubjectPrefix
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Server: {Port: %d, LogTheme: %s}, Compiler: {Language: %s}, Raid: {Grace: %dms, Max: %d}}",
		c.GetDatabasePath(), c.GetServerPort(), c.GetServerLogTheme(), c.GetDefaultLanguage(),
		c.Raid.TeardownGraceMS, c.Raid.MaxParticipants)
}
