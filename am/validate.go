package am

import (
	"github.com/devtycoon/forge/errors"
)

// supportedLanguages must match the compiler registry
var supportedLanguages = map[string]bool{
	"javascript": true,
	"python":     true,
	"cpp":        true,
	"rust":       true,
	"go":         true,
	"sql":        true,
	"lua":        true,
}

// IsSupportedLanguage reports whether name is a compile target
func IsSupportedLanguage(name string) bool {
	return supportedLanguages[name]
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.Newf("server.port cannot be 0 (omit for default port %d)", DefaultServerPort)
	}
	if c.Server.Port != nil && (*c.Server.Port < 0 || *c.Server.Port > 65535) {
		return errors.Newf("server.port must be between 1 and 65535, got %d", *c.Server.Port)
	}

	if c.Server.LogTheme != "" && c.Server.LogTheme != "everforest" && c.Server.LogTheme != "gruvbox" {
		return errors.Newf("server.log_theme must be everforest or gruvbox, got %q", c.Server.LogTheme)
	}

	// Compiler: empty language = default
	if c.Compiler.DefaultLanguage != "" && !supportedLanguages[c.Compiler.DefaultLanguage] {
		return errors.Newf("compiler.default_language %q is not supported", c.Compiler.DefaultLanguage)
	}
	if c.Compiler.MaxNodes < 0 {
		return errors.Newf("compiler.max_nodes must be >= 0, got %d", c.Compiler.MaxNodes)
	}

	// Raid limits: 0 = unlimited, negative = invalid
	if c.Raid.TeardownGraceMS < 0 {
		return errors.Newf("raid.teardown_grace_ms must be >= 0, got %d", c.Raid.TeardownGraceMS)
	}
	if c.Raid.MaxParticipants < 0 {
		return errors.Newf("raid.max_participants must be >= 0, got %d", c.Raid.MaxParticipants)
	}
	if c.Raid.EventLogLimit < 0 {
		return errors.Newf("raid.event_log_limit must be >= 0, got %d", c.Raid.EventLogLimit)
	}
	if c.Raid.EventsPerSecond < 0 {
		return errors.Newf("raid.events_per_second must be >= 0, got %f", c.Raid.EventsPerSecond)
	}
	if c.Raid.EventBurst < 0 {
		return errors.Newf("raid.event_burst must be >= 0, got %d", c.Raid.EventBurst)
	}

	return nil
}
