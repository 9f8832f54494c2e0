package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func intPtr(i int) *int { return &i }

func TestLoad_Defaults(t *testing.T) {
	// Create isolated viper instance without loading user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Database.Path != DefaultDatabasePath {
		t.Errorf("expected default database path %q, got %q", DefaultDatabasePath, cfg.Database.Path)
	}
	if cfg.GetServerPort() != DefaultServerPort {
		t.Errorf("expected default port %d, got %d", DefaultServerPort, cfg.GetServerPort())
	}
	if cfg.Raid.TeardownGraceMS != 5000 {
		t.Errorf("expected teardown grace 5000ms, got %d", cfg.Raid.TeardownGraceMS)
	}
	if cfg.Compiler.DefaultLanguage != "javascript" {
		t.Errorf("expected default language javascript, got %q", cfg.Compiler.DefaultLanguage)
	}
	if cfg.Events.NATSURL != "" {
		t.Errorf("expected no NATS URL by default, got %q", cfg.Events.NATSURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate_ZeroValues(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty config is valid",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "zero port is invalid",
			config:  Config{Server: ServerConfig{Port: intPtr(0)}},
			wantErr: true,
		},
		{
			name:    "port above range is invalid",
			config:  Config{Server: ServerConfig{Port: intPtr(70000)}},
			wantErr: true,
		},
		{
			name:    "unknown theme is invalid",
			config:  Config{Server: ServerConfig{LogTheme: "solarized"}},
			wantErr: true,
		},
		{
			name:    "unsupported default language is invalid",
			config:  Config{Compiler: CompilerConfig{DefaultLanguage: "cobol"}},
			wantErr: true,
		},
		{
			name:    "zero max participants is valid (unlimited)",
			config:  Config{Raid: RaidConfig{MaxParticipants: 0}},
			wantErr: false,
		},
		{
			name:    "negative max participants is invalid",
			config:  Config{Raid: RaidConfig{MaxParticipants: -1}},
			wantErr: true,
		},
		{
			name:    "negative grace is invalid",
			config:  Config{Raid: RaidConfig{TeardownGraceMS: -5}},
			wantErr: true,
		},
		{
			name:    "negative rate is invalid",
			config:  Config{Raid: RaidConfig{EventsPerSecond: -0.5}},
			wantErr: true,
		},
		{
			name:    "negative max nodes is invalid",
			config:  Config{Compiler: CompilerConfig{MaxNodes: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"database.path", DefaultDatabasePath},
		{"server.port", DefaultServerPort},
		{"server.log_theme", "everforest"},
		{"compiler.default_language", "javascript"},
		{"raid.teardown_grace_ms", 5000},
		{"raid.max_participants", DefaultMaxParticipants},
		{"events.subject_prefix", "devtycoon.raid"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := v.Get(tt.key)
			if got != tt.expected {
				t.Errorf("default %s = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	content := `
[server]
port = 9001

[raid]
teardown_grace_ms = 250
max_participants = 4
`
	if err := os.WriteFile(path, []byte(content), DefaultFilePermissions); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if cfg.GetServerPort() != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.GetServerPort())
	}
	if cfg.Raid.TeardownGrace().Milliseconds() != 250 {
		t.Errorf("expected 250ms grace, got %v", cfg.Raid.TeardownGrace())
	}
	if cfg.Raid.MaxParticipants != 4 {
		t.Errorf("expected 4 participants, got %d", cfg.Raid.MaxParticipants)
	}
	// untouched keys keep defaults
	if cfg.Raid.EventLogLimit != DefaultEventLogLimit {
		t.Errorf("expected default event log limit, got %d", cfg.Raid.EventLogLimit)
	}
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("prefers am.toml", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test1", "subdir")
		os.MkdirAll(subDir, DefaultDirPermissions)

		os.WriteFile(filepath.Join(tmpDir, "test1", "am.toml"), []byte(""), DefaultFilePermissions)
		os.WriteFile(filepath.Join(tmpDir, "test1", "config.toml"), []byte(""), DefaultFilePermissions)

		t.Chdir(subDir)

		result := findProjectConfig()
		if result == "" {
			t.Fatal("expected to find config file")
		}
		if filepath.Base(result) != "am.toml" {
			t.Errorf("expected am.toml, got %s", filepath.Base(result))
		}
	})

	t.Run("fallback to config.toml", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test2", "subdir")
		os.MkdirAll(subDir, DefaultDirPermissions)
		os.WriteFile(filepath.Join(tmpDir, "test2", "config.toml"), []byte(""), DefaultFilePermissions)

		t.Chdir(subDir)

		result := findProjectConfig()
		if filepath.Base(result) != "config.toml" {
			t.Errorf("expected config.toml, got %q", result)
		}
	})
}

func TestConfigFileInUse_PrefersProject(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	projectDir := t.TempDir()
	projectConfig := filepath.Join(projectDir, "am.toml")
	os.WriteFile(projectConfig, []byte("[raid]\nmax_participants = 3\n"), DefaultFilePermissions)
	t.Chdir(projectDir)

	got := ConfigFileInUse()
	resolved, _ := filepath.EvalSymlinks(got)
	want, _ := filepath.EvalSymlinks(projectConfig)
	if resolved != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestGetRaidConfig_AppliesBurstDefault(t *testing.T) {
	cfg := Config{Raid: RaidConfig{EventsPerSecond: 5}}
	raid := cfg.GetRaidConfig()
	if raid.EventBurst != DefaultEventBurst {
		t.Errorf("expected burst %d, got %d", DefaultEventBurst, raid.EventBurst)
	}
	if raid.TeardownGraceMS != DefaultTeardownGraceMS {
		t.Errorf("expected default grace, got %d", raid.TeardownGraceMS)
	}
}

func TestGetDatabasePath_EnvOverride(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/override.db")
	path, err := GetDatabasePath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/override.db" {
		t.Errorf("expected override path, got %q", path)
	}
}
