package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))
	return path
}

func TestMergeConfigFiles_LaterFileWinsPerKey(t *testing.T) {
	dir := t.TempDir()
	system := writeTOML(t, dir, "system.toml", "[server]\nport = 9000\nlog_theme = \"gruvbox\"\n")
	project := writeTOML(t, dir, "am.toml", "[server]\nport = 9100\n")

	v := viper.New()
	SetDefaults(v)
	sources := mergeConfigFiles(v, []configFile{
		{path: system, source: SourceSystem},
		{path: filepath.Join(dir, "missing.toml"), source: SourceUser},
		{path: project, source: SourceProject},
	})

	assert.Equal(t, 9100, v.GetInt("server.port"))
	assert.Equal(t, "gruvbox", v.GetString("server.log_theme"))
	assert.Equal(t, SourceProject, sources["server.port"].Source)
	assert.Equal(t, SourceSystem, sources["server.log_theme"].Source)
	assert.Equal(t, project, sources["server.port"].Path)
}

func TestBuildIntrospection(t *testing.T) {
	settings := map[string]interface{}{
		"raid": map[string]interface{}{
			"max_participants": 8,
			"event_burst":      10,
		},
		"database": map[string]interface{}{"path": "x.db"},
	}
	sources := map[string]SourceInfo{
		"raid.max_participants": {Source: SourceUser, Path: "/home/u/.devtycoon/am.toml"},
	}
	t.Setenv("DEVTYCOON_DATABASE_PATH", "env.db")

	result := buildIntrospection(settings, sources)
	require.Len(t, result.Settings, 3)

	byKey := map[string]SettingInfo{}
	for _, s := range result.Settings {
		byKey[s.Key] = s
	}

	assert.Equal(t, "database.path", result.Settings[0].Key, "keys are sorted")
	assert.Equal(t, SourceEnvironment, byKey["database.path"].Source)
	assert.Equal(t, SourceUser, byKey["raid.max_participants"].Source)
	assert.Equal(t, SourceDefault, byKey["raid.event_burst"].Source)
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "am.toml")

	require.NoError(t, SetValue(path, "raid.max_participants", "6"))
	require.NoError(t, SetValue(path, "server.log_theme", "gruvbox"))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Raid.MaxParticipants)
	assert.Equal(t, "gruvbox", cfg.Server.LogTheme)

	// Second write rotated a backup
	_, err = os.Stat(path + ".back1")
	assert.NoError(t, err)
}

func TestSetValue_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")

	err := SetValue(path, "raid.max_participants", "-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raid.max_participants")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "invalid value must not be written")

	assert.Error(t, SetValue(path, "raid..limit", "1"))
}

func TestParseScalar(t *testing.T) {
	assert.Equal(t, true, parseScalar("true"))
	assert.Equal(t, int64(42), parseScalar("42"))
	assert.Equal(t, 2.5, parseScalar("2.5"))
	assert.Equal(t, "lua", parseScalar("lua"))
}
