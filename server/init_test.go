package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	appcfg "github.com/devtycoon/forge/am"
)

func TestRateFromConfig(t *testing.T) {
	unlimited := rateFromConfig(appcfg.RaidConfig{})
	assert.Equal(t, rate.Inf, unlimited.limit)

	rs := rateFromConfig(appcfg.RaidConfig{EventsPerSecond: 5})
	assert.Equal(t, rate.Limit(5), rs.limit)
	assert.Equal(t, 1, rs.burst, "burst is at least one event")

	rs = rateFromConfig(appcfg.RaidConfig{EventsPerSecond: 5, EventBurst: 10})
	assert.Equal(t, 10, rs.burst)
}

func TestLimitsFromConfig(t *testing.T) {
	l := limitsFromConfig(appcfg.RaidConfig{TeardownGraceMS: 250, MaxParticipants: 3, EventLogLimit: 7})
	assert.Equal(t, 250*time.Millisecond, l.TeardownGrace)
	assert.Equal(t, 3, l.MaxParticipants)
	assert.Equal(t, 7, l.EventLogLimit)
}

func TestWatchConfig_AppliesChanges(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	path := filepath.Join(t.TempDir(), "am.toml")
	write := func(body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	write(`[server]
allowed_origins = ["http://localhost"]

[raid]
max_participants = 4
`)

	srv.watchConfig(path, func() (*appcfg.Config, error) {
		return appcfg.LoadFromFile(path)
	}, 20*time.Millisecond)
	require.NotNil(t, srv.configWatcher)

	write(`[server]
allowed_origins = ["https://devtycoon.io"]

[raid]
max_participants = 2
events_per_second = 3
event_burst = 6
`)

	assert.Eventually(t, func() bool {
		return srv.raids.Limits().MaxParticipants == 2
	}, 5*time.Second, 20*time.Millisecond)

	srv.mu.RLock()
	origins := srv.allowedOrigins
	eventRate := srv.eventRate
	srv.mu.RUnlock()
	assert.Equal(t, []string{"https://devtycoon.io"}, origins)
	assert.Equal(t, rate.Limit(3), eventRate.limit)
	assert.Equal(t, 6, eventRate.burst)

	// An invalid file keeps the previous config
	write(`[raid]
max_participants = -1
`)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 2, srv.raids.Limits().MaxParticipants)
}

func TestWatchConfig_NoPath(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.WatchConfig("")
	assert.Nil(t, srv.configWatcher)
}
