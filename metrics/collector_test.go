package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/devtycoon/forge/raid"
)

func TestObserveCompile(t *testing.T) {
	c := NewCollector("test")
	c.ObserveCompile("python", ResultOK, 2*time.Millisecond)
	c.ObserveCompile("python", ResultOK, time.Millisecond)
	c.ObserveCompile("lua", ResultInvalid, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.CompileRequests.WithLabelValues("python", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CompileRequests.WithLabelValues("lua", ResultInvalid)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.CompileDuration))
}

func TestStatusClass(t *testing.T) {
	c := NewCollector("")
	c.ObserveHTTP("GET", "/health", 200)
	c.ObserveHTTP("POST", "/api/compile", 422)
	c.ObserveHTTP("POST", "/api/compile", 400)
	c.ObserveHTTP("GET", "/api/graphs", 503)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("POST", "/api/compile", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/graphs", "5xx")))
}

type discardSink struct{}

func (discardSink) Deliver(raid.Event) bool { return true }
func (discardSink) RoomClosed(string) {}
func (discardSink) Replaced(string) {}

func TestObservesRaidRegistry(t *testing.T) {
	c := NewCollector("test")
	r := raid.NewRegistry(raid.Options{Observer: c}, zaptest.NewLogger(t).Sugar())

	_, err := r.Join("vault", raid.Participant{ID: "a"}, discardSink{})
	require.NoError(t, err)
	_, err = r.Join("vault", raid.Participant{ID: "b"}, discardSink{})
	require.NoError(t, err)
	require.NoError(t, r.Emit("vault", raid.Event{Type: raid.EventDamage, PlayerID: "a"}))
	require.NoError(t, r.Emit("vault", raid.Event{Type: raid.EventDamage, PlayerID: "b"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.RaidRooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.RaidParticipants))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.RaidEvents.WithLabelValues("damage")))

	r.Close()
	assert.Equal(t, 0.0, testutil.ToFloat64(c.RaidRooms))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.RaidParticipants))
}

func TestHandlerServesRegistry(t *testing.T) {
	c := NewCollector("test")
	c.MessageDropped()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "test_raid_dropped_messages_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
