package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtycoon/forge/events"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/graph/graphtest"
	"github.com/devtycoon/forge/internal/httpclient"
	"github.com/devtycoon/forge/storage"
)

func writeGraph(t *testing.T, dir, name string, g *graph.Graph, format graph.Format) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, graph.Encode(f, g, format))
	return path
}

func TestCompileJob_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	c, err := newCompiler()
	require.NoError(t, err)

	job := compileJob{
		compiler: c,
		path:     writeGraph(t, dir, "hello.yaml", graphtest.Hello(), graph.FormatYAML),
		language: graph.LangPython,
		output:   filepath.Join(dir, "out", "main.py"),
	}
	require.NoError(t, job.run())

	src, err := os.ReadFile(job.output)
	require.NoError(t, err)
	assert.Contains(t, string(src), `print("hi")`)
}

func TestCompileJob_Runtime(t *testing.T) {
	dir := t.TempDir()
	c, err := newCompiler()
	require.NoError(t, err)

	job := compileJob{
		compiler: c,
		path:     writeGraph(t, dir, "button.json", graphtest.Button(), graph.FormatJSON),
		runtime:  true,
		output:   filepath.Join(dir, "play.html"),
	}
	require.NoError(t, job.run())

	page, err := os.ReadFile(job.output)
	require.NoError(t, err)
	assert.Contains(t, string(page), "window.onload")
}

func TestCompileJob_RejectsCycle(t *testing.T) {
	dir := t.TempDir()
	c, err := newCompiler()
	require.NoError(t, err)

	job := compileJob{
		compiler: c,
		path:     writeGraph(t, dir, "cycle.json", graphtest.Cycle(), graph.FormatJSON),
		output:   filepath.Join(dir, "main.js"),
	}
	assert.Error(t, job.run())
	assert.NoFileExists(t, job.output)
}

func TestDescribeIssue(t *testing.T) {
	assert.Equal(t, "boom (node n1) [cycle]",
		describeIssue(graph.Issue{Code: graph.CodeCycle, Message: "boom", NodeID: "n1"}))
	assert.Equal(t, "bad (connection c1) [invalid_handle]",
		describeIssue(graph.Issue{Code: graph.CodeInvalidHandle, Message: "bad", ConnectionID: "c1"}))
	assert.Equal(t, "plain [too_many_nodes]",
		describeIssue(graph.Issue{Code: graph.CodeTooManyNodes, Message: "plain"}))
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://example.com/g.json"))
	assert.True(t, isURL("http://localhost:8787/g.yaml"))
	assert.False(t, isURL("game.json"))
	assert.False(t, isURL("file:///tmp/g.json"))
	assert.False(t, isURL("https://"))
}

func TestReadGraphSource_URL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		require.NoError(t, graph.Encode(w, graphtest.Branch(), graph.FormatYAML))
	}))
	defer ts.Close()

	fetcher := httpclient.NewFetcher(httpclient.Options{AllowPrivateIP: true})
	g, err := readGraphSource(context.Background(), ts.URL+"/graphs/branch.yaml", fetcher)
	require.NoError(t, err)
	assert.Equal(t, "branch", g.Name)
	assert.Len(t, g.Nodes, 4)

	_, err = readGraphSource(context.Background(), ts.URL+"/g.yaml", httpclient.NewFetcher(httpclient.Options{}))
	assert.Error(t, err, "loopback is refused unless allowed")
}

func TestGraphCommands(t *testing.T) {
	dir := t.TempDir()
	graphDBPath = filepath.Join(dir, "devtycoon.db")
	graphImportID = "g-hello"
	graphLanguage = "lua"
	graphInstallDir = filepath.Join(dir, "build")
	t.Cleanup(func() {
		graphDBPath, graphImportID, graphLanguage, graphInstallDir = "", "", "", ""
	})

	path := writeGraph(t, dir, "hello.json", graphtest.Hello(), graph.FormatJSON)
	require.NoError(t, runGraphImport(graphImportCmd, []string{path}))
	require.NoError(t, runGraphLs(graphLsCmd, nil))
	require.NoError(t, runGraphInstall(graphInstallCmd, []string{"g-hello"}))

	src, err := os.ReadFile(filepath.Join(graphInstallDir, "main.lua"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "hi")

	err = withStore(func(ctx context.Context, store *storage.GraphStore) error {
		a, err := store.GetArtifact(ctx, "g-hello", "main.lua")
		require.NoError(t, err)
		assert.Equal(t, string(src), a.Source)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, runGraphRm(graphRmCmd, []string{"g-hello"}))
	assert.Error(t, runGraphRm(graphRmCmd, []string{"g-hello"}), "already deleted")

	cycle := writeGraph(t, dir, "cycle.json", graphtest.Cycle(), graph.FormatJSON)
	assert.Error(t, runGraphImport(graphImportCmd, []string{cycle}), "invalid graphs are not saved")
}

func TestFormatRaidMessage(t *testing.T) {
	line := formatRaidMessage(events.Message{
		Subject: "devtycoon.raid.vault.loot",
		Data:    []byte(`{"seq":4,"raid_id":"vault","type":"loot","player_id":"alice","payload":{"gold":3}}`),
	})
	assert.Contains(t, line, "vault #4")
	assert.Contains(t, line, "loot")
	assert.Contains(t, line, "alice")
	assert.Contains(t, line, `{"gold":3}`)

	closed := formatRaidMessage(events.Message{
		Subject: "devtycoon.raid.vault.closed",
		Data:    []byte(`{"raid_id":"vault","completed":true}`),
	})
	assert.Contains(t, closed, `"completed":true`)

	raw := formatRaidMessage(events.Message{Subject: "devtycoon.raid.vault.x", Data: []byte("nope")})
	assert.Equal(t, "devtycoon.raid.vault.x nope", raw)
}
