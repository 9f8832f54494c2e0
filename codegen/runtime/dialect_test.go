package runtime_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/codegen/runtime"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/graph/graphtest"
)

func emit(t *testing.T, g *graph.Graph) string {
	t.Helper()
	out, err := codegen.Emit(g, runtime.New())
	require.NoError(t, err)
	assert.Equal(t, "main.html", out.Filename)
	assert.Equal(t, runtime.Language, out.Language)
	return out.Source
}

func TestButtonPage(t *testing.T) {
	src := emit(t, graphtest.Button())

	require.True(t, strings.HasPrefix(src, "<!DOCTYPE html>\n"))
	assert.True(t, strings.HasSuffix(src, "};\n</script>\n</body>\n</html>\n"))
	assert.Contains(t, src, "<title>button</title>")

	onload := strings.Index(src, "window.onload = () => {")
	create := strings.Index(src, `elements["btn"] = document.createElement("button");`)
	closing := strings.Index(src, "};\n</script>")
	require.NotEqual(t, -1, onload)
	require.NotEqual(t, -1, create)
	assert.Less(t, onload, create)
	assert.Less(t, create, closing)

	assert.Contains(t, src, "  elements[\"btn\"].textContent = \"Play\";\n"+
		"  elements[\"btn\"].style.color = \"#3b82f6\";\n"+
		"  document.getElementById(\"app\").appendChild(elements[\"btn\"]);\n"+
		"  elements[\"btn\"].addEventListener(\"click\", () => {\n"+
		"    variables[\"score\"] = 10;\n"+
		"  });\n")
}

func TestOutputGoesToLogPanel(t *testing.T) {
	src := emit(t, graphtest.Hello())
	assert.Contains(t, src, "  logOutput(\"hi\");\n")
	assert.Contains(t, src, "function logOutput(msg) {")
	assert.NotContains(t, src, "console.log(\"hi\")")
}

func TestInputUsesPlaceholder(t *testing.T) {
	line := runtime.New().UIElement(graph.TypeUIInput, "name", graph.NodeData{Label: "Your name"})
	assert.Contains(t, line, `elements["name"] = document.createElement("input");`)
	assert.Contains(t, line, `elements["name"].placeholder = "Your name";`)
	assert.NotContains(t, line, "style.color")
}

func TestScriptSafeQuoting(t *testing.T) {
	assert.Equal(t, `"<\/script>"`, runtime.Quote("</script>"))
	assert.Contains(t, runtime.New().Log("</script>"), `<\/script>`)
}

func TestTitleIsEscaped(t *testing.T) {
	g := graphtest.Hello()
	g.Name = "<b>&</b>"
	assert.Contains(t, emit(t, g), "<title>&lt;b&gt;&amp;&lt;/b&gt;</title>")
}

func TestEmptyGraphStillRuns(t *testing.T) {
	src := emit(t, &graph.Graph{})
	assert.Contains(t, src, "<title>DevTycoon Preview</title>")
	assert.Contains(t, src, "window.onload = () => {\n};\n</script>")
}
