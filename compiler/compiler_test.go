package compiler

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/devtycoon/forge/graph"
	grapherror "github.com/devtycoon/forge/graph/error"
	"github.com/devtycoon/forge/graph/graphtest"
)

func newTestCompiler(t *testing.T, opts Options) *Compiler {
	return New(opts, zaptest.NewLogger(t).Sugar())
}

func requireCategory(t *testing.T, err error, cat grapherror.Category, sub string) *grapherror.GraphError {
	t.Helper()
	require.Error(t, err)
	ge, ok := grapherror.As(err)
	require.True(t, ok, "expected a categorised error, got %v", err)
	assert.Equal(t, cat, ge.Category)
	assert.Equal(t, sub, ge.Subcategory)
	return ge
}

func TestEntryWrapperForEveryLanguage(t *testing.T) {
	wrappers := map[graph.Language]string{
		graph.LangJavaScript: "window.onload = () => {",
		graph.LangPython:     "def main():",
		graph.LangCPP:        "int main() {",
		graph.LangRust:       "fn main() {",
		graph.LangGo:         "func main() {",
		graph.LangSQL:        "BEGIN",
		graph.LangLua:        "local function main()",
	}
	c := newTestCompiler(t, Options{})
	g := &graph.Graph{Nodes: []graph.Node{graphtest.Start("start")}}

	for _, lang := range graph.Languages {
		t.Run(string(lang), func(t *testing.T) {
			src, err := c.Compile(g, lang)
			require.NoError(t, err)
			assert.Contains(t, src, wrappers[lang])
		})
	}
}

func TestHelloWorld(t *testing.T) {
	c := newTestCompiler(t, Options{})

	js, err := c.Compile(graphtest.Hello(), graph.LangJavaScript)
	require.NoError(t, err)
	assert.Contains(t, js, `console.log("hi")`)

	py, err := c.Compile(graphtest.Hello(), graph.LangPython)
	require.NoError(t, err)
	assert.Contains(t, py, `print("hi")`)
}

func TestBranchIsDeterministic(t *testing.T) {
	c := newTestCompiler(t, Options{})
	g := graphtest.Branch()

	first, err := c.Compile(g, graph.LangJavaScript)
	require.NoError(t, err)
	assert.Contains(t, first, "if (variables[\"x\"] > 5) {\n    console.log(\"yes\");\n  } else {\n    console.log(\"no\");\n  }")

	for i := 0; i < 5; i++ {
		again, err := c.Compile(g, graph.LangJavaScript)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLanguageResolution(t *testing.T) {
	c := newTestCompiler(t, Options{DefaultLanguage: graph.LangLua})
	g := graphtest.Hello()

	out, err := c.CompileGraph(g, "")
	require.NoError(t, err)
	assert.Equal(t, "lua", out.Language, "falls back to the default")

	g.Language = graph.LangRust
	out, err = c.CompileGraph(g, "")
	require.NoError(t, err)
	assert.Equal(t, "rust", out.Language, "graph language beats the default")

	out, err = c.CompileGraph(g, graph.LangGo)
	require.NoError(t, err)
	assert.Equal(t, "go", out.Language, "argument beats the graph")
	assert.Equal(t, "main.go", out.Filename)
}

func TestUnknownLanguage(t *testing.T) {
	c := newTestCompiler(t, Options{})

	_, err := c.Compile(graphtest.Hello(), "cobol")
	ge := requireCategory(t, err, grapherror.CategoryValidation, grapherror.SubcategoryValidationLanguage)
	assert.Equal(t, "cobol", ge.Context["language"])
	assert.Equal(t, 422, ge.HTTPStatus())
}

func TestCycleIsRejected(t *testing.T) {
	c := newTestCompiler(t, Options{})

	_, err := c.Compile(graphtest.Cycle(), graph.LangJavaScript)
	ge := requireCategory(t, err, grapherror.CategoryValidation, grapherror.SubcategoryValidationStructure)

	issues, ok := ge.Context["issues"].([]graph.Issue)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, graph.CodeCycle, issues[0].Code)
	assert.Contains(t, ge.UserMessage, "cycle through A -> B -> A")
}

func TestMultipleEdgesOnHandle(t *testing.T) {
	c := newTestCompiler(t, Options{})
	g := graphtest.Hello()
	g.Nodes = append(g.Nodes, graphtest.Log("other", "other"))
	g.Connections = append(g.Connections, graphtest.Conn("start", graph.HandleFlow, "other"))

	_, err := c.Compile(g, graph.LangJavaScript)
	ge := requireCategory(t, err, grapherror.CategoryValidation, grapherror.SubcategoryValidationStructure)
	issues := ge.Context["issues"].([]graph.Issue)
	assert.Equal(t, graph.CodeMultiEdge, issues[0].Code)
}

func TestDepthTracksChainLength(t *testing.T) {
	c := newTestCompiler(t, Options{})

	for _, n := range []int{1, 50, 500} {
		out, err := c.CompileGraph(graphtest.Chain(n), graph.LangPython)
		require.NoError(t, err)
		assert.Equal(t, n+1, out.Stats.MaxDepth)
		assert.Equal(t, n+1, out.Stats.Emitted)
	}
}

func TestEmissionLimit(t *testing.T) {
	c := newTestCompiler(t, Options{MaxEmitted: 10})

	_, err := c.Compile(graphtest.Chain(20), graph.LangJavaScript)
	ge := requireCategory(t, err, grapherror.CategoryCompile, grapherror.SubcategoryCompileTooLarge)
	assert.Equal(t, 422, ge.HTTPStatus())
}

func TestMaxNodes(t *testing.T) {
	c := newTestCompiler(t, Options{MaxNodes: 5})

	_, err := c.Compile(graphtest.Chain(10), graph.LangJavaScript)
	ge := requireCategory(t, err, grapherror.CategoryValidation, grapherror.SubcategoryValidationStructure)
	issues := ge.Context["issues"].([]graph.Issue)
	assert.Equal(t, graph.CodeTooManyNodes, issues[0].Code)
}

func TestButtonHandlerContainsAssignment(t *testing.T) {
	c := newTestCompiler(t, Options{})

	src, err := c.Compile(graphtest.Button(), graph.LangJavaScript)
	require.NoError(t, err)
	assert.Contains(t, src, "elements[\"btn\"].onclick = () => {\n  variables[\"score\"] = 10;\n};")
}

func TestCompileToRuntime(t *testing.T) {
	c := newTestCompiler(t, Options{})
	g := graphtest.Button()
	g.Language = graph.LangPython

	page, err := c.CompileToRuntime(g)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))

	create := strings.Index(page, `elements["btn"] = document.createElement`)
	onload := strings.Index(page, "window.onload")
	end := strings.Index(page, "};\n</script>")
	assert.True(t, onload < create && create < end, "element is created inside window.onload")

	assert.Equal(t, graph.LangPython, g.Language, "caller's graph is untouched")
}

func TestCompileToRuntimeRejectsCycles(t *testing.T) {
	_, err := newTestCompiler(t, Options{}).CompileToRuntime(graphtest.Cycle())
	requireCategory(t, err, grapherror.CategoryValidation, grapherror.SubcategoryValidationStructure)
}

func TestCheckAllowsWarnings(t *testing.T) {
	g := graphtest.Hello()
	g.Nodes = append(g.Nodes, graphtest.Node("mystery", "teleport", graph.NodeData{}))

	report := newTestCompiler(t, Options{}).Check(g, graph.LangLua)
	assert.True(t, report.OK())
	require.Len(t, report.Warnings(), 1)
	assert.Equal(t, graph.CodeUnknownType, report.Warnings()[0].Code)
}

func TestConcurrentCompiles(t *testing.T) {
	c := newTestCompiler(t, Options{})
	g := graphtest.KitchenSink()
	want, err := c.Compile(g, graph.LangRust)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Compile(g, graph.LangRust)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestPackageLevelHelpers(t *testing.T) {
	src, err := Compile(graphtest.Hello(), graph.LangLua)
	require.NoError(t, err)
	assert.Contains(t, src, `print("hi")`)

	page, err := CompileToRuntime(graphtest.Hello())
	require.NoError(t, err)
	assert.Contains(t, page, `logOutput("hi");`)
}
