package codegen_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/codegen/javascript"
	"github.com/devtycoon/forge/codegen/python"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
)

func node(id string, t graph.NodeType, data graph.NodeData) graph.Node {
	return graph.Node{ID: id, Type: t, Data: data}
}

func conn(from string, h graph.Handle, to string) graph.Connection {
	return graph.Connection{ID: from + "-" + to, FromNode: from, ToNode: to, SourceHandle: h}
}

func logNode(id, msg string) graph.Node {
	return node(id, graph.TypeActionLog, graph.NodeData{Value: graph.StringValue(msg)})
}

func emitJS(t *testing.T, g *graph.Graph) *codegen.Output {
	t.Helper()
	out, err := codegen.Emit(g, javascript.New())
	require.NoError(t, err)
	return out
}

func TestEmitBranchTerminatesPath(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			node("cond", graph.TypeLogicIf, graph.NodeData{VariableName: "x", Operator: ">", Value: graph.StringValue("5")}),
			logNode("yes", "yes"),
			logNode("no", "no"),
		},
		Connections: []graph.Connection{
			conn("start", graph.HandleFlow, "cond"),
			conn("cond", graph.HandleTrue, "yes"),
			conn("cond", graph.HandleFalse, "no"),
		},
	}

	out := emitJS(t, g)
	want := `// Generated by devtycoon
const variables = {};

window.onload = () => {
  if (variables["x"] > 5) {
    console.log("yes");
  } else {
    console.log("no");
  }
};
`
	assert.Equal(t, want, out.Source)
	assert.Equal(t, 3, out.Stats.MaxDepth)
	assert.Equal(t, 4, out.Stats.Emitted)
	assert.Equal(t, 1, out.Stats.Entries)
	assert.Equal(t, "main.js", out.Filename)
}

func TestEmitOmitsElseWithoutFalseBranch(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			node("cond", graph.TypeLogicIf, graph.NodeData{VariableName: "name", Value: graph.StringValue("bob")}),
			logNode("hi", "hi bob"),
		},
		Connections: []graph.Connection{
			conn("start", graph.HandleFlow, "cond"),
			conn("cond", graph.HandleTrue, "hi"),
		},
	}

	src := emitJS(t, g).Source
	assert.Contains(t, src, `if (variables["name"] == "bob") {`)
	assert.NotContains(t, src, "else")
}

func TestEmitLoopBodyThenDone(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			node("loop", graph.TypeLogicLoop, graph.NodeData{Value: graph.NumberValue(3)}),
			node("inc", graph.TypeMathAdd, graph.NodeData{VariableName: "n", Value: graph.NumberValue(1)}),
			logNode("end", "done"),
		},
		Connections: []graph.Connection{
			conn("start", graph.HandleFlow, "loop"),
			conn("loop", graph.HandleLoop, "inc"),
			conn("loop", graph.HandleDone, "end"),
		},
	}

	src := emitJS(t, g).Source
	assert.Contains(t, src, `
  for (let i = 0; i < 3; i++) {
    variables["n"] = (variables["n"] || 0) + 1;
  }
  console.log("done");
`)
}

func TestEmitLoopCountFallsBackToOne(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			node("loop", graph.TypeLogicLoop, graph.NodeData{Value: graph.StringValue("lots")}),
		},
		Connections: []graph.Connection{conn("start", graph.HandleFlow, "loop")},
	}
	assert.Contains(t, emitJS(t, g).Source, "i < 1;")
}

func TestEmitLoopAndTimerCounts(t *testing.T) {
	tests := []struct {
		name  string
		loop  graph.Value
		timer graph.Value
		want  []string
	}{
		{"fraction rounds up", graph.StringValue("2.5"), graph.NumberValue(0.4), []string{"i < 3;", "}, 1);"}},
		{"huge values clamp", graph.StringValue("1e19"), graph.StringValue("1e19"), []string{"i < 2147483647;", "}, 2147483647);"}},
		{"negative is zero", graph.NumberValue(-2), graph.NumberValue(-5), []string{"i < 0;", "}, 0);"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &graph.Graph{
				Nodes: []graph.Node{
					node("start", graph.TypeEventStart, graph.NodeData{}),
					node("loop", graph.TypeLogicLoop, graph.NodeData{Value: tt.loop}),
					node("wait", graph.TypeLogicTimer, graph.NodeData{Value: tt.timer}),
					logNode("later", "later"),
				},
				Connections: []graph.Connection{
					conn("start", graph.HandleFlow, "loop"),
					conn("loop", graph.HandleDone, "wait"),
					conn("wait", graph.HandleFlow, "later"),
				},
			}
			src := emitJS(t, g).Source
			for _, want := range tt.want {
				assert.Contains(t, src, want)
			}
		})
	}
}

func TestEmitTimerConsumesFlow(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			node("wait", graph.TypeLogicTimer, graph.NodeData{Value: graph.NumberValue(250)}),
			logNode("later", "later"),
		},
		Connections: []graph.Connection{
			conn("start", graph.HandleFlow, "wait"),
			conn("wait", graph.HandleFlow, "later"),
		},
	}

	js := emitJS(t, g).Source
	assert.Contains(t, js, "  setTimeout(() => {\n    console.log(\"later\");\n  }, 250);\n")
	assert.Equal(t, 1, strings.Count(js, `console.log("later")`))

	py, err := codegen.Emit(g, python.New())
	require.NoError(t, err)
	assert.Contains(t, py.Source, "import time\n")
	assert.Contains(t, py.Source, "    time.sleep(0.25)\n    print(\"later\")\n")
}

func TestEmitUnknownTypeFollowsFlow(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			node("odd", "teleport", graph.NodeData{Value: graph.StringValue("ignored")}),
			logNode("after", "after"),
		},
		Connections: []graph.Connection{
			conn("start", graph.HandleFlow, "odd"),
			conn("odd", graph.HandleFlow, "after"),
		},
	}

	src := emitJS(t, g).Source
	assert.Contains(t, src, `console.log("after");`)
	assert.NotContains(t, src, "ignored")
}

func TestEmitMissingSuccessorEndsPath(t *testing.T) {
	g := &graph.Graph{
		Nodes:       []graph.Node{node("start", graph.TypeEventStart, graph.NodeData{}), logNode("a", "a")},
		Connections: []graph.Connection{conn("start", graph.HandleFlow, "a"), conn("a", graph.HandleFlow, "ghost")},
	}
	assert.Equal(t, "window.onload = () => {\n  console.log(\"a\");\n};\n", emitJS(t, g).Source)
}

func TestEmitFallbackDeclaresUIWithoutFlow(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("btn", graph.TypeUIButton, graph.NodeData{Label: "Go"}),
			node("set", graph.TypeVarSet, graph.NodeData{VariableName: "score", Value: graph.NumberValue(10)}),
			node("label", graph.TypeUIText, graph.NodeData{Value: graph.StringValue("Score")}),
		},
		Connections: []graph.Connection{
			conn("btn", graph.HandleClick, "set"),
			conn("btn", graph.HandleFlow, "label"),
		},
	}

	src := emitJS(t, g).Source
	assert.NotContains(t, src, "window.onload")
	assert.Contains(t, src, "elements[\"btn\"].onclick = () => {\n  variables[\"score\"] = 10;\n};\n")
	assert.Equal(t, 1, strings.Count(src, `elements["label"] = `), "flow is not followed in the fallback")

	py, err := codegen.Emit(g, python.New())
	require.NoError(t, err)
	assert.Contains(t, py.Source, "# On Click:\nvariables[\"score\"] = 10\n")
	assert.NotContains(t, py.Source, "def main")
}

func TestEmitDiamondIsReinlined(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			node("cond", graph.TypeLogicIf, graph.NodeData{VariableName: "x", Value: graph.NumberValue(1)}),
			logNode("a", "a"),
			logNode("b", "b"),
			logNode("join", "joined"),
		},
		Connections: []graph.Connection{
			conn("start", graph.HandleFlow, "cond"),
			conn("cond", graph.HandleTrue, "a"),
			conn("cond", graph.HandleFalse, "b"),
			conn("a", graph.HandleFlow, "join"),
			conn("b", graph.HandleFlow, "join"),
		},
	}
	assert.Equal(t, 2, strings.Count(emitJS(t, g).Source, `console.log("joined");`))
}

func TestEmitCycleIsAnError(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			logNode("A", "a"),
			logNode("B", "b"),
		},
		Connections: []graph.Connection{
			conn("start", graph.HandleFlow, "A"),
			conn("A", graph.HandleFlow, "B"),
			conn("B", graph.HandleFlow, "A"),
		},
	}
	_, err := codegen.Emit(g, javascript.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, codegen.ErrCycle))
	assert.Contains(t, err.Error(), "node A")
}

func TestEmitDepthIsProportionalToPathLength(t *testing.T) {
	for _, n := range []int{1, 10, 200} {
		g := &graph.Graph{Nodes: []graph.Node{node("start", graph.TypeEventStart, graph.NodeData{})}}
		prev := "start"
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("log%d", i)
			g.Nodes = append(g.Nodes, logNode(id, id))
			g.Connections = append(g.Connections, conn(prev, graph.HandleFlow, id))
			prev = id
		}
		out := emitJS(t, g)
		assert.Equal(t, n+1, out.Stats.MaxDepth)
		assert.Equal(t, n+1, out.Stats.Emitted)
	}
}

func TestEmitLimitStopsExpansion(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{node("start", graph.TypeEventStart, graph.NodeData{}), logNode("a", "a")}}
	g.Connections = []graph.Connection{conn("start", graph.HandleFlow, "a")}

	_, err := codegen.EmitWith(g, javascript.New(), codegen.Options{MaxEmitted: 1})
	assert.True(t, errors.Is(err, codegen.ErrTooLarge))
}

func TestEmitIsDeterministicAndPure(t *testing.T) {
	g := &graph.Graph{
		Name: "demo",
		Nodes: []graph.Node{
			node("start", graph.TypeEventStart, graph.NodeData{}),
			node("b", graph.TypeVarSet, graph.NodeData{VariableName: "b", Value: graph.NumberValue(2)}),
			node("a", graph.TypeVarSet, graph.NodeData{VariableName: "a", Value: graph.NumberValue(1)}),
		},
		Connections: []graph.Connection{conn("start", graph.HandleFlow, "b"), conn("b", graph.HandleFlow, "a")},
	}
	before := g.Clone()

	first := emitJS(t, g).Source
	second := emitJS(t, g).Source
	assert.Equal(t, first, second)
	assert.Equal(t, before, g)
	assert.True(t, strings.HasPrefix(first, "// demo (generated by devtycoon)\n"))
}
