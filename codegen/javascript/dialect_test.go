package javascript_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/codegen/javascript"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/graph/graphtest"
)

func emit(t *testing.T, g *graph.Graph) string {
	t.Helper()
	out, err := codegen.Emit(g, javascript.New())
	require.NoError(t, err)
	assert.Equal(t, "main.js", out.Filename)
	return out.Source
}

func TestHello(t *testing.T) {
	assert.Equal(t, "window.onload = () => {\n  console.log(\"hi\");\n};\n", emit(t, graphtest.Hello()))
}

func TestKitchenSink(t *testing.T) {
	src := emit(t, graphtest.KitchenSink())

	for _, want := range []string{
		"// kitchen sink (generated by devtycoon)\nconst variables = {};\nconst elements = {};\n",
		"function spawn(name) {",
		"function playTone(freq) {",
		"  elements[\"btn\"] = { type: \"button\", label: \"Play\", color: \"\" };\n" +
			"  elements[\"btn\"].onclick = () => {\n" +
			"    console.log(\"clicked\");\n" +
			"  };\n",
		"  elements[\"field\"].onchange = () => {\n    variables[\"name\"] = \"player\";\n  };\n",
		"  for (let i = 0; i < 3; i++) {\n    variables[\"score\"] = (variables[\"score\"] || 0) + 5;\n  }\n",
		"  if (variables[\"score\"] > 10) {\n" +
			"    alert(\"win\");\n" +
			"    variables[\"score\"] = (variables[\"score\"] || 0) - 1;\n" +
			"  } else {\n" +
			"    setTimeout(() => {\n" +
			"      console.log(variables[\"score\"]);\n" +
			"      spawn(\"slime\");\n" +
			"      playTone(880);\n" +
			"      variables[\"answer\"] = prompt(\"Ready?\");\n" +
			"      var answer = variables[\"answer\"];\n" +
			"      elements[\"text\"] = { type: \"text\", label: \"bye\", color: \"\" };\n" +
			"    }, 500);\n" +
			"  }\n",
	} {
		assert.Contains(t, src, want)
	}
}

func TestNestedLoopsGetDistinctCounters(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			graphtest.Start("start"),
			graphtest.Node("outer", graph.TypeLogicLoop, graph.NodeData{Value: graph.NumberValue(2)}),
			graphtest.Node("inner", graph.TypeLogicLoop, graph.NodeData{Value: graph.NumberValue(4)}),
			graphtest.Log("tick", "tick"),
		},
		Connections: []graph.Connection{
			graphtest.Conn("start", graph.HandleFlow, "outer"),
			graphtest.Conn("outer", graph.HandleLoop, "inner"),
			graphtest.Conn("inner", graph.HandleLoop, "tick"),
		},
	}

	src := emit(t, g)
	assert.Contains(t, src, "  for (let i = 0; i < 2; i++) {\n    for (let i2 = 0; i2 < 4; i2++) {\n      console.log(\"tick\");\n")
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`say "hi"`, `"say \"hi\""`},
		{"a\nb", `"a\nb"`},
		{"line\u2028sep", `"line\u2028sep"`},
		{"tab\x01", `"tab\x01"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, javascript.Quote(tt.in))
	}
}

func TestTextIncrement(t *testing.T) {
	d := javascript.New()
	assert.Equal(t, `variables["s"] = (variables["s"] || "") + "!";`, d.Increment("s", graph.StringValue("!"), false))
}
