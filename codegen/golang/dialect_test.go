package golang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/codegen/golang"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/graph/graphtest"
)

func emit(t *testing.T, g *graph.Graph) string {
	t.Helper()
	out, err := codegen.Emit(g, golang.New())
	require.NoError(t, err)
	assert.Equal(t, "main.go", out.Filename)
	return out.Source
}

func TestHello(t *testing.T) {
	want := "// hello (generated by devtycoon)\n" +
		"package main\n" +
		"\n" +
		"import (\n" +
		"\t\"fmt\"\n" +
		")\n" +
		"\n" +
		"func main() {\n" +
		"\tfmt.Println(\"hi\")\n" +
		"}\n"
	assert.Equal(t, want, emit(t, graphtest.Hello()))
}

func TestEmptyGraphStillHasMain(t *testing.T) {
	src := emit(t, &graph.Graph{})
	assert.Equal(t, "// Generated by devtycoon\npackage main\n\nfunc main() {\n}\n", src)
}

func TestImportsFollowFeatures(t *testing.T) {
	src := emit(t, graphtest.KitchenSink())

	assert.Contains(t, src, "import (\n\t\"bufio\"\n\t\"fmt\"\n\t\"os\"\n\t\"strings\"\n\t\"time\"\n)\n")
	assert.Contains(t, src, "func num(v any) float64 {")
	assert.Contains(t, src, "func readLine(prompt string) string {")
	assert.Contains(t, src, "func spawn(name string) {")
	assert.Contains(t, src, "func playTone(freq float64) {")
	assert.NotContains(t, src, "func without(", "no text arithmetic in this graph")
}

func TestKitchenSinkBody(t *testing.T) {
	src := emit(t, graphtest.KitchenSink())

	for _, want := range []string{
		"\telements[\"btn\"] = map[string]string{\"type\": \"button\", \"label\": \"Play\", \"color\": \"\"}\n\t// On Click:\n\tfmt.Println(\"clicked\")\n",
		"\tvariables[\"score\"] = float64(0)\n",
		"\tfor i := 0; i < 3; i++ {\n\t\tvariables[\"score\"] = num(variables[\"score\"]) + 5\n\t}\n",
		"\tif num(variables[\"score\"]) > 10 {\n",
		"\t} else {\n\t\ttime.Sleep(500 * time.Millisecond)\n\t\tfmt.Println(variables[\"score\"])\n",
		"\t\tvariables[\"answer\"] = readLine(\"Ready?\")\n\t\tanswer := variables[\"answer\"]\n\t\t_ = answer\n",
	} {
		assert.Contains(t, src, want)
	}
}

func TestConditions(t *testing.T) {
	d := golang.New()
	tests := []struct {
		name string
		c    codegen.Condition
		want string
	}{
		{"numeric", codegen.Condition{Variable: "x", Operator: ">", Value: graph.NumberValue(5)}, `if num(variables["x"]) > 5 {`},
		{"string equality", codegen.Condition{Variable: "x", Operator: "==", Value: graph.StringValue("bob")}, `if variables["x"] == "bob" {`},
		{"string ordering", codegen.Condition{Variable: "x", Operator: "<", Value: graph.StringValue("m")}, `if str(variables["x"]) < "m" {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.If(tt.c).Open)
		})
	}
}

func TestTextArithmeticUsesStrings(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			graphtest.Start("start"),
			graphtest.Node("sub", graph.TypeMathSub, graph.NodeData{VariableName: "s", Value: graph.StringValue("!")}),
		},
		Connections: []graph.Connection{graphtest.Conn("start", graph.HandleFlow, "sub")},
	}

	src := emit(t, g)
	assert.Contains(t, src, "import (\n\t\"fmt\"\n\t\"strings\"\n)\n")
	assert.Contains(t, src, "func without(s, suffix string) string {")
	assert.Contains(t, src, `variables["s"] = without(str(variables["s"]), "!")`)
}
