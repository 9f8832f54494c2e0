package cpp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/codegen/cpp"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/graph/graphtest"
)

func emit(t *testing.T, g *graph.Graph) string {
	t.Helper()
	out, err := codegen.Emit(g, cpp.New())
	require.NoError(t, err)
	assert.Equal(t, "main.cpp", out.Filename)
	return out.Source
}

func TestHello(t *testing.T) {
	want := "// hello (generated by devtycoon)\n" +
		"#include <iostream>\n" +
		"\n" +
		"int main() {\n" +
		"    std::cout << \"hi\" << std::endl;\n" +
		"    return 0;\n" +
		"}\n"
	assert.Equal(t, want, emit(t, graphtest.Hello()))
}

func TestConnectionlessGraphHasMain(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{graphtest.Start("start"), graphtest.Log("log", "unreached")}}

	src := emit(t, g)
	assert.Contains(t, src, "int main() {\n    return 0;\n}\n")
	assert.NotContains(t, src, "unreached")
}

func TestKitchenSink(t *testing.T) {
	src := emit(t, graphtest.KitchenSink())

	for _, want := range []string{
		"#include <chrono>\n#include <iostream>\n#include <map>\n#include <string>\n#include <thread>\n#include <variant>\n",
		"using Var = std::variant<double, std::string>;",
		"struct Element {",
		"std::string read_line(const std::string& prompt) {",
		"    elements[\"btn\"] = Element{\"button\", \"Play\", \"\"};\n    // On Click:\n",
		"    variables[\"name\"] = std::string(\"player\");\n",
		"    for (int i = 0; i < 3; ++i) {\n        variables[\"score\"] = num(variables[\"score\"]) + 5.0;\n    }\n",
		"    if (num(variables[\"score\"]) > 10.0) {\n",
		"        std::this_thread::sleep_for(std::chrono::milliseconds(500));\n",
		"        play_tone(880.0);\n",
		"        Var answer = variables[\"answer\"];\n",
		"    return 0;\n}\n",
	} {
		assert.Contains(t, src, want)
	}
}

func TestStringCondition(t *testing.T) {
	b := cpp.New().If(codegen.Condition{Variable: "name", Operator: "==", Value: graph.StringValue("bob")})
	assert.Equal(t, `if (text(variables["name"]) == "bob") {`, b.Open)
}

func TestOctalEscapes(t *testing.T) {
	assert.Equal(t, `std::cout << "a\001b" << std::endl;`, cpp.New().Log("a\x01b"))
}
