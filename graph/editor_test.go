package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtycoon/forge/errors"
)

func TestAddNodeAppliesPaletteDefaults(t *testing.T) {
	g := &Graph{}

	n, err := g.AddNode("", TypeLogicTimer, Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "1000", n.Data.Value.String())
	assert.Equal(t, Position{X: 10, Y: 20}, n.Position)

	_, err = g.AddNode(n.ID, TypeActionLog, Position{})
	assert.True(t, errors.IsConflictError(err))

	_, err = g.AddNode("x", "", Position{})
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestUpdateAndMoveNode(t *testing.T) {
	g := &Graph{}
	_, err := g.AddNode("cond", TypeLogicIf, Position{})
	require.NoError(t, err)

	err = g.UpdateNodeData("cond", NodeData{VariableName: "hp", Operator: "<=", Value: NumberValue(1)})
	assert.True(t, errors.IsInvalidRequestError(err))

	require.NoError(t, g.UpdateNodeData("cond", NodeData{VariableName: "hp", Operator: OpLess, Value: NumberValue(1)}))
	n, _ := g.Node("cond")
	assert.Equal(t, "hp", n.Data.VariableName)

	require.NoError(t, g.MoveNode("cond", Position{X: 5}))
	assert.Equal(t, 5.0, n.Position.X)

	assert.True(t, errors.IsNotFoundError(g.MoveNode("ghost", Position{})))
	assert.True(t, errors.IsNotFoundError(g.UpdateNodeData("ghost", NodeData{})))
}

func TestConnectRules(t *testing.T) {
	g := &Graph{}
	for _, spec := range []struct {
		id string
		t  NodeType
	}{{"start", TypeEventStart}, {"cond", TypeLogicIf}, {"log", TypeActionLog}, {"other", TypeActionLog}} {
		_, err := g.AddNode(spec.id, spec.t, Position{})
		require.NoError(t, err)
	}

	c, err := g.Connect("start", "", "cond")
	require.NoError(t, err)
	assert.Equal(t, HandleFlow, c.SourceHandle)
	assert.NotEmpty(t, c.ID)

	_, err = g.Connect("cond", HandleTrue, "log")
	require.NoError(t, err)

	_, err = g.Connect("cond", HandleTrue, "other")
	assert.True(t, errors.IsConflictError(err), "one connection per handle")

	_, err = g.Connect("cond", HandleFlow, "other")
	assert.True(t, errors.IsInvalidRequestError(err), "logic-if has no flow output")

	_, err = g.Connect("log", HandleFlow, "log")
	assert.True(t, errors.IsInvalidRequestError(err))

	_, err = g.Connect("log", HandleFlow, "ghost")
	assert.True(t, errors.IsNotFoundError(err))

	assert.Len(t, g.Connections, 2)
}

func TestRemoveNodeCascades(t *testing.T) {
	g := &Graph{}
	for _, id := range []string{"a", "b", "c"} {
		_, err := g.AddNode(id, TypeActionLog, Position{})
		require.NoError(t, err)
	}
	_, err := g.Connect("a", HandleFlow, "b")
	require.NoError(t, err)
	_, err = g.Connect("b", HandleFlow, "c")
	require.NoError(t, err)

	removed, err := g.RemoveNode("b")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Empty(t, g.Connections)
	assert.Len(t, g.Nodes, 2)

	_, err = g.RemoveNode("b")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDisconnect(t *testing.T) {
	g := &Graph{}
	_, _ = g.AddNode("a", TypeActionLog, Position{})
	_, _ = g.AddNode("b", TypeActionLog, Position{})
	c, err := g.Connect("a", HandleFlow, "b")
	require.NoError(t, err)
	id := c.ID

	require.NoError(t, g.Disconnect(id))
	assert.Empty(t, g.Connections)
	assert.True(t, errors.IsNotFoundError(g.Disconnect(id)))
}

func TestCloneDoesNotAlias(t *testing.T) {
	g := &Graph{Name: "demo", Nodes: []Node{{ID: "a", Type: TypeActionLog}}}
	c := g.Clone()
	c.Nodes[0].ID = "changed"
	assert.Equal(t, "a", g.Nodes[0].ID)
	assert.Equal(t, Stats{TotalNodes: 1}, g.Stats())
}
