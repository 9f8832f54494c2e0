// Package graphtest builds small graphs shared by compiler and dialect tests.
package graphtest

import (
	"strconv"

	"github.com/devtycoon/forge/graph"
)

// Node builds a node
func Node(id string, t graph.NodeType, data graph.NodeData) graph.Node {
	return graph.Node{ID: id, Type: t, Data: data}
}

// Conn builds a connection with a readable id
func Conn(from string, h graph.Handle, to string) graph.Connection {
	return graph.Connection{ID: from + "-" + string(h) + "-" + to, FromNode: from, ToNode: to, SourceHandle: h}
}

// Log builds an action-log node
func Log(id, msg string) graph.Node {
	return Node(id, graph.TypeActionLog, graph.NodeData{Value: graph.StringValue(msg)})
}

// Start builds an event-start node
func Start(id string) graph.Node {
	return Node(id, graph.TypeEventStart, graph.NodeData{})
}

// Hello is event-start -> action-log("hi")
func Hello() *graph.Graph {
	return &graph.Graph{
		Name:        "hello",
		Nodes:       []graph.Node{Start("start"), Log("log", "hi")},
		Connections: []graph.Connection{Conn("start", graph.HandleFlow, "log")},
	}
}

// Branch is if x > 5 with true -> log("yes") and false -> log("no")
func Branch() *graph.Graph {
	return &graph.Graph{
		Name: "branch",
		Nodes: []graph.Node{
			Start("start"),
			Node("cond", graph.TypeLogicIf, graph.NodeData{VariableName: "x", Operator: graph.OpGreater, Value: graph.StringValue("5")}),
			Log("yes", "yes"),
			Log("no", "no"),
		},
		Connections: []graph.Connection{
			Conn("start", graph.HandleFlow, "cond"),
			Conn("cond", graph.HandleTrue, "yes"),
			Conn("cond", graph.HandleFalse, "no"),
		},
	}
}

// Chain is event-start followed by n action-log nodes
func Chain(n int) *graph.Graph {
	g := &graph.Graph{Name: "chain", Nodes: []graph.Node{Start("start")}}
	prev := "start"
	for i := 0; i < n; i++ {
		id := "log" + strconv.Itoa(i)
		g.Nodes = append(g.Nodes, Log(id, id))
		g.Connections = append(g.Connections, Conn(prev, graph.HandleFlow, id))
		prev = id
	}
	return g
}

// Cycle is A -> B -> A reached from an event-start
func Cycle() *graph.Graph {
	return &graph.Graph{
		Name:  "cycle",
		Nodes: []graph.Node{Start("start"), Log("A", "a"), Log("B", "b")},
		Connections: []graph.Connection{
			Conn("start", graph.HandleFlow, "A"),
			Conn("A", graph.HandleFlow, "B"),
			Conn("B", graph.HandleFlow, "A"),
		},
	}
}

// Button is a lone ui-button whose click sets score = 10
func Button() *graph.Graph {
	return &graph.Graph{
		Name: "button",
		Nodes: []graph.Node{
			Node("btn", graph.TypeUIButton, graph.NodeData{Label: "Play", Color: "#3b82f6"}),
			Node("set", graph.TypeVarSet, graph.NodeData{VariableName: "score", Value: graph.NumberValue(10)}),
		},
		Connections: []graph.Connection{Conn("btn", graph.HandleClick, "set")},
	}
}

// KitchenSink uses every node type once:
//
//	start -> btn(click: log) -> field(change: name) -> set score=0
//	  -> loop x3 { add score 5 } done -> if score > 10
//	     true:  alert, sub score 1
//	     false: wait 500 -> print score -> spawn -> sound -> input -> get -> text
func KitchenSink() *graph.Graph {
	return &graph.Graph{
		Name: "kitchen sink",
		Nodes: []graph.Node{
			Start("start"),
			Node("btn", graph.TypeUIButton, graph.NodeData{Label: "Play"}),
			Log("clicked", "clicked"),
			Node("field", graph.TypeUIInput, graph.NodeData{Label: "Name"}),
			Node("name", graph.TypeVarSet, graph.NodeData{VariableName: "name", Value: graph.StringValue("player")}),
			Node("set", graph.TypeVarSet, graph.NodeData{VariableName: "score", Value: graph.NumberValue(0)}),
			Node("loop", graph.TypeLogicLoop, graph.NodeData{Value: graph.NumberValue(3)}),
			Node("add", graph.TypeMathAdd, graph.NodeData{VariableName: "score", Value: graph.NumberValue(5)}),
			Node("cond", graph.TypeLogicIf, graph.NodeData{VariableName: "score", Operator: graph.OpGreater, Value: graph.NumberValue(10)}),
			Node("alert", graph.TypeActionAlert, graph.NodeData{Value: graph.StringValue("win")}),
			Node("sub", graph.TypeMathSub, graph.NodeData{VariableName: "score", Value: graph.NumberValue(1)}),
			Node("wait", graph.TypeLogicTimer, graph.NodeData{Value: graph.NumberValue(500)}),
			Node("print", graph.TypeIOPrint, graph.NodeData{VariableName: "score"}),
			Node("spawn", graph.TypeActionSpawn, graph.NodeData{Label: "slime"}),
			Node("sound", graph.TypeActionSound, graph.NodeData{Value: graph.NumberValue(880)}),
			Node("ask", graph.TypeIOInput, graph.NodeData{VariableName: "answer", Label: "Ready?"}),
			Node("get", graph.TypeVarGet, graph.NodeData{VariableName: "answer"}),
			Node("text", graph.TypeUIText, graph.NodeData{Value: graph.StringValue("bye")}),
		},
		Connections: []graph.Connection{
			Conn("start", graph.HandleFlow, "btn"),
			Conn("btn", graph.HandleClick, "clicked"),
			Conn("btn", graph.HandleFlow, "field"),
			Conn("field", graph.HandleChange, "name"),
			Conn("field", graph.HandleFlow, "set"),
			Conn("set", graph.HandleFlow, "loop"),
			Conn("loop", graph.HandleLoop, "add"),
			Conn("loop", graph.HandleDone, "cond"),
			Conn("cond", graph.HandleTrue, "alert"),
			Conn("alert", graph.HandleFlow, "sub"),
			Conn("cond", graph.HandleFalse, "wait"),
			Conn("wait", graph.HandleFlow, "print"),
			Conn("print", graph.HandleFlow, "spawn"),
			Conn("spawn", graph.HandleFlow, "sound"),
			Conn("sound", graph.HandleFlow, "ask"),
			Conn("ask", graph.HandleFlow, "get"),
			Conn("get", graph.HandleFlow, "text"),
		},
	}
}
