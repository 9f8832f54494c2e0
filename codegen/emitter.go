package codegen

import (
	"fmt"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
)

var (
	// ErrCycle is returned when a path reaches a node already on that path
	ErrCycle = errors.New("cycle in graph")

	// ErrTooLarge is returned when re-inlined branches expand past the
	// emission limit
	ErrTooLarge = errors.New("graph expands too far")
)

// DefaultMaxEmitted bounds node emissions per compile. Diamonds are
// re-inlined per branch, so emission count can exceed node count.
const DefaultMaxEmitted = 1 << 16

const (
	defaultTimerMS   = 1000
	defaultLoopCount = 1
	defaultTone      = 440
	defaultSpawn     = "enemy"
)

// Stats describes one emission
type Stats struct {
	Nodes    int `json:"nodes"`
	Entries  int `json:"entries"`
	Emitted  int `json:"emitted"`
	MaxDepth int `json:"max_depth"`
	Lines    int `json:"lines"`
}

// Output is a generated source file
type Output struct {
	Language string    `json:"language"`
	Filename string    `json:"filename"`
	Source   string    `json:"source"`
	Features *Features `json:"-"`
	Stats    Stats     `json:"stats"`
}

// Options tunes emission
type Options struct {
	// MaxEmitted bounds node emissions; 0 means DefaultMaxEmitted
	MaxEmitted int
}

type emitter struct {
	d      Dialect
	caps   Capabilities
	idx    *graph.Index
	w      *Writer
	feats  *Features
	onPath map[string]bool
	stats  Stats
	limit  int
}

// Emit generates source for g with DefaultMaxEmitted
func Emit(g *graph.Graph, d Dialect) (*Output, error) {
	return EmitWith(g, d, Options{})
}

// EmitWith walks g depth-first from its event-start nodes and spells the
// result in d. It never mutates g.
func EmitWith(g *graph.Graph, d Dialect, opts Options) (*Output, error) {
	limit := opts.MaxEmitted
	if limit <= 0 {
		limit = DefaultMaxEmitted
	}
	e := &emitter{
		d:      d,
		caps:   d.Capabilities(),
		idx:    graph.NewIndex(g),
		w:      &Writer{},
		feats:  &Features{},
		onPath: make(map[string]bool),
		limit:  limit,
	}
	e.stats.Nodes = len(g.Nodes)

	entries := e.idx.EntryNodes()
	e.stats.Entries = len(entries)
	if len(entries) > 0 {
		for _, n := range entries {
			if err := e.path(n, 1); err != nil {
				return nil, err
			}
		}
	} else {
		// No entry: declare UI elements in order, without their flow
		for _, n := range e.idx.UINodes() {
			if err := e.enter(n, 1, e.uiOnly); err != nil {
				return nil, err
			}
		}
	}

	source := e.assemble(g.Name, len(entries) > 0 || e.caps.RequiresEntry)
	return &Output{
		Language: d.Language(),
		Filename: "main." + d.FileExtension(),
		Source:   source,
		Features: e.feats,
		Stats:    e.stats,
	}, nil
}

func (e *emitter) assemble(name string, wrapped bool) string {
	p := Program{Name: name, Features: e.feats, Wrapped: wrapped}
	out := &Writer{}

	if prelude := e.d.Prelude(p); prelude != "" {
		out.Line(prelude)
		out.Blank()
	}

	if wrapped {
		entry := e.d.Entry(p)
		out.Line(entry.Open)
		out.Indent()
		start := out.Len()
		out.Line(entry.Head)
		out.Append(e.w)
		out.Line(entry.Tail)
		if out.Len() == start {
			out.Line(e.caps.EmptyBlock)
		}
		out.Dedent()
		out.Line(entry.Close)
	} else {
		out.Append(e.w)
	}
	out.Line(e.d.Epilogue(p))

	e.stats.Lines = out.Len()
	return out.Render(e.caps.Indent)
}

// enter marks n on the current path for the duration of fn
func (e *emitter) enter(n *graph.Node, depth int, fn func(*graph.Node, int) error) error {
	if e.onPath[n.ID] {
		return errors.Wrapf(ErrCycle, "node %s is reached again on its own path", n.ID)
	}
	e.stats.Emitted++
	if e.stats.Emitted > e.limit {
		return errors.Wrapf(ErrTooLarge, "more than %d node emissions", e.limit)
	}
	if depth > e.stats.MaxDepth {
		e.stats.MaxDepth = depth
	}
	e.onPath[n.ID] = true
	defer delete(e.onPath, n.ID)
	return fn(n, depth)
}

// path emits n and everything its continuation leads to
func (e *emitter) path(n *graph.Node, depth int) error {
	return e.enter(n, depth, e.node)
}

// follow continues along handle when it resolves to a node. A missing
// connection or dangling target ends the path.
func (e *emitter) follow(n *graph.Node, handle graph.Handle, depth int) error {
	if handle == "" {
		return nil
	}
	next, ok := e.idx.Next(n.ID, handle)
	if !ok {
		return nil
	}
	return e.path(next, depth+1)
}

func (e *emitter) node(n *graph.Node, depth int) error {
	spec, _ := graph.Spec(n.Type)

	switch n.Type {
	case graph.TypeLogicIf:
		return e.branch(n, depth)
	case graph.TypeLogicLoop:
		return e.loop(n, depth)
	case graph.TypeLogicTimer:
		return e.timer(n, depth)
	case graph.TypeUIButton, graph.TypeUIInput, graph.TypeUIText:
		if err := e.uiOnly(n, depth); err != nil {
			return err
		}
	default:
		e.w.Line(e.statement(n))
	}
	return e.follow(n, spec.Continuation, depth)
}

func (e *emitter) statement(n *graph.Node) string {
	d := n.Data
	switch n.Type {
	case graph.TypeVarSet:
		e.feats.UseVariable(d.VariableName)
		return e.d.Assign(d.VariableName, d.Value)
	case graph.TypeMathAdd, graph.TypeMathSub:
		e.feats.UseVariable(d.VariableName)
		e.feats.Arithmetic = true
		if _, ok := d.Value.Number(); !ok {
			e.feats.Concat = true
		}
		return e.d.Increment(d.VariableName, d.Value, n.Type == graph.TypeMathSub)
	case graph.TypeVarGet:
		e.feats.UseVariable(d.VariableName)
		return e.d.ReadVariable(d.VariableName)
	case graph.TypeIOInput:
		e.feats.UseVariable(d.VariableName)
		e.feats.Input = true
		return e.d.ReadInput(d.VariableName, d.Label)
	case graph.TypeIOPrint:
		e.feats.Printing = true
		if d.VariableName != "" {
			e.feats.UseVariable(d.VariableName)
			return e.d.PrintVariable(d.VariableName)
		}
		return e.d.Log(message(d))
	case graph.TypeActionLog:
		e.feats.Printing = true
		return e.d.Log(message(d))
	case graph.TypeActionAlert:
		e.feats.Alerts = true
		return e.d.Alert(message(d))
	case graph.TypeActionSpawn:
		e.feats.Spawns = true
		name := d.Label
		if name == "" {
			name = d.Value.String()
		}
		if name == "" {
			name = defaultSpawn
		}
		return e.d.Spawn(name)
	case graph.TypeActionSound:
		e.feats.Sounds = true
		freq, ok := d.Value.Number()
		if !ok || d.Value.IsZero() {
			freq = defaultTone
		}
		return e.d.PlaySound(freq)
	}
	// event-start and unknown types emit nothing
	return ""
}

// message is the text an action shows: value, falling back to label
func message(d graph.NodeData) string {
	if s := d.Value.String(); s != "" {
		return s
	}
	return d.Label
}

// block writes b around body, filling an empty body when the language
// needs a statement there
func (e *emitter) block(b Block, body func() error) error {
	e.w.Line(b.Open)
	e.w.Indent()
	start := e.w.Len()
	e.w.Line(b.Head)
	if err := body(); err != nil {
		return err
	}
	e.w.Line(b.Tail)
	if e.w.Len() == start {
		e.w.Line(e.caps.EmptyBlock)
	}
	e.w.Dedent()
	return nil
}

// branch emits if/else. The branches are the whole continuation of the
// path; nothing follows the construct.
func (e *emitter) branch(n *graph.Node, depth int) error {
	e.feats.Compare = true
	e.feats.UseVariable(n.Data.VariableName)
	b := e.d.If(Condition{
		Variable: n.Data.VariableName,
		Operator: n.Data.EffectiveOperator(),
		Value:    n.Data.Value,
	})

	err := e.block(Block{Open: b.Open, Head: b.Head}, func() error {
		return e.follow(n, graph.HandleTrue, depth)
	})
	if err != nil {
		return err
	}

	if _, ok := e.idx.Next(n.ID, graph.HandleFalse); ok {
		err = e.block(Block{Open: b.Else}, func() error {
			return e.follow(n, graph.HandleFalse, depth)
		})
		if err != nil {
			return err
		}
	}
	e.w.Line(b.Close)
	return nil
}

// loop emits a counted loop with the loop branch as body, then the done
// branch after it
func (e *emitter) loop(n *graph.Node, depth int) error {
	count := n.Data.Value.Count(defaultLoopCount)
	counter := "i"
	if k := len(e.feats.Loops); k > 0 {
		counter = fmt.Sprintf("i%d", k+1)
	}
	e.feats.Loops = append(e.feats.Loops, counter)

	b := e.d.Loop(counter, count)
	err := e.block(Block{Open: b.Open, Head: b.Head, Tail: b.Tail}, func() error {
		return e.follow(n, graph.HandleLoop, depth)
	})
	if err != nil {
		return err
	}
	e.w.Line(b.Close)
	return e.follow(n, graph.HandleDone, depth)
}

// timer consumes the flow continuation: inside a callback when the
// language has async timers, inline after a sleep otherwise
func (e *emitter) timer(n *graph.Node, depth int) error {
	ms := n.Data.Value.Count(defaultTimerMS)
	e.feats.Sleep = true
	b := e.d.Timer(ms)

	if !e.caps.AsyncTimers {
		e.w.Line(b.Open)
		return e.follow(n, graph.HandleFlow, depth)
	}
	err := e.block(Block{Open: b.Open, Head: b.Head, Tail: b.Tail}, func() error {
		return e.follow(n, graph.HandleFlow, depth)
	})
	if err != nil {
		return err
	}
	e.w.Line(b.Close)
	return nil
}

// uiOnly declares a UI element and its event handler body, without
// following flow
func (e *emitter) uiOnly(n *graph.Node, depth int) error {
	e.feats.Elements = true
	key := n.ElementKey()
	e.w.Line(e.d.UIElement(n.Type, key, n.Data))

	var event graph.Handle
	switch n.Type {
	case graph.TypeUIButton:
		event = graph.HandleClick
	case graph.TypeUIInput:
		event = graph.HandleChange
	default:
		return nil
	}
	next, ok := e.idx.Next(n.ID, event)
	if !ok {
		return nil
	}

	if !e.caps.SupportsClosures {
		e.w.Line(e.caps.CommentToken + " " + EventTitle(event))
		return e.path(next, depth+1)
	}
	b := e.d.Handler(key, event)
	err := e.block(Block{Open: b.Open, Head: b.Head, Tail: b.Tail}, func() error {
		return e.path(next, depth+1)
	})
	if err != nil {
		return err
	}
	e.w.Line(b.Close)
	return nil
}
