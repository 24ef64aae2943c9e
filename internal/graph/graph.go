// Package graph holds the explored call graph: nodes keyed by function or
// unresolved target address, and at most one edge per rendered jump.
//
// A Model is single-writer. Callers check Lookup before creating a node;
// creating a node twice for one key is reported as ErrNodeExists.
package graph

import (
	"errors"
	"fmt"

	"github.com/zboralski/lattice"

	"callscope/internal/structure"
)

var (
	ErrNodeExists = errors.New("graph: node already exists")
	ErrNoNode     = errors.New("graph: no node for key")
	ErrBadCall    = errors.New("graph: call index out of range")
)

// KeyKind tells what a node stands for.
type KeyKind int

const (
	KindFunction   KeyKind = iota // resolved function
	KindUnresolved                // call target with no known function
	KindUnknown                   // shared node for target address 0
)

// Key identifies a node.
type Key struct {
	Kind KeyKind
	Addr uint64
}

// FunctionKey returns the key of the function at addr.
func FunctionKey(addr uint64) Key { return Key{Kind: KindFunction, Addr: addr} }

// UnresolvedKey returns the key of an unresolved call target. Address 0
// maps to the single shared unknown key.
func UnresolvedKey(addr uint64) Key {
	if addr == 0 {
		return Key{Kind: KindUnknown}
	}
	return Key{Kind: KindUnresolved, Addr: addr}
}

func (k Key) String() string {
	switch k.Kind {
	case KindFunction:
		return fmt.Sprintf("fn:0x%x", k.Addr)
	case KindUnresolved:
		return fmt.Sprintf("unresolved:0x%x", k.Addr)
	default:
		return "unknown"
	}
}

// VisualState is the rendering state of a node. Styling is up to the renderer.
type VisualState int

const (
	StateUnexpanded VisualState = iota
	StateExpanded
	StateUnknown
	StateUnresolved
)

func (s VisualState) String() string {
	switch s {
	case StateUnexpanded:
		return "unexpanded"
	case StateExpanded:
		return "expanded"
	case StateUnknown:
		return "unknown"
	case StateUnresolved:
		return "unresolved"
	}
	return fmt.Sprintf("VisualState(%d)", int(s))
}

// Node is one vertex. Function is nil for unresolved nodes.
type Node struct {
	ID       int
	Key      Key
	Label    string
	State    VisualState
	Function *structure.Function
}

// Edge is one rendered jump.
type Edge struct {
	ID   int
	From *Node
	To   *Node
	Jump structure.JumpKey
	Call bool
}

// Model owns node and edge existence plus the two indices that make
// insertion idempotent.
type Model struct {
	nodes    []*Node
	edges    []*Edge
	byKey    map[Key]*Node
	rendered map[structure.JumpKey]*Edge
	nextID   int
}

// New returns an empty model.
func New() *Model {
	m := &Model{}
	m.Clear()
	return m
}

// Clear removes all nodes and edges and resets both indices.
func (m *Model) Clear() {
	m.nodes = nil
	m.edges = nil
	m.byKey = make(map[Key]*Node)
	m.rendered = make(map[structure.JumpKey]*Edge)
	m.nextID = 0
}

// Lookup returns the node registered under key.
func (m *Model) Lookup(key Key) (*Node, bool) {
	n, ok := m.byKey[key]
	return n, ok
}

// Rendered reports whether an edge exists for the jump.
func (m *Model) Rendered(jk structure.JumpKey) bool {
	_, ok := m.rendered[jk]
	return ok
}

// AddFunctionNode creates the unexpanded node of fn.
func (m *Model) AddFunctionNode(fn *structure.Function) (*Node, error) {
	return m.insert(&Node{
		Key:      FunctionKey(fn.Address),
		Label:    fn.DisplayName(),
		State:    StateUnexpanded,
		Function: fn,
	})
}

// AddUnresolvedNode creates the node of a call target with no known function.
func (m *Model) AddUnresolvedNode(addr uint64) (*Node, error) {
	key := UnresolvedKey(addr)
	n := &Node{Key: key, Label: fmt.Sprintf("0x%08x", addr), State: StateUnresolved}
	if key.Kind == KindUnknown {
		n.Label = "??"
		n.State = StateUnknown
	}
	return m.insert(n)
}

func (m *Model) insert(n *Node) (*Node, error) {
	if _, ok := m.byKey[n.Key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeExists, n.Key)
	}
	n.ID = m.nextID
	m.nextID++
	m.nodes = append(m.nodes, n)
	m.byKey[n.Key] = n
	return n, nil
}

// EnsureEdge draws the index-th call of src to target unless that jump is
// already rendered. It reports whether a new edge was created.
func (m *Model) EnsureEdge(src *structure.Function, index int, target *Node) (*Edge, bool, error) {
	if index < 0 || index >= len(src.Calls) {
		return nil, false, fmt.Errorf("%w: %d of %d at 0x%x", ErrBadCall, index, len(src.Calls), src.Address)
	}
	jk := src.JumpKey(index)
	if e, ok := m.rendered[jk]; ok {
		return e, false, nil
	}
	from, ok := m.byKey[FunctionKey(src.Address)]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrNoNode, FunctionKey(src.Address))
	}
	e := &Edge{ID: m.nextID, From: from, To: target, Jump: jk, Call: src.Calls[index].Call}
	m.nextID++
	m.edges = append(m.edges, e)
	m.rendered[jk] = e
	return e, true, nil
}

// MarkExpanded moves the node of fn to the expanded state. The transition is
// one-way; marking twice is a no-op.
func (m *Model) MarkExpanded(fn *structure.Function) error {
	n, ok := m.byKey[FunctionKey(fn.Address)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoNode, FunctionKey(fn.Address))
	}
	n.State = StateExpanded
	return nil
}

// Nodes returns the nodes in creation order.
func (m *Model) Nodes() []*Node { return m.nodes }

// Edges returns the edges in creation order.
func (m *Model) Edges() []*Edge { return m.edges }

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.nodes) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.edges) }

// Lattice returns a name-level call graph of the model. Parallel edges
// between the same pair of nodes collapse into one.
func (m *Model) Lattice() *lattice.Graph {
	g := &lattice.Graph{}
	for _, n := range m.nodes {
		g.Nodes = append(g.Nodes, n.Name())
	}
	for _, e := range m.edges {
		g.Edges = append(g.Edges, lattice.Edge{Caller: e.From.Name(), Callee: e.To.Name()})
	}
	g.Dedup()
	return g
}

// Name returns a label unique within a model.
func (n *Node) Name() string {
	switch n.Key.Kind {
	case KindFunction:
		if n.Function != nil && n.Function.Name != "" {
			return fmt.Sprintf("%s_%x", n.Label, n.Key.Addr)
		}
		return n.Label
	case KindUnresolved:
		return "unresolved_" + n.Label
	}
	return "unknown"
}
