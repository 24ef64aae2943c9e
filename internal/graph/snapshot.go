package graph

// NodeView is a value copy of a node.
type NodeView struct {
	ID    int
	Key   Key
	Label string
	State VisualState
	Leaf  bool // expanded function without calls
}

// EdgeView is a value copy of an edge, endpoints given by node ID.
type EdgeView struct {
	ID   int
	From int
	To   int
	Call bool
}

// Snapshot is the graph content at one point in time, in creation order.
type Snapshot struct {
	Nodes []NodeView
	Edges []EdgeView
}

// Snapshot copies the current nodes and edges.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Nodes: make([]NodeView, 0, len(m.nodes)),
		Edges: make([]EdgeView, 0, len(m.edges)),
	}
	for _, n := range m.nodes {
		s.Nodes = append(s.Nodes, NodeView{
			ID:    n.ID,
			Key:   n.Key,
			Label: n.Label,
			State: n.State,
			Leaf:  n.Function != nil && n.Function.Leaf(),
		})
	}
	for _, e := range m.edges {
		s.Edges = append(s.Edges, EdgeView{ID: e.ID, From: e.From.ID, To: e.To.ID, Call: e.Call})
	}
	return s
}
