package chatflow

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultStartID is the id of the start node a new editor opens with.
const DefaultStartID = "start-1"

// duplicateOffset is how far a duplicated node is shifted on the canvas.
const duplicateOffset = 40

// Editor owns the nodes and edges of one flow plus the selected node. All
// changes go through its methods, which keep edges consistent with nodes.
//
// An Editor is not safe for concurrent use; callers that share one must
// serialize access (see service.Service).
type Editor struct {
	id       string
	nodes    []Node
	edges    []Edge
	selected string
}

// NewEditor returns an editor holding a single start node, the state a
// blank canvas opens with.
func NewEditor() *Editor {
	return &Editor{
		nodes: []Node{{
			ID:       DefaultStartID,
			Kind:     KindStart,
			Position: Position{X: 100, Y: 100},
			Data:     DefaultPayload(KindStart),
		}},
		edges: []Edge{},
	}
}

// NewEditorFrom returns an editor over a copy of f.
func NewEditorFrom(f Flow) *Editor {
	e := &Editor{id: f.ID}
	e.ReplaceAll(f.Nodes, f.Edges)
	return e
}

// Snapshot returns a deep copy of the current graph.
func (e *Editor) Snapshot() Flow {
	return Flow{ID: e.id, Nodes: e.nodes, Edges: e.edges}.Clone()
}

// Len returns the number of nodes and edges.
func (e *Editor) Len() (nodes, edges int) {
	return len(e.nodes), len(e.edges)
}

// Node returns a copy of the node with the given id.
func (e *Editor) Node(id string) (Node, bool) {
	i := e.indexOf(id)
	if i < 0 {
		return Node{}, false
	}
	return e.nodes[i].Clone(), true
}

func (e *Editor) indexOf(id string) int {
	for i, n := range e.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// AddNode appends n and returns its id. An empty id is replaced with a
// generated one. A nil payload, or one of another kind, is replaced with
// the kind's default payload; a payload of the node's own kind is kept, so
// API clients can create a filled-in node in one call. Ids must be unique;
// that is up to the caller.
func (e *Editor) AddNode(n Node) string {
	if n.Data == nil || n.Data.Kind() != n.Kind {
		n.Data = DefaultPayload(n.Kind)
	}
	return e.insert(n)
}

// insert appends a copy of n, generating an id when it has none.
func (e *Editor) insert(n Node) string {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	e.nodes = append(e.nodes, n.Clone())
	return n.ID
}

// UpdateNode merges patch into the node's payload. Unknown ids are ignored.
// A patch that does not fit the payload leaves the node unchanged and
// yields an error wrapping ErrInvalidPatch.
func (e *Editor) UpdateNode(id string, patch map[string]any) error {
	i := e.indexOf(id)
	if i < 0 {
		return nil
	}
	n := &e.nodes[i]
	if n.Data == nil {
		n.Data = DefaultPayload(n.Kind)
	}
	merged, err := mergePayload(n.Data, patch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	n.Data = merged
	return nil
}

// MoveNode sets the canvas position of a node. Unknown ids are ignored.
func (e *Editor) MoveNode(id string, p Position) {
	if i := e.indexOf(id); i >= 0 {
		e.nodes[i].Position = p
	}
}

// DeleteNode removes a node and every edge touching it. Start nodes are
// protected: ErrStartProtected is returned and nothing changes. Unknown
// ids are ignored.
func (e *Editor) DeleteNode(id string) error {
	i := e.indexOf(id)
	if i < 0 {
		return nil
	}
	if e.nodes[i].Kind == KindStart {
		return ErrStartProtected
	}

	e.nodes = append(e.nodes[:i:i], e.nodes[i+1:]...)
	kept := make([]Edge, 0, len(e.edges))
	for _, ed := range e.edges {
		if ed.Source != id && ed.Target != id {
			kept = append(kept, ed)
		}
	}
	e.edges = kept
	if e.selected == id {
		e.selected = ""
	}
	return nil
}

// DuplicateNode adds a copy of a node, without its edges, next to the
// original and returns the new id. Start nodes cannot be duplicated.
func (e *Editor) DuplicateNode(id string) (string, error) {
	i := e.indexOf(id)
	if i < 0 {
		return "", nil
	}
	src := e.nodes[i]
	if src.Kind == KindStart {
		return "", ErrStartProtected
	}
	cp := src.Clone()
	cp.ID = ""
	cp.Position = Position{X: src.Position.X + duplicateOffset, Y: src.Position.Y + duplicateOffset}
	return e.insert(cp), nil
}

// DeleteEdge removes an edge. Unknown ids are ignored.
func (e *Editor) DeleteEdge(id string) {
	for i, ed := range e.edges {
		if ed.ID == id {
			e.edges = append(e.edges[:i:i], e.edges[i+1:]...)
			return
		}
	}
}

// Connect adds edge if the connection policy allows it and returns its id.
// A rejected edge yields a *ConnectionError and no change. Edges naming an
// unknown source or target are ignored.
func (e *Editor) Connect(edge Edge) (string, error) {
	if e.indexOf(edge.Source) < 0 || e.indexOf(edge.Target) < 0 {
		return "", nil
	}
	if err := CheckConnection(e.nodes, e.edges, edge); err != nil {
		return "", err
	}
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	e.edges = append(e.edges, edge)
	return edge.ID, nil
}

// ReplaceAll overwrites the graph without applying the connection policy
// or validation. Nodes without a payload get the kind's default.
func (e *Editor) ReplaceAll(nodes []Node, edges []Edge) {
	f := Flow{Nodes: nodes, Edges: edges}.Clone()
	for i := range f.Nodes {
		if f.Nodes[i].Data == nil {
			f.Nodes[i].Data = DefaultPayload(f.Nodes[i].Kind)
		}
	}
	e.nodes = f.Nodes
	e.edges = f.Edges
	e.selected = ""
}

// SetSelected selects the node with the given id. Unknown ids clear the
// selection.
func (e *Editor) SetSelected(id string) {
	if e.indexOf(id) < 0 {
		e.selected = ""
		return
	}
	e.selected = id
}

// ClearSelection deselects any node.
func (e *Editor) ClearSelection() { e.selected = "" }

// Selected returns the selected node, if any.
func (e *Editor) Selected() (Node, bool) {
	if e.selected == "" {
		return Node{}, false
	}
	return e.Node(e.selected)
}
