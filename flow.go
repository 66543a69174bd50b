package chatflow

import (
	"encoding/json"
	"fmt"
)

// Kind is the type of a flow node. The values match the node type names
// used by the canvas, so exported documents load back into the editor.
type Kind string

const (
	KindStart     Kind = "startNode"
	KindMessage   Kind = "messageNode"
	KindInput     Kind = "inputNode"
	KindCondition Kind = "conditionNode"
	KindEnd       Kind = "endNode"
)

// Kinds lists every node kind in palette order.
var Kinds = []Kind{KindStart, KindMessage, KindInput, KindCondition, KindEnd}

// Valid reports whether k is one of the known node kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindStart, KindMessage, KindInput, KindCondition, KindEnd:
		return true
	}
	return false
}

// Position is a canvas coordinate. It carries no invariant.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Flow is a snapshot of a conversation graph: its nodes and edges in
// insertion order. Node order drives diagnostic order in Validate.
type Flow struct {
	ID    string `json:"id,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a graph vertex. Data always holds the payload for Kind once the
// node has passed through an Editor or been decoded from JSON.
type Node struct {
	ID       string
	Kind     Kind
	Position Position
	Data     Payload
}

// Edge is a directed arc. SourceHandle names the output port of the source
// node and is only meaningful for condition nodes.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Label returns the node's display label, or its id when the label is blank.
func (n Node) Label() string {
	if n.Data != nil {
		if l := n.Data.label(); l != "" {
			return l
		}
	}
	return n.ID
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Kind     Kind            `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the node in the canvas wire shape
// {"id","type","position","data"}.
func (n Node) MarshalJSON() ([]byte, error) {
	data := n.Data
	if data == nil {
		data = DefaultPayload(n.Kind)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nodeJSON{ID: n.ID, Kind: n.Kind, Position: n.Position, Data: raw})
}

// UnmarshalJSON decodes data according to the node type.
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p, err := DecodePayload(raw.Kind, raw.Data)
	if err != nil {
		return fmt.Errorf("node %q: %w", raw.ID, err)
	}
	*n = Node{ID: raw.ID, Kind: raw.Kind, Position: raw.Position, Data: p}
	return nil
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	if n.Data != nil {
		n.Data = n.Data.clone()
	}
	return n
}

// Clone returns a deep copy of the flow.
func (f Flow) Clone() Flow {
	out := Flow{
		ID:    f.ID,
		Nodes: make([]Node, len(f.Nodes)),
		Edges: make([]Edge, len(f.Edges)),
	}
	for i, n := range f.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Edges, f.Edges)
	return out
}

// Node returns the node with the given id.
func (f Flow) Node(id string) (Node, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Outgoing returns the edges leaving the node, in edge order.
func (f Flow) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range f.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// NodesOfKind returns the nodes of kind k, in node order.
func (f Flow) NodesOfKind(k Kind) []Node {
	var out []Node
	for _, n := range f.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}
