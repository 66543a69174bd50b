package chatflow

import (
	"slices"
	"strconv"
)

// DefaultHandle is the output port every condition node has in addition
// to one port per condition.
const DefaultHandle = "default"

// BranchHandle returns the source handle of the i-th condition branch.
func BranchHandle(i int) string {
	return "branch-" + strconv.Itoa(i)
}

// OutputPorts returns how many output ports the node exposes. Condition
// nodes have one per condition plus the default branch; end nodes none.
func OutputPorts(n Node) int {
	switch n.Kind {
	case KindEnd:
		return 0
	case KindCondition:
		return len(conditionsOf(n)) + 1
	}
	return 1
}

// InputPorts returns how many input ports the node exposes.
func InputPorts(n Node) int {
	if n.Kind == KindStart {
		return 0
	}
	return 1
}

// Handles returns the source handle ids of the node's output ports in
// display order. Single-port nodes use the empty handle.
func Handles(n Node) []string {
	switch n.Kind {
	case KindEnd:
		return nil
	case KindCondition:
		conds := conditionsOf(n)
		hs := make([]string, 0, len(conds)+1)
		for i := range conds {
			hs = append(hs, BranchHandle(i))
		}
		return append(hs, DefaultHandle)
	}
	return []string{""}
}

func conditionsOf(n Node) []string {
	if d, ok := n.Data.(ConditionData); ok {
		return d.Conditions
	}
	return nil
}

// CheckConnection decides whether candidate may be added to edges. It must
// be called against the live edge set on every attempt. The source node
// must be present in nodes; an empty handle on a condition source is read
// as the default branch.
//
// Non-condition nodes allow a single successor. Condition nodes allow one
// edge per handle, and several handles may lead to the same target.
// Incoming edges are never limited.
func CheckConnection(nodes []Node, edges []Edge, candidate Edge) error {
	var src Node
	for _, n := range nodes {
		if n.ID == candidate.Source {
			src = n
			break
		}
	}

	reject := func(err error) error {
		return &ConnectionError{Edge: candidate, Err: err}
	}

	switch src.Kind {
	case KindEnd:
		return reject(ErrNoOutputPort)
	case KindCondition:
		handle := candidate.SourceHandle
		if handle == "" {
			handle = DefaultHandle
		}
		if !slices.Contains(Handles(src), handle) {
			return reject(ErrUnknownHandle)
		}
		for _, e := range edges {
			if e.Source == src.ID && conditionHandle(e.SourceHandle) == handle {
				return reject(ErrHandleInUse)
			}
		}
	default:
		for _, e := range edges {
			if e.Source == candidate.Source {
				return reject(ErrSuccessorExists)
			}
		}
	}
	return nil
}

func conditionHandle(h string) string {
	if h == "" {
		return DefaultHandle
	}
	return h
}
