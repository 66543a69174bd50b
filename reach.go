package chatflow

// Reachable returns the ids of the nodes reachable from the start node by
// following edges from source to target, the start node included. ok is
// false, and the set nil, unless the flow has exactly one start node.
// Cycles are allowed.
func Reachable(f Flow) (set map[string]bool, ok bool) {
	starts := f.NodesOfKind(KindStart)
	if len(starts) != 1 {
		return nil, false
	}

	adj := make(map[string][]string, len(f.Nodes))
	for _, e := range f.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	visited := map[string]bool{starts[0].ID: true}
	stack := []string{starts[0].ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[id] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return visited, true
}

// Unreachable returns, in node order, the ids of non-start nodes that
// cannot be reached from the start node. It returns nil when reachability
// does not apply (zero or several start nodes).
func Unreachable(f Flow) []string {
	set, ok := Reachable(f)
	if !ok {
		return nil
	}
	var out []string
	for _, n := range f.Nodes {
		if n.Kind != KindStart && !set[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}
