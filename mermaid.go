package chatflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Mermaid renders f as a Mermaid flowchart (graph LR). Shapes follow the
// node kind: start and end are circles, input a parallelogram, condition
// a rhombus, message a rectangle. Condition edges are labelled with the
// branch condition, or "default".
func Mermaid(f Flow) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, n := range f.Nodes {
		opener, closer := "[", "]"
		switch n.Kind {
		case KindStart, KindEnd:
			opener, closer = "((", "))"
		case KindInput:
			opener, closer = "[/", "/]"
		case KindCondition:
			opener, closer = "{", "}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.ID), opener, mermaidText(n.Label()), closer)
	}

	for _, e := range f.Edges {
		arrow := "-->"
		if src, ok := f.Node(e.Source); ok && src.Kind == KindCondition {
			arrow = fmt.Sprintf("-- \"%s\" -->", mermaidText(branchLabel(src, e.SourceHandle)))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(e.Source), arrow, mermaidID(e.Target))
	}
	return sb.String()
}

// branchLabel returns the condition text behind a handle.
func branchLabel(n Node, handle string) string {
	conds := conditionsOf(n)
	if idx, ok := strings.CutPrefix(handle, "branch-"); ok {
		if i, err := strconv.Atoi(idx); err == nil && i >= 0 && i < len(conds) {
			return conds[i]
		}
		return handle
	}
	return DefaultHandle
}

// mermaidID prefixes ids so that reserved words such as "end" stay usable.
func mermaidID(id string) string {
	return "n_" + strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}

func mermaidText(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
