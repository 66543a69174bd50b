package chatflow

import (
	"fmt"
	"strings"
)

// Issue codes.
const (
	IssueMissingStart   = "missing_start"
	IssueMultipleStarts = "multiple_starts"
	IssueMissingEnd     = "missing_end"
	IssueNoOutgoing     = "no_outgoing"
	IssueEmptyMessage   = "empty_message"
	IssueEmptyPrompt    = "empty_prompt"
	IssueTooFewBranches = "too_few_branches"
	IssueUnreachable    = "unreachable"
)

// minConditionPaths is the fewest outgoing edges a condition node needs.
const minConditionPaths = 2

// Issue is a single validation failure.
type Issue struct {
	Code    string `json:"code"`
	NodeID  string `json:"nodeId,omitempty"`
	Message string `json:"message"`
}

// Report is the outcome of Validate. Errors holds the issue messages in the
// same order as Issues.
type Report struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
	Issues  []Issue  `json:"issues"`
}

// Validate runs every structural check over f and collects all failures.
// Flow-level checks come first, then per-node checks in node order, then
// unreachable nodes in node order. The result depends only on f.
func Validate(f Flow) Report {
	var issues []Issue
	add := func(code, nodeID, format string, args ...any) {
		issues = append(issues, Issue{Code: code, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
	}

	switch starts := len(f.NodesOfKind(KindStart)); {
	case starts == 0:
		add(IssueMissingStart, "", "Flow must have a Start node")
	case starts > 1:
		add(IssueMultipleStarts, "", "Flow can only have one Start node")
	}
	if len(f.NodesOfKind(KindEnd)) == 0 {
		add(IssueMissingEnd, "", "Flow must have an End node")
	}

	outgoing := make(map[string]int, len(f.Nodes))
	for _, e := range f.Edges {
		outgoing[e.Source]++
	}

	for _, n := range f.Nodes {
		if n.Kind != KindEnd && outgoing[n.ID] == 0 {
			add(IssueNoOutgoing, n.ID, "Node \"%s\" has no outgoing connection", n.Label())
		}

		data := n.Data
		if data == nil {
			data = DefaultPayload(n.Kind)
		}
		switch d := data.(type) {
		case MessageData:
			if strings.TrimSpace(d.Text) == "" {
				add(IssueEmptyMessage, n.ID, "Message node \"%s\" is empty", n.Label())
			}
		case InputData:
			if strings.TrimSpace(d.Prompt) == "" {
				add(IssueEmptyPrompt, n.ID, "Input node \"%s\" needs a prompt question", n.Label())
			}
		case ConditionData:
			if outgoing[n.ID] < minConditionPaths {
				add(IssueTooFewBranches, n.ID, "Condition node \"%s\" should have at least %d outgoing paths", n.Label(), minConditionPaths)
			}
		case StartData, EndData, nil:
		}
	}

	for _, id := range Unreachable(f) {
		n, _ := f.Node(id)
		add(IssueUnreachable, id, "Node \"%s\" is unreachable from start", n.Label())
	}

	r := Report{IsValid: len(issues) == 0, Errors: make([]string, len(issues)), Issues: issues}
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
	for i, is := range issues {
		r.Errors[i] = is.Message
	}
	return r
}
