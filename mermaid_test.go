package chatflow_test

import (
	"testing"

	"github.com/meikuraledutech/chatflow"
	"github.com/stretchr/testify/assert"
)

func TestMermaid(t *testing.T) {
	f := chatflow.Flow{
		Nodes: []chatflow.Node{
			node("start", chatflow.KindStart, chatflow.StartData{Label: "Start"}),
			node("ask-topic", chatflow.KindInput, chatflow.InputData{Label: `Say "hi"`}),
			node("route", chatflow.KindCondition, chatflow.ConditionData{Conditions: []string{"billing"}}),
			node("end", chatflow.KindEnd, nil),
		},
		Edges: []chatflow.Edge{
			{ID: "1", Source: "start", Target: "ask-topic"},
			{ID: "2", Source: "ask-topic", Target: "route"},
			{ID: "3", Source: "route", Target: "end", SourceHandle: "branch-0"},
			{ID: "4", Source: "route", Target: "end", SourceHandle: "default"},
		},
	}

	want := `graph LR
    n_start(("Start"))
    n_ask_topic[/"Say 'hi'"/]
    n_route{"route"}
    n_end(("end"))
    n_start --> n_ask_topic
    n_ask_topic --> n_route
    n_route -- "billing" --> n_end
    n_route -- "default" --> n_end
`
	assert.Equal(t, want, chatflow.Mermaid(f))
}
