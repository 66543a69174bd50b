package chatflow_test

import (
	"testing"

	"github.com/meikuraledutech/chatflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamples_AllValid(t *testing.T) {
	all, err := chatflow.Examples()
	require.NoError(t, err)
	require.Len(t, all, 3)

	ids := make([]string, len(all))
	for i, ex := range all {
		ids[i] = ex.ID
		assert.NotEmpty(t, ex.Title, ex.ID)
		r := chatflow.Validate(ex.Flow)
		assert.True(t, r.IsValid, "%s: %v", ex.ID, r.Errors)
	}
	assert.Equal(t, []string{"customer-support", "lead-generation", "simple-greeting"}, ids)
}

func TestLookupExample_LoadsIntoEditor(t *testing.T) {
	ex, ok, err := chatflow.LookupExample("customer-support")
	require.NoError(t, err)
	require.True(t, ok)

	ed := chatflow.NewEditor()
	ed.ReplaceAll(ex.Flow.Nodes, ex.Flow.Edges)

	n, e := ed.Len()
	assert.Equal(t, len(ex.Flow.Nodes), n)
	assert.Equal(t, len(ex.Flow.Edges), e)
	cond, ok := ed.Node("condition")
	require.True(t, ok)
	assert.Equal(t, 4, chatflow.OutputPorts(cond))

	_, ok, err = chatflow.LookupExample("nope")
	assert.NoError(t, err)
	assert.False(t, ok)
}
