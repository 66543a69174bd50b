package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/meikuraledutech/chatflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFlow = `
nodes:
  - {id: s, type: startNode, data: {label: Start}}
  - {id: m, type: messageNode, data: {message: hi}}
  - {id: e, type: endNode}
edges:
  - {id: e1, source: s, target: m}
  - {id: e2, source: m, target: e}
`

const startOnly = `{"nodes":[{"id":"s","type":"startNode","data":{"label":"Start"}}],"edges":[]}`

func writeFlow(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestValidateCmd(t *testing.T) {
	out, err := run(t, "validate", writeFlow(t, "ok.yaml", validFlow))
	require.NoError(t, err)
	assert.Contains(t, out, "Flow is valid (3 nodes, 2 edges)")

	out, err = run(t, "validate", writeFlow(t, "bad.json", startOnly))
	assert.ErrorIs(t, err, chatflow.ErrInvalidFlow)
	assert.Contains(t, out, "Flow must have an End node")
	assert.Contains(t, out, `Node "Start" has no outgoing connection`)

	_, err = run(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestExportCmd(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "export", writeFlow(t, "ok.yaml", validFlow), "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 nodes and 2 edges")

	matches, err := filepath.Glob(filepath.Join(dir, "chatbot-flow-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	exported, err := chatflow.ReadFlowFile(matches[0])
	require.NoError(t, err)
	assert.Len(t, exported.Nodes, 3)

	empty := t.TempDir()
	_, err = run(t, "export", writeFlow(t, "bad.json", startOnly), "-o", empty)
	assert.ErrorIs(t, err, chatflow.ErrInvalidFlow)
	entries, err := os.ReadDir(empty)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGraphCmd(t *testing.T) {
	out, err := run(t, "graph", writeFlow(t, "ok.yaml", validFlow))
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "n_s --> n_m")
}

func TestExamplesCmd(t *testing.T) {
	out, err := run(t, "examples", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "`customer-support`")
	assert.Contains(t, out, "`lead-generation`")

	out, err = run(t, "examples", "simple-greeting", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "```mermaid")

	_, err = run(t, "examples", "nope", "--raw")
	assert.Error(t, err)

	out, err = run(t, "examples", "simple-greeting", "--raw=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Simple Greeting Bot")
}
