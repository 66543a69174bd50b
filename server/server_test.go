package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/chatflow"
	"github.com/meikuraledutech/chatflow/internal/metrics"
	"github.com/meikuraledutech/chatflow/memory"
	"github.com/meikuraledutech/chatflow/server"
	"github.com/meikuraledutech/chatflow/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	rec := metrics.New()
	svc := service.New(memory.New(),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithMetrics(rec),
	)
	return server.New(svc, server.WithMetrics(rec.Handler()))
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	app := newApp(t)

	resp, body := do(t, app, "GET", "/healthz", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	do(t, app, "POST", "/flows", `{"id":"f1"}`)
	resp, body = do(t, app, "GET", "/metrics", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, body, `chatflow_operations_total{operation="create_flow",outcome="ok"} 1`)
}

func TestExamples(t *testing.T) {
	app := newApp(t)

	resp, body := do(t, app, "GET", "/examples", "")
	require.Equal(t, 200, resp.StatusCode)
	examples := decode[[]chatflow.Example](t, body)
	assert.Len(t, examples, 3)

	resp, _ = do(t, app, "GET", "/examples/simple-greeting", "")
	assert.Equal(t, 200, resp.StatusCode)
	resp, _ = do(t, app, "GET", "/examples/nope", "")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestFlowLifecycle(t *testing.T) {
	app := newApp(t)

	resp, body := do(t, app, "POST", "/flows", `{"id":"f1"}`)
	require.Equal(t, 201, resp.StatusCode)
	f := decode[chatflow.Flow](t, body)
	assert.Equal(t, chatflow.DefaultStartID, f.Nodes[0].ID)

	resp, _ = do(t, app, "POST", "/flows", `{"id":"f1"}`)
	assert.Equal(t, 409, resp.StatusCode)

	resp, body = do(t, app, "GET", "/flows", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `["f1"]`, body)

	resp, _ = do(t, app, "GET", "/flows/missing", "")
	assert.Equal(t, 404, resp.StatusCode)

	resp, _ = do(t, app, "DELETE", "/flows/f1", "")
	assert.Equal(t, 204, resp.StatusCode)
	resp, _ = do(t, app, "GET", "/flows/f1", "")
	assert.Equal(t, 404, resp.StatusCode)
}

func TestCreateFlow_NoBody(t *testing.T) {
	app := newApp(t)

	resp, body := do(t, app, "POST", "/flows", "")
	require.Equal(t, 201, resp.StatusCode)
	assert.NotEmpty(t, decode[chatflow.Flow](t, body).ID)
}

func TestBuildValidateExport(t *testing.T) {
	app := newApp(t)
	do(t, app, "POST", "/flows", `{"id":"f1"}`)

	resp, body := do(t, app, "GET", "/flows/f1/validate", "")
	require.Equal(t, 200, resp.StatusCode)
	report := decode[chatflow.Report](t, body)
	assert.False(t, report.IsValid)
	assert.Equal(t, []string{
		"Flow must have an End node",
		`Node "Start" has no outgoing connection`,
	}, report.Errors)

	resp, body = do(t, app, "GET", "/flows/f1/export", "")
	assert.Equal(t, 422, resp.StatusCode)
	assert.Contains(t, body, `"report"`)

	resp, _ = do(t, app, "POST", "/flows/f1/nodes", `{"id":"m","type":"messageNode","position":{"x":300,"y":100}}`)
	require.Equal(t, 201, resp.StatusCode)
	resp, _ = do(t, app, "POST", "/flows/f1/nodes", `{"id":"e","type":"endNode"}`)
	require.Equal(t, 201, resp.StatusCode)

	resp, _ = do(t, app, "PATCH", "/flows/f1/nodes/m", `{"message":"hi"}`)
	require.Equal(t, 200, resp.StatusCode)

	resp, body = do(t, app, "POST", "/flows/f1/edges", `{"source":"start-1","target":"m"}`)
	require.Equal(t, 201, resp.StatusCode)
	assert.NotEmpty(t, decode[map[string]string](t, body)["id"])
	resp, _ = do(t, app, "POST", "/flows/f1/edges", `{"source":"m","target":"e"}`)
	require.Equal(t, 201, resp.StatusCode)

	resp, body = do(t, app, "GET", "/flows/f1/export", "")
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, `attachment; filename="chatbot-flow-2024-03-09.json"`, resp.Header.Get("Content-Disposition"))
	doc := decode[chatflow.Document](t, body)
	assert.Equal(t, 3, doc.Metadata.NodeCount)
	assert.Equal(t, 2, doc.Metadata.EdgeCount)
	assert.Equal(t, chatflow.DocumentVersion, doc.Metadata.Version)

	resp, body = do(t, app, "GET", "/flows/f1/mermaid", "")
	require.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "graph LR"))
}

func TestStatusCodes(t *testing.T) {
	app := newApp(t)
	do(t, app, "POST", "/flows", `{"id":"f1"}`)
	do(t, app, "POST", "/flows/f1/nodes", `{"id":"a","type":"messageNode"}`)
	do(t, app, "POST", "/flows/f1/nodes", `{"id":"b","type":"messageNode"}`)
	do(t, app, "POST", "/flows/f1/edges", `{"source":"start-1","target":"a"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad node body", "POST", "/flows/f1/nodes", `{"id":`, 400},
		{"unknown node type", "POST", "/flows/f1/nodes", `{"id":"x","type":"bogus"}`, 400},
		{"bad patch", "PATCH", "/flows/f1/nodes/a", `{"message":42}`, 400},
		{"second successor", "POST", "/flows/f1/edges", `{"source":"start-1","target":"b"}`, 409},
		{"delete start", "DELETE", "/flows/f1/nodes/start-1", "", 409},
		{"duplicate start", "POST", "/flows/f1/nodes/start-1/duplicate", "", 409},
		{"unknown endpoint", "POST", "/flows/f1/edges", `{"source":"a","target":"ghost"}`, 204},
		{"unknown flow", "POST", "/flows/nope/nodes", `{"type":"endNode"}`, 404},
		{"unknown example", "POST", "/flows/f1/examples/nope", "", 404},
		{"ports of unknown node", "GET", "/flows/f1/nodes/ghost/ports", "", 404},
		{"duplicate unknown node", "POST", "/flows/f1/nodes/ghost/duplicate", "", 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, body)
		})
	}
}

func TestNodeRoutes(t *testing.T) {
	app := newApp(t)
	do(t, app, "POST", "/flows", `{"id":"f1"}`)
	do(t, app, "POST", "/flows/f1/nodes", `{"id":"c","type":"conditionNode","data":{"conditions":["yes","no"]}}`)

	resp, body := do(t, app, "GET", "/flows/f1/nodes/c/ports", "")
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"inputs":1,"outputs":3,"handles":["branch-0","branch-1","default"]}`, body)

	resp, body = do(t, app, "PUT", "/flows/f1/nodes/c/position", `{"x":5,"y":6}`)
	require.Equal(t, 200, resp.StatusCode)
	n, _ := decode[chatflow.Flow](t, body).Node("c")
	assert.Equal(t, chatflow.Position{X: 5, Y: 6}, n.Position)

	resp, body = do(t, app, "POST", "/flows/f1/nodes/c/duplicate", "")
	require.Equal(t, 201, resp.StatusCode)
	copyID := decode[map[string]string](t, body)["id"]
	assert.NotEmpty(t, copyID)

	resp, body = do(t, app, "POST", "/flows/f1/edges", `{"id":"y","source":"c","target":"`+copyID+`","sourceHandle":"branch-0"}`)
	require.Equal(t, 201, resp.StatusCode, body)
	resp, _ = do(t, app, "POST", "/flows/f1/edges", `{"source":"c","target":"`+copyID+`","sourceHandle":"branch-0"}`)
	assert.Equal(t, 409, resp.StatusCode)

	resp, _ = do(t, app, "DELETE", "/flows/f1/edges/y", "")
	assert.Equal(t, 204, resp.StatusCode)
	resp, _ = do(t, app, "DELETE", "/flows/f1/nodes/"+copyID, "")
	assert.Equal(t, 204, resp.StatusCode)

	_, body = do(t, app, "GET", "/flows/f1", "")
	f := decode[chatflow.Flow](t, body)
	assert.Len(t, f.Nodes, 2)
	assert.Empty(t, f.Edges)
}

func TestReplaceAndLoadExample(t *testing.T) {
	app := newApp(t)
	do(t, app, "POST", "/flows", `{"id":"f1"}`)

	resp, body := do(t, app, "PUT", "/flows/f1", `{
		"nodes": [{"id":"s","type":"startNode"},{"id":"e","type":"endNode"}],
		"edges": [{"id":"x","source":"s","target":"e"}]
	}`)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, decode[chatflow.Flow](t, body).Nodes, 2)

	resp, _ = do(t, app, "GET", "/flows/f1/export", "")
	assert.Equal(t, 200, resp.StatusCode)

	resp, body = do(t, app, "POST", "/flows/f1/examples/customer-support", "")
	require.Equal(t, 200, resp.StatusCode)
	assert.Greater(t, len(decode[chatflow.Flow](t, body).Nodes), 2)
}

func TestExport_FileNameMatchesCreated(t *testing.T) {
	ticks := []time.Time{
		time.Date(2024, 3, 9, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(2024, 3, 10, 0, 0, 0, 1_000_000, time.UTC),
	}
	clock := func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}
	app := server.New(service.New(memory.New(), service.WithClock(clock)))
	do(t, app, "POST", "/flows", `{"id":"f1"}`)
	do(t, app, "PUT", "/flows/f1", `{
		"nodes": [{"id":"s","type":"startNode"},{"id":"e","type":"endNode"}],
		"edges": [{"id":"x","source":"s","target":"e"}]
	}`)

	resp, body := do(t, app, "GET", "/flows/f1/export", "")
	require.Equal(t, 200, resp.StatusCode)
	doc := decode[chatflow.Document](t, body)
	assert.Equal(t, "2024-03-09T23:59:59.999Z", doc.Metadata.Created)
	assert.Equal(t, `attachment; filename="chatbot-flow-2024-03-09.json"`, resp.Header.Get("Content-Disposition"))
}
