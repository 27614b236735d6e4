package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func createTree(t *testing.T, handler http.Handler) string {
	t.Helper()
	rr := do(t, handler, "POST", "/trees", "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["id"])
	return resp["id"]
}

func decodeInsert(t *testing.T, rr *httptest.ResponseRecorder) InsertResult {
	t.Helper()
	var res InsertResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	return res
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(registry.NewRegistry())

	rr := do(t, handler, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler := NewHandler(registry.NewRegistry())

	rr := do(t, handler, "GET", "/info", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)

	assert.Equal(t, "arbor-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, "0.1.0", resp["api_version"])
}

func TestOpenAPIDocument(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)

	for _, path := range []string{
		"/health", "/info", "/error", "/events",
		"/trees", "/trees/{id}", "/trees/{id}/branches", "/trees/{id}/leaves", "/trees/{id}/render",
	} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}

	rr := do(t, NewHandler(registry.NewRegistry()), "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, RawSpec(), rr.Body.Bytes())
}

func TestErrorFunction(t *testing.T) {
	rr := do(t, NewHandler(registry.NewRegistry()), "POST", "/error", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"This always breaks!"}`, rr.Body.String())
}

func TestTreeScenario(t *testing.T) {
	handler := NewHandler(registry.NewRegistry())
	id := createTree(t, handler)
	base := "/trees/" + id

	rr := do(t, handler, "POST", base+"/branches", `{"index": 1}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, InsertResult{NodeCount: 1}, decodeInsert(t, rr))

	rr = do(t, handler, "POST", base+"/branches", `{"index": 2, "parent": 1}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, InsertResult{NodeCount: 2, EdgeCount: 1}, decodeInsert(t, rr))

	rr = do(t, handler, "POST", base+"/leaves", `{"index": 3, "parent": 2}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, InsertResult{NodeCount: 3, EdgeCount: 2}, decodeInsert(t, rr))

	rr = do(t, handler, "POST", base+"/leaves", `{"index": 4, "parent": 99}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, InsertResult{NodeCount: 4, EdgeCount: 2, Error: "Branch_99 doesn't exist!"}, decodeInsert(t, rr))

	rr = do(t, handler, "GET", base, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var info TreeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, id, info.ID)
	assert.Equal(t, 4, info.NodeCount)
	assert.Len(t, info.Nodes, 4)
	assert.Len(t, info.Edges, 2)

	rr = do(t, handler, "GET", base+"/render", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "digraph {\n"))
	assert.Contains(t, rr.Body.String(), `3 [ label = "(Leaf_4)" ]`)

	rr = do(t, handler, "GET", base+"/render?format=mermaid", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "graph TD")

	rr = do(t, handler, "GET", base+"/render?format=svg", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBranchWithMissingParent(t *testing.T) {
	handler := NewHandler(registry.NewRegistry())
	id := createTree(t, handler)

	rr := do(t, handler, "POST", "/trees/"+id+"/branches", `{"index": 5, "parent": 100}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, InsertResult{NodeCount: 1, Error: "Branch_100 doesn't exist!"}, decodeInsert(t, rr))
}

func TestBadRequests(t *testing.T) {
	handler := NewHandler(registry.NewRegistry())
	id := createTree(t, handler)
	base := "/trees/" + id

	tests := []struct {
		name string
		path string
		body string
	}{
		{"Malformed Body", base + "/branches", `{`},
		{"Branch Without Index", base + "/branches", `{"parent": 1}`},
		{"Leaf Without Parent", base + "/leaves", `{"index": 1}`},
		{"Leaf Without Index", base + "/leaves", `{"parent": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, handler, "POST", tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	// Nothing was inserted.
	rr := do(t, handler, "GET", base, "")
	var info TreeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, 0, info.NodeCount)
}

func TestUnknownTree(t *testing.T) {
	handler := NewHandler(registry.NewRegistry())

	for _, req := range []struct{ method, path, body string }{
		{"GET", "/trees/nope", ""},
		{"DELETE", "/trees/nope", ""},
		{"POST", "/trees/nope/branches", `{"index": 1}`},
		{"POST", "/trees/nope/leaves", `{"index": 1, "parent": 0}`},
		{"GET", "/trees/nope/render", ""},
	} {
		rr := do(t, handler, req.method, req.path, req.body)
		assert.Equal(t, http.StatusNotFound, rr.Code, req.method+" "+req.path)
	}
}

func TestListAndDeleteTrees(t *testing.T) {
	handler := NewHandler(registry.NewRegistry())
	id := createTree(t, handler)

	rr := do(t, handler, "GET", "/trees", "")
	var ids []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ids))
	assert.Equal(t, []string{id}, ids)

	rr = do(t, handler, "DELETE", "/trees/"+id, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, handler, "GET", "/trees", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ids))
	assert.Empty(t, ids)
}

func TestSubscribeEvents_NotConfigured(t *testing.T) {
	rr := do(t, NewHandler(registry.NewRegistry()), "GET", "/events", "")
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
}

func TestSubscribeEvents(t *testing.T) {
	pub := memory.NewPublisher(16)
	reg := registry.NewRegistry(registry.WithTreeOptions(
		tree.WithLifecycleHooks(observability.PublishingHooks(pub, logging.NewNop())),
	))
	srv := httptest.NewServer(NewHandler(reg, WithEventStream(pub)))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	other := reg.Create(ctx)
	id := reg.Create(ctx)

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?tree="+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	// Events of other trees are filtered out.
	require.NoError(t, reg.With(ctx, other, func(b *tree.Builder) error { return b.AddBranch(7, nil) }))
	require.Error(t, reg.With(ctx, id, func(b *tree.Builder) error { return b.AddLeaf(1, 2) }))

	var got []string
	for lines.Scan() {
		line := lines.Text()
		if strings.HasPrefix(line, "event: ") {
			got = append(got, strings.TrimPrefix(line, "event: "))
		}
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"node_added", "reference_error"}, got)
}

func TestWriteJSON_EncodeFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	s := &Server{Registry: registry.NewRegistry(), logger: logging.NewWithWriter(&logs, slog.LevelDebug)}

	rr := httptest.NewRecorder()
	s.writeJSON(rr, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, logs.String(), "response encode failed")
}
