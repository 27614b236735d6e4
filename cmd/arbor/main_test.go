package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

const demoDOT = `digraph {
    0 [ label = "(Branch_0)" ]
    1 [ label = "(Branch_1)" ]
    2 [ label = "(Branch_2)" ]
    3 [ label = "(Leaf_0)" ]
    4 [ label = "(Leaf_1)" ]
    0 -> 1 [ label = "0" ]
    0 -> 2 [ label = "1" ]
    2 -> 3 [ label = "2" ]
}
5 nodes in this tree
`

func TestDemoCommand(t *testing.T) {
	stdout, stderr, err := execute(t, "demo", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, demoDOT, stdout)
	assert.Contains(t, stderr, "Branch_3 doesn't exist!")
}

func TestDemoCommand_Mermaid(t *testing.T) {
	stdout, _, err := execute(t, "demo", "--format", "mermaid")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "graph TD\n"))
	assert.Contains(t, stdout, `n3(["(Leaf_0)"])`)
}

func TestDemoCommand_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "demo", "--format", "png")
	assert.Error(t, err)
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - branch: 1
  - branch: 2
    parent: 1
  - leaf: 3
    parent: 9
`), 0o644))

	stdout, stderr, err := execute(t, "build", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "digraph {\n"+
		"    0 [ label = \"(Branch_1)\" ]\n"+
		"    1 [ label = \"(Branch_2)\" ]\n"+
		"    2 [ label = \"(Leaf_3)\" ]\n"+
		"    0 -> 1 [ label = \"0\" ]\n"+
		"}\n"+
		"3 nodes in this tree\n", stdout)
	assert.Contains(t, stderr, "Branch_9 doesn't exist!")

	// Positional argument works too.
	stdout2, _, err := execute(t, "build", path)
	require.NoError(t, err)
	assert.Equal(t, stdout, stdout2)
}

func TestBuildCommand_StopOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"steps": [
		{"op": "leaf", "index": 1, "parent": 4},
		{"op": "branch", "index": 2}
	]}`), 0o644))

	stdout, _, err := execute(t, "build", "--stop-on-error", path)
	require.Error(t, err)
	assert.Contains(t, stdout, "1 nodes in this tree")
}

func TestBuildCommand_MissingFile(t *testing.T) {
	_, _, err := execute(t, "build")
	assert.Error(t, err)

	_, _, err = execute(t, "build", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestErrorCommand(t *testing.T) {
	_, stderr, err := execute(t, "error")
	require.Error(t, err)
	assert.EqualError(t, err, "This always breaks!")
	assert.Contains(t, stderr, "This always breaks!")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "arbor version "))
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "demo", "--log-level", "loud")
	assert.Error(t, err)
}

func TestBuildServer(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()

	handler, cleanup, err := buildServer(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/trees", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "arbor_edges_added_total")
}

func TestBuildServer_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Redis.Addr = addr

	_, _, err := buildServer(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestApplyServeFlags(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9999", "--redis-channel", "custom"}))

	cfg := config.Default()
	applyServeFlags(cmd, &cfg)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "custom", cfg.Redis.Channel)
	assert.True(t, cfg.Metrics)
}
