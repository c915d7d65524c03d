package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todos/internal/client"
	"github.com/mesh-intelligence/todos/internal/httpapi"
	"github.com/mesh-intelligence/todos/internal/store"
	"github.com/mesh-intelligence/todos/pkg/types"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func testStorage(dataDir string) types.Config {
	return types.Config{
		Driver:         types.DriverSQLite,
		DataDir:        dataDir,
		AcquireTimeout: 5 * time.Second,
	}
}

// startServer runs the API on a fresh store and returns the global flags
// pointing a client command at it.
func startServer(t *testing.T) []string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b, err := store.Open(context.Background(), testStorage(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	srv := httptest.NewServer(httpapi.NewRouter(b, httpapi.Options{}))
	t.Cleanup(srv.Close)
	return []string{"--config-dir", t.TempDir(), "--data-dir", t.TempDir(), "--server", srv.URL}
}

func with(base []string, args ...string) []string {
	return append(append([]string{}, base...), args...)
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "todos dev\nmodule: github.com/mesh-intelligence/todos\n", res.stdout)
}

func TestClientCommands(t *testing.T) {
	base := startServer(t)

	res := runCLI(t, with(base, "add", "Buy", "milk", "-d", "2 litres")...)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Title:       Buy milk")
	assert.Contains(t, res.stdout, "Description: 2 litres")

	res = runCLI(t, with(base, "--json", "add", "Write report")...)
	require.NoError(t, res.err)
	var report types.Todo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.Equal(t, "Write report", report.Title)
	assert.Nil(t, report.Description)

	res = runCLI(t, with(base, "list")...)
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, res.stdout, "Buy milk")
	assert.Contains(t, res.stdout, "[ ]")

	res = runCLI(t, with(base, "--json", "update", report.ID, "--completed", "--title", "Write final report")...)
	require.NoError(t, res.err, res.stderr)
	var updated types.Todo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "Write final report", updated.Title)
	assert.Equal(t, report.ID, updated.ID)

	res = runCLI(t, with(base, "get", report.ID)...)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Completed:   [x]")
	assert.Contains(t, res.stdout, "Description: (none)")

	res = runCLI(t, with(base, "delete", report.ID)...)
	require.NoError(t, res.err)
	assert.Equal(t, "Deleted "+report.ID+"\n", res.stdout)

	res = runCLI(t, with(base, "get", report.ID)...)
	require.Error(t, res.err)
	assert.Equal(t, exitUserError, exitCode(res.err))
	assert.Contains(t, res.err.Error(), "todo not found")
}

func TestUpdate_DescriptionFlags(t *testing.T) {
	base := startServer(t)

	res := runCLI(t, with(base, "--json", "add", "Read", "-d", "chapter 1")...)
	require.NoError(t, res.err)
	var todo types.Todo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &todo))

	res = runCLI(t, with(base, "--json", "update", todo.ID, "--clear-description")...)
	require.NoError(t, res.err)
	var cleared types.Todo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &cleared))
	assert.Nil(t, cleared.Description)
	assert.Equal(t, "Read", cleared.Title)

	res = runCLI(t, with(base, "update", todo.ID, "-d", "x", "--clear-description")...)
	assert.Equal(t, exitUserError, exitCode(res.err))
}

func TestUserErrors(t *testing.T) {
	base := startServer(t)

	tests := []struct {
		name string
		args []string
	}{
		{"blank title", with(base, "add", "   ")},
		{"missing title", with(base, "add")},
		{"empty update", with(base, "update", "some-id")},
		{"unknown todo", with(base, "delete", "no-such-id")},
		{"extra args", with(base, "get", "a", "b")},
		{"unknown flag", with(base, "list", "--colour")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, exitUserError, exitCode(res.err), res.err.Error())
		})
	}
}

func TestServerErrors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"internal error"}`)
	}))
	defer failing.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	for name, server := range map[string]string{"500": failing.URL, "unreachable": downURL} {
		t.Run(name, func(t *testing.T) {
			res := runCLI(t, "--config-dir", t.TempDir(), "--server", server, "list")
			require.Error(t, res.err)
			assert.Equal(t, exitSysError, exitCode(res.err))
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("log:\n  format: xml\n"), 0o644))

	res := runCLI(t, "--config-dir", configDir, "list")
	require.Error(t, res.err)
	assert.Equal(t, exitUserError, exitCode(res.err))
	assert.Contains(t, res.err.Error(), "invalid configuration")
}

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	dataDir := filepath.Join(t.TempDir(), "data")

	res := runCLI(t, "--config-dir", configDir, "--data-dir", dataDir, "init")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "(created)")
	assert.FileExists(t, filepath.Join(configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dataDir, store.DatabaseFile))

	res = runCLI(t, "--config-dir", configDir, "--data-dir", dataDir, "--json", "init")
	require.NoError(t, res.err)
	var out initResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.False(t, out.ConfigCreated)
	assert.Equal(t, dataDir, out.DataDir)
	assert.Equal(t, types.DriverSQLite, out.Driver)
}

func TestInit_UsesDataDirFromConfig(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	dataDir := filepath.Join(t.TempDir(), "data")

	res := runCLI(t, "--config-dir", configDir, "--data-dir", dataDir, "init")
	require.NoError(t, res.err)

	// The written config.yaml remembers the data dir.
	res = runCLI(t, "--config-dir", configDir, "--json", "init")
	require.NoError(t, res.err)
	var out initResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, dataDir, out.DataDir)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	b, err := store.Open(ctx, testStorage(dataDir))
	require.NoError(t, err)
	for _, title := range []string{"first", "second"} {
		_, err := b.Create(ctx, types.NewTodo{Title: title})
		require.NoError(t, err)
	}
	require.NoError(t, b.Close())

	out := filepath.Join(t.TempDir(), "backup.jsonl")
	res := runCLI(t, "--config-dir", t.TempDir(), "--data-dir", dataDir, "export", "--out", out)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "Exported 2 todos to "+out+"\n", res.stdout)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	var count int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var todo types.Todo
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &todo))
		count++
	}
	assert.Equal(t, 2, count)

	res = runCLI(t, "--config-dir", t.TempDir(), "--data-dir", dataDir, "--json", "export")
	require.NoError(t, res.err)
	var summary struct {
		Path  string `json:"path"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, filepath.Join(dataDir, "exports"), filepath.Dir(summary.Path))
	assert.FileExists(t, summary.Path)
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServe(t *testing.T) {
	var stderr syncBuffer
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(&stderr)
	root.SetArgs([]string{
		"--config-dir", t.TempDir(),
		"--data-dir", t.TempDir(),
		"serve", "--addr", "127.0.0.1:0", "--static-dir", "",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	listening := regexp.MustCompile(`msg=listening addr=(\S+)`)
	var addr string
	require.Eventually(t, func() bool {
		m := listening.FindStringSubmatch(stderr.String())
		if m == nil {
			return false
		}
		addr = m[1]
		return true
	}, 5*time.Second, 10*time.Millisecond, "server never logged its address: %s", stderr.String())

	c := client.New("http://"+addr, nil)
	created, err := c.Create(ctx, types.NewTodo{Title: "served"})
	require.NoError(t, err)
	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
	assert.Contains(t, stderr.String(), "msg=http_request")
	assert.Contains(t, stderr.String(), "msg=stopped")
}

func TestServe_BadAddr(t *testing.T) {
	res := runCLI(t, "--config-dir", t.TempDir(), "--data-dir", t.TempDir(), "serve", "--addr", "256.0.0.1:99999")
	require.Error(t, res.err)
	assert.Equal(t, exitSysError, exitCode(res.err))
}

func TestExitCode(t *testing.T) {
	a := &app{}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"plain", errors.New("bad args"), exitUserError},
		{"user", userErr(errors.New("x")), exitUserError},
		{"system", sysErr(errors.New("x")), exitSysError},
		{"storage", types.ErrStorageUnavailable, exitSysError},
		{"api 404", a.clientErr(&client.APIError{StatusCode: 404}), exitUserError},
		{"api 400", a.clientErr(&client.APIError{StatusCode: 400}), exitUserError},
		{"api 503", a.clientErr(&client.APIError{StatusCode: 503}), exitSysError},
		{"transport", a.clientErr(errors.New("connection refused")), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
