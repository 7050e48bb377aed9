package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockie/internal/storage"
	"github.com/getmockd/mockie/pkg/engine"
	"github.com/getmockd/mockie/pkg/registry"
	"github.com/getmockd/mockie/pkg/route"
	"github.com/getmockd/mockie/pkg/store"
	"github.com/getmockd/mockie/pkg/store/file"
)

// newTestServer serves the full engine handler over httptest.
func newTestServer(t *testing.T, opts ...registry.Option) (*httptest.Server, *registry.Service) {
	t.Helper()
	routes := storage.NewInMemoryRouteStore()
	svc := registry.New(routes, opts...)
	srv, err := engine.NewServer(engine.DefaultConfig(), routes, svc)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, svc
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddCmd(t *testing.T) {
	ts, svc := newTestServer(t)

	out, err := runCmd(t, "add", "--server", ts.URL,
		"--method", "post", "--path", "/orders", "--status", "201", "--delay-ms", "5",
		"--response", `{"id": 1}`)
	require.NoError(t, err)
	assert.Equal(t, "Route added: POST /orders -> 201\n", out)

	routes, err := svc.Routes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.True(t, routes[0].Equal(route.New("POST", "/orders", 201, 5, json.RawMessage(`{"id":1}`))))
}

func TestAddCmd_Defaults(t *testing.T) {
	ts, svc := newTestServer(t)

	_, err := runCmd(t, "add", "--server", ts.URL, "--path", "/empty")
	require.NoError(t, err)

	routes, err := svc.Routes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "GET", routes[0].Method)
	assert.Equal(t, 200, routes[0].Status)
	assert.Equal(t, uint64(0), routes[0].DelayMs)
	assert.Equal(t, "null", string(routes[0].Response))
}

func TestAddCmd_LocalValidation(t *testing.T) {
	ts, svc := newTestServer(t)

	_, err := runCmd(t, "add", "--server", ts.URL, "--path", "/x", "--response", "{nope")
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = runCmd(t, "add", "--server", ts.URL)
	assert.ErrorIs(t, err, ErrMissingPath)

	n, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddCmd_ServerRejectsStatus(t *testing.T) {
	ts, _ := newTestServer(t)

	_, err := runCmd(t, "add", "--server", ts.URL, "--path", "/x", "--status", "700")
	require.Error(t, err)
	assert.Equal(t, "Status must be between 100 and 599", err.Error())
}

func TestAddCmd_ServerDown(t *testing.T) {
	ts, _ := newTestServer(t)
	url := ts.URL
	ts.Close()

	_, err := runCmd(t, "add", "--server", url, "--path", "/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mockie serve")
}

func TestListCmd(t *testing.T) {
	ts, _ := newTestServer(t)

	out, err := runCmd(t, "list", "--server", ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "No routes registered\n", out)

	_, err = runCmd(t, "add", "--server", ts.URL, "--path", "/b", "--status", "404")
	require.NoError(t, err)
	_, err = runCmd(t, "add", "--server", ts.URL, "--path", "/a", "-X", "DELETE", "--delay-ms", "20")
	require.NoError(t, err)

	out, err = runCmd(t, "list", "--server", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "METHOD")
	assert.Contains(t, out, "DELAY")
	assert.Regexp(t, `DELETE\s+/a\s+200\s+20ms`, out)
	assert.Regexp(t, `GET\s+/b\s+404\s+0ms`, out)
	assert.Less(t, bytes.Index([]byte(out), []byte("/a")), bytes.Index([]byte(out), []byte("/b")))

	out, err = runCmd(t, "list", "--server", ts.URL, "-o", "json")
	require.NoError(t, err)
	var got []route.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []route.Summary{
		{Method: "DELETE", Path: "/a", Status: 200, DelayMs: 20},
		{Method: "GET", Path: "/b", Status: 404},
	}, got)

	out, err = runCmd(t, "list", "--server", ts.URL, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "path: /a")
}

func TestListCmd_BadFormat(t *testing.T) {
	ts, _ := newTestServer(t)
	_, err := runCmd(t, "list", "--server", ts.URL, "-o", "xml")
	require.Error(t, err)
}

func TestSaveCmd(t *testing.T) {
	path := t.TempDir() + "/routes.json"
	ts, _ := newTestServer(t, registry.WithPersister(file.New(store.Config{Path: path})))

	_, err := runCmd(t, "add", "--server", ts.URL, "--path", "/ping", "--response", `{"pong":true}`)
	require.NoError(t, err)

	out, err := runCmd(t, "save", "--server", ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Saved 1 routes\n", out)

	loaded, err := file.New(store.Config{Path: path}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "/ping", loaded[0].Path)
}

func TestSaveCmd_NoPersister(t *testing.T) {
	ts, _ := newTestServer(t)
	_, err := runCmd(t, "save", "--server", ts.URL)
	require.Error(t, err)
	assert.Equal(t, "No routes file configured", err.Error())
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mockie ")

	out, err = runCmd(t, "version", "--json")
	require.NoError(t, err)
	var v VersionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.NotEmpty(t, v.Go)
	assert.NotEmpty(t, v.OS)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateResponse(""))
	assert.NoError(t, validateResponse(`[1,2]`))
	assert.ErrorIs(t, validateResponse(`{`), ErrInvalidResponse)

	assert.NoError(t, validateStatus("100"))
	assert.NoError(t, validateStatus(" 599 "))
	assert.Error(t, validateStatus("600"))
	assert.Error(t, validateStatus("abc"))

	assert.NoError(t, validateDelay("0"))
	assert.Error(t, validateDelay("-1"))
	assert.Error(t, validateDelay("1.5"))
}
