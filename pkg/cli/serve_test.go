package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockie/pkg/admin"
	"github.com/getmockd/mockie/pkg/cli/internal/ports"
	"github.com/getmockd/mockie/pkg/cliconfig"
	"github.com/getmockd/mockie/pkg/route"
	"github.com/getmockd/mockie/pkg/store"
	"github.com/getmockd/mockie/pkg/store/file"
)

func serveConfig(t *testing.T) *cliconfig.Config {
	t.Helper()
	port, err := ports.Free()
	require.NoError(t, err)

	cfg := cliconfig.NewDefault()
	cfg.Port = port
	cfg.StorageFile = filepath.Join(t.TempDir(), "routes.json")
	cfg.LogLevel = "error"
	return cfg
}

// startServe runs runServe in the background and waits for it to be healthy.
func startServe(t *testing.T, ctx context.Context, cfg *cliconfig.Config) (AdminClient, *bytes.Buffer, <-chan error) {
	t.Helper()
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, cfg, &out, &bytes.Buffer{})
	}()

	client := NewAdminClient(fmt.Sprintf("http://127.0.0.1:%d", cfg.Port), WithTimeout(time.Second))
	require.Eventually(t, func() bool {
		_, err := client.Health(context.Background())
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	return client, &out, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
		return nil
	}
}

func TestRunServe_ShutdownSavesRoutes(t *testing.T) {
	cfg := serveConfig(t)
	client, out, done := startServe(t, context.Background(), cfg)

	status := 201
	require.NoError(t, client.AddRoute(context.Background(), admin.AddRouteBody{
		Method: "POST", Path: "/users", Status: &status, Response: json.RawMessage(`{"id":7}`),
	}))

	resp, err := http.Post(fmt.Sprintf("http://127.0.0.1:%d/users", cfg.Port), "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	_, err = os.Stat(cfg.StorageFile)
	assert.True(t, os.IsNotExist(err), "routes are not written on add")

	require.NoError(t, client.Shutdown(context.Background()))
	require.NoError(t, waitDone(t, done))

	assert.Contains(t, out.String(), fmt.Sprintf("mockie listening on http://localhost:%d (0 routes from %s)", cfg.Port, cfg.StorageFile))
	assert.Contains(t, out.String(), "Shutting down...")

	saved, err := file.New(store.Config{Path: cfg.StorageFile}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Equal(route.New("POST", "/users", 201, 0, json.RawMessage(`{"id":7}`))))
}

func TestRunServe_LoadsExistingRoutes(t *testing.T) {
	cfg := serveConfig(t)
	require.NoError(t, os.WriteFile(cfg.StorageFile,
		[]byte(`[{"method":"GET","path":"/ping","status":200,"delay_ms":0,"response":{"pong":true}}]`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	client, out, done := startServe(t, ctx, cfg)

	h, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.Routes)

	cancel()
	require.NoError(t, waitDone(t, done))
	assert.Contains(t, out.String(), "(1 routes from ")
}

func TestRunServe_CorruptFileStartsEmpty(t *testing.T) {
	cfg := serveConfig(t)
	require.NoError(t, os.WriteFile(cfg.StorageFile, []byte(`{not json`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	client, _, done := startServe(t, ctx, cfg)

	routes, err := client.ListRoutes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, routes)

	matches, err := filepath.Glob(cfg.StorageFile + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestRunServe_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	cfg := serveConfig(t)
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	err = runServe(context.Background(), cfg, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not available")
}

func TestServeCmd_InvalidConfig(t *testing.T) {
	_, err := runCmd(t, "serve", "--port", "70000")
	require.Error(t, err)

	_, err = runCmd(t, "serve", "--save-schedule", "not a schedule")
	require.Error(t, err)
}
