package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockie/pkg/route"
	"github.com/getmockd/mockie/pkg/store"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return New(store.Config{Path: filepath.Join(t.TempDir(), "routes.json")})
}

var sortRoutes = cmpopts.SortSlices(func(a, b route.Route) bool {
	return a.Key().String() < b.Key().String()
})

func TestNew_DefaultPath(t *testing.T) {
	s := New(store.Config{})
	assert.Equal(t, store.DefaultPath, s.Path())
}

func TestLoad_MissingFile(t *testing.T) {
	s := newTestStore(t)
	routes, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestLoad_EmptyFile(t *testing.T) {
	for _, content := range []string{"", "   \n\t"} {
		s := newTestStore(t)
		require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0600))

		routes, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, routes)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"method": "GET",`), 0600))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrCorrupt), "got %v", err)
}

func TestLoad_WrongShape(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"routes": []}`), 0600))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrCorrupt)
}

func TestLoad_Unreadable(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be read as a file.
	s := New(store.Config{Path: dir})

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrUnreadable)
}

func TestLoad_NormalizesAndSkipsInvalid(t *testing.T) {
	s := newTestStore(t)
	content := `[
  {"method": "get", "path": "/ok", "status": 200, "delay_ms": 0, "response": {"a": 1}},
  {"method": "GET", "path": "/bad", "status": 700, "delay_ms": 0, "response": {}},
  {"method": "", "path": "/nomethod", "status": 200, "delay_ms": 0, "response": {}}
]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0600))

	routes, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "GET", routes[0].Method)
	assert.Equal(t, `{"a":1}`, string(routes[0].Response))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	routes := []route.Route{
		route.New("GET", "/ping", 200, 0, json.RawMessage(`{"pong":true}`)),
		route.New("POST", "/users", 201, 150, json.RawMessage(`{"id": 7, "tags": ["x", "y"]}`)),
		route.New("DELETE", "/users/7", 204, 0, nil),
		route.New("GET", "/list", 200, 0, json.RawMessage(`[1, 2, 3]`)),
		route.New("GET", "/str", 200, 0, json.RawMessage(`"hello"`)),
	}

	require.NoError(t, s.Save(context.Background(), routes))
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(routes, loaded, sortRoutes))
}

func TestSave_FileFormat(t *testing.T) {
	s := newTestStore(t)
	routes := []route.Route{
		route.New("POST", "/b", 201, 5, json.RawMessage(`{"ok":true}`)),
		route.New("GET", "/a", 200, 0, json.RawMessage(`{}`)),
	}
	require.NoError(t, s.Save(context.Background(), routes))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	// Pretty-printed with two-space indent.
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"method\""), "got:\n%s", data)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "/a", raw[0]["path"])
	assert.Equal(t, "/b", raw[1]["path"])
	for _, entry := range raw {
		for _, field := range []string{"method", "path", "status", "delay_ms", "response"} {
			assert.Contains(t, entry, field)
		}
	}
	assert.EqualValues(t, 5, raw[1]["delay_ms"])
}

func TestSave_ReplacesPriorContents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, []route.Route{
		route.New("GET", "/old", 200, 0, nil),
		route.New("GET", "/older", 200, 0, nil),
	}))
	require.NoError(t, s.Save(ctx, []route.Route{route.New("GET", "/new", 200, 0, nil)}))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "/new", loaded[0].Path)
}

func TestSave_NoTempFileLeft(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), []route.Route{route.New("GET", "/a", 200, 0, nil)}))

	_, err := os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSave_EmptySet(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(context.Background(), nil))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSave_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "routes.json")
	s := New(store.Config{Path: path})
	require.NoError(t, s.Save(context.Background(), []route.Route{route.New("GET", "/a", 200, 0, nil)}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSave_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, nil), context.Canceled)
}

func TestQuarantine(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("not json"), 0600))

	dst, err := s.Quarantine()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dst, s.Path()+".corrupt-"))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "not json", string(data))

	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}
