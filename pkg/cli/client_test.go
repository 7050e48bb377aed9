package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockie/pkg/admin"
	"github.com/getmockd/mockie/pkg/route"
)

func TestAdminClient_AddRoute(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer ts.Close()

	status := 201
	delay := uint64(50)
	err := NewAdminClient(ts.URL+"/").AddRoute(context.Background(), admin.AddRouteBody{
		Method:   "POST",
		Path:     "/orders",
		Status:   &status,
		DelayMs:  &delay,
		Response: json.RawMessage(`{"id":1}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, admin.PathRoutes, gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "POST", gotBody["method"])
	assert.Equal(t, "/orders", gotBody["path"])
	assert.EqualValues(t, 201, gotBody["status"])
	assert.EqualValues(t, 50, gotBody["delayMs"])
	assert.NotContains(t, gotBody, "delay_ms")
}

func TestAdminClient_ListRoutes(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `[{"method":"GET","path":"/a","status":200,"delayMs":0},{"method":"POST","path":"/b","status":201,"delayMs":10}]`)
	}))
	defer ts.Close()

	routes, err := NewAdminClient(ts.URL).ListRoutes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []route.Summary{
		{Method: "GET", Path: "/a", Status: 200},
		{Method: "POST", Path: "/b", Status: 201, DelayMs: 10},
	}, routes)
}

func TestAdminClient_SaveAndHealth(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case admin.PathSave:
			_, _ = io.WriteString(w, `{"ok":true,"saved":3}`)
		case admin.PathHealth:
			_, _ = io.WriteString(w, `{"status":"ok","routes":3}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c := NewAdminClient(ts.URL)
	n, err := c.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 3, h.Routes)
}

func TestAdminClient_APIError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Status must be between 100 and 599"}`)
	}))
	defer ts.Close()

	err := NewAdminClient(ts.URL).AddRoute(context.Background(), admin.AddRouteBody{Method: "GET", Path: "/x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Status must be between 100 and 599", apiErr.Message)
	assert.Equal(t, apiErr.Message, FormatConnectionError(err))
}

func TestAdminClient_NonJSONError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down\n")
	}))
	defer ts.Close()

	_, err := NewAdminClient(ts.URL).ListRoutes(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "unknown_error", apiErr.ErrorCode)
	assert.Equal(t, "server returned status 502: upstream down", apiErr.Message)
}

func TestAdminClient_ConnectionError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewAdminClient(url, WithTimeout(time.Second)).Health(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errorCodeConnection, apiErr.ErrorCode)

	msg := FormatConnectionError(err)
	assert.Contains(t, msg, "cannot connect to mockie at "+url)
	assert.Contains(t, msg, "mockie serve")
}

func TestAdminClient_DecodeError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer ts.Close()

	_, err := NewAdminClient(ts.URL).Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}
