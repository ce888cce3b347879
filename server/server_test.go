package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	podcastsim "github.com/botirk38/podcastsim"
	"github.com/botirk38/podcastsim/neighbors"
	"github.com/botirk38/podcastsim/options"
	"github.com/botirk38/podcastsim/types"
)

func newTestServer(t *testing.T, build bool) (*Server, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()

	e, err := podcastsim.New(
		options.WithMemorySource(map[string]types.TokenCounts{
			"A": {"cat": 3, "dog": 1},
			"B": {"cat": 3, "dog": 1},
			"C": {"fish": 5},
			"D": {},
		}),
		options.WithLogger(logger),
	)
	require.NoError(t, err)

	if build {
		_, err := e.Build(t.Context(), []string{"A", "B", "C", "D"})
		require.NoError(t, err)
	}
	return New(e, logger), hook
}

func do(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, hook := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok","snapshot":false}`, rec.Body.String())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Request", entry.Message)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}

func TestNoSnapshot(t *testing.T) {
	s, _ := newTestServer(t, false)

	for _, path := range []string{"/v1/snapshot", "/v1/documents/A/neighbors", "/v1/documents/A/compare/B"} {
		rec := do(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestSnapshotInfo(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := do(t, s, http.MethodGet, "/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got SnapshotInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 4, got.Documents)
	assert.Equal(t, 3, got.Vocabulary)
	assert.Contains(t, got.Version, "sha256:")
}

func TestNeighbors(t *testing.T) {
	s, _ := newTestServer(t, true)

	t.Run("Default", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/v1/documents/A/neighbors", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got NeighborsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "A", got.ID)
		require.Len(t, got.Neighbors, 3)
		assert.Equal(t, "B", got.Neighbors[0].ID)
		assert.InDelta(t, 0, got.Neighbors[0].Distance, 1e-7)
	})

	t.Run("K", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/v1/documents/A/neighbors?k=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got NeighborsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got.Neighbors, 1)
	})

	t.Run("BadK", func(t *testing.T) {
		for _, k := range []string{"0", "-2", "many"} {
			rec := do(t, s, http.MethodGet, "/v1/documents/A/neighbors?k="+k, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, k)
		}
	})

	t.Run("UnknownDocument", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/v1/documents/Z/neighbors", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var got ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, http.StatusNotFound, got.Response)
	})
}

func TestCompare(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := do(t, s, http.MethodGet, "/v1/documents/A/compare/C", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ntfs":0`)

	rec = do(t, s, http.MethodGet, "/v1/documents/A/compare/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuild(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/v1/snapshot", []byte(`{"ids":["A","B","C"]}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got SnapshotInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Documents)

	rec = do(t, s, http.MethodGet, "/v1/documents/A/neighbors?k=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("BadBody", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/snapshot", []byte(`{`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NoIDs", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/snapshot", []byte(`{"ids":[]}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Duplicate", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/snapshot", []byte(`{"ids":["A","A"]}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := do(t, s, http.MethodDelete, "/v1/snapshot", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// rebuildingEngine publishes next right after handing out the current
// snapshot, the way a concurrent rebuild would.
type rebuildingEngine struct {
	*podcastsim.Engine
	next *types.Snapshot
	seen *types.Snapshot
}

func (r *rebuildingEngine) Current() *types.Snapshot {
	s := r.Engine.Current()
	if r.next != nil {
		_ = r.Engine.Publish(r.next)
	}
	return s
}

func (r *rebuildingEngine) NeighborsIn(ctx context.Context, s *types.Snapshot, id string, k int) ([]neighbors.Neighbor, error) {
	r.seen = s
	return r.Engine.NeighborsIn(ctx, s, id, k)
}

func TestNeighborsVersionMatchesRanking(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	e, err := podcastsim.New(
		options.WithMemorySource(map[string]types.TokenCounts{
			"A": {"cat": 3, "dog": 1},
			"B": {"cat": 3, "dog": 1},
			"C": {"cat": 1, "fish": 5},
		}),
		options.WithLogger(logger),
	)
	require.NoError(t, err)

	before, err := e.Build(t.Context(), []string{"A", "B", "C"})
	require.NoError(t, err)
	after, err := e.Build(t.Context(), []string{"A", "C"})
	require.NoError(t, err)
	require.NotEqual(t, before.Version, after.Version)
	require.NoError(t, e.Publish(before))

	engine := &rebuildingEngine{Engine: e, next: after}
	s := New(engine, logger)

	rec := do(t, s, http.MethodGet, "/v1/documents/A/neighbors?k=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got NeighborsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, before.Version.String(), got.Version)
	assert.Same(t, before, engine.seen)
	require.Len(t, got.Neighbors, 1)
	assert.Equal(t, "B", got.Neighbors[0].ID)
	assert.Same(t, after, e.Current())
}
