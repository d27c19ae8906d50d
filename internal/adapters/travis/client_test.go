package travis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/matrix-leader/internal/domain/matrix"
	apperrors "github.com/target/matrix-leader/internal/errors"
	"github.com/target/matrix-leader/internal/ports"
)

const buildPayload = `{
  "id": 99,
  "matrix": [
    {"id": 1, "number": "99.1", "finished_at": null, "result": null},
    {"id": 2, "number": "99.2", "finished_at": "2014-05-01T10:00:00Z", "result": 0},
    {"id": 3, "number": "99.3", "finished_at": null, "result": null},
    {"id": 4, "number": "99.4", "finished_at": "2014-05-01T10:02:00Z", "result": 1}
  ]
}`

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{Entry: srv.URL + "/", Timeout: time.Second, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.True(t, apperrors.IsConfiguration(err), "missing entry: %v", err)

	_, err = NewClient(Config{Entry: "not a url"})
	assert.True(t, apperrors.IsConfiguration(err), "invalid entry: %v", err)

	_, err = NewClient(Config{Entry: "https://api.travis-ci.org", MatrixPath: "matrix[?"})
	assert.True(t, apperrors.IsConfiguration(err), "invalid path: %v", err)
}

func TestClient_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/github", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gh-secret", body["github_token"])
		_, _ = w.Write([]byte(`{"access_token":"travis-token"}`))
	}))
	defer srv.Close()

	token, err := newTestClient(t, srv).Exchange(context.Background(), "gh-secret")
	require.NoError(t, err)
	assert.Equal(t, "travis-token", token)
}

func TestClient_ExchangeFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		secret  string
		wantMsg string
	}{
		{name: "rejected", status: http.StatusForbidden, body: `{"error":"nope"}`, secret: "gh"},
		{name: "no token", status: http.StatusOK, body: `{}`, secret: "gh"},
		{name: "garbage", status: http.StatusOK, body: `not json`, secret: "gh"},
		{name: "empty secret", status: http.StatusOK, body: `{"access_token":"x"}`, secret: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			token, err := newTestClient(t, srv).Exchange(context.Background(), tt.secret)
			require.Error(t, err)
			assert.True(t, apperrors.IsAuth(err), "expected auth error, got %v", err)
			assert.Empty(t, token)
		})
	}
}

func TestClient_FetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/builds/99", r.URL.Path)
		assert.Equal(t, "token travis-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(buildPayload))
	}))
	defer srv.Close()

	snap, err := newTestClient(t, srv).FetchSnapshot(context.Background(), ports.FetchInput{
		BuildID:         "99",
		LeaderJobNumber: "99.1",
		AccessToken:     "travis-token",
	})
	require.NoError(t, err)

	assert.Equal(t, matrix.Snapshot{
		{Number: "99.2", IsFinished: true, IsSucceeded: true},
		{Number: "99.3"},
		{Number: "99.4", IsFinished: true},
	}, snap)
}

func TestClient_FetchSnapshotAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"matrix":[{"number":"5.2","finished_at":"x","result":0}]}`))
	}))
	defer srv.Close()

	snap, err := newTestClient(t, srv).FetchSnapshot(context.Background(), ports.FetchInput{
		BuildID:         "5",
		LeaderJobNumber: "5.1",
	})
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.True(t, snap[0].IsSucceeded)
}

func TestClient_FetchSnapshotCustomAccept(t *testing.T) {
	const v2 = "application/vnd.travis-ci.2.1+json"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, v2, r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"jobs":[{"number":"5.2","finished_at":null,"result":null}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Entry: srv.URL, MatrixPath: "jobs", Accept: v2, Timeout: time.Second, HTTPClient: srv.Client()})
	require.NoError(t, err)

	snap, err := c.FetchSnapshot(context.Background(), ports.FetchInput{BuildID: "5", LeaderJobNumber: "5.1"})
	require.NoError(t, err)
	assert.Equal(t, matrix.Snapshot{{Number: "5.2"}}, snap)
}

func TestClient_FetchSnapshotErrors(t *testing.T) {
	t.Run("server error is a fetch error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).FetchSnapshot(context.Background(), ports.FetchInput{BuildID: "1"})
		assert.True(t, apperrors.IsFetch(err), "got %v", err)
	})

	t.Run("bad payload is a parse error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"jobs":[]}`))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv).FetchSnapshot(context.Background(), ports.FetchInput{BuildID: "1"})
		assert.True(t, apperrors.IsParse(err), "got %v", err)
	})

	t.Run("missing build id", func(t *testing.T) {
		c, err := NewClient(Config{Entry: "https://api.travis-ci.org"})
		require.NoError(t, err)
		_, err = c.FetchSnapshot(context.Background(), ports.FetchInput{})
		assert.True(t, apperrors.IsConfiguration(err), "got %v", err)
	})
}

func TestParseMatrix(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		payload string
		want    matrix.Snapshot
		wantErr bool
	}{
		{
			name:    "integer numbers",
			path:    "matrix",
			payload: `{"matrix":[{"number":7,"finished_at":"t","result":0}]}`,
			want:    matrix.Snapshot{{Number: "7", IsFinished: true, IsSucceeded: true}},
		},
		{
			name:    "alternate path",
			path:    "jobs",
			payload: `{"jobs":[{"number":"1.1","finished_at":null},{"number":"1.2","finished_at":"t","result":null}]}`,
			want:    matrix.Snapshot{{Number: "1.1", IsLeader: true}, {Number: "1.2", IsFinished: true}},
		},
		{
			name:    "empty matrix",
			path:    "matrix",
			payload: `{"matrix":[]}`,
			want:    matrix.Snapshot{},
		},
		{name: "not json", path: "matrix", payload: `{`, wantErr: true},
		{name: "missing array", path: "matrix", payload: `{"jobs":[]}`, wantErr: true},
		{name: "not an array", path: "matrix", payload: `{"matrix":{"number":"1"}}`, wantErr: true},
		{name: "entry not an object", path: "matrix", payload: `{"matrix":["1.1"]}`, wantErr: true},
		{name: "missing number", path: "matrix", payload: `{"matrix":[{"finished_at":null}]}`, wantErr: true},
		{name: "empty number", path: "matrix", payload: `{"matrix":[{"number":"","finished_at":null}]}`, wantErr: true},
		{name: "missing finished_at", path: "matrix", payload: `{"matrix":[{"number":"1.2"}]}`, wantErr: true},
		{name: "bad finished_at", path: "matrix", payload: `{"matrix":[{"number":"1.2","finished_at":12}]}`, wantErr: true},
		{name: "bad result", path: "matrix", payload: `{"matrix":[{"number":"1.2","finished_at":"t","result":"passed"}]}`, wantErr: true},
		{name: "fractional result", path: "matrix", payload: `{"matrix":[{"number":"1.2","finished_at":"t","result":0.5}]}`, wantErr: true},
		{
			name:    "duplicate number",
			path:    "matrix",
			payload: `{"matrix":[{"number":"1.2","finished_at":null},{"number":"1.2","finished_at":null}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMatrix([]byte(tt.payload), tt.path, "1.1")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsParse(err), "expected parse error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
