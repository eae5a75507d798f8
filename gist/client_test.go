package gist

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	var gotBody createRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gists", r.URL.Path)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &gotBody))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"aa5a315d61ae9438b18d","html_url":"https://gist.github.com/aa5a315d61ae9438b18d"}`))
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL+"/"), WithToken("s3cret"))
	id, err := c.Create(context.Background(), "data.geojson", "parcels", `{"type":"FeatureCollection"}`)
	require.NoError(t, err)

	assert.Equal(t, "aa5a315d61ae9438b18d", id)
	assert.Equal(t, "parcels", gotBody.Description)
	assert.True(t, gotBody.Public)
	require.Contains(t, gotBody.Files, "data.geojson")
	assert.Equal(t, `{"type":"FeatureCollection"}`, gotBody.Files["data.geojson"].Content)
}

func TestCreate_NoTokenSendsNoAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"anon"}`))
	}))
	defer server.Close()

	id, err := New(WithBaseURL(server.URL)).Create(context.Background(), "data.geojson", "", "{}")
	require.NoError(t, err)
	assert.Equal(t, "anon", id)
}

func TestCreate_EmptyContent(t *testing.T) {
	_, err := New().Create(context.Background(), "data.geojson", "", "")
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrEmptyContent, e.Code)
}

func TestCreate_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		remaining string
		want      ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, "", ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "42", ErrUnauthorized},
		{"rate limited", http.StatusForbidden, "0", ErrRateLimited},
		{"too many requests", http.StatusTooManyRequests, "", ErrRateLimited},
		{"not found", http.StatusNotFound, "", ErrNotFound},
		{"validation", http.StatusUnprocessableEntity, "", ErrValidation},
		{"server", http.StatusBadGateway, "", ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.remaining != "" {
					w.Header().Set("X-RateLimit-Remaining", tt.remaining)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope","documentation_url":"https://docs.github.com"}`))
			}))
			defer server.Close()

			_, err := New(WithBaseURL(server.URL)).Create(context.Background(), "data.geojson", "", "{}")
			require.Error(t, err)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.want, e.Code)
			assert.Equal(t, tt.status, e.Status)
		})
	}
}

func TestCreate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL), WithTimeout(20*time.Millisecond))
	_, err := c.Create(context.Background(), "data.geojson", "", "{}")
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gists/abc123":
			resp := gistResponse{
				ID: "abc123",
				Files: map[string]file{
					"data.geojson": {Filename: "data.geojson", Content: "{}"},
					"big.geojson":  {Filename: "big.geojson", Content: "{\"ty", Truncated: true, RawURL: server.URL + "/raw/big.geojson"},
				},
			}
			json.NewEncoder(w).Encode(resp)
		case "/raw/big.geojson":
			w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	for _, ident := range []string{"abc123", "https://gist.github.com/octocat/abc123", "/abc123"} {
		files, err := c.Get(context.Background(), ident)
		require.NoError(t, err, ident)
		assert.Equal(t, map[string]string{
			"data.geojson": "{}",
			"big.geojson":  `{"type":"FeatureCollection","features":[]}`,
		}, files)
	}

	_, err := c.Get(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}

func TestParseID(t *testing.T) {
	id, err := parseID("https://gist.github.com/aa5a315d61ae9438b18d")
	require.NoError(t, err)
	assert.Equal(t, "aa5a315d61ae9438b18d", id)

	_, err = parseID("")
	assert.Error(t, err)

	_, err = parseID("https://gist.github.com/")
	assert.Error(t, err)
}
