package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newContentsServer serves a GitHub-style contents listing for
// /repos/cnhornbeck/MCModProfiles/contents and the raw files it links to.
func newContentsServer(t *testing.T, files map[string]string) (*httptest.Server, func() []*http.Request) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []*http.Request
	)
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Clone(context.Background()))
		mu.Unlock()

		switch {
		case r.URL.Path == "/repos/cnhornbeck/MCModProfiles/contents":
			entries := []RemoteFile{
				{Name: "docs", Path: "docs", Type: "dir"},
			}
			for name := range files {
				entries = append(entries, RemoteFile{
					Name:        name,
					Path:        name,
					Type:        "file",
					DownloadURL: server.URL + "/raw/" + name,
				})
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(entries)

		case strings.HasPrefix(r.URL.Path, "/raw/"):
			content, ok := files[strings.TrimPrefix(r.URL.Path, "/raw/")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(content))

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, func() []*http.Request {
		mu.Lock()
		defer mu.Unlock()
		return append([]*http.Request(nil), requests...)
	}
}

var defaultRepo = Repo{Owner: "cnhornbeck", Name: "MCModProfiles"}

func TestFetcher_FetchProfiles(t *testing.T) {
	server, requests := newContentsServer(t, map[string]string{
		"fabric.txt": "sodium\nlithium\n",
	})
	f := NewFetcher(WithBaseURL(server.URL), WithToken("secret"))

	profiles, err := f.FetchProfiles(context.Background(), defaultRepo)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "fabric", profiles[0].Name)
	assert.Equal(t, []string{"sodium", "lithium"}, profiles[0].Mods)
	assert.Equal(t, "github:cnhornbeck/MCModProfiles/fabric.txt", profiles[0].Source)

	seen := requests()
	require.NotEmpty(t, seen)
	listing := seen[0]
	assert.Equal(t, "Bearer secret", listing.Header.Get("Authorization"))
	assert.Equal(t, "ferium-companion", listing.Header.Get("User-Agent"))
	assert.Equal(t, "application/vnd.github+json", listing.Header.Get("Accept"))
}

func TestFetcher_ListFilesSkipsDirectories(t *testing.T) {
	server, _ := newContentsServer(t, map[string]string{"a.txt": "x", "b.txt": "y"})
	f := NewFetcher(WithBaseURL(server.URL), WithToken(""))

	files, err := f.ListFiles(context.Background(), defaultRepo)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, file := range files {
		assert.Equal(t, "file", file.Type)
	}
}

func TestFetcher_FetchProfile(t *testing.T) {
	server, _ := newContentsServer(t, map[string]string{
		"forge.txt":  "create\n",
		"fabric.txt": "# perf\nsodium\n",
	})
	f := NewFetcher(WithBaseURL(server.URL), WithToken(""))

	p, err := f.FetchProfile(context.Background(), defaultRepo, "fabric")
	require.NoError(t, err)
	assert.Equal(t, []string{"sodium"}, p.Mods)

	p, err = f.FetchProfile(context.Background(), defaultRepo, "forge.txt")
	require.NoError(t, err)
	assert.Equal(t, "forge", p.Name)

	_, err = f.FetchProfile(context.Background(), defaultRepo, "quilt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFetcher_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, "status 401"},
		{http.StatusForbidden, "rate limit"},
		{http.StatusNotFound, "not found"},
		{http.StatusServiceUnavailable, "temporarily unavailable"},
		{http.StatusTeapot, "status 418"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"internal detail"}`))
			}))
			defer server.Close()

			_, err := NewFetcher(WithBaseURL(server.URL)).ListFiles(context.Background(), defaultRepo)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotContains(t, err.Error(), "internal detail")
		})
	}
}

func TestFetcher_ResponseSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", maxResponseSize+10)))
	}))
	defer server.Close()

	_, err := NewFetcher(WithBaseURL(server.URL)).ListFiles(context.Background(), defaultRepo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestFetcher_ContextCancellation(t *testing.T) {
	server, _ := newContentsServer(t, map[string]string{"a.txt": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(WithBaseURL(server.URL)).ListFiles(ctx, defaultRepo)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_RejectsInsecureURLs(t *testing.T) {
	f := NewFetcher(WithBaseURL("http://example.com"))
	_, err := f.ListFiles(context.Background(), defaultRepo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only allowed for localhost")

	_, err = NewFetcher().ListFiles(context.Background(), Repo{Owner: "x"})
	assert.Error(t, err)
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, validateBaseURL("https://api.github.com"))
	assert.NoError(t, validateBaseURL("http://127.0.0.1:8080"))
	assert.NoError(t, validateBaseURL("http://localhost"))
	assert.Error(t, validateBaseURL("http://api.github.com"))
	assert.Error(t, validateBaseURL("ftp://api.github.com"))
}

func TestRepoString(t *testing.T) {
	assert.Equal(t, "cnhornbeck/MCModProfiles", defaultRepo.String())
	assert.Equal(t, "o/r/packs/1.21", Repo{Owner: "o", Name: "r", Path: "/packs/1.21/"}.String())
}
