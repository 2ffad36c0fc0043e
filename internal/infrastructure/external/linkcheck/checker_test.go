package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(timeout time.Duration) *Checker {
	config := DefaultCheckerConfig()
	if timeout > 0 {
		config.Timeout = timeout
	}
	return NewChecker(config)
}

func TestChecker_Check_ReachableLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := newTestChecker(0).Check(context.Background(), server.URL+"/video")

	assert.True(t, result.OK)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Empty(t, result.Reason)
}

func TestChecker_Check_BrokenLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := newTestChecker(0).Check(context.Background(), server.URL+"/gone")

	assert.False(t, result.OK)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Equal(t, "status 404", result.Reason)
}

func TestChecker_Check_ServerErrorIsInvalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result := newTestChecker(0).Check(context.Background(), server.URL)

	assert.False(t, result.OK)
	assert.Equal(t, "status 503", result.Reason)
}

func TestChecker_Check_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	result := newTestChecker(0).Check(context.Background(), serverURL)

	assert.False(t, result.OK)
	assert.Equal(t, "unreachable", result.Reason)
	assert.Zero(t, result.StatusCode)
}

func TestChecker_Check_NoRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	result := newTestChecker(0).Check(context.Background(), server.URL)

	assert.False(t, result.OK)
	assert.Equal(t, int32(1), hits.Load())
}

func TestChecker_Check_TimeoutIsInvalidForThisRun(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	result := newTestChecker(50 * time.Millisecond).Check(context.Background(), server.URL)

	assert.False(t, result.OK)
	assert.Equal(t, "unreachable", result.Reason)
	assert.Equal(t, int32(1), hits.Load())
}

func TestChecker_Check_MalformedReferences(t *testing.T) {
	checker := newTestChecker(0)

	tests := []struct {
		name      string
		reference string
	}{
		{name: "empty", reference: ""},
		{name: "whitespace only", reference: "   "},
		{name: "contains spaces", reference: "https://example.com/a video"},
		{name: "scheme only", reference: "https://"},
		{name: "unsupported scheme", reference: "ftp://example.com/file"},
		{name: "free text", reference: "sorry, I could not find a video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(context.Background(), tt.reference)
			assert.False(t, result.OK)
			assert.NotEmpty(t, result.Reason)
		})
	}
}

func TestChecker_Check_AllowedHosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := DefaultCheckerConfig()
	config.AllowedHosts = []string{"youtube.com", "youtu.be"}
	checker := NewChecker(config)

	result := checker.Check(context.Background(), server.URL)

	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "host not allowed")
}

func TestChecker_Check_AllowedHostsIgnoreWWWPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	// Allow-listing the www form must still admit the bare host.
	config := DefaultCheckerConfig()
	config.AllowedHosts = []string{"www." + serverURL.Hostname()}
	checker := NewChecker(config)

	result := checker.Check(context.Background(), server.URL)

	assert.True(t, result.OK)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestHostAllowed_StripsLeadingWWW(t *testing.T) {
	// The shipped default allow list carries bare hosts, while video
	// URLs (and the youtu.be rewrite) resolve to www.youtube.com.
	config := DefaultCheckerConfig()
	config.AllowedHosts = []string{"youtube.com", "youtu.be"}
	checker := NewChecker(config)

	tests := []struct {
		name      string
		reference string
		allowed   bool
	}{
		{name: "canonical watch URL", reference: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", allowed: true},
		{name: "bare host", reference: "https://youtube.com/watch?v=dQw4w9WgXcQ", allowed: true},
		{name: "short link rewritten to www host", reference: "https://youtu.be/dQw4w9WgXcQ", allowed: true},
		{name: "foreign host", reference: "https://vimeo.com/12345", allowed: false},
		{name: "www on a foreign host", reference: "https://www.vimeo.com/12345", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := normalizeForProbe(tt.reference)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, checker.hostAllowed(u))
		})
	}
}

func TestNormalizeForProbe_ShortVideoLink(t *testing.T) {
	u, err := normalizeForProbe("https://youtu.be/dQw4w9WgXcQ?t=42")
	require.NoError(t, err)

	assert.Equal(t, "www.youtube.com", u.Hostname())
	assert.Equal(t, "/watch", u.Path)
	assert.Equal(t, "dQw4w9WgXcQ", u.Query().Get("v"))
}

func TestNormalizeForProbe_DefaultsToHTTPS(t *testing.T) {
	u, err := normalizeForProbe("www.youtube.com/watch?v=abc123XYZ_-")
	require.NoError(t, err)

	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "www.youtube.com", u.Hostname())
}

func TestNormalizeForProbe_KeepsExplicitHTTP(t *testing.T) {
	u, err := normalizeForProbe("http://127.0.0.1:8080/watch")
	require.NoError(t, err)

	assert.Equal(t, "http", u.Scheme)
}

func TestNormalizeForProbe_SchemelessShortLink(t *testing.T) {
	u, err := normalizeForProbe("youtu.be/abc123XYZ_-")
	require.NoError(t, err)

	assert.Equal(t, "www.youtube.com", u.Hostname())
	assert.Equal(t, "abc123XYZ_-", u.Query().Get("v"))
}
