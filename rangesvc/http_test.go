package rangesvc_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hupe1980/digitstream"
	"github.com/hupe1980/digitstream/blobstore"
	"github.com/hupe1980/digitstream/rangesvc"
	"github.com/hupe1980/digitstream/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, name string, data []byte, optFns ...rangesvc.ServiceOption) *httptest.Server {
	t.Helper()
	svc := newFixture(t, name, data, optFns...)
	srv := httptest.NewServer(rangesvc.NewHandler(svc, name, nil))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, body
}

func TestHandler_HappyPath(t *testing.T) {
	srv := newServer(t, "pi.txt", []byte(testutil.PiPrefix))

	resp, body := get(t, srv.URL+"?start=0&length=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3.141", string(body))
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "5", resp.Header.Get("Content-Length"))
}

func TestHandler_Defaults(t *testing.T) {
	data := testutil.Sequence(13, 100)
	srv := newServer(t, "seq.txt", data)

	// No parameters: start defaults to 0, length to the service default,
	// which exceeds the object here so the whole thing comes back.
	resp, body := get(t, srv.URL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, data, body)
}

func TestHandler_PastEndIsEmptyOK(t *testing.T) {
	srv := newServer(t, "pi.txt", []byte(testutil.PiPrefix))

	resp, body := get(t, fmt.Sprintf("%s?start=%d&length=10", srv.URL, len(testutil.PiPrefix)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
	assert.Equal(t, "0", resp.Header.Get("Content-Length"))
}

func TestHandler_BadRequest(t *testing.T) {
	srv := newServer(t, "pi.txt", []byte(testutil.PiPrefix))

	for _, query := range []string{
		"?start=-1",
		"?start=abc",
		"?length=0",
		"?length=-5",
		"?length=xyz",
		fmt.Sprintf("?length=%d", rangesvc.MaxRangeCeiling+1),
	} {
		resp, _ := get(t, srv.URL+query)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %s", query)
	}
}

func TestHandler_NotFound(t *testing.T) {
	svc := rangesvc.NewService(blobstore.NewMemoryStore())
	srv := httptest.NewServer(rangesvc.NewHandler(svc, "missing.txt", nil))
	defer srv.Close()

	resp, _ := get(t, srv.URL+"?start=0&length=10")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_TransientIsBadGateway(t *testing.T) {
	svc := rangesvc.NewService(failingStore{})
	srv := httptest.NewServer(rangesvc.NewHandler(svc, "pi.txt", nil))
	defer srv.Close()

	resp, _ := get(t, srv.URL+"?start=0&length=10")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := newServer(t, "pi.txt", []byte(testutil.PiPrefix))

	resp, err := http.Post(srv.URL, "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET, HEAD", resp.Header.Get("Allow"))
}

func TestHandler_Head(t *testing.T) {
	srv := newServer(t, "pi.txt", []byte(testutil.PiPrefix))

	resp, err := http.Head(srv.URL + "?start=0&length=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "5", resp.Header.Get("Content-Length"))
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, digitstream.ErrNotFound},
		{"bad request", http.StatusBadRequest, digitstream.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := rangesvc.NewClient(srv.URL).Fetch(context.Background(), 0, 10)
			require.ErrorIs(t, err, tt.want)
			require.False(t, digitstream.IsTransient(err))
		})
	}
}

func TestClient_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := rangesvc.NewClient(srv.URL).Fetch(context.Background(), 0, 10)
	require.Error(t, err)
	require.True(t, digitstream.IsTransient(err))
}

func TestClient_ConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := rangesvc.NewClient(srv.URL).Fetch(context.Background(), 0, 10)
	require.Error(t, err)
	require.True(t, digitstream.IsTransient(err))
}

func TestClient_RejectsInvalidParams(t *testing.T) {
	c := rangesvc.NewClient("http://example.invalid")

	_, err := c.Fetch(context.Background(), -1, 10)
	require.ErrorIs(t, err, digitstream.ErrInvalidRange)

	_, err = c.Fetch(context.Background(), 0, 0)
	require.ErrorIs(t, err, digitstream.ErrInvalidRange)
}

func TestClient_StreamOverHTTP(t *testing.T) {
	data := testutil.Sequence(33, 30_000)
	srv := newServer(t, "seq.txt", data)

	s := digitstream.NewStream(rangesvc.NewClient(srv.URL),
		digitstream.WithChunkSize(2048),
		digitstream.WithConcurrency(3),
	)
	defer s.Close()

	var out []byte
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		chunk, err := s.Next()
		if err == nil {
			out = append(out, chunk...)
			continue
		}
		if errors.Is(err, digitstream.ErrNotReady) {
			time.Sleep(time.Millisecond)
			continue
		}
		require.ErrorIs(t, err, digitstream.ErrEndOfStream)
		break
	}
	require.Equal(t, data, out)
}
