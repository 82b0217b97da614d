package transport

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	netcache "github.com/Borislavv/go-ash-netcache"
	"github.com/Borislavv/go-ash-netcache/model"
	"github.com/Borislavv/go-ash-netcache/request"
	"github.com/Borislavv/go-ash-netcache/tests/help"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newOrigin(t *testing.T, hits *atomic.Int64) *httptest.Server {
	r := chi.NewRouter()
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + chi.URLParam(r, "id") + `"}`))
	})
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Token", r.Header.Get("X-Token"))
		_, _ = w.Write(body)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// TestHTTP_Do maps the response record.
func TestHTTP_Do(t *testing.T) {
	var hits atomic.Int64
	srv := newOrigin(t, &hits)

	resp, err := NewHTTP(srv.Client()).Do(t.Context(), request.Endpoint{Address: srv.URL + "/items/7"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `{"id":"7"}`, string(resp.Body))
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NotNil(t, resp.Request)
	require.NotNil(t, resp.HTTPResponse)
}

// TestHTTP_Do_BodyAndHeaders sends payload and headers of the target.
func TestHTTP_Do_BodyAndHeaders(t *testing.T) {
	var hits atomic.Int64
	srv := newOrigin(t, &hits)

	resp, err := NewHTTP(srv.Client()).Do(t.Context(), request.Endpoint{
		Verb:    http.MethodPost,
		Address: srv.URL + "/echo",
		Payload: []byte("ping"),
		Headers: http.Header{"X-Token": {"secret"}},
	})
	require.NoError(t, err)
	require.Equal(t, "ping", string(resp.Body))
	require.Equal(t, "secret", resp.Header.Get("X-Token"))
}

// TestHTTP_Do_StatusError rejects non accepted status codes.
func TestHTTP_Do_StatusError(t *testing.T) {
	var hits atomic.Int64
	srv := newOrigin(t, &hits)

	_, err := NewHTTP(srv.Client()).Do(t.Context(), request.Endpoint{Address: srv.URL + "/missing"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	resp, err := NewHTTP(srv.Client()).
		WithAcceptedStatus(func(int) bool { return true }).
		Do(t.Context(), request.Endpoint{Address: srv.URL + "/missing"})
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestHTTP_WithResolver serves the second call from the cache.
func TestHTTP_WithResolver(t *testing.T) {
	var hits atomic.Int64
	srv := newOrigin(t, &hits)

	cache, err := netcache.New(t.Context(), help.Cfg(t.TempDir()), help.Logger(), netcache.WithDiskLogger(help.DiskLogger()))
	require.NoError(t, err)
	defer cache.Close()

	resolver := request.NewResolver(t.Context(), cache, NewHTTP(srv.Client()), help.Logger())
	target := request.Endpoint{
		Address: srv.URL + "/items/42",
		Policy:  request.ApplicationCache(request.CacheInfo{}),
	}

	get := func() request.Result {
		ch := make(chan request.Result, 1)
		resolver.Request(request.CacheIfPossible(), target, func(res request.Result) { ch <- res })
		select {
		case res := <-ch:
			return res
		case <-time.After(5 * time.Second):
			t.Fatal("request did not complete")
			return request.Result{}
		}
	}

	first := get()
	require.Nil(t, first.Err)
	require.False(t, first.FromCache)

	second := get()
	require.Nil(t, second.Err)
	require.True(t, second.FromCache)
	require.Equal(t, first.Response.Body, second.Response.Body)
	require.Equal(t, int64(1), hits.Load())

	// restored from disk with headers
	cache.Flush()
	cache.ClearMemory()
	third := get()
	require.True(t, third.FromCache)
	require.Equal(t, "application/json", third.Response.Header.Get("Content-Type"))
	require.Equal(t, int64(1), hits.Load())

	// origin errors are normalized
	missing := request.Endpoint{Address: srv.URL + "/missing", Policy: target.Policy}
	ch := make(chan request.Result, 1)
	resolver.Request(request.Server(), missing, func(res request.Result) { ch <- res })
	res := <-ch
	require.ErrorIs(t, res.Err, model.ErrRequestFailed)
}
