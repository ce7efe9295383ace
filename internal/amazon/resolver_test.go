package amazon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noRedirectClient() *http.Client {
	return &http.Client{
		Timeout: 2 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestResolve_AbsoluteRedirect(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Location", "https://www.amazon.in/dp/0143333626")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv.Close()

	r := NewResolverWithClient(noRedirectClient())
	got, err := r.Resolve(context.Background(), srv.URL+"/d/gdhQYgE")
	require.NoError(t, err)
	assert.Equal(t, "https://www.amazon.in/dp/0143333626", got)
}

func TestResolve_RelativeRedirect(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/dp/0143333626")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	r := NewResolverWithClient(noRedirectClient())
	got, err := r.Resolve(context.Background(), srv.URL+"/d/gdhQYgE")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/dp/0143333626", got)
}

func TestResolve_DirectOKReturnsOriginal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewResolverWithClient(noRedirectClient())
	original := srv.URL + "/d/already"
	got, err := r.Resolve(context.Background(), original)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestResolve_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolverWithClient(noRedirectClient())
	_, err := r.Resolve(context.Background(), srv.URL+"/d/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestResolve_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	r := NewResolverWithClient(noRedirectClient())
	_, err := r.Resolve(ctx, srv.URL+"/d/slow")
	require.Error(t, err)
}

func TestResolve_RedirectWithoutLocation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv.Close()

	r := NewResolverWithClient(noRedirectClient())
	_, err := r.Resolve(context.Background(), srv.URL+"/d/dead")
	require.Error(t, err)
}
