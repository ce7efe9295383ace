package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEpisode_RejectsMalformedURL(t *testing.T) {
	useTestConfig(t)

	err := addEpisodeCmd.RunE(addEpisodeCmd, []string{"https://example.com/about/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")

	// Nothing was written.
	assert.False(t, newStore().Exists())
}

func TestAddEpisode_UnreachablePageIsFatal(t *testing.T) {
	useTestConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	addEpisodeCmd.SetContext(context.Background())
	err := addEpisodeCmd.RunE(addEpisodeCmd, []string{srv.URL + "/episodes/2021/3/7/episode-214-life-lessons/"})
	require.Error(t, err)
	assert.False(t, newStore().Exists())
}

func TestAddEpisode_PageWithoutBooks(t *testing.T) {
	useTestConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Transcript only, no reading list this week.</p></body></html>`))
	}))
	defer srv.Close()

	addEpisodeCmd.SetContext(context.Background())
	err := addEpisodeCmd.RunE(addEpisodeCmd, []string{srv.URL + "/episodes/2021/3/7/episode-214-life-lessons/"})
	require.NoError(t, err)

	// No candidates means no catalog mutation at all.
	assert.False(t, newStore().Exists())
}

func TestAddEpisodeCmd_Metadata(t *testing.T) {
	assert.Equal(t, "add-episode <episode-url>", addEpisodeCmd.Use)
	assert.NotEmpty(t, addEpisodeCmd.Short)
}
