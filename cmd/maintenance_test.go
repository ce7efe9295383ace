package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podshelf/shelf-cli/internal/model"
)

func seedStore(t *testing.T, books []model.Book) {
	t.Helper()
	require.NoError(t, newStore().Save(books))
}

func mustBook(t *testing.T, asin, title string, episodeNum int) model.Book {
	t.Helper()
	b, err := model.NewBook(asin, title, "https://www.amazon.in/dp/"+asin, model.Mention{EpisodeNum: episodeNum})
	require.NoError(t, err)
	return *b
}

func TestFixEntities_DecodesTitles(t *testing.T) {
	dir := useTestConfig(t)
	seedStore(t, []model.Book{
		mustBook(t, "014312774X", "War &amp; Peace", 12),
		mustBook(t, "B075H5MJBH", "Clean Title", 50),
	})

	err := fixEntitiesCmd.RunE(fixEntitiesCmd, nil)
	require.NoError(t, err)

	books, err := newStore().Load()
	require.NoError(t, err)
	byASIN := make(map[string]model.Book)
	for _, b := range books {
		byASIN[b.ASIN] = b
	}
	assert.Equal(t, "War & Peace", byASIN["014312774X"].Title)
	assert.Equal(t, "Clean Title", byASIN["B075H5MJBH"].Title)

	// A timestamped backup is written before rewriting.
	backups, err := filepath.Glob(filepath.Join(dir, "books.*.json"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestFixEntities_NoChangesNoBackup(t *testing.T) {
	dir := useTestConfig(t)
	seedStore(t, []model.Book{mustBook(t, "B075H5MJBH", "Clean Title", 50)})

	err := fixEntitiesCmd.RunE(fixEntitiesCmd, nil)
	require.NoError(t, err)

	backups, err := filepath.Glob(filepath.Join(dir, "books.*.json"))
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestDeduplicateBooks_CollapsesAndBacksUp(t *testing.T) {
	dir := useTestConfig(t)
	// Same work under a bare ASIN and one decorated with punctuation: both
	// derive the same id.
	seedStore(t, []model.Book{
		mustBook(t, "014312774X", "Seeing Like a State", 121),
		mustBook(t, "0143-12774X", "Seeing Like a State", 200),
	})

	err := dedupeCmd.RunE(dedupeCmd, nil)
	require.NoError(t, err)

	books, err := newStore().Load()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "014312774X", books[0].ASIN)
	assert.Equal(t, 2, books[0].EpisodeCount)

	backups, err := filepath.Glob(filepath.Join(dir, "books.*.json"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestDeduplicateBooks_MissingCatalog(t *testing.T) {
	useTestConfig(t)

	err := dedupeCmd.RunE(dedupeCmd, nil)
	require.Error(t, err)
}

func TestCommandRegistration(t *testing.T) {
	want := []string{
		"add-episode",
		"process-data",
		"fetch-covers",
		"extract-colors",
		"deduplicate-books",
		"missing-covers",
		"discover-episodes",
		"fix-entities",
		"serve",
	}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, registered[name], "command %s not registered", name)
	}
}
