// Package catalog owns the persisted book catalog: the JSON file the
// rendering app reads, the episode merge step, and the dedup pass.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/podshelf/shelf-cli/internal/model"
)

// Store reads and writes the catalog file. Load returns a fresh snapshot
// each call; callers mutate their copy and persist explicitly, so a failed
// run never leaves a half-written catalog behind.
type Store struct {
	path   string
	pretty bool
}

// NewStore creates a Store for the catalog file. pretty controls JSON
// indentation (development); production builds write minified output.
func NewStore(path string, pretty bool) *Store {
	return &Store{path: path, pretty: pretty}
}

// Path returns the catalog file location.
func (s *Store) Path() string { return s.path }

// Exists reports whether a catalog file is already present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the catalog into a fresh slice.
func (s *Store) Load() ([]model.Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", s.path)
	}
	var books []model.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", s.path)
	}
	return books, nil
}

// Save serializes the catalog back to disk via a temp file and rename.
func (s *Store) Save(books []model.Book) error {
	var (
		data []byte
		err  error
	)
	if s.pretty {
		data, err = json.MarshalIndent(books, "", "  ")
	} else {
		data, err = json.Marshal(books)
	}
	if err != nil {
		return eris.Wrap(err, "catalog: marshal")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "catalog: create dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return eris.Wrap(err, "catalog: create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "catalog: write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "catalog: close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "catalog: replace %s", s.path)
	}

	zap.L().Info("catalog saved", zap.String("path", s.path), zap.Int("books", len(books)))
	return nil
}

// Backup copies the current catalog to a timestamped sibling file. Every
// destructive maintenance pass calls this before overwriting.
func (s *Store) Backup() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", eris.Wrapf(err, "catalog: read for backup %s", s.path)
	}
	stamp := time.Now().Format("20060102_150405")
	ext := filepath.Ext(s.path)
	backupPath := fmt.Sprintf("%s.%s%s", s.path[:len(s.path)-len(ext)], stamp, ext)
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "catalog: write backup %s", backupPath)
	}
	zap.L().Info("catalog backed up", zap.String("backup", backupPath))
	return backupPath, nil
}

// sortByTitle orders the catalog by title using English collation. The
// rendering app relies on this order for the shelf layout.
func sortByTitle(books []model.Book) {
	c := collate.New(language.English)
	sort.SliceStable(books, func(i, j int) bool {
		return c.CompareString(books[i].Title, books[j].Title) < 0
	})
}
