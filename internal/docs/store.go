package docs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Handit-AI/invoice-copilot/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Document is one processed invoice file.
type Document struct {
	Filename string `json:"filename"`
	Data     any    `json:"data"`
}

// Store serves processed invoice JSON documents from a directory.
// Contents are cached after the first load and invalidated automatically
// when the directory changes on disk.
type Store struct {
	dir     string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	loaded bool
	docs   []Document
}

// NewStore creates a store over the given directory and starts watching it
// for changes. The directory is created if missing so uploads have a target.
func NewStore(dir string) (*Store, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}

	s := &Store{dir: absDir}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Watching is an optimization; fall back to reloading on demand
		logging.Warn("document watcher unavailable", "error", err.Error())
		return s, nil
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		logging.Warn("document watcher unavailable", "error", err.Error())
		return s, nil
	}
	s.watcher = watcher
	go s.watch()

	return s, nil
}

// watch invalidates the cache whenever the directory changes.
func (s *Store) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logging.Debug("document cache invalidated", "event", event.Op.String(), "file", event.Name)
				s.Invalidate()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("document watcher error", "error", err.Error())
		}
	}
}

// Invalidate drops the cached documents. The next read reloads from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.docs = nil
}

// Documents returns all processed invoice documents, sorted by filename.
func (s *Store) Documents() ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.docs, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read document directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			logging.Warn("skipping unreadable document", "file", entry.Name(), "error", err.Error())
			continue
		}
		var parsed any
		if err := json.Unmarshal(data, &parsed); err != nil {
			logging.Warn("skipping malformed document", "file", entry.Name(), "error", err.Error())
			continue
		}
		docs = append(docs, Document{Filename: entry.Name(), Data: parsed})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })

	s.docs = docs
	s.loaded = true
	logging.Info("documents loaded", "dir", s.dir, "count", len(docs))
	return docs, nil
}

// PromptData renders all documents as indented JSON for inclusion in a
// model prompt. Returns an explanatory placeholder when no data exists.
func (s *Store) PromptData() (string, error) {
	docs, err := s.Documents()
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "No invoice data has been processed yet.", nil
	}

	rendered, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return "", err
	}
	return string(rendered), nil
}

// Close stops the directory watcher.
func (s *Store) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
