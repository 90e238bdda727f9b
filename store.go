package unversion

import (
	"io/fs"
	"iter"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/skosovsky/unversion/manifest"

	"golang.org/x/sync/singleflight"
)

// Store is the loaded, queryable collection of prompts for a process.
// The prompt mapping lives behind an atomic pointer: Reload builds a complete
// replacement snapshot and swaps it in, so readers always observe either the
// fully-old or fully-new set, never a mix. All methods are safe for
// concurrent use.
type Store struct {
	load   func() (*manifest.Document, error)
	path   string
	logger *slog.Logger
	snap   atomic.Pointer[snapshot]
	group  singleflight.Group
}

// snapshot is one immutable loaded prompt set.
type snapshot struct {
	version string
	prompts map[string]Prompt
	keys    []string // sorted
}

// Open reads and validates the prompts document at path and returns a loaded
// Store. Read failures wrap ErrSourceRead, syntax failures ErrParse, schema
// failures ErrInvalidDocument.
func Open(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		load: func() (*manifest.Document, error) { return manifest.ParseFile(path) },
		path: path,
	}
	return open(s, opts)
}

// OpenFS loads a prompts document from an fs.FS (e.g. an embedded bundle).
// Reload re-reads the same name from fsys.
func OpenFS(fsys fs.FS, name string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		load: func() (*manifest.Document, error) { return manifest.ParseFS(fsys, name) },
		path: name,
	}
	return open(s, opts)
}

func open(s *Store, opts []StoreOption) (*Store, error) {
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the prompt for key. The found flag is the normal way to handle
// a miss; callers are expected to treat missing prompts as a frequent case.
func (s *Store) Get(key string) (Prompt, bool) {
	p, ok := s.snap.Load().prompts[key]
	return p, ok
}

// Has reports whether a prompt exists for key.
func (s *Store) Has(key string) bool {
	_, ok := s.snap.Load().prompts[key]
	return ok
}

// GetPrompt returns the formatted text for key, or the empty string when the
// key is unknown. This is a deliberate fail-soft contract: a missing or
// renamed prompt degrades the caller's behavior instead of crashing it.
// With nil or empty bindings the raw text is returned as-is.
func (s *Store) GetPrompt(key string, bindings map[string]any) string {
	p, ok := s.Get(key)
	if !ok {
		s.logger.Warn("prompt not found", "key", key)
		return ""
	}
	return p.Format(bindings)
}

// ListKeys returns prompt keys in lexicographic order. A non-empty prefix
// restricts the result to keys starting with it; the empty prefix returns
// all keys.
func (s *Store) ListKeys(prefix string) []string {
	keys := s.snap.Load().keys
	if prefix == "" {
		return append([]string(nil), keys...)
	}
	// keys are sorted, so the matching range is contiguous
	start := sort.SearchStrings(keys, prefix)
	out := []string{}
	for _, k := range keys[start:] {
		if !strings.HasPrefix(k, prefix) {
			break
		}
		out = append(out, k)
	}
	return out
}

// All iterates over prompts in lexicographic key order.
func (s *Store) All() iter.Seq2[string, Prompt] {
	snap := s.snap.Load()
	return func(yield func(string, Prompt) bool) {
		for _, k := range snap.keys {
			if !yield(k, snap.prompts[k]) {
				return
			}
		}
	}
}

// Len returns the number of loaded prompts.
func (s *Store) Len() int { return len(s.snap.Load().keys) }

// Version returns the document version string of the current snapshot.
func (s *Store) Version() string { return s.snap.Load().version }

// Path returns the source the store was opened from.
func (s *Store) Path() string { return s.path }

// Reload re-reads the original source and atomically swaps in the new prompt
// set. On failure the previous set stays intact and the error is returned;
// a failed reload never leaves the store partially updated or empty.
// Concurrent Reload calls are coalesced into one read.
func (s *Store) Reload() error {
	_, err, _ := s.group.Do("reload", func() (any, error) {
		doc, err := s.load()
		if err != nil {
			return nil, wrapDocumentErr(err)
		}
		snap := &snapshot{
			version: doc.Version,
			prompts: make(map[string]Prompt, len(doc.Prompts)),
			keys:    doc.Keys(),
		}
		for k, e := range doc.Prompts {
			snap.prompts[k] = Prompt{
				Key:       k,
				Text:      e.Text,
				Variables: e.Variables,
				Source:    e.Source,
				Notes:     e.Notes,
			}
		}
		s.snap.Store(snap)
		s.logger.Debug("prompts loaded", "source", s.path, "count", len(snap.keys), "version", snap.version)
		return nil, nil
	})
	return err
}
