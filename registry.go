package unversion

import "sync/atomic"

// The process-wide store binding. Prompts are a global, read-mostly resource
// analogous to configuration: most applications have exactly one active
// prompt set per process. The binding itself is an atomic pointer so
// InitStore can safely race with readers.
var active atomic.Pointer[Store]

// InitStore opens the prompts document at path and binds the resulting Store
// as the process-wide active store. Calling it again replaces the binding;
// last caller wins, no merging. On error the previous binding is kept.
func InitStore(path string, opts ...StoreOption) (*Store, error) {
	s, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	active.Store(s)
	return s, nil
}

// ActiveStore returns the store bound by InitStore.
// Returns ErrUninitialized when no store has been bound yet; that is a
// setup error, the one case where a hard failure is appropriate.
func ActiveStore() (*Store, error) {
	s := active.Load()
	if s == nil {
		return nil, ErrUninitialized
	}
	return s, nil
}

// GetPrompt looks up and formats a prompt in the active store.
// Inherits the store's fail-soft contract: unknown keys yield the empty
// string. The only error is ErrUninitialized.
func GetPrompt(key string, bindings map[string]any) (string, error) {
	s, err := ActiveStore()
	if err != nil {
		return "", err
	}
	return s.GetPrompt(key, bindings), nil
}

// ListPrompts returns all keys of the active store in lexicographic order.
func ListPrompts() ([]string, error) {
	s, err := ActiveStore()
	if err != nil {
		return nil, err
	}
	return s.ListKeys(""), nil
}

// HasPrompt reports whether the active store has a prompt for key.
func HasPrompt(key string) (bool, error) {
	s, err := ActiveStore()
	if err != nil {
		return false, err
	}
	return s.Has(key), nil
}

// ReloadPrompts reloads the active store from its original source.
func ReloadPrompts() error {
	s, err := ActiveStore()
	if err != nil {
		return err
	}
	return s.Reload()
}
