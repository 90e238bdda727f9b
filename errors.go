package unversion

import (
	"errors"
	"fmt"

	"github.com/skosovsky/unversion/manifest"
)

// Sentinel errors for store and registry operations.
// All use prefix "unversion:" for identification. Callers should use errors.Is.
var (
	// ErrSourceRead indicates the prompts source could not be read (missing file, permissions, I/O).
	ErrSourceRead = errors.New("unversion: prompts source unreadable")
	// ErrParse indicates the prompts source is not valid YAML or JSON.
	ErrParse = errors.New("unversion: prompts source is not valid structured data")
	// ErrInvalidDocument indicates the source parsed but violates the document schema (e.g. missing text).
	ErrInvalidDocument = errors.New("unversion: prompts document is malformed")
	// ErrUninitialized indicates the process-wide store was accessed before InitStore.
	ErrUninitialized = errors.New("unversion: prompt store not initialized")
)

// A lookup miss is deliberately not an error: Store.GetPrompt returns an
// empty string and Store.Get returns an explicit found flag, so a renamed
// or missing prompt degrades caller behavior instead of crashing it.

// wrapDocumentErr translates manifest sentinels into this package's taxonomy
// at the store boundary, so callers match on unversion errors regardless of
// which loader produced the failure. Both sentinels stay in the chain.
func wrapDocumentErr(err error) error {
	switch {
	case errors.Is(err, manifest.ErrRead):
		return fmt.Errorf("%w: %w", ErrSourceRead, err)
	case errors.Is(err, manifest.ErrSyntax):
		return fmt.Errorf("%w: %w", ErrParse, err)
	case errors.Is(err, manifest.ErrSchema):
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return err
}
