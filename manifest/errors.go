package manifest

import "errors"

// Sentinel errors for loading a prompts document. Callers should use
// errors.Is. Packages building on manifest may translate these into their
// own taxonomy; this package never imports them back.
var (
	// ErrRead indicates the source could not be read (missing file, permissions, I/O).
	ErrRead = errors.New("manifest: source unreadable")
	// ErrSyntax indicates the source is not valid YAML or JSON.
	ErrSyntax = errors.New("manifest: source is not valid structured data")
	// ErrSchema indicates the source parsed but violates the prompts schema.
	ErrSchema = errors.New("manifest: document violates the prompts schema")
)
