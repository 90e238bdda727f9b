package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/skosovsky/unversion/internal/cast"

	"gopkg.in/yaml.v3"
)

// Document is a parsed prompts document: a version string and the prompt
// entries keyed by their hierarchical identifier.
type Document struct {
	Version string
	Prompts map[string]Entry
}

// Entry is one prompt as it appears in the document. The key lives in the
// Document map, not in the entry itself.
type Entry struct {
	Text      string
	Variables []string
	Source    string
	Notes     string
}

// Keys returns the prompt keys in lexicographic order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.Prompts))
	for k := range d.Prompts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseBytes parses a YAML or JSON prompts document.
// Syntax errors wrap ErrSyntax; schema violations (top level not a mapping,
// prompts section missing or not a mapping, entry without a string text
// field) wrap ErrSchema. Unknown fields at any level are ignored for
// forward compatibility.
func ParseBytes(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	doc, issues := inspect(raw)
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return nil, fmt.Errorf("%w: %s", ErrSchema, issue)
		}
	}
	return doc, nil
}

// ParseFile reads and parses a prompts document from disk.
// Read failures wrap ErrRead.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return ParseBytes(data)
}

// ParseFS reads and parses a prompts document from an fs.FS (e.g. embed.FS).
func ParseFS(fsys fs.FS, name string) (*Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return ParseBytes(data)
}

// inspect walks the decoded document and returns whatever could be built
// plus every issue found. Parse stops at the first error-severity issue;
// Lint reports them all.
func inspect(raw any) (*Document, []Issue) {
	var issues []Issue
	doc := &Document{Version: "1.0", Prompts: make(map[string]Entry)}

	top, ok := raw.(map[string]any)
	if !ok {
		issues = append(issues, Issue{Severity: SeverityError, Message: "top-level structure is not a mapping"})
		return doc, issues
	}
	if v, ok := top["version"].(string); ok {
		doc.Version = v
	}
	rawPrompts, present := top["prompts"]
	if !present {
		issues = append(issues, Issue{Severity: SeverityError, Message: "missing prompts section"})
		return doc, issues
	}
	prompts, ok := rawPrompts.(map[string]any)
	if !ok {
		issues = append(issues, Issue{Severity: SeverityError, Message: "prompts section is not a mapping"})
		return doc, issues
	}
	for key, rawEntry := range prompts {
		if key == "" {
			issues = append(issues, Issue{Severity: SeverityError, Message: "empty prompt key"})
			continue
		}
		fields, ok := rawEntry.(map[string]any)
		if !ok {
			issues = append(issues, Issue{Severity: SeverityError, Key: key, Message: "entry is not a mapping"})
			continue
		}
		rawText, present := fields["text"]
		if !present {
			issues = append(issues, Issue{Severity: SeverityError, Key: key, Message: "missing text field"})
			continue
		}
		text, ok := rawText.(string)
		if !ok {
			issues = append(issues, Issue{Severity: SeverityError, Key: key, Message: "text is not a string"})
			continue
		}
		e := Entry{Text: text}
		if vars, ok := cast.ToStringSlice(fields["variables"]); ok {
			e.Variables = vars
		}
		if s, ok := fields["source"].(string); ok {
			e.Source = s
		}
		if s, ok := fields["notes"].(string); ok {
			e.Notes = s
		}
		doc.Prompts[key] = e
	}
	issues = append(issues, lintEntries(doc)...)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Key < issues[j].Key })
	return doc, issues
}

// lintEntries produces warning-severity issues for entries that parsed fine
// but look suspicious: empty text, declared variables never used in text,
// and keys that collide when compared case-insensitively.
func lintEntries(doc *Document) []Issue {
	var issues []Issue
	lower := make(map[string]string, len(doc.Prompts))
	for _, key := range doc.Keys() {
		e := doc.Prompts[key]
		if e.Text == "" {
			issues = append(issues, Issue{Severity: SeverityWarning, Key: key, Message: "empty text"})
		}
		for _, v := range e.Variables {
			if !strings.Contains(e.Text, "{"+v+"}") {
				issues = append(issues, Issue{Severity: SeverityWarning, Key: key, Message: fmt.Sprintf("declared variable %q not used in text", v)})
			}
		}
		lk := strings.ToLower(key)
		if prev, seen := lower[lk]; seen {
			issues = append(issues, Issue{Severity: SeverityWarning, Key: key, Message: fmt.Sprintf("key differs from %q only by case", prev)})
		} else {
			lower[lk] = key
		}
	}
	return issues
}
