package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Severity classifies a lint Issue.
type Severity string

// Issue severities. Errors would make ParseBytes fail; warnings would not.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found while linting a prompts document.
type Issue struct {
	Severity Severity
	Key      string // prompt key the issue belongs to; empty for document-level issues
	Message  string
}

// String renders the issue for human-readable tooling output.
func (i Issue) String() string {
	if i.Key == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Key, i.Message)
}

// Lint checks a prompts document and collects every issue instead of
// stopping at the first, for tooling use (CLI validate command).
// A document that does not parse at all yields a single error issue.
func Lint(data []byte) []Issue {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []Issue{{Severity: SeverityError, Message: fmt.Sprintf("invalid syntax: %v", err)}}
	}
	_, issues := inspect(raw)
	return issues
}

// HasErrors reports whether any issue in the list is error-severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
