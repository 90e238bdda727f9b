package unversion

// Prompt is one template entity loaded from a prompts document.
// Immutable during the store's lifetime; a reload replaces entries wholesale.
type Prompt struct {
	// Key is the unique dot-delimited identifier (e.g. "analysis.sentiment").
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
	// Text is the raw template; may contain {name} placeholders.
	Text string `json:"text" yaml:"text"`
	// Variables lists placeholder names declared by the author.
	// Informational only; not enforced against Text (manifest.Lint reports mismatches).
	Variables []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	// Source is a free-text provenance string.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Notes is free-text documentation.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Format returns the prompt text with bindings substituted.
// With no bindings the raw text is returned unchanged.
func (p Prompt) Format(bindings map[string]any) string {
	if len(bindings) == 0 {
		return p.Text
	}
	return Format(p.Text, bindings)
}
